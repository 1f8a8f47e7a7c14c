//go:build linux

package power

import (
	"fmt"
	"os/exec"
	"sync"
	"syscall"
)

// linuxInhibitor holds a systemd-inhibit lock for as long as its helper
// child runs.
type linuxInhibitor struct {
	mu  sync.Mutex
	cmd *exec.Cmd
}

func newInhibitor() Inhibitor {
	return &linuxInhibitor{}
}

func (l *linuxInhibitor) Acquire(reason string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cmd != nil {
		return nil
	}

	path, err := exec.LookPath("systemd-inhibit")
	if err != nil {
		return fmt.Errorf("%w: systemd-inhibit not found", ErrUnavailable)
	}

	cmd := exec.Command(path,
		"--what=sleep:idle",
		"--who=keep-awake",
		"--why="+reason,
		"--mode=block",
		"sleep", "infinity",
	)
	// The lock must not outlive the worker.
	cmd.SysProcAttr = &syscall.SysProcAttr{Pdeathsig: syscall.SIGTERM}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start systemd-inhibit: %w", err)
	}
	go cmd.Wait()

	l.cmd = cmd
	return nil
}

func (l *linuxInhibitor) Release() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cmd != nil && l.cmd.Process != nil {
		_ = l.cmd.Process.Kill()
	}
	l.cmd = nil
}

func (l *linuxInhibitor) Held() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cmd != nil
}
