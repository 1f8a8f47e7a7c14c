//go:build darwin

package power

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"sync"
)

type darwinInhibitor struct {
	mu  sync.Mutex
	cmd *exec.Cmd
}

func newInhibitor() Inhibitor {
	return &darwinInhibitor{}
}

func (d *darwinInhibitor) Acquire(string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cmd != nil {
		return nil
	}

	path, err := exec.LookPath("caffeinate")
	if err != nil {
		return fmt.Errorf("%w: caffeinate not found", ErrUnavailable)
	}

	// -i idle sleep, -s system sleep on AC power, -w exit together with us.
	cmd := exec.Command(path, "-is", "-w", strconv.Itoa(os.Getpid()))
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start caffeinate: %w", err)
	}
	go cmd.Wait()

	d.cmd = cmd
	return nil
}

func (d *darwinInhibitor) Release() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cmd != nil && d.cmd.Process != nil {
		_ = d.cmd.Process.Kill()
	}
	d.cmd = nil
}

func (d *darwinInhibitor) Held() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cmd != nil
}
