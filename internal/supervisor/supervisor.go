// Package supervisor starts the detached worker and relays what it prints
// during startup to the caller's terminal.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"time"
)

const defaultExitGrace = 200 * time.Millisecond

// Config configures Launch.
type Config struct {
	// Executable defaults to the running executable.
	Executable string
	Args       []string
	// Env is the complete environment of the worker, role marker included.
	Env []string
	// Output receives everything the worker writes before it detaches.
	Output io.Writer
	// ExitGrace is how long to wait, once output ends, for a worker that
	// is exiting anyway so its exit code can be passed on.
	ExitGrace time.Duration
	Logger    *slog.Logger
}

// Launch spawns the worker with stdout and stderr on an anonymous pipe and
// copies the pipe to cfg.Output until the worker closes its end. It returns
// the exit code the launcher should exit with.
func Launch(ctx context.Context, cfg Config) (int, error) {
	if cfg.Executable == "" {
		exe, err := os.Executable()
		if err != nil {
			return 1, fmt.Errorf("locate executable: %w", err)
		}
		cfg.Executable = exe
	}
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}
	if cfg.ExitGrace <= 0 {
		cfg.ExitGrace = defaultExitGrace
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	r, w, err := os.Pipe()
	if err != nil {
		return 1, fmt.Errorf("create output pipe: %w", err)
	}
	defer r.Close()

	// Not CommandContext: the worker must outlive the launcher.
	cmd := exec.Command(cfg.Executable, cfg.Args...)
	cmd.Env = cfg.Env
	cmd.Stdout = w
	cmd.Stderr = w
	cmd.SysProcAttr = detachedAttr()

	if err := cmd.Start(); err != nil {
		w.Close()
		return 1, fmt.Errorf("start worker: %w", err)
	}
	// Only the worker holds the write end now, so the copy below ends
	// when the worker detaches or exits.
	w.Close()
	cfg.Logger.Debug("worker started", "pid", cmd.Process.Pid)

	if _, err := io.Copy(cfg.Output, r); err != nil {
		cfg.Logger.Warn("relaying worker output failed", "error", err)
	}

	waitCh := make(chan error, 1)
	go func() { waitCh <- cmd.Wait() }()

	select {
	case err := <-waitCh:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		if err != nil {
			return 1, fmt.Errorf("worker: %w", err)
		}
		return 0, nil
	case <-time.After(cfg.ExitGrace):
		return 0, nil
	case <-ctx.Done():
		return 0, nil
	}
}
