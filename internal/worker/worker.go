// Package worker is the body of the detached process: it holds the sleep
// assertion and serves the control channel until its budget runs out or it
// is told to stop.
package worker

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/scienceol/keep-awake/internal/channel"
	"github.com/scienceol/keep-awake/internal/control"
	"github.com/scienceol/keep-awake/internal/duration"
	"github.com/scienceol/keep-awake/internal/power"
	"github.com/scienceol/keep-awake/internal/tracker"
	"github.com/scienceol/keep-awake/internal/ui"
)

// Config configures Run.
type Config struct {
	// Budget is how long to stay awake, duration.Infinite for no limit.
	Budget  time.Duration
	Version string

	RuntimeDir     string
	RequestTimeout time.Duration
	Access         control.AccessControl

	Inhibitor power.Inhibitor
	// Detach silences the process once startup has been reported. It
	// defaults to redirecting stdout and stderr to the null device.
	Detach func() error
	Logger *slog.Logger
}

// Run starts the worker and blocks until it stops. Errors returned before
// the channel is up are startup failures and are still visible to the
// launcher.
func Run(ctx context.Context, cfg Config) (control.Reason, error) {
	if cfg.Inhibitor == nil {
		cfg.Inhibitor = power.New()
	}
	if cfg.Detach == nil {
		cfg.Detach = DetachStdio
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	pid := os.Getpid()
	tr := tracker.New(cfg.Budget)

	srv, err := control.Listen(control.ServerConfig{
		Path:           channel.Path(cfg.RuntimeDir, pid),
		Tracker:        tr,
		Access:         cfg.Access,
		RequestTimeout: cfg.RequestTimeout,
		Logger:         cfg.Logger,
	})
	if err != nil {
		return control.ReasonCanceled, err
	}

	if err := cfg.Inhibitor.Acquire(reason(cfg.Budget)); err != nil {
		ui.Warn("Could not prevent sleep: %v", err)
		cfg.Logger.Warn("sleep inhibitor unavailable", "error", err)
	}
	defer cfg.Inhibitor.Release()

	ui.Banner(cfg.Version, pid)
	ui.KeyValue("Duration", describe(cfg.Budget))
	ui.KeyValue("Stop with", fmt.Sprintf("keep-awake stop %d", pid))

	if err := cfg.Detach(); err != nil {
		cfg.Logger.Warn("detach failed", "error", err)
	}
	cfg.Logger.Info("serving", "channel", srv.Path(), "budget", describe(cfg.Budget))

	r, err := srv.Serve(ctx)
	cfg.Inhibitor.Release()
	cfg.Logger.Info("worker exiting", "reason", r.String())
	return r, err
}

func describe(budget time.Duration) string {
	if budget < 0 {
		return "until stopped"
	}
	return duration.Format(budget)
}

func reason(budget time.Duration) string {
	if budget < 0 {
		return "keep-awake until stopped"
	}
	return "keep-awake for " + duration.Format(budget)
}
