package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/scienceol/keep-awake/internal/config"
	"github.com/scienceol/keep-awake/internal/duration"
	"github.com/scienceol/keep-awake/internal/logging"
	"github.com/scienceol/keep-awake/internal/supervisor"
	"github.com/scienceol/keep-awake/internal/ui"
	"github.com/scienceol/keep-awake/internal/worker"
)

func runRoot(cmd *cobra.Command, opts *rootOptions, args []string) error {
	budget, err := duration.ParseBudget(strings.Join(args, " "))
	if err != nil {
		return fmt.Errorf("invalid duration: %w", err)
	}
	cmd.SilenceUsage = true

	cfg, err := opts.load()
	if err != nil {
		return err
	}

	if cfg.Role == config.RoleWorker {
		return runWorker(cmd.Context(), cfg, budget)
	}
	return runLauncher(cmd.Context(), cfg)
}

// runLauncher re-executes this binary as the worker and waits only until
// the worker has reported its startup.
func runLauncher(ctx context.Context, cfg *config.Config) error {
	code, err := supervisor.Launch(ctx, supervisor.Config{
		Args:   os.Args[1:],
		Env:    config.WorkerEnv(os.Environ()),
		Output: os.Stdout,
		Logger: consoleLogger(cfg),
	})
	if err != nil {
		return err
	}
	if code != 0 {
		return &exitError{code: code}
	}
	return nil
}

func runWorker(ctx context.Context, cfg *config.Config, budget time.Duration) error {
	logger, closer, err := logging.ForWorker(cfg)
	if err != nil {
		ui.Error("%v", err)
		return &exitError{code: 1}
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, err = worker.Run(ctx, worker.Config{
		Budget:         budget,
		Version:        version,
		RuntimeDir:     cfg.RuntimeDir,
		RequestTimeout: cfg.RequestTimeout,
		Logger:         logger,
	})
	if err != nil {
		ui.Error("%v", err)
		logger.Error("worker failed", "error", err)
		return &exitError{code: 1}
	}
	return nil
}
