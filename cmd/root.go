package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/scienceol/keep-awake/internal/config"
	"github.com/scienceol/keep-awake/internal/control"
	"github.com/scienceol/keep-awake/internal/logging"
	"github.com/scienceol/keep-awake/internal/ui"
)

// exitError carries an exit code that has already been reported.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

type rootOptions struct {
	flags config.Flags
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "keep-awake [duration]",
		Short: "Keep this machine from sleeping for a while, or until stopped",
		Long: `keep-awake prevents the machine from going to sleep. Without a duration it
keeps it awake until stopped; with one (e.g. "1h 30m", "2d3h", "90") it
releases the machine once the time is up.

The command returns as soon as a background worker has started. Use
"keep-awake list" to see running workers and "keep-awake stop <pid>" to
end one early.`,
		Version:       version,
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoot(cmd, opts, args)
		},
	}
	root.SetVersionTemplate("keep-awake v{{.Version}}\n")

	pf := root.PersistentFlags()
	pf.StringVar(&opts.flags.RuntimeDir, "runtime-dir", "", "Directory holding worker control channels (default: /tmp, or ProgramData on windows)")
	pf.StringVar(&opts.flags.LogLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.StringVar(&opts.flags.LogFile, "log-file", "", "Write worker logs to this file")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newListCmd(opts))
	root.AddCommand(newStopCmd(opts))
	return root
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.code)
		}
		ui.Error("%v", err)
		os.Exit(1)
	}
}

func (o *rootOptions) load() (*config.Config, error) {
	cfg, err := config.Load(o.flags)
	if err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	return cfg, nil
}

// consoleLogger logs to stderr for the short-lived foreground commands.
func consoleLogger(cfg *config.Config) *slog.Logger {
	logger, err := logging.New(os.Stderr, cfg.LogLevel)
	if err != nil {
		return logging.Discard()
	}
	return logger
}

func newClient(cfg *config.Config, logger *slog.Logger) *control.Client {
	return control.NewClient(control.ClientConfig{
		Dir:          cfg.RuntimeDir,
		ReplyTimeout: cfg.ReplyTimeout,
		BusyTimeout:  cfg.BusyTimeout,
		Logger:       logger,
	})
}
