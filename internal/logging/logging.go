// Package logging builds the slog logger shared by all components.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/scienceol/keep-awake/internal/config"
)

// New returns a text logger writing to w at the given level.
func New(w io.Writer, level string) (*slog.Logger, error) {
	l, err := config.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l})), nil
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ForWorker returns the logger of a detached worker. Without a log file
// there is nowhere to write once the terminal is gone.
func ForWorker(cfg *config.Config) (*slog.Logger, io.Closer, error) {
	if cfg.LogFile == "" {
		return Discard(), io.NopCloser(nil), nil
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger, err := New(f, cfg.LogLevel)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return logger.With("pid", os.Getpid()), f, nil
}
