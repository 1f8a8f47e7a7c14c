// Package discovery finds running workers and asks each one how long it
// will keep the machine awake.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/scienceol/keep-awake/internal/control"
)

// UnknownOwner is shown when a process owner cannot be resolved.
const UnknownOwner = "<unknown>"

// Process is one OS process running the keep-awake executable.
type Process struct {
	PID     int
	Owner   string
	Session int
}

// Source enumerates OS processes whose executable is called name.
type Source interface {
	Find(ctx context.Context, name string) ([]Process, error)
}

// Querier asks a worker for its remaining time.
type Querier interface {
	Query(ctx context.Context, pid int) (string, error)
}

// Record is one row of the status table.
type Record struct {
	PID       int
	User      string
	Session   int
	Remaining string
}

// Config configures New.
type Config struct {
	Source  Source
	Querier Querier
	// Name is the executable name workers run under.
	Name string
	// SelfPID is left out of the results.
	SelfPID int
	Logger  *slog.Logger
}

// Service builds the status table of running workers.
type Service struct {
	source  Source
	querier Querier
	name    string
	self    int
	logger  *slog.Logger
}

// New creates a Service.
func New(cfg Config) *Service {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		source:  cfg.Source,
		querier: cfg.Querier,
		name:    cfg.Name,
		self:    cfg.SelfPID,
		logger:  cfg.Logger,
	}
}

// List returns the workers that answered an info query, in enumeration
// order. Workers that exist but refuse the caller are kept with the
// Inaccessible placeholder; unreachable ones are dropped.
func (s *Service) List(ctx context.Context) ([]Record, error) {
	procs, err := s.source.Find(ctx, s.name)
	if err != nil {
		return nil, fmt.Errorf("enumerate processes: %w", err)
	}

	records := make([]Record, 0, len(procs))
	for _, p := range procs {
		if p.PID == s.self {
			continue
		}

		remaining, err := s.querier.Query(ctx, p.PID)
		switch {
		case errors.Is(err, control.ErrInaccessible):
			remaining = control.Inaccessible
		case err != nil:
			s.logger.Debug("skipping process", "pid", p.PID, "error", err)
			continue
		}

		records = append(records, Record{
			PID:       p.PID,
			User:      p.Owner,
			Session:   p.Session,
			Remaining: remaining,
		})
	}
	return records, nil
}

type column struct {
	header string
	align  tw.Align
	cell   func(Record) string
}

var columns = []column{
	{"PID", tw.AlignRight, func(r Record) string { return strconv.Itoa(r.PID) }},
	{"USER", tw.AlignLeft, func(r Record) string { return r.User }},
	{"SESSION", tw.AlignRight, func(r Record) string { return strconv.Itoa(r.Session) }},
	{"REMAINING", tw.AlignRight, func(r Record) string { return r.Remaining }},
}

// Render writes records as a borderless table, columns two spaces apart.
// The header is written even when there are no records.
func Render(w io.Writer, records []Record) error {
	header := make([]any, len(columns))
	align := make(tw.Alignment, len(columns))
	for i, c := range columns {
		header[i] = c.header
		align[i] = c.align
	}

	var b strings.Builder
	table := tablewriter.NewTable(&b,
		tablewriter.WithRenderer(renderer.NewBlueprint(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.SeparatorsNone,
				Lines:      tw.LinesNone,
			},
		})),
		tablewriter.WithHeaderAutoFormat(tw.Off),
		tablewriter.WithAlignment(align),
		tablewriter.WithPadding(tw.PaddingDefault),
	)
	table.Header(header...)
	for _, r := range records {
		row := make([]string, len(columns))
		for i, c := range columns {
			row[i] = c.cell(r)
		}
		if err := table.Append(row); err != nil {
			return fmt.Errorf("append row for pid %d: %w", r.PID, err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("render table: %w", err)
	}

	// Adjacent cell paddings make the two-space gap; drop the outer ones.
	var out strings.Builder
	for _, line := range strings.Split(strings.TrimRight(b.String(), "\n"), "\n") {
		out.WriteString(strings.TrimRight(strings.TrimPrefix(line, " "), " "))
		out.WriteByte('\n')
	}
	_, err := io.WriteString(w, out.String())
	return err
}
