// Package duration converts between human-readable durations such as
// "1d 2h 3m 4s" and time.Duration values.
package duration

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	Day = 24 * time.Hour

	// MaxBudget is the largest finite duration accepted on the command line.
	MaxBudget = 365 * Day

	// Infinite marks the absence of a deadline.
	Infinite time.Duration = -1
)

var (
	// ErrEmpty is returned for blank input. It means "no value", not zero.
	ErrEmpty = errors.New("no duration given")
	// ErrSyntax is returned when the input does not follow the grammar.
	ErrSyntax = errors.New("not a duration")
	// ErrOverflow is returned when a component cannot be represented.
	ErrOverflow = errors.New("duration is too large")
)

// Components are tried in order against the whole trimmed input. The unit
// letter is optional only on the trailing seconds component.
var grammar = regexp.MustCompile(`^(?i)(?:(\d+)\s*d)?\s*(?:(\d+)\s*h)?\s*(?:(\d+)\s*m)?\s*(?:(\d+)\s*s?)?$`)

var units = [...]time.Duration{Day, time.Hour, time.Minute, time.Second}

// Parse reads text such as "2d3h", "90" or "1h 30m". Blank input yields
// ErrEmpty; values that do not fit a time.Duration yield ErrOverflow.
func Parse(text string) (time.Duration, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, ErrEmpty
	}

	m := grammar.FindStringSubmatch(text)
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrSyntax, text)
	}

	var total time.Duration
	captured := false
	for i, unit := range units {
		raw := m[i+1]
		if raw == "" {
			continue
		}
		captured = true

		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrOverflow, text)
		}
		if n > int64(math.MaxInt64/unit) {
			return 0, fmt.Errorf("%w: %q", ErrOverflow, text)
		}
		part := time.Duration(n) * unit
		if total > math.MaxInt64-part {
			return 0, fmt.Errorf("%w: %q", ErrOverflow, text)
		}
		total += part
	}
	if !captured {
		return 0, ErrEmpty
	}
	return total, nil
}

// ParseBudget parses a keep-awake budget. Blank input means Infinite and
// anything above MaxBudget is rejected.
func ParseBudget(text string) (time.Duration, error) {
	d, err := Parse(text)
	switch {
	case errors.Is(err, ErrEmpty):
		return Infinite, nil
	case errors.Is(err, ErrOverflow):
		return 0, fmt.Errorf("duration value is too large, the maximum is %s", Format(MaxBudget))
	case err != nil:
		return 0, err
	}
	if d > MaxBudget {
		return 0, fmt.Errorf("duration value is too large, the maximum is %s", Format(MaxBudget))
	}
	return d, nil
}

// Format renders d rounded to the nearest second, e.g. "1d 2h 3m 4s".
// Zero components are left out and a zero duration renders as "0s".
func Format(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}

	ms := d.Milliseconds()
	secs := ms / 1000
	if ms%1000 >= 500 {
		secs++
	}

	fields := [...]struct {
		n    int64
		unit string
	}{
		{secs / 86400, "d"},
		{secs / 3600 % 24, "h"},
		{secs / 60 % 60, "m"},
		{secs % 60, "s"},
	}

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if f.n == 0 {
			continue
		}
		parts = append(parts, strconv.FormatInt(f.n, 10)+f.unit)
	}
	if len(parts) == 0 {
		return "0s"
	}
	return strings.Join(parts, " ")
}
