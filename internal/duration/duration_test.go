package duration

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0s"},
		{-5 * time.Second, "0s"},
		{499 * time.Millisecond, "0s"},
		{500 * time.Millisecond, "1s"},
		{90 * time.Second, "1m 30s"},
		{Day, "1d"},
		{Day + 5*time.Minute, "1d 5m"},
		{59*time.Second + 500*time.Millisecond, "1m"},
		{23*time.Hour + 59*time.Minute + 59*time.Second + 700*time.Millisecond, "1d"},
		{2*Day + 3*time.Hour + 4*time.Minute + 5*time.Second, "2d 3h 4m 5s"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.in))
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"2d3h", 2*Day + 3*time.Hour},
		{"90", 90 * time.Second},
		{"90s", 90 * time.Second},
		{"1m", time.Minute},
		{"1H 30M", 90 * time.Minute},
		{"  1d 2h 3m 4s  ", Day + 2*time.Hour + 3*time.Minute + 4*time.Second},
		{"0", 0},
		{"1d4", Day + 4*time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseNoValue(t *testing.T) {
	for _, in := range []string{"", "   ", "\t"} {
		_, err := Parse(in)
		assert.ErrorIs(t, err, ErrEmpty, "input %q", in)
	}
}

func TestParseSyntax(t *testing.T) {
	for _, in := range []string{"abc", "1h2d", "3s4", "1x", "-1s", "1.5h"} {
		_, err := Parse(in)
		assert.ErrorIs(t, err, ErrSyntax, "input %q", in)
	}
}

func TestParseOverflow(t *testing.T) {
	for _, in := range []string{"99999999999999d", "999999999999999999999999s", "106751d 23h 47m 17s"} {
		_, err := Parse(in)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrOverflow), "input %q: %v", in, err)
	}
}

func TestParseBudget(t *testing.T) {
	d, err := ParseBudget("")
	require.NoError(t, err)
	assert.Equal(t, Infinite, d)

	d, err = ParseBudget("365d")
	require.NoError(t, err)
	assert.Equal(t, MaxBudget, d)

	_, err = ParseBudget("366d")
	assert.ErrorContains(t, err, "too large")

	_, err = ParseBudget("99999999999999d")
	assert.ErrorContains(t, err, "too large")

	_, err = ParseBudget("soon")
	assert.ErrorIs(t, err, ErrSyntax)
}

func TestFormatParseRoundTrip(t *testing.T) {
	samples := []time.Duration{
		0,
		1,
		499 * time.Millisecond,
		501 * time.Millisecond,
		time.Hour + 1500*time.Millisecond,
		3*Day + 7*time.Hour + 59*time.Minute + 59*time.Second + 999*time.Millisecond,
		MaxBudget - time.Millisecond,
	}
	for _, d := range samples {
		got, err := Parse(Format(d))
		require.NoError(t, err)
		diff := got - d.Truncate(time.Millisecond)
		if diff < 0 {
			diff = -diff
		}
		assert.LessOrEqual(t, diff, 500*time.Millisecond, "duration %v", d)
	}
}
