// Package tracker keeps the time budget of a worker and waits for either an
// external signal or the end of that budget.
package tracker

import (
	"context"
	"time"

	"github.com/scienceol/keep-awake/internal/duration"
)

// InfiniteDisplay is what RemainingDisplay reports without a deadline.
const InfiniteDisplay = "Infinite"

// Outcome is the result of Wait.
type Outcome int

const (
	// Signaled means the signal channel delivered a value.
	Signaled Outcome = iota
	// Expired means the budget ran out or waiting is no longer possible.
	Expired
)

func (o Outcome) String() string {
	switch o {
	case Signaled:
		return "signaled"
	case Expired:
		return "expired"
	default:
		return "unknown"
	}
}

// Tracker measures elapsed time against an optional budget. The budget is
// fixed at construction.
type Tracker struct {
	budget time.Duration
	start  time.Time
	now    func() time.Time
}

// New starts tracking now. A negative budget (duration.Infinite) means there
// is no deadline.
func New(budget time.Duration) *Tracker {
	return &Tracker{budget: budget, start: time.Now(), now: time.Now}
}

// Infinite reports whether the tracker has no deadline.
func (t *Tracker) Infinite() bool {
	return t.budget < 0
}

// Elapsed returns the time since the tracker was created.
func (t *Tracker) Elapsed() time.Duration {
	return t.now().Sub(t.start)
}

// Remaining returns the time left, clamped to zero. It returns
// duration.Infinite when there is no deadline.
func (t *Tracker) Remaining() time.Duration {
	if t.Infinite() {
		return duration.Infinite
	}
	r := t.budget - t.Elapsed()
	if r < 0 {
		return 0
	}
	return r
}

// IsDone reports whether a finite budget has been used up.
func (t *Tracker) IsDone() bool {
	return !t.Infinite() && t.Remaining() == 0
}

// RemainingDisplay renders the remaining time for an info reply.
func (t *Tracker) RemainingDisplay() string {
	if t.Infinite() {
		return InfiniteDisplay
	}
	return duration.Format(t.Remaining())
}

// Wait blocks until signal delivers a value or the budget of t runs out.
// A closed signal channel or a done context cannot be waited on any longer
// and is reported as Expired so the caller leaves its loop.
func Wait[T any](ctx context.Context, t *Tracker, signal <-chan T) (T, Outcome) {
	var zero T
	for {
		if t.IsDone() {
			return zero, Expired
		}

		var (
			timer   *time.Timer
			timeout <-chan time.Time
		)
		if !t.Infinite() {
			timer = time.NewTimer(t.Remaining())
			timeout = timer.C
		}

		select {
		case v, ok := <-signal:
			stopTimer(timer)
			if !ok {
				return zero, Expired
			}
			return v, Signaled
		case <-ctx.Done():
			stopTimer(timer)
			return zero, Expired
		case <-timeout:
			// re-check the budget
		}
	}
}

func stopTimer(t *time.Timer) {
	if t != nil {
		t.Stop()
	}
}
