package control

import (
	"math"
	"math/rand"
	"time"
)

const (
	minBusyDelay = 5 * time.Millisecond
	maxBusyDelay = 500 * time.Millisecond
	busyJitter   = 0.25
)

// Backoff spaces out reconnect attempts while a channel is busy, using
// exponential delays with jitter.
type Backoff struct {
	attempt int
}

// Wait blocks for the next delay and returns false if stopped first.
func (b *Backoff) Wait(stopCh <-chan struct{}) bool {
	t := time.NewTimer(b.nextDelay())
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-stopCh:
		return false
	}
}

// Attempts returns how many delays have been handed out.
func (b *Backoff) Attempts() int {
	return b.attempt
}

func (b *Backoff) nextDelay() time.Duration {
	base := float64(minBusyDelay) * math.Pow(2, float64(b.attempt))
	if base > float64(maxBusyDelay) {
		base = float64(maxBusyDelay)
	}

	j := base * busyJitter * (2*rand.Float64() - 1)
	d := time.Duration(base + j)
	if d < minBusyDelay {
		d = minBusyDelay
	}
	if d > maxBusyDelay {
		d = maxBusyDelay
	}

	b.attempt++
	return d
}
