// Package power holds the operating system assertion that keeps the machine
// from sleeping.
package power

import "errors"

// ErrUnavailable is returned when the platform has no way to prevent sleep.
var ErrUnavailable = errors.New("sleep prevention is not available on this platform")

// Inhibitor prevents the system from sleeping while a worker is active.
type Inhibitor interface {
	// Acquire starts preventing sleep. reason is shown by tools that list
	// active inhibitors where the platform supports it. Calling Acquire on
	// an active Inhibitor is a no-op.
	Acquire(reason string) error

	// Release tells the system that continuous wake is no longer needed.
	// Safe to call multiple times and without a prior Acquire.
	Release()

	// Held reports whether the assertion is currently active.
	Held() bool
}

// New returns a platform-appropriate Inhibitor.
func New() Inhibitor {
	return newInhibitor()
}
