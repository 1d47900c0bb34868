// Package opcontrol tracks whether the in-flight batch operation has been
// asked to stop. Like vaultstate, it is an explicit struct rather than a
// package-level variable, so the host interface owns exactly one instance
// and tests can run independent operations concurrently.
package opcontrol

import "sync/atomic"

// Flag is a single cancellation switch shared between the goroutine running
// a batch operation and whatever asked it to stop.
type Flag struct {
	cancelled atomic.Bool
}

// New returns a Flag that is not cancelled.
func New() *Flag {
	return &Flag{}
}

// RequestCancel asks the in-flight operation to stop at its next checkpoint.
func (f *Flag) RequestCancel() {
	f.cancelled.Store(true)
}

// Reset clears any prior cancellation. Called at the start of every batch
// operation so a cancellation from a previous run can't bleed into the next.
func (f *Flag) Reset() {
	f.cancelled.Store(false)
}

// IsCancelled reports whether RequestCancel has been called since the last
// Reset.
func (f *Flag) IsCancelled() bool {
	return f.cancelled.Load()
}
