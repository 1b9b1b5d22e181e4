package database

import (
	"context"
	"time"
)

// WithTimeout applies d to parent unless parent already expires sooner.
// A zero d leaves the parent deadline alone. The cancel func must be called.
func WithTimeout(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(parent)
	}
	if deadline, ok := parent.Deadline(); ok && time.Until(deadline) <= d {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, d)
}
