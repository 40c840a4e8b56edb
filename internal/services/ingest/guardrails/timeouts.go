// Package guardrails holds per stage time budgets for an ingest run
package guardrails

import (
	"context"
	"time"
)

// Timeouts is an optional budget bundle for one run.
// Zero values mean no extra timeout at that level
type Timeouts struct {
	// Run is the overall budget for all sources
	Run time.Duration

	// Fetch caps a single artifact download
	Fetch time.Duration

	// Persist caps writing the result set to every sink
	Persist time.Duration
}

// ForRun returns a context limited by the run budget
func ForRun(parent context.Context, t Timeouts) (context.Context, context.CancelFunc) {
	return withChildTimeout(parent, t.Run)
}

// ForFetch returns a sub context for one fetch, bounded by Fetch and any remaining parent budget
func ForFetch(parent context.Context, t Timeouts) (context.Context, context.CancelFunc) {
	return withChildTimeout(parent, t.Fetch)
}

// ForPersist returns a sub context for the persistence phase
func ForPersist(parent context.Context, t Timeouts) (context.Context, context.CancelFunc) {
	return withChildTimeout(parent, t.Persist)
}

// Remaining returns the time until the deadline on ctx or zero when none is set or already expired
func Remaining(ctx context.Context) time.Duration {
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d > 0 {
			return d
		}
	}
	return 0
}

// withChildTimeout never extends the parent deadline; zero d inherits it
func withChildTimeout(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(parent)
	}
	if rem := Remaining(parent); rem > 0 && rem < d {
		return context.WithTimeout(parent, rem)
	}
	return context.WithTimeout(parent, d)
}
