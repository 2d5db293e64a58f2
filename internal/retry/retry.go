// Package retry provides a bounded polling primitive: a predicate is
// evaluated at a fixed interval, up to a fixed number of attempts. It is
// deliberately small; readiness waits elsewhere in smokectl are built on it
// rather than hand-rolling sleep loops.
package retry

import (
	"context"
	"time"
)

// sleepFn is swapped out in tests so polling loops run instantly.
var sleepFn = func(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Poll evaluates predicate up to attempts times, waiting interval between
// evaluations. It returns true as soon as the predicate returns true. It
// returns false when the attempt budget is exhausted or the context is
// cancelled. With attempts <= 0 the predicate is never evaluated and Poll
// returns false.
func Poll(ctx context.Context, attempts int, interval time.Duration, predicate func() bool) bool {
	for i := 0; i < attempts; i++ {
		if predicate() {
			return true
		}
		if i == attempts-1 {
			break
		}
		if err := sleepFn(ctx, interval); err != nil {
			return false
		}
	}
	return false
}
