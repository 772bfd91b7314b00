// Package retry provides small bounded retry and polling primitives.
// Every loop here is bounded by attempts or elapsed time and honors
// context cancellation; nothing in this package waits forever.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrDeadline is returned by Poll when the bound elapses before the
// condition reports done.
var ErrDeadline = errors.New("retry: deadline elapsed")

// Policy is a fixed attempts-times-interval retry schedule.
type Policy struct {
	Attempts int
	Interval time.Duration
}

// Do runs fn up to p.Attempts times, sleeping p.Interval between
// attempts. It returns nil on the first success, the last error after
// the final attempt, or the context error if the context is canceled
// mid-schedule.
func (p Policy) Do(ctx context.Context, fn func(context.Context) error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var last error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.Interval):
			}
		}
		if last = fn(ctx); last == nil {
			return nil
		}
	}
	return fmt.Errorf("after %d attempts: %w", attempts, last)
}

// Poll invokes check every interval until it reports done, the total
// bound elapses, or the context is canceled. The elapsed time since the
// first check is passed through so callers can report progress.
func Poll(ctx context.Context, interval, bound time.Duration, check func(ctx context.Context, elapsed time.Duration) (bool, error)) error {
	start := time.Now()
	deadline := time.After(bound)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		done, err := check(ctx, time.Since(start))
		if err != nil {
			return err
		}
		if done {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline:
			return ErrDeadline
		case <-ticker.C:
		}
	}
}
