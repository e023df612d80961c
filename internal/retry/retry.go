// Package retry provides a fixed-interval retry policy. Delivery paths that
// must survive broker or network outages share one policy object so the
// backoff behavior is testable and swappable for a bounded variant.
package retry

import (
	"context"
	"time"

	"aurora-pvlogd/internal/errors"
)

// Policy describes how often and how many times an operation is retried.
// MaxAttempts of 0 means unbounded.
type Policy struct {
	MaxAttempts int
	Interval    time.Duration
}

// Unbounded returns a policy that retries forever at the given interval.
func Unbounded(interval time.Duration) Policy {
	return Policy{MaxAttempts: 0, Interval: interval}
}

// Bounded returns a policy that gives up after maxAttempts tries.
func Bounded(maxAttempts int, interval time.Duration) Policy {
	return Policy{MaxAttempts: maxAttempts, Interval: interval}
}

// Do runs op until it succeeds, the policy is exhausted, or ctx is
// cancelled. The interval elapses between attempts, not before the first.
func (p Policy) Do(ctx context.Context, op func() error) error {
	errFactory := errors.New()

	var lastErr error
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return errFactory.Wrap(errors.ErrTimeout, err)
		}

		lastErr = op()
		if lastErr == nil {
			return nil
		}

		if p.MaxAttempts > 0 && attempt >= p.MaxAttempts {
			return errFactory.Wrap(errors.ErrRetryExhausted, lastErr)
		}

		select {
		case <-ctx.Done():
			return errFactory.Wrap(errors.ErrTimeout, ctx.Err())
		case <-time.After(p.Interval):
		}
	}
}
