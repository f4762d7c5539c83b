package retry

import (
	"context"
	"time"
)

// Policy bounds how often a call is repeated after a retryable failure.
// The zero value makes exactly one attempt.
type Policy struct {
	MaxRetries int
	BaseDelay  time.Duration
	// Retryable decides whether an error is worth another attempt.
	// A nil Retryable retries nothing.
	Retryable func(error) bool
}

// Do runs fn until it succeeds, returns a non-retryable error, runs out of
// retries, or ctx is done. The last error from fn is returned.
func (p Policy) Do(ctx context.Context, fn func(context.Context) error) error {
	for attempt := 0; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if attempt >= p.MaxRetries || p.Retryable == nil || !p.Retryable(err) {
			return err
		}
		select {
		case <-ctx.Done():
			return err
		case <-time.After(ExponentialBackoff(attempt, p.BaseDelay)):
		}
	}
}
