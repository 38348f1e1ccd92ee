// Package retry provides the shared retry policy for remote provider calls:
// up to 3 attempts with exponential backoff between 4s and 10s.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// DefaultAttempts is the total number of tries for a provider call.
const DefaultAttempts = 3

// Do runs fn with the shared retry policy, aborting early when ctx is done.
// Errors wrapped with Permanent are returned immediately without further tries.
func Do(ctx context.Context, fn func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 4 * time.Second
	b.MaxInterval = 10 * time.Second
	b.Multiplier = 2
	b.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(b, DefaultAttempts-1), ctx)
	return backoff.Retry(fn, policy)
}

// Permanent marks err as non-retryable.
func Permanent(err error) error {
	return backoff.Permanent(err)
}
