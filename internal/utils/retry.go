package utils

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"
)

// Backoff returns the wait before retry number attempt (1-based): base, 2*base, 4*base, ...
// capped at limit when limit is positive.
func Backoff(attempt uint, base, limit time.Duration) time.Duration {
	if attempt == 0 || base <= 0 {
		return 0
	}
	delay := base
	for i := uint(1); i < attempt; i++ {
		delay *= 2
		if limit > 0 && delay >= limit {
			return limit
		}
	}
	if limit > 0 && delay > limit {
		return limit
	}
	return delay
}

// BackoffOptions returns retry options using Backoff as the delay schedule.
// Only errors accepted by retryIf are retried; the last error is returned on exhaustion.
func BackoffOptions(ctx context.Context, attempts uint, base, maxDelay time.Duration, retryIf func(error) bool) []retry.Option {
	return []retry.Option{
		retry.Attempts(attempts),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.DelayType(func(n uint, _ error, _ *retry.Config) time.Duration {
			// n is the 1-based number of the upcoming retry
			return Backoff(max(n, 1), base, maxDelay)
		}),
		retry.RetryIf(func(err error) bool {
			return retryIf == nil || retryIf(err)
		}),
	}
}
