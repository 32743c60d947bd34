package reliability

import (
	"context"
	"time"
)

// ExponentialBackoff computes a deterministic capped backoff duration.
func ExponentialBackoff(attempt int, base, cap time.Duration) time.Duration {
	if attempt <= 0 {
		return base
	}
	d := base
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= cap {
			return cap
		}
	}
	return d
}

// Do runs fn up to maxAttempts times, sleeping a capped exponential backoff
// between attempts. fn's second return reports whether the failure is worth
// retrying; permanent errors abort immediately. Chat pipeline remote calls
// are single-attempt and must not go through this; it exists for startup
// concerns like waiting out a database that is still coming up.
func Do(ctx context.Context, maxAttempts int, base, cap time.Duration, fn func() (error, bool)) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(ExponentialBackoff(attempt-1, base, cap)):
			}
		}
		err, retryable := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !retryable {
			return err
		}
	}
	return lastErr
}
