package util

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"
)

// StatusErr tags an HTTP status onto an error so RetryPolicy can decide
// retryability, and carries a parsed Retry-After hint when the server sent one.
type StatusErr struct {
	Status     int
	RetryAfter time.Duration
}

func (e *StatusErr) Error() string {
	return fmt.Sprintf("http status %d", e.Status)
}

// RetryPolicy is a small reusable retry helper shared by all adapters:
// bounded attempts, exponential backoff with jitter, and Retry-After honored
// when the server provides one. Transient network errors and 5xx/429 retry;
// other 4xx fail immediately.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

func DefaultRetry() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: 500 * time.Millisecond, MaxDelay: 30 * time.Second}
}

func (p RetryPolicy) Do(ctx context.Context, op func() error) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	base := p.BaseDelay
	if base <= 0 {
		base = 500 * time.Millisecond
	}

	var last error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			delay := base << (attempt - 1)
			if p.MaxDelay > 0 && delay > p.MaxDelay {
				delay = p.MaxDelay
			}
			// jitter so parallel adapters don't hammer in lockstep
			delay += time.Duration(rand.Int63n(int64(delay)/2 + 1))

			var se *StatusErr
			if errors.As(last, &se) && se.RetryAfter > delay {
				delay = se.RetryAfter
			}

			t := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				t.Stop()
				return ctx.Err()
			case <-t.C:
			}
		}

		last = op()
		if last == nil {
			return nil
		}
		if !retryable(last) {
			return last
		}
	}
	return last
}

func retryable(err error) bool {
	var se *StatusErr
	if errors.As(err, &se) {
		return se.Status == 429 || se.Status >= 500
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	// anything else is assumed transient (dial/reset/timeout)
	return true
}

// ParseRetryAfter converts a Retry-After header value (seconds form) into a
// duration; 0 when absent or unparseable.
func ParseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	var secs int
	if _, err := fmt.Sscanf(v, "%d", &secs); err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
