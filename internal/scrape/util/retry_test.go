package util

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry(attempts int) RetryPolicy {
	return RetryPolicy{MaxAttempts: attempts, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
}

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := fastRetry(3).Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return &StatusErr{Status: 503}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryGivesUpAfterMaxAttempts(t *testing.T) {
	calls := 0
	err := fastRetry(3).Do(context.Background(), func() error {
		calls++
		return &StatusErr{Status: 500}
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)

	var se *StatusErr
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 500, se.Status)
}

func TestRetryFailsFastOnClientError(t *testing.T) {
	calls := 0
	err := fastRetry(5).Do(context.Background(), func() error {
		calls++
		return &StatusErr{Status: 404}
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryRetriesRateLimit(t *testing.T) {
	calls := 0
	err := fastRetry(2).Do(context.Background(), func() error {
		calls++
		if calls == 1 {
			return &StatusErr{Status: 429}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestRetryStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := RetryPolicy{MaxAttempts: 5, BaseDelay: 50 * time.Millisecond}.Do(ctx, func() error {
		calls++
		cancel()
		return errors.New("boom")
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestParseRetryAfter(t *testing.T) {
	assert.Equal(t, 30*time.Second, ParseRetryAfter("30"))
	assert.Zero(t, ParseRetryAfter(""))
	assert.Zero(t, ParseRetryAfter("soon"))
	assert.Zero(t, ParseRetryAfter("-5"))
}
