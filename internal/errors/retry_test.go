package errors

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry(maxRetries int) RetryConfig {
	return RetryConfig{
		MaxRetries:   maxRetries,
		InitialDelay: time.Millisecond,
		MaxDelay:     2 * time.Millisecond,
		Multiplier:   2,
	}
}

func TestDefaultRetryConfig(t *testing.T) {
	cfg := DefaultRetryConfig()

	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, time.Second, cfg.InitialDelay)
	assert.Equal(t, 16*time.Second, cfg.MaxDelay)
	assert.Equal(t, 2.0, cfg.Multiplier)
	assert.Nil(t, cfg.ShouldRetry)
}

func TestRetry_SucceedsAfterFailures(t *testing.T) {
	// Given: a function failing twice
	calls := 0
	fn := func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}

	// When: retrying up to 3 times
	err := Retry(context.Background(), fastRetry(3), fn)

	// Then: it succeeds on the third attempt
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetry_ExhaustsAttempts(t *testing.T) {
	calls := 0
	sentinel := errors.New("still down")

	err := Retry(context.Background(), fastRetry(2), func() error {
		calls++
		return sentinel
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls, "initial attempt plus two retries")
	assert.ErrorIs(t, err, sentinel)
	assert.Contains(t, err.Error(), "failed after 2 retries")
}

func TestRetry_ZeroRetries_ReturnsErrorUnwrapped(t *testing.T) {
	sentinel := errors.New("once")

	err := Retry(context.Background(), fastRetry(0), func() error { return sentinel })

	assert.Same(t, sentinel, err)
}

func TestRetry_ShouldRetryStopsEarly(t *testing.T) {
	// Given: a policy that only retries retryable StoreErrors
	cfg := fastRetry(3)
	cfg.ShouldRetry = IsRetryable
	calls := 0
	notFound := New(ErrCodeOrderNotFound, "no such order", nil)

	// When: the function fails permanently
	err := Retry(context.Background(), cfg, func() error {
		calls++
		return notFound
	})

	// Then: there is exactly one attempt and the error is returned as is
	assert.Equal(t, 1, calls)
	assert.Same(t, notFound, err)
}

func TestRetry_ShouldRetryAllowsRetryable(t *testing.T) {
	cfg := fastRetry(1)
	cfg.ShouldRetry = IsRetryable
	calls := 0

	err := Retry(context.Background(), cfg, func() error {
		calls++
		return New(ErrCodeUpstreamUnavailable, "HTTP 503", nil)
	})

	assert.Equal(t, 2, calls)
	assert.True(t, IsRetryable(err))
}

func TestRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0

	err := Retry(ctx, fastRetry(3), func() error {
		calls++
		return nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}

func TestRetry_CancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := RetryConfig{MaxRetries: 3, InitialDelay: time.Hour, MaxDelay: time.Hour, Multiplier: 1}

	err := Retry(ctx, cfg, func() error {
		cancel()
		return errors.New("fail")
	})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestRetryWithResult(t *testing.T) {
	calls := 0

	got, err := RetryWithResult(context.Background(), fastRetry(2), func() (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("first fails")
		}
		return "order #1001", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "order #1001", got)
}

func TestRetryWithResult_FailureReturnsZero(t *testing.T) {
	got, err := RetryWithResult(context.Background(), fastRetry(1), func() (int, error) {
		return 42, errors.New("nope")
	})

	assert.Error(t, err)
	assert.Zero(t, got)
}

func TestRetry_Jitter(t *testing.T) {
	cfg := fastRetry(2)
	cfg.Jitter = true
	calls := 0

	err := Retry(context.Background(), cfg, func() error {
		calls++
		if calls < 3 {
			return errors.New("again")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}
