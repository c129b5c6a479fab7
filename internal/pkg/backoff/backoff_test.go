package backoff

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosgconsulting/new-cms-sub013/internal/domain"
)

func fastPolicy() Policy {
	return Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
}

func TestRetry_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := fastPolicy().Retry(context.Background(), func() error {
		calls++
		if calls < 3 {
			return &domain.NetworkError{Endpoint: "/products", Err: context.DeadlineExceeded}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetry_NonRetryableStopsImmediately(t *testing.T) {
	calls := 0
	err := fastPolicy().Retry(context.Background(), func() error {
		calls++
		return &domain.AuthError{Reason: "invalid credentials"}
	})

	var authErr *domain.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, 1, calls)
}

func TestRetry_ExhaustsAttempts(t *testing.T) {
	calls := 0
	err := fastPolicy().Retry(context.Background(), func() error {
		calls++
		return &domain.TimeoutError{Endpoint: "/orders"}
	})

	var timeoutErr *domain.TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, 3, calls)
}

func TestRetry_HonorsRetryAfterHint(t *testing.T) {
	calls := 0
	start := time.Now()
	err := fastPolicy().Retry(context.Background(), func() error {
		calls++
		if calls == 1 {
			return &domain.RateLimitError{RetryAfter: 30 * time.Millisecond}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond,
		"the Retry-After hint overrides the exponential schedule")
}

func TestRetry_ContextCancelledDuringWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	policy := Policy{MaxAttempts: 5, BaseDelay: time.Hour}
	errc := make(chan error, 1)
	go func() {
		errc <- policy.Retry(ctx, func() error {
			calls++
			return &domain.NetworkError{Endpoint: "/products", Err: context.Canceled}
		})
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	case <-time.After(time.Second):
		t.Fatal("retry did not observe the cancelled context")
	}
}
