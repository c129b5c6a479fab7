// Package backoff provides the retry policy shared by the REST client and
// the sync orchestrator: bounded attempts, exponential delay with jitter,
// honoring upstream Retry-After hints and context cancellation.
package backoff

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/gosgconsulting/new-cms-sub013/internal/domain"
)

// Policy configures retry behavior for retryable transport errors.
type Policy struct {
	// MaxAttempts is the total number of tries, including the first one.
	MaxAttempts int
	// BaseDelay seeds the exponential schedule: base, 2*base, 4*base, ...
	BaseDelay time.Duration
	// MaxDelay caps a single computed wait.
	MaxDelay time.Duration
	// Jitter adds up to this fraction of the delay as random noise.
	Jitter float64
}

// Default is the policy used against WooCommerce stores.
func Default() Policy {
	return Policy{
		MaxAttempts: 4,
		BaseDelay:   time.Second,
		MaxDelay:    2 * time.Minute,
		Jitter:      0.2,
	}
}

// Retry runs op until it succeeds, returns a non-retryable error, exhausts
// MaxAttempts, or the context is cancelled. A RateLimitError's Retry-After
// overrides the exponential schedule for that attempt.
func (p Policy) Retry(ctx context.Context, op func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = op(); err == nil {
			return nil
		}
		if !domain.IsRetryable(err) || attempt == attempts {
			return err
		}
		if waitErr := p.wait(ctx, attempt, err); waitErr != nil {
			return waitErr
		}
	}
	return err
}

func (p Policy) wait(ctx context.Context, attempt int, cause error) error {
	delay := p.delayFor(attempt, cause)
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (p Policy) delayFor(attempt int, cause error) time.Duration {
	var rateErr *domain.RateLimitError
	if errors.As(cause, &rateErr) && rateErr.RetryAfter > 0 {
		return rateErr.RetryAfter
	}

	base := p.BaseDelay
	if base <= 0 {
		base = time.Second
	}
	delay := base << uint(attempt-1)
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	if p.Jitter > 0 {
		delay += time.Duration(rand.Float64() * p.Jitter * float64(delay))
	}
	return delay
}
