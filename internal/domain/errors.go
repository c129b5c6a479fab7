package domain

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors that abort a sync run before any page is fetched.
var (
	ErrIntegrationNotConfigured = errors.New("integration not configured for tenant")
	ErrIntegrationInactive      = errors.New("integration is disabled for tenant")
)

// ConfigurationError indicates invalid or missing client construction arguments.
// It is always fatal and raised before any request is made.
type ConfigurationError struct {
	Field string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s is required", e.Field)
}

// AuthError indicates the upstream store rejected our credentials (401) or
// the credentials lack the required permissions (403). Fatal to the run:
// no further page will succeed with the same credentials.
type AuthError struct {
	Status int
	Reason string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed (HTTP %d): %s", e.Status, e.Reason)
}

// RateLimitError carries the upstream Retry-After hint for a 429 response.
// Non-fatal; the caller decides whether and when to retry.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited by upstream, retry after %s", e.RetryAfter)
}

// TimeoutError indicates the request exceeded its deadline.
type TimeoutError struct {
	Endpoint string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request to %s timed out", e.Endpoint)
}

// NetworkError indicates a transport-level failure (DNS, connection refused).
type NetworkError struct {
	Endpoint string
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error calling %s: %v", e.Endpoint, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// UpstreamError is any unexpected non-2xx response. Fatal to the single
// request that produced it, never to the whole run.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream error (HTTP %d): %s", e.Status, e.Message)
}

// MappingError indicates a malformed upstream record. Item-scoped.
type MappingError struct {
	ExternalID string
	Reason     string
}

func (e *MappingError) Error() string {
	return fmt.Sprintf("cannot map upstream record %q: %s", e.ExternalID, e.Reason)
}

// PersistenceError wraps a storage conflict or violation. Item-scoped.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// IsFatal reports whether an error must abort the whole sync run rather than
// being counted at the item boundary.
func IsFatal(err error) bool {
	var authErr *AuthError
	var confErr *ConfigurationError
	return errors.As(err, &authErr) ||
		errors.As(err, &confErr) ||
		errors.Is(err, ErrIntegrationNotConfigured) ||
		errors.Is(err, ErrIntegrationInactive)
}

// IsRetryable reports whether a transport error is worth retrying with backoff.
func IsRetryable(err error) bool {
	var rateErr *RateLimitError
	var timeoutErr *TimeoutError
	var netErr *NetworkError
	return errors.As(err, &rateErr) || errors.As(err, &timeoutErr) || errors.As(err, &netErr)
}
