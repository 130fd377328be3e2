package services

import (
	"errors"
	"fmt"
	"time"
)

// AuthError reports a failed token acquisition. The cache reverts to the absent state when this
// is returned, so a later acquire retries instead of wedging on a poisoned token.
type AuthError struct {
	Status int
	Body   string
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("token fetch failed: %v", e.Err)
	}
	return fmt.Sprintf("token fetch failed: status %d: %s", e.Status, e.Body)
}

func (e *AuthError) Unwrap() error { return e.Err }

// UpstreamError reports a non-success status or a malformed body from the completion endpoint.
// A malformed body carries Err and a zero Status.
type UpstreamError struct {
	Status int
	Body   string
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upstream request failed: %v", e.Err)
	}
	return fmt.Sprintf("upstream request failed: status %d: %s", e.Status, e.Body)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// UpstreamTimeoutError reports a completion call that exceeded its response deadline.
type UpstreamTimeoutError struct {
	Timeout time.Duration
}

func (e *UpstreamTimeoutError) Error() string {
	return fmt.Sprintf("upstream did not respond within %s", e.Timeout)
}

// IsUpstreamTimeout reports whether err is, or wraps, an UpstreamTimeoutError.
func IsUpstreamTimeout(err error) bool {
	var te *UpstreamTimeoutError
	return errors.As(err, &te)
}
