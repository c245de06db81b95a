package errors

import (
	stdErrors "errors"
	"fmt"
	"time"
)

// RateLimitError is returned when the local request spacing denies a search.
type RateLimitError struct {
	Message    string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s (retry after %s)", e.Message, e.RetryAfter)
	}
	return e.Message
}

// RetryAfterSeconds rounds the remaining wait up to whole seconds for display.
func (e *RateLimitError) RetryAfterSeconds() int {
	secs := e.RetryAfter / time.Second
	if e.RetryAfter%time.Second != 0 {
		secs++
	}
	return int(secs)
}

// NewRateLimitError creates a new RateLimitError with the given message
func NewRateLimitError(message string) *RateLimitError {
	return &RateLimitError{Message: message}
}

// NewRateLimitErrorWithRetry creates a RateLimitError carrying the remaining wait.
func NewRateLimitErrorWithRetry(message string, retryAfter time.Duration) *RateLimitError {
	return &RateLimitError{Message: message, RetryAfter: retryAfter}
}

// IsRateLimitError reports whether err is a local RateLimitError (even when wrapped).
func IsRateLimitError(err error) bool {
	var rlErr *RateLimitError
	return stdErrors.As(err, &rlErr)
}

// UpstreamRateLimitError means the remote catalog answered HTTP 429.
type UpstreamRateLimitError struct {
	Message string
}

func (e *UpstreamRateLimitError) Error() string {
	return e.Message
}

// NewUpstreamRateLimitError creates an UpstreamRateLimitError.
func NewUpstreamRateLimitError(message string) *UpstreamRateLimitError {
	return &UpstreamRateLimitError{Message: message}
}

// IsUpstreamRateLimitError reports whether err is an UpstreamRateLimitError.
func IsUpstreamRateLimitError(err error) bool {
	var upErr *UpstreamRateLimitError
	return stdErrors.As(err, &upErr)
}
