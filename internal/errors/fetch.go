package errors

import (
	stdErrors "errors"
	"fmt"
)

// FetchError represents a non-success HTTP status from the remote catalog.
type FetchError struct {
	Message    string
	StatusCode int
}

func (e *FetchError) Error() string {
	if e.StatusCode == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.StatusCode)
}

// NewFetchError creates a FetchError for the given status code.
func NewFetchError(statusCode int, message string) *FetchError {
	return &FetchError{Message: message, StatusCode: statusCode}
}

// IsFetchError checks if err is a FetchError
func IsFetchError(err error) bool {
	var fetchErr *FetchError
	return stdErrors.As(err, &fetchErr)
}
