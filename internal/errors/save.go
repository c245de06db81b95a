package errors

import (
	stdErrors "errors"
	"fmt"
)

// ErrNotLoggedIn is returned when a save is attempted without a credential.
var ErrNotLoggedIn = stdErrors.New("not logged in")

// SaveError wraps a failure reported by the save collaborator.
type SaveError struct {
	BookID string
	Err    error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("failed to save book %s: %v", e.BookID, e.Err)
}

func (e *SaveError) Unwrap() error {
	return e.Err
}

// NewSaveError creates a SaveError for bookID.
func NewSaveError(bookID string, err error) *SaveError {
	return &SaveError{BookID: bookID, Err: err}
}

// IsSaveError reports whether err is a SaveError (even when wrapped).
func IsSaveError(err error) bool {
	var saveErr *SaveError
	return stdErrors.As(err, &saveErr)
}
