// Package apperr defines the error taxonomy shared across the service.
package apperr

import (
	"errors"
	"fmt"
)

// ErrNoToken is returned when the current session carries no provider token.
var ErrNoToken = errors.New("no provider token available for session")

// ErrNotFound is returned when a record does not exist or is not visible to
// the requesting user.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when a write collides with a uniqueness
// constraint, e.g. a second sleep record for the same date.
var ErrDuplicate = errors.New("record already exists")

// FetchError wraps any transport or API failure from the source hosting
// provider.
type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("github %s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
