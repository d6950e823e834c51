package directory

import (
	"errors"
	"fmt"
)

// Failure categories surfaced to users. Handlers map each one to a distinct
// visible state; none are retried automatically.
var (
	ErrDataUnavailable  = errors.New("data unavailable")
	ErrValidation       = errors.New("validation failed")
	ErrDuplicateProgram = errors.New("a program with this name or code already exists for this center")
	ErrNotFound         = errors.New("not found")
)

// DataUnavailableError carries the store's raw message for display.
type DataUnavailableError struct {
	Op      string // e.g. "list centers"
	Message string // store or transport message, shown verbatim
	Err     error
}

// Error returns the store's message unchanged.
func (e *DataUnavailableError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return ErrDataUnavailable.Error()
}

// Is reports whether target is ErrDataUnavailable.
func (e *DataUnavailableError) Is(target error) bool {
	return target == ErrDataUnavailable
}

// Unwrap returns the underlying cause.
func (e *DataUnavailableError) Unwrap() error {
	return e.Err
}

// Unavailable wraps a store or transport failure. Nil stays nil, and errors
// that already belong to a category are returned unchanged.
// PRE: op names the failed operation
// POST: returned error satisfies errors.Is(err, ErrDataUnavailable) unless categorised
func Unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrDataUnavailable) || errors.Is(err, ErrDuplicateProgram) ||
		errors.Is(err, ErrNotFound) || errors.Is(err, ErrValidation) {
		return err
	}
	return &DataUnavailableError{Op: op, Message: err.Error(), Err: err}
}

// ValidationError reports a missing or malformed input field.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NotFoundError names the identifier that failed to resolve.
type NotFoundError struct {
	Kind string
	ID   string
}

// Error implements error.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// Is reports whether target is ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
