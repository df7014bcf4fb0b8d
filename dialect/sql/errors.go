package sql

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is the sentinel all builder validation failures match.
// It is re-exported by the root supaq package.
var ErrInvalidArgument = errors.New("dialect/sql: invalid argument")

// ValidationError reports a sanitization or validation failure at the builder
// call that introduced the bad input. Construction-time failures never reach
// the database.
type ValidationError struct {
	kind  string // "identifier", "operator", "join type", "direction", ...
	input string
	msg   string
}

// Error returns the error string.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("dialect/sql: invalid %s %q: %s", e.kind, e.input, e.msg)
}

// Is reports whether the target error matches ErrInvalidArgument.
// This allows errors.Is(validationErr, ErrInvalidArgument) to return true.
func (e *ValidationError) Is(err error) bool {
	return err == ErrInvalidArgument
}

// Kind returns what was being validated, e.g. "identifier" or "operator".
func (e *ValidationError) Kind() string {
	return e.kind
}

// Input returns the rejected input.
func (e *ValidationError) Input() string {
	return e.input
}

// NewValidationError returns a new ValidationError for the given input.
func NewValidationError(kind, input, msg string) *ValidationError {
	return &ValidationError{kind: kind, input: input, msg: msg}
}

// IsInvalidArgument returns true if the error is a validation failure.
func IsInvalidArgument(err error) bool {
	if err == nil {
		return false
	}
	var e *ValidationError
	return errors.As(err, &e) || errors.Is(err, ErrInvalidArgument)
}
