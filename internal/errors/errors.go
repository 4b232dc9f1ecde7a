// Package errors defines the error values shared across the dashboard.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors. Surfaces map them to exit messages and HTTP statuses.
var (
	ErrSignalsNotFound   = errors.New("signals file not found")
	ErrSignalsInvalid    = errors.New("signals file is not a JSON object")
	ErrConfigInvalid     = errors.New("invalid configuration")
	ErrDatabaseError     = errors.New("database error")
	ErrStoreUnavailable  = errors.New("visit store unavailable")
	ErrGitUnavailable    = errors.New("git log not available")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrInvalidQuery      = errors.New("invalid query")
)

// InputError reports a signals document that could not be read as a whole.
// Individual bad fields never produce one; they degrade to absent values.
type InputError struct {
	Path   string // empty when parsing bytes
	Reason string
	Err    error
}

func (e *InputError) Error() string {
	where := "signals"
	if e.Path != "" {
		where = e.Path
	}
	if e.Reason == "" {
		return fmt.Sprintf("%s: %v", where, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", where, e.Reason, e.Err)
}

func (e *InputError) Unwrap() error {
	return e.Err
}

// NewInputError creates an InputError wrapping one of the signals sentinels.
func NewInputError(path, reason string, err error) *InputError {
	return &InputError{Path: path, Reason: reason, Err: err}
}

// ValidationError is a rejected configuration value.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s = %v: %s", e.Field, e.Value, e.Message)
}

// Unwrap lets callers match any ValidationError with ErrConfigInvalid.
func (e *ValidationError) Unwrap() error {
	return ErrConfigInvalid
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// Wrap adds context to err. A nil err stays nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf is Wrap with a format string.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
