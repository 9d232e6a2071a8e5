package errors

import (
	"errors"
	"fmt"
	"os"

	"github.com/julianstephens/stride/internal/logger"
)

var (
	// ErrValidation marks input that was rejected before anything was written
	ErrValidation = errors.New("validation failed")
	// ErrConflict marks a request that is valid but not allowed in the current state
	ErrConflict = errors.New("state conflict")
	// ErrNotFound marks a missing entity
	ErrNotFound = errors.New("not found")
)

// ValidationError describes a rejected field with a message fit for display.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// StateError describes a request blocked by the current state of an entity.
type StateError struct {
	Message string
}

func (e *StateError) Error() string {
	return e.Message
}

func (e *StateError) Unwrap() error {
	return ErrConflict
}

// Invalid returns a ValidationError for the given field.
func Invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Conflict returns a StateError with the given message.
func Conflict(format string, args ...interface{}) error {
	return &StateError{Message: fmt.Sprintf(format, args...)}
}

// NotFound wraps ErrNotFound with the kind and id of the missing entity.
func NotFound(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
}

func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }
func IsConflict(err error) bool   { return errors.Is(err, ErrConflict) }
func IsNotFound(err error) bool   { return errors.Is(err, ErrNotFound) }

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
