// Package domain defines core types, interfaces, and errors for the
// metadata propagation engine.
package domain

import "fmt"

// NotFoundError indicates a resource was not found.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// ValidationError indicates invalid input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ConflictError indicates a conflict (e.g., duplicate resource). The
// propagation engine treats conflicts from the link store as success:
// the record was already applied by an earlier run.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// UnavailableError indicates an external collaborator call failed or timed
// out. Lookups that fail this way are treated as "no data" by the engine,
// never as a batch-fatal error.
type UnavailableError struct {
	Message string
	Cause   error
}

func (e *UnavailableError) Error() string { return e.Message }

func (e *UnavailableError) Unwrap() error { return e.Cause }

// InvalidConfidenceError indicates a computed confidence fell outside [0,1].
// This is a scoring-formula bug, not a data problem: callers must abort the
// affected operation rather than clamp the value.
type InvalidConfidenceError struct {
	Confidence float64
}

func (e *InvalidConfidenceError) Error() string {
	return fmt.Sprintf("confidence %.4f outside [0,1]", e.Confidence)
}

// ErrNotFound creates a NotFoundError with a formatted message.
func ErrNotFound(format string, args ...interface{}) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// ErrValidation creates a ValidationError with a formatted message.
func ErrValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ErrConflict creates a ConflictError with a formatted message.
func ErrConflict(format string, args ...interface{}) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// ErrUnavailable wraps an external collaborator failure.
func ErrUnavailable(cause error, format string, args ...interface{}) *UnavailableError {
	return &UnavailableError{Message: fmt.Sprintf(format, args...), Cause: cause}
}
