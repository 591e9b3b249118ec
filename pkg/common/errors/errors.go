package errors

import (
	"errors"
	"fmt"
	"io"
)

// Common error types used across the rwflow library

var (
	// ErrClosed indicates that an operation was attempted on a closed resource
	ErrClosed = errors.New("resource is closed")

	// ErrInvalidConfiguration indicates invalid configuration parameters
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrAlreadyClaimed indicates that a single-ownership handle was claimed twice
	ErrAlreadyClaimed = errors.New("handle already claimed")

	// ErrNotStarted indicates that a lifecycle step was skipped
	ErrNotStarted = errors.New("not started")

	// ErrTransform indicates that a cipher or codec rejected the data
	ErrTransform = errors.New("transform failed")

	// ErrShortWrite indicates that a writer accepted fewer bytes than supplied.
	// It is io.ErrShortWrite so either name matches with errors.Is.
	ErrShortWrite = io.ErrShortWrite
)

// ValidationError describes a configuration value that was rejected.
type ValidationError struct {
	Module string
	Field  string
	Value  interface{}
	Reason string
	Hint   string
}

// NewValidationError creates a ValidationError without a hint.
func NewValidationError(module, field string, value interface{}, reason string) *ValidationError {
	return &ValidationError{
		Module: module,
		Field:  field,
		Value:  value,
		Reason: reason,
	}
}

// WithHint attaches a remediation hint and returns the same instance.
func (e *ValidationError) WithHint(hint string) *ValidationError {
	e.Hint = hint
	return e
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("%s: invalid %s=%v (%s)", e.Module, e.Field, e.Value, e.Reason)
	if e.Hint != "" {
		msg += " - " + e.Hint
	}
	return msg
}

// Unwrap returns ErrInvalidConfiguration.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidConfiguration
}

// OperationError describes a failed operation together with its cause.
// Construction failures (open, spawn, dial) are reported with this type.
type OperationError struct {
	Module    string
	Operation string
	Cause     error
	Context   string
}

// NewOperationError creates an OperationError.
func NewOperationError(module, operation string, cause error) *OperationError {
	return &OperationError{
		Module:    module,
		Operation: operation,
		Cause:     cause,
	}
}

// WithContext attaches additional context and returns the same instance.
func (e *OperationError) WithContext(context string) *OperationError {
	e.Context = context
	return e
}

func (e *OperationError) Error() string {
	msg := fmt.Sprintf("%s.%s failed: %v", e.Module, e.Operation, e.Cause)
	if e.Context != "" {
		msg += " (" + e.Context + ")"
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *OperationError) Unwrap() error {
	return e.Cause
}

// IsLifecycle returns true if the error reports a handle claimed more than
// once or a lifecycle step taken out of order
func IsLifecycle(err error) bool {
	return errors.Is(err, ErrAlreadyClaimed) || errors.Is(err, ErrNotStarted)
}

// IsTransform returns true if a cipher or codec rejected the data
func IsTransform(err error) bool {
	return errors.Is(err, ErrTransform)
}

// IsShortWrite returns true if a writer accepted fewer bytes than supplied
func IsShortWrite(err error) bool {
	return errors.Is(err, ErrShortWrite)
}

// IsValidationError returns true if err is or wraps a ValidationError
func IsValidationError(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}

// IsOperationError returns true if err is or wraps an OperationError
func IsOperationError(err error) bool {
	var oerr *OperationError
	return errors.As(err, &oerr)
}
