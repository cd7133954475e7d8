// Package domain defines the core business entities and errors.
package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity or input fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrUnauthorized is returned when an operation is not permitted.
	ErrUnauthorized = errors.New("unauthorized operation")

	// ErrEmptyInput is returned when a submission carries no answer text.
	ErrEmptyInput = fmt.Errorf("%w: input cannot be empty", ErrValidation)

	// ErrInvalidMatchRule is returned when a match rule is structurally malformed
	// (unknown mode, missing pattern). Uncompilable patterns are reported by the
	// match package instead.
	ErrInvalidMatchRule = fmt.Errorf("%w: invalid match rule", ErrValidation)

	// ErrEmptyAnswers is returned when a question has no valid answers.
	ErrEmptyAnswers = fmt.Errorf("%w: question must have at least one valid answer", ErrValidation)

	// ErrInvalidProgress is returned when a progress record breaks its counter invariants.
	ErrInvalidProgress = fmt.Errorf("%w: invalid progress record", ErrValidation)
)

// ValidationError describes which field of an input failed validation.
// It always matches ErrValidation with errors.Is.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError creates a ValidationError. If err is nil, ErrValidation is wrapped.
func NewValidationError(field, message string, err error) *ValidationError {
	if err == nil {
		err = ErrValidation
	}
	return &ValidationError{
		Field:   field,
		Message: message,
		Err:     err,
	}
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Field, e.Message, e.Err)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Is reports every ValidationError as an ErrValidation, whatever it wraps.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
