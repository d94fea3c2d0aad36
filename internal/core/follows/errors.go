package follows

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthorNotFound is returned when the author username does not exist
	ErrAuthorNotFound = errors.New("author not found")

	// ErrUnauthorized is returned when an anonymous viewer tries to follow
	ErrUnauthorized = errors.New("authentication required")

	// ErrInvalidOperation is wrapped by every ValidationError
	ErrInvalidOperation = errors.New("invalid operation")
)

// ValidationError represents a validation error with field context
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error (%s): %s", e.Field, e.Message)
}

// Unwrap lets callers match with errors.Is(err, ErrInvalidOperation)
func (e *ValidationError) Unwrap() error {
	return ErrInvalidOperation
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) error {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// IsValidationError checks if error is a validation error
func IsValidationError(err error) bool {
	var valErr *ValidationError
	return errors.As(err, &valErr)
}

// IsNotFound checks if error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrAuthorNotFound)
}
