package posts

import (
	"errors"
	"fmt"
)

// Sentinel errors for common post operations
var (
	// ErrNotFound is returned when a post does not exist
	ErrNotFound = errors.New("post not found")

	// ErrUnauthorized is returned when an anonymous viewer tries to write
	ErrUnauthorized = errors.New("authentication required")

	// ErrPermissionDenied is returned when a viewer modifies a post they did not write
	ErrPermissionDenied = errors.New("only the author can modify this post")

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

// Unwrap lets callers match any validation failure with errors.Is(err, ErrInvalidOperation)
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
	return errors.Is(err, ErrNotFound)
}
