package groups

import (
	"errors"
	"fmt"
)

var (
	// ErrGroupNotFound is returned when no group has the requested slug or ID
	ErrGroupNotFound = errors.New("group not found")

	// ErrSlugTaken is returned when creating a group with an existing slug
	ErrSlugTaken = errors.New("group slug already taken")
)

// ValidationError represents an input validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) error {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound checks if an error means the group does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, ErrGroupNotFound)
}
