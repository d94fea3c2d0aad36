package feeds

import (
	"errors"
	"fmt"
)

var (
	// ErrGroupNotFound is returned when the group slug does not exist
	ErrGroupNotFound = errors.New("group not found")

	// ErrAuthorNotFound is returned when the profile username does not exist
	ErrAuthorNotFound = errors.New("author not found")

	// ErrUnauthorized is returned when an anonymous viewer asks for the follow feed
	ErrUnauthorized = errors.New("authentication required")
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

// IsNotFound checks if the feed's subject does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, ErrGroupNotFound) || errors.Is(err, ErrAuthorNotFound)
}
