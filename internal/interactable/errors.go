package interactable

import "fmt"

// ValidationError represents a rejected interactable command. It is
// translated into a failed command response for the requester; it is
// never a system failure.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a validation error with a formatted message.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
