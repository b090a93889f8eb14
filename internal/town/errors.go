package town

import (
	"errors"
	"fmt"
)

var (
	ErrTownFull       = errors.New("town is at capacity")
	ErrPlayerNotFound = errors.New("player not found")
	ErrPetNotFound    = errors.New("pet not found")
	ErrPetExists      = errors.New("player already has a pet")
)

// EventError marks a client event that was rejected rather than
// failed: the session logs it and keeps the connection alive.
type EventError struct {
	Message string
}

func NewEventError(format string, args ...any) *EventError {
	return &EventError{Message: fmt.Sprintf(format, args...)}
}

func (e *EventError) Error() string {
	return e.Message
}
