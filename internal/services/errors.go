package services

import (
	"fmt"

	"taskmaster/internal/models"
)

// ValidationError reports malformed input. Surfaced to the caller as a
// client error; never retried.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ConflictError reports an invariant violation caused by concurrent state,
// such as starting a focus session while one is already active. It carries
// the existing session so the caller can resume it instead of retrying.
type ConflictError struct {
	Message string
	Session *models.FocusSession
}

func (e *ConflictError) Error() string {
	return e.Message
}

// NotFoundError reports that a referenced record does not exist or is in the
// wrong state for the requested transition. An already-completed session is
// reported the same way as a missing one.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}
