package types

import (
	"errors"
	"fmt"
)

var (
	ErrInitiativeNotFound  = errors.New("initiative not found")
	ErrChangemakerNotFound = errors.New("changemaker not found")
	ErrApplicationNotFound = errors.New("application not found")
	ErrJobNotFound         = errors.New("job not found")
	ErrDraftNotFound       = errors.New("draft not found")

	// ErrDuplicate is returned by the store when an insert hits a unique constraint.
	ErrDuplicate = errors.New("record already exists")

	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrChannelClosed      = errors.New("initiative is not accepting this kind of application")
	ErrSessionInvalid     = errors.New("session is no longer valid")
	ErrSubmissionInFlight = errors.New("a submission is already in progress")
	ErrPublishTimeout     = errors.New("publishing is taking longer than expected; it may still complete, check your initiatives before trying again")
)

// ValidationError identifies the offending field of rejected input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
