package workflow

import (
	"errors"
	"fmt"
)

// Domain error kinds. Callers wrap them with context and test with errors.Is.
var (
	ErrValidation        = errors.New("validation failed")
	ErrAuthentication    = errors.New("authentication required")
	ErrAuthorization     = errors.New("not authorized")
	ErrNotFound          = errors.New("not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrIntegration       = errors.New("integration failure")
	ErrConflict          = errors.New("concurrent update")
)

// ErrMeetingNotFound is returned by a MeetingLinkProvider when the remote
// meeting no longer exists.
var ErrMeetingNotFound = errors.New("remote meeting not found")

// TransitionError represents an invalid state transition.
type TransitionError struct {
	Entity string
	From   string
	To     string
	Reason string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid %s transition from %s to %s: %s", e.Entity, e.From, e.To, e.Reason)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
