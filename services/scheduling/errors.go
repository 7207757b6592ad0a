package scheduling

import (
	"errors"
	"fmt"
)

// Engine error taxonomy. All of these are local and recoverable: the caller
// gets enough detail to retry with different input, and no partial writes
// occur on any rejected path.
var (
	ErrInvalidRequest      = errors.New("invalid request")
	ErrNotFound            = errors.New("not found")
	ErrForbidden           = errors.New("forbidden")
	ErrClosed              = errors.New("no working hours for the requested employee and date")
	ErrTooLateToCancel     = errors.New("too late to cancel")
	ErrTooLateToReschedule = errors.New("too late to reschedule")
	ErrAlreadyCancelled    = errors.New("appointment already cancelled")
)

// ConflictError reports the first employee whose timeline overlaps the
// proposed allocation.
type ConflictError struct {
	EmployeeID string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("schedule conflict for employee %s", e.EmployeeID)
}

// invalidRequest wraps ErrInvalidRequest with a caller-facing reason.
func invalidRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}
