package booking

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a referenced booking does not exist.
	ErrNotFound = errors.New("booking not found")

	// ErrInvalidArgument is returned when a supplied value violates a
	// precondition, such as a scheduled date in the past.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidOperation is returned when the action is not permitted in
	// the booking's current state, such as cancelling a completed booking.
	ErrInvalidOperation = errors.New("operation not permitted in current state")

	// ErrInvalidTransition is the errors.Is target for transition failures.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrPermissionDenied is returned when the caller may not act on the
	// booking.
	ErrPermissionDenied = errors.New("permission denied")
)

// InvalidTransitionError reports an illegal state change, naming the
// current and attempted status for diagnosability.
type InvalidTransitionError struct {
	Current   Status
	Attempted Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition booking from %s to %s", e.Current, e.Attempted)
}

// Is lets errors.Is(err, ErrInvalidTransition) match.
func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

func newTransitionError(current, attempted Status) error {
	return &InvalidTransitionError{Current: current, Attempted: attempted}
}
