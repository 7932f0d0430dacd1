package payments

import "errors"

var (
	// ErrNotFound is returned when no payment exists for the booking.
	ErrNotFound = errors.New("payment not found")

	// ErrAlreadyPaid is returned when a booking's payment was already captured.
	ErrAlreadyPaid = errors.New("booking is already paid")

	// ErrNotPaid is returned when refunding a booking that was never paid.
	ErrNotPaid = errors.New("booking has no captured payment")

	// ErrAlreadyRefunded is returned when a payment was already refunded.
	ErrAlreadyRefunded = errors.New("payment is already refunded")

	// ErrInvalidBookingState is returned when the booking's lifecycle state
	// does not permit the payment operation.
	ErrInvalidBookingState = errors.New("booking state does not permit this payment operation")

	// ErrPermissionDenied is returned when the actor may not act on the payment.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrRateLimited is returned when the refund velocity limit is exceeded.
	ErrRateLimited = errors.New("too many refund requests")
)
