package payments

import "time"

// Status tracks the lifecycle of a payment row. It mirrors the booking's
// PaymentStatus field; the payment row is the ledger entry behind it.
type Status string

const (
	StatusPending  Status = "pending"
	StatusPaid     Status = "paid"
	StatusRefunded Status = "refunded"
)

// Payment is the money side of a booking. One payment per booking; refunds
// update the row rather than adding a second one.
type Payment struct {
	ID            string    `json:"id"`
	BookingID     string    `json:"booking_id"`
	UserID        string    `json:"user_id"`
	AmountCents   int64     `json:"amount_cents"`
	RefundedCents int64     `json:"refunded_cents"`
	Status        Status    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
