package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/medhive/marketplace-platform/internal/booking"
	"github.com/medhive/marketplace-platform/internal/identity"
	"github.com/medhive/marketplace-platform/pkg/logging"
)

var tracer = otel.Tracer("marketplace.internal.payments")

// BookingLedger is the booking persistence the payment service reads and
// writes PaymentStatus through.
type BookingLedger interface {
	GetByID(ctx context.Context, id string) (*booking.Booking, error)
	Update(ctx context.Context, b *booking.Booking) error
}

// RefundQuoter computes how much a cancellation refunds. Satisfied by the
// booking service.
type RefundQuoter interface {
	CalculateRefundAmount(ctx context.Context, id string) (*booking.RefundQuote, error)
}

// Service owns the payment ledger: capturing payments for bookings and
// executing refunds against the booking engine's quote.
type Service struct {
	repo     Repository
	bookings BookingLedger
	quoter   RefundQuoter
	velocity *VelocityChecker
	logger   *logging.Logger
	clock    func() time.Time
}

// NewService constructs the payment service.
func NewService(repo Repository, bookings BookingLedger, quoter RefundQuoter, logger *logging.Logger) *Service {
	if repo == nil {
		panic("payments: repository required")
	}
	if bookings == nil || quoter == nil {
		panic("payments: booking ledger and refund quoter required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		repo:     repo,
		bookings: bookings,
		quoter:   quoter,
		logger:   logger,
		clock:    time.Now,
	}
}

// WithVelocityChecker attaches a refund rate limiter.
func (s *Service) WithVelocityChecker(v *VelocityChecker) *Service {
	s.velocity = v
	return s
}

// MarkPaid captures the payment for a booking and flips the booking's
// PaymentStatus to paid.
func (s *Service) MarkPaid(ctx context.Context, actor identity.Actor, bookingID string) (*Payment, error) {
	ctx, span := tracer.Start(ctx, "payments.mark_paid")
	defer span.End()

	b, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && actor.ID != b.UserID {
		return nil, ErrPermissionDenied
	}
	switch b.PaymentStatus {
	case booking.PaymentPaid:
		return nil, ErrAlreadyPaid
	case booking.PaymentRefunded:
		return nil, ErrAlreadyRefunded
	}
	if b.Status == booking.StatusCancelled {
		return nil, fmt.Errorf("%w: cannot pay a cancelled booking", ErrInvalidBookingState)
	}

	now := s.clock()
	p := &Payment{
		ID:          uuid.New().String(),
		BookingID:   b.ID,
		UserID:      b.UserID,
		AmountCents: b.AmountCents,
		Status:      StatusPaid,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("payments: record payment: %w", err)
	}

	b.PaymentStatus = booking.PaymentPaid
	b.UpdatedAt = now
	if err := s.bookings.Update(ctx, b); err != nil {
		return nil, fmt.Errorf("payments: flip booking payment status: %w", err)
	}

	span.SetAttributes(attribute.String("payment.id", p.ID), attribute.String("booking.id", b.ID))
	s.logger.Info("payment captured", "payment_id", p.ID, "booking_id", b.ID, "amount_cents", p.AmountCents)
	return p, nil
}

// Refund executes a refund for a cancelled booking. The booking engine
// quotes the amount; the payment row records it and the booking's
// PaymentStatus flips to refunded. Non-admin callers are rate limited.
func (s *Service) Refund(ctx context.Context, actor identity.Actor, bookingID string) (*Payment, error) {
	ctx, span := tracer.Start(ctx, "payments.refund")
	defer span.End()

	b, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && actor.ID != b.UserID {
		return nil, ErrPermissionDenied
	}

	if !actor.IsAdmin() {
		if result := s.velocity.CheckRefund(ctx, actor.ID); !result.Allowed {
			span.SetAttributes(attribute.Bool("velocity.exceeded", true))
			return nil, fmt.Errorf("%w: %d in current window, max %d",
				ErrRateLimited, result.CurrentCount, result.MaxAllowed)
		}
	}

	if b.Status != booking.StatusCancelled {
		return nil, fmt.Errorf("%w: booking is %s, refunds require a cancelled booking", ErrInvalidBookingState, b.Status)
	}

	p, err := s.repo.GetByBookingID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotPaid
		}
		return nil, fmt.Errorf("payments: load payment: %w", err)
	}
	switch p.Status {
	case StatusRefunded:
		return nil, ErrAlreadyRefunded
	case StatusPending:
		return nil, ErrNotPaid
	}

	quote, err := s.quoter.CalculateRefundAmount(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("payments: quote refund: %w", err)
	}

	now := s.clock()
	p.RefundedCents = quote.AmountCents
	p.Status = StatusRefunded
	p.UpdatedAt = now
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("payments: record refund: %w", err)
	}

	b.PaymentStatus = booking.PaymentRefunded
	b.UpdatedAt = now
	if err := s.bookings.Update(ctx, b); err != nil {
		return nil, fmt.Errorf("payments: flip booking payment status: %w", err)
	}

	span.SetAttributes(
		attribute.String("payment.id", p.ID),
		attribute.Int64("refund.amount_cents", p.RefundedCents),
	)
	s.logger.Info("refund executed",
		"payment_id", p.ID, "booking_id", b.ID,
		"refunded_cents", p.RefundedCents, "percent", quote.Percent)
	return p, nil
}

// GetForBooking returns the payment behind a booking the actor may see.
func (s *Service) GetForBooking(ctx context.Context, actor identity.Actor, bookingID string) (*Payment, error) {
	p, err := s.repo.GetByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && actor.ID != p.UserID {
		return nil, ErrPermissionDenied
	}
	return p, nil
}

// ListForUser returns the user's payments.
func (s *Service) ListForUser(ctx context.Context, actor identity.Actor, userID string) ([]*Payment, error) {
	if !actor.IsAdmin() && actor.ID != userID {
		return nil, ErrPermissionDenied
	}
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) loadBooking(ctx context.Context, id string) (*booking.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, booking.ErrNotFound) {
			return nil, fmt.Errorf("%w: booking %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("payments: load booking: %w", err)
	}
	return b, nil
}
