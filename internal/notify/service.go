package notify

import (
	"context"
	"fmt"

	"github.com/medhive/marketplace-platform/internal/booking"
	"github.com/medhive/marketplace-platform/internal/providers"
	"github.com/medhive/marketplace-platform/internal/users"
	"github.com/medhive/marketplace-platform/pkg/logging"
)

// UserDirectory resolves notification recipients.
type UserDirectory interface {
	GetByID(ctx context.Context, id string) (*users.User, error)
}

// ProviderDirectory resolves the provider side of a booking.
type ProviderDirectory interface {
	GetByID(ctx context.Context, id string) (*providers.Provider, error)
}

// Service sends booking lifecycle emails. It satisfies the booking engine's
// Notifier; callers treat every error as log-and-continue.
type Service struct {
	email     EmailSender
	users     UserDirectory
	providers ProviderDirectory
	logger    *logging.Logger
}

// NewService creates a notification service. A nil sender disables email
// without disabling the call sites.
func NewService(email EmailSender, usr UserDirectory, dir ProviderDirectory, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{email: email, users: usr, providers: dir, logger: logger}
}

// BookingCreated emails the customer a booking confirmation.
func (s *Service) BookingCreated(ctx context.Context, b *booking.Booking) error {
	u, err := s.recipient(ctx, b.UserID)
	if err != nil {
		return err
	}
	return s.send(ctx, EmailMessage{
		To:      u.Email,
		ToName:  u.Name,
		Subject: "Your booking request was received",
		Body: fmt.Sprintf(
			"Hi %s,\n\nWe received your booking for %s at %s. "+
				"You will get another email once a provider confirms it.\n\nBooking reference: %s\n",
			u.Name, b.ScheduledDate, formatMinutes(b.StartMinutes), b.ID),
	})
}

// BookingStatusChanged emails the customer about a lifecycle transition.
func (s *Service) BookingStatusChanged(ctx context.Context, b *booking.Booking, previous booking.Status) error {
	u, err := s.recipient(ctx, b.UserID)
	if err != nil {
		return err
	}
	return s.send(ctx, EmailMessage{
		To:      u.Email,
		ToName:  u.Name,
		Subject: fmt.Sprintf("Your booking is now %s", statusLabel(b.Status)),
		Body: fmt.Sprintf(
			"Hi %s,\n\nYour booking on %s at %s changed from %s to %s.\n\nBooking reference: %s\n",
			u.Name, b.ScheduledDate, formatMinutes(b.StartMinutes),
			statusLabel(previous), statusLabel(b.Status), b.ID),
	})
}

// ProviderAssigned emails the assigned provider about the new booking.
func (s *Service) ProviderAssigned(ctx context.Context, b *booking.Booking) error {
	if s.providers == nil || b.ProviderID == "" {
		return nil
	}
	p, err := s.providers.GetByID(ctx, b.ProviderID)
	if err != nil {
		return fmt.Errorf("notify: load provider %s: %w", b.ProviderID, err)
	}
	if p.Email == "" {
		s.logger.Debug("provider has no email, skipping assignment notice", "provider_id", p.ID)
		return nil
	}
	return s.send(ctx, EmailMessage{
		To:      p.Email,
		ToName:  p.Name,
		Subject: "New booking assigned to you",
		Body: fmt.Sprintf(
			"Hi %s,\n\nA booking on %s at %s has been assigned to you. "+
				"Please accept or decline it in your dashboard.\n\nBooking reference: %s\n",
			p.Name, b.ScheduledDate, formatMinutes(b.StartMinutes), b.ID),
	})
}

func (s *Service) recipient(ctx context.Context, userID string) (*users.User, error) {
	if s.users == nil {
		return nil, fmt.Errorf("notify: user directory not configured")
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("notify: load user %s: %w", userID, err)
	}
	return u, nil
}

func (s *Service) send(ctx context.Context, msg EmailMessage) error {
	if s.email == nil {
		s.logger.Debug("email sender not configured, dropping notification", "to", msg.To, "subject", msg.Subject)
		return nil
	}
	return s.email.Send(ctx, msg)
}

// formatMinutes renders minutes from midnight as HH:MM.
func formatMinutes(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

func statusLabel(s booking.Status) string {
	switch s {
	case booking.StatusInProgress:
		return "in progress"
	default:
		return string(s)
	}
}

var _ booking.Notifier = (*Service)(nil)
