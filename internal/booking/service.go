package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/medhive/marketplace-platform/internal/catalog"
	"github.com/medhive/marketplace-platform/internal/identity"
	"github.com/medhive/marketplace-platform/internal/observability/metrics"
	"github.com/medhive/marketplace-platform/internal/providers"
	"github.com/medhive/marketplace-platform/internal/users"
	"github.com/medhive/marketplace-platform/pkg/logging"
)

var tracer = otel.Tracer("marketplace.internal.booking")

// CatalogReader resolves services referenced by bookings.
type CatalogReader interface {
	GetService(ctx context.Context, id string) (*catalog.Service, error)
}

// ProviderDirectory resolves providers for assignment and availability.
type ProviderDirectory interface {
	GetByID(ctx context.Context, id string) (*providers.Provider, error)
	ListOffering(ctx context.Context, serviceID string) ([]*providers.Provider, error)
}

// UserDirectory resolves customers referenced by bookings.
type UserDirectory interface {
	GetByID(ctx context.Context, id string) (*users.User, error)
}

// Notifier is invoked after successful mutations. Implementations must not
// block the request; errors are logged by the caller and never propagated.
type Notifier interface {
	BookingCreated(ctx context.Context, b *Booking) error
	BookingStatusChanged(ctx context.Context, b *Booking, previous Status) error
	ProviderAssigned(ctx context.Context, b *Booking) error
}

// Service owns the booking lifecycle: state transitions, refund quotes and
// provider availability. It never reads ambient caller state; the acting
// identity is an explicit parameter on every operation.
type Service struct {
	repo      Repository
	catalog   CatalogReader
	providers ProviderDirectory
	users     UserDirectory
	notifier  Notifier
	cache     *AvailabilityCache
	metrics   *metrics.BookingMetrics
	logger    *logging.Logger

	clock          func() time.Time
	loc            *time.Location
	maxAdvanceDays int
}

// NewService constructs the booking service.
func NewService(repo Repository, cat CatalogReader, dir ProviderDirectory, usr UserDirectory, notifier Notifier, logger *logging.Logger) *Service {
	if repo == nil {
		panic("booking: repository required")
	}
	if cat == nil || dir == nil || usr == nil {
		panic("booking: catalog, provider and user collaborators required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		repo:      repo,
		catalog:   cat,
		providers: dir,
		users:     usr,
		notifier:  notifier,
		logger:    logger,
		clock:     time.Now,
		loc:       time.Local,
	}
}

// WithCache attaches an availability result cache.
func (s *Service) WithCache(cache *AvailabilityCache) *Service {
	s.cache = cache
	return s
}

// WithMetrics attaches booking metrics.
func (s *Service) WithMetrics(m *metrics.BookingMetrics) *Service {
	s.metrics = m
	return s
}

// WithMaxAdvanceDays bounds how far ahead bookings may be scheduled.
// Zero means unlimited.
func (s *Service) WithMaxAdvanceDays(days int) *Service {
	s.maxAdvanceDays = days
	return s
}

// Create books a service for a customer. The booking starts pending with
// payment pending; no provider is assigned yet.
func (s *Service) Create(ctx context.Context, actor identity.Actor, req *CreateRequest) (*Booking, error) {
	ctx, span := tracer.Start(ctx, "booking.create")
	defer span.End()

	if err := req.Validate(); err != nil {
		s.metrics.ObserveTransition("create", "invalid")
		return nil, err
	}
	if !actor.IsAdmin() && actor.ID != req.UserID {
		return nil, ErrPermissionDenied
	}

	if _, err := s.users.GetByID(ctx, req.UserID); err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, fmt.Errorf("%w: user %s", ErrNotFound, req.UserID)
		}
		return nil, fmt.Errorf("booking: load user: %w", err)
	}

	svc, err := s.catalog.GetService(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, catalog.ErrServiceNotFound) {
			return nil, fmt.Errorf("%w: service %s", ErrNotFound, req.ServiceID)
		}
		return nil, fmt.Errorf("booking: load service: %w", err)
	}
	if !svc.Active {
		return nil, fmt.Errorf("%w: service %s is not bookable", ErrInvalidArgument, svc.ID)
	}

	if err := s.checkDateInRange(req.ScheduledDate); err != nil {
		return nil, err
	}

	now := s.clock()
	b := &Booking{
		ID:            uuid.New().String(),
		UserID:        req.UserID,
		ServiceID:     svc.ID,
		ScheduledDate: req.ScheduledDate,
		StartMinutes:  req.StartMinutes,
		DurationMins:  svc.DurationMins,
		Status:        StatusPending,
		PaymentStatus: PaymentPending,
		AmountCents:   svc.PriceCents,
		Notes:         req.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("booking: create: %w", err)
	}

	span.SetAttributes(attribute.String("booking.id", b.ID))
	s.metrics.ObserveTransition("create", "ok")
	s.logger.Info("booking created", "booking_id", b.ID, "user_id", b.UserID, "service_id", b.ServiceID)
	s.notify(ctx, func(n Notifier) error { return n.BookingCreated(ctx, b) })
	return b, nil
}

// GetByID loads a booking the actor may see.
func (s *Service) GetByID(ctx context.Context, actor identity.Actor, id string) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanManageBooking(b.UserID, b.ProviderID) {
		return nil, ErrPermissionDenied
	}
	return b, nil
}

// ListForUser returns the customer's bookings.
func (s *Service) ListForUser(ctx context.Context, actor identity.Actor, userID string) ([]*Booking, error) {
	if !actor.IsAdmin() && actor.ID != userID {
		return nil, ErrPermissionDenied
	}
	return s.repo.ListByUser(ctx, userID)
}

// ListForProvider returns the provider's assigned bookings.
func (s *Service) ListForProvider(ctx context.Context, actor identity.Actor, providerID string) ([]*Booking, error) {
	if !actor.IsAdmin() && actor.ID != providerID {
		return nil, ErrPermissionDenied
	}
	return s.repo.ListByProvider(ctx, providerID)
}

// ListByStatus returns every booking in a status, for admin reporting.
func (s *Service) ListByStatus(ctx context.Context, actor identity.Actor, status Status) ([]*Booking, error) {
	if !actor.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidArgument, status)
	}
	return s.repo.ListByStatus(ctx, status)
}

// Accept confirms a pending booking. Re-invoking on an already confirmed
// booking fails; repeated submissions are surfaced, not masked.
func (s *Service) Accept(ctx context.Context, actor identity.Actor, id string) (*Booking, error) {
	return s.transition(ctx, actor, id, "accept", StatusPending, StatusConfirmed, nil)
}

// Reject cancels a pending booking on the provider's behalf. Only pending
// bookings can be rejected; cancelling a confirmed or in-progress booking
// goes through Cancel. The provider reference is cleared so a rejected
// booking never keeps pointing at the provider who declined it.
func (s *Service) Reject(ctx context.Context, actor identity.Actor, id, reason string) (*Booking, error) {
	return s.transition(ctx, actor, id, "reject", StatusPending, StatusCancelled, func(b *Booking) {
		if reason != "" {
			b.appendNote("Rejection reason: " + reason)
		}
		b.ProviderID = ""
	})
}

// StartService marks a confirmed booking as in progress.
func (s *Service) StartService(ctx context.Context, actor identity.Actor, id string) (*Booking, error) {
	return s.transition(ctx, actor, id, "start", StatusConfirmed, StatusInProgress, nil)
}

// CompleteService finishes an in-progress booking.
func (s *Service) CompleteService(ctx context.Context, actor identity.Actor, id, notes string) (*Booking, error) {
	return s.transition(ctx, actor, id, "complete", StatusInProgress, StatusCompleted, func(b *Booking) {
		if notes != "" {
			b.appendNote("Completion notes: " + notes)
		}
	})
}

// Cancel cancels a booking from any non-terminal state. Customer-facing
// deletion is implemented as cancellation; rows are never removed.
func (s *Service) Cancel(ctx context.Context, actor identity.Actor, id string) (*Booking, error) {
	ctx, span := tracer.Start(ctx, "booking.cancel")
	defer span.End()

	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.metrics.ObserveTransition("cancel", "not_found")
		return nil, err
	}
	if !actor.CanManageBooking(b.UserID, b.ProviderID) {
		return nil, ErrPermissionDenied
	}
	if !b.Status.IsCancellable() {
		s.metrics.ObserveTransition("cancel", "rejected")
		return nil, fmt.Errorf("%w: cannot cancel a %s booking", ErrInvalidOperation, b.Status)
	}

	previous := b.Status
	b.Status = StatusCancelled
	b.UpdatedAt = s.clock()
	if err := s.repo.Update(ctx, b); err != nil {
		return nil, fmt.Errorf("booking: save cancel: %w", err)
	}

	span.SetAttributes(attribute.String("booking.id", b.ID))
	s.metrics.ObserveTransition("cancel", "ok")
	s.logger.Info("booking cancelled", "booking_id", b.ID, "previous_status", string(previous), "actor_id", actor.ID)
	s.notify(ctx, func(n Notifier) error { return n.BookingStatusChanged(ctx, b, previous) })
	return b, nil
}

// Reschedule moves a booking to a new slot while its status still permits
// it. The new date must not be in the past.
func (s *Service) Reschedule(ctx context.Context, actor identity.Actor, id string, req *RescheduleRequest) (*Booking, error) {
	ctx, span := tracer.Start(ctx, "booking.reschedule")
	defer span.End()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !(actor.Role == identity.RoleCustomer && actor.ID == b.UserID) {
		return nil, ErrPermissionDenied
	}
	if !b.Status.IsCancellable() {
		s.metrics.ObserveTransition("reschedule", "rejected")
		return nil, fmt.Errorf("%w: cannot reschedule a %s booking", ErrInvalidOperation, b.Status)
	}
	if err := s.checkDateInRange(req.ScheduledDate); err != nil {
		s.metrics.ObserveTransition("reschedule", "invalid")
		return nil, err
	}

	previous := b.Status
	b.ScheduledDate = req.ScheduledDate
	b.StartMinutes = req.StartMinutes
	b.UpdatedAt = s.clock()
	if err := s.repo.Update(ctx, b); err != nil {
		return nil, fmt.Errorf("booking: save reschedule: %w", err)
	}

	span.SetAttributes(attribute.String("booking.id", b.ID))
	s.metrics.ObserveTransition("reschedule", "ok")
	s.logger.Info("booking rescheduled", "booking_id", b.ID, "date", b.ScheduledDate, "start_minutes", b.StartMinutes)
	s.notify(ctx, func(n Notifier) error { return n.BookingStatusChanged(ctx, b, previous) })
	return b, nil
}

// AssignProvider points a booking at a provider. Assignment is decoupled
// from confirmation; the status is left untouched.
func (s *Service) AssignProvider(ctx context.Context, actor identity.Actor, id, providerID string) (*Booking, error) {
	ctx, span := tracer.Start(ctx, "booking.assign_provider")
	defer span.End()

	if !actor.IsAdmin() {
		return nil, ErrPermissionDenied
	}

	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: cannot assign a provider to a %s booking", ErrInvalidOperation, b.Status)
	}

	p, err := s.providers.GetByID(ctx, providerID)
	if err != nil {
		if errors.Is(err, providers.ErrNotFound) {
			return nil, fmt.Errorf("%w: provider %s", ErrNotFound, providerID)
		}
		return nil, fmt.Errorf("booking: load provider: %w", err)
	}

	b.ProviderID = p.ID
	b.UpdatedAt = s.clock()
	if err := s.repo.Update(ctx, b); err != nil {
		return nil, fmt.Errorf("booking: save assignment: %w", err)
	}

	span.SetAttributes(attribute.String("booking.id", b.ID), attribute.String("provider.id", p.ID))
	s.metrics.ObserveTransition("assign", "ok")
	s.logger.Info("provider assigned", "booking_id", b.ID, "provider_id", p.ID)
	s.notify(ctx, func(n Notifier) error { return n.ProviderAssigned(ctx, b) })
	return b, nil
}

// transition applies a guarded status change shared by the provider-side
// operations. Each operation names the single status it may start from;
// reject needs this because the table also allows cancelled from later
// states, which only Cancel may use. Ownership: the assigned provider or
// an admin.
func (s *Service) transition(ctx context.Context, actor identity.Actor, id, operation string, from, target Status, mutate func(*Booking)) (*Booking, error) {
	ctx, span := tracer.Start(ctx, "booking."+operation)
	defer span.End()

	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.metrics.ObserveTransition(operation, "not_found")
		return nil, err
	}
	if !actor.IsAdmin() && !(actor.Role == identity.RoleProvider && actor.ID == b.ProviderID && b.ProviderID != "") {
		return nil, ErrPermissionDenied
	}
	if b.Status != from || !b.Status.CanTransitionTo(target) {
		s.metrics.ObserveTransition(operation, "rejected")
		return nil, newTransitionError(b.Status, target)
	}

	previous := b.Status
	b.Status = target
	if mutate != nil {
		mutate(b)
	}
	b.UpdatedAt = s.clock()
	if err := s.repo.Update(ctx, b); err != nil {
		return nil, fmt.Errorf("booking: save %s: %w", operation, err)
	}

	span.SetAttributes(
		attribute.String("booking.id", b.ID),
		attribute.String("booking.status", string(b.Status)),
	)
	s.metrics.ObserveTransition(operation, "ok")
	s.logger.Info("booking transitioned",
		"booking_id", b.ID, "operation", operation,
		"from", string(previous), "to", string(b.Status))
	s.notify(ctx, func(n Notifier) error { return n.BookingStatusChanged(ctx, b, previous) })
	return b, nil
}

// notify delivers a notification fire-and-forget. A failed email never
// rolls back a committed transition.
func (s *Service) notify(ctx context.Context, fn func(Notifier) error) {
	if s.notifier == nil {
		return
	}
	if err := fn(s.notifier); err != nil {
		s.logger.Error("notification failed", "error", err)
	}
}

// checkDateInRange rejects dates before today and, when a horizon is
// configured, dates too far out.
func (s *Service) checkDateInRange(date string) error {
	day, err := time.ParseInLocation(DateFormat, date, s.loc)
	if err != nil {
		return fmt.Errorf("%w: scheduled date must be YYYY-MM-DD", ErrInvalidArgument)
	}
	now := s.clock().In(s.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
	if day.Before(today) {
		return fmt.Errorf("%w: scheduled date %s is in the past", ErrInvalidArgument, date)
	}
	if s.maxAdvanceDays > 0 && day.After(today.AddDate(0, 0, s.maxAdvanceDays)) {
		return fmt.Errorf("%w: scheduled date %s is more than %d days ahead", ErrInvalidArgument, date, s.maxAdvanceDays)
	}
	return nil
}
