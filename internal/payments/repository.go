package payments

import (
	"context"
	"sync"
)

// Repository defines payment storage. Payments are keyed by booking; a
// booking has at most one payment row.
type Repository interface {
	Create(ctx context.Context, p *Payment) error
	GetByBookingID(ctx context.Context, bookingID string) (*Payment, error)
	Update(ctx context.Context, p *Payment) error
	ListByUser(ctx context.Context, userID string) ([]*Payment, error)
}

// InMemoryRepository keeps payments in memory for tests.
type InMemoryRepository struct {
	mu       sync.RWMutex
	payments map[string]*Payment // keyed by booking id
}

// NewInMemoryRepository creates an empty in-memory store.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{payments: make(map[string]*Payment)}
}

// Create stores a new payment.
func (r *InMemoryRepository) Create(ctx context.Context, p *Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.payments[p.BookingID] = &cp
	return nil
}

// GetByBookingID retrieves the payment for a booking.
func (r *InMemoryRepository) GetByBookingID(ctx context.Context, bookingID string) (*Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.payments[bookingID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

// Update replaces the stored payment.
func (r *InMemoryRepository) Update(ctx context.Context, p *Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.payments[p.BookingID]; !ok {
		return ErrNotFound
	}
	cp := *p
	r.payments[p.BookingID] = &cp
	return nil
}

// ListByUser returns the user's payments.
func (r *InMemoryRepository) ListByUser(ctx context.Context, userID string) ([]*Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Payment
	for _, p := range r.payments {
		if p.UserID == userID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}
