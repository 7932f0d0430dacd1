package booking

import (
	"context"
	"sync"
)

// Repository defines booking persistence. Each lifecycle operation is a
// single load, in-memory mutation and save; the store provides atomicity
// for that read-modify-write sequence.
type Repository interface {
	Create(ctx context.Context, b *Booking) error
	GetByID(ctx context.Context, id string) (*Booking, error)
	Update(ctx context.Context, b *Booking) error
	ListByUser(ctx context.Context, userID string) ([]*Booking, error)
	ListByProvider(ctx context.Context, providerID string) ([]*Booking, error)
	ListByProviderAndDate(ctx context.Context, providerID, date string) ([]*Booking, error)
	ListByStatus(ctx context.Context, status Status) ([]*Booking, error)
}

// InMemoryRepository keeps bookings in memory, used in tests and local
// development.
type InMemoryRepository struct {
	mu       sync.RWMutex
	bookings map[string]*Booking
}

// NewInMemoryRepository creates an empty in-memory store.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{bookings: make(map[string]*Booking)}
}

// Create stores a new booking.
func (r *InMemoryRepository) Create(ctx context.Context, b *Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *b
	r.bookings[b.ID] = &cp
	return nil
}

// GetByID retrieves a booking by ID.
func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *b
	return &cp, nil
}

// Update replaces the stored booking.
func (r *InMemoryRepository) Update(ctx context.Context, b *Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.bookings[b.ID]; !ok {
		return ErrNotFound
	}
	cp := *b
	r.bookings[b.ID] = &cp
	return nil
}

// ListByUser returns the user's bookings.
func (r *InMemoryRepository) ListByUser(ctx context.Context, userID string) ([]*Booking, error) {
	return r.filter(func(b *Booking) bool { return b.UserID == userID }), nil
}

// ListByProvider returns the provider's bookings.
func (r *InMemoryRepository) ListByProvider(ctx context.Context, providerID string) ([]*Booking, error) {
	return r.filter(func(b *Booking) bool { return b.ProviderID == providerID }), nil
}

// ListByProviderAndDate returns the provider's bookings on a given date,
// used for conflict detection.
func (r *InMemoryRepository) ListByProviderAndDate(ctx context.Context, providerID, date string) ([]*Booking, error) {
	return r.filter(func(b *Booking) bool {
		return b.ProviderID == providerID && b.ScheduledDate == date
	}), nil
}

// ListByStatus returns all bookings currently in the given status, used by
// admin reporting.
func (r *InMemoryRepository) ListByStatus(ctx context.Context, status Status) ([]*Booking, error) {
	return r.filter(func(b *Booking) bool { return b.Status == status }), nil
}

func (r *InMemoryRepository) filter(keep func(*Booking) bool) []*Booking {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Booking
	for _, b := range r.bookings {
		if keep(b) {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out
}
