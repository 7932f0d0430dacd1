package providers

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines provider storage.
type Repository interface {
	Create(ctx context.Context, req *CreateProviderRequest) (*Provider, error)
	GetByID(ctx context.Context, id string) (*Provider, error)
	List(ctx context.Context) ([]*Provider, error)
	ListOffering(ctx context.Context, serviceID string) ([]*Provider, error)
	SetVerified(ctx context.Context, id string, verified bool) (*Provider, error)
	SetAvailable(ctx context.Context, id string, available bool) (*Provider, error)
	SetOfferedServices(ctx context.Context, id string, serviceIDs []string) (*Provider, error)
}

// InMemoryRepository keeps providers in memory for tests.
type InMemoryRepository struct {
	mu        sync.RWMutex
	providers map[string]*Provider
}

// NewInMemoryRepository creates an empty in-memory store.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{providers: make(map[string]*Provider)}
}

// Put stores a provider as-is, for test fixtures.
func (r *InMemoryRepository) Put(p *Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	cp.OfferedServiceIDs = append([]string(nil), p.OfferedServiceIDs...)
	r.providers[p.ID] = &cp
}

// Create registers a provider, unverified and unavailable until an admin
// flips the flags.
func (r *InMemoryRepository) Create(ctx context.Context, req *CreateProviderRequest) (*Provider, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	p := &Provider{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.providers[p.ID] = p
	cp := *p
	return &cp, nil
}

// GetByID retrieves a provider by ID.
func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	cp.OfferedServiceIDs = append([]string(nil), p.OfferedServiceIDs...)
	return &cp, nil
}

// List returns all providers.
func (r *InMemoryRepository) List(ctx context.Context) ([]*Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Provider, 0, len(r.providers))
	for _, p := range r.providers {
		cp := *p
		cp.OfferedServiceIDs = append([]string(nil), p.OfferedServiceIDs...)
		out = append(out, &cp)
	}
	return out, nil
}

// ListOffering returns providers that offer the given service.
func (r *InMemoryRepository) ListOffering(ctx context.Context, serviceID string) ([]*Provider, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []*Provider
	for _, p := range all {
		if p.OffersService(serviceID) {
			out = append(out, p)
		}
	}
	return out, nil
}

// SetVerified updates the verification flag.
func (r *InMemoryRepository) SetVerified(ctx context.Context, id string, verified bool) (*Provider, error) {
	return r.mutate(id, func(p *Provider) { p.Verified = verified })
}

// SetAvailable updates the availability flag.
func (r *InMemoryRepository) SetAvailable(ctx context.Context, id string, available bool) (*Provider, error) {
	return r.mutate(id, func(p *Provider) { p.Available = available })
}

// SetOfferedServices replaces the provider's offered service set.
func (r *InMemoryRepository) SetOfferedServices(ctx context.Context, id string, serviceIDs []string) (*Provider, error) {
	return r.mutate(id, func(p *Provider) {
		p.OfferedServiceIDs = append([]string(nil), serviceIDs...)
	})
}

func (r *InMemoryRepository) mutate(id string, fn func(*Provider)) (*Provider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.providers[id]
	if !ok {
		return nil, ErrNotFound
	}
	fn(p)
	p.UpdatedAt = time.Now().UTC()
	cp := *p
	cp.OfferedServiceIDs = append([]string(nil), p.OfferedServiceIDs...)
	return &cp, nil
}
