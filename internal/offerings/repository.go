package offerings

import (
	"context"
	"sync"
)

// Repository defines offering request storage.
type Repository interface {
	Create(ctx context.Context, req *Request) error
	GetByID(ctx context.Context, id string) (*Request, error)
	Update(ctx context.Context, req *Request) error
	ListByProvider(ctx context.Context, providerID string) ([]*Request, error)
	ListPending(ctx context.Context) ([]*Request, error)
}

// InMemoryRepository keeps offering requests in memory for tests.
type InMemoryRepository struct {
	mu       sync.RWMutex
	requests map[string]*Request
}

// NewInMemoryRepository creates an empty in-memory store.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{requests: make(map[string]*Request)}
}

// Create stores a new request.
func (r *InMemoryRepository) Create(ctx context.Context, req *Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests[req.ID] = copyRequest(req)
	return nil
}

// GetByID retrieves a request by ID.
func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	req, ok := r.requests[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyRequest(req), nil
}

// Update replaces the stored request.
func (r *InMemoryRepository) Update(ctx context.Context, req *Request) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.requests[req.ID]; !ok {
		return ErrNotFound
	}
	r.requests[req.ID] = copyRequest(req)
	return nil
}

// ListByProvider returns the provider's requests.
func (r *InMemoryRepository) ListByProvider(ctx context.Context, providerID string) ([]*Request, error) {
	return r.filter(func(req *Request) bool { return req.ProviderID == providerID }), nil
}

// ListPending returns all undecided requests.
func (r *InMemoryRepository) ListPending(ctx context.Context) ([]*Request, error) {
	return r.filter(func(req *Request) bool { return req.Status == RequestPending }), nil
}

func (r *InMemoryRepository) filter(keep func(*Request) bool) []*Request {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Request
	for _, req := range r.requests {
		if keep(req) {
			out = append(out, copyRequest(req))
		}
	}
	return out
}

func copyRequest(req *Request) *Request {
	cp := *req
	cp.ServiceIDs = append([]string(nil), req.ServiceIDs...)
	return &cp
}
