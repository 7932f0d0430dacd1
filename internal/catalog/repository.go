package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines storage for the service catalog.
type Repository interface {
	CreateService(ctx context.Context, req *CreateServiceRequest) (*Service, error)
	GetService(ctx context.Context, id string) (*Service, error)
	UpdateService(ctx context.Context, id string, req *UpdateServiceRequest) (*Service, error)
	ListServices(ctx context.Context, activeOnly bool) ([]*Service, error)

	CreateCategory(ctx context.Context, req *CreateCategoryRequest) (*Category, error)
	GetCategory(ctx context.Context, id string) (*Category, error)
	ListCategories(ctx context.Context) ([]*Category, error)
}

// InMemoryRepository keeps the catalog in memory, used in tests and local
// development.
type InMemoryRepository struct {
	mu         sync.RWMutex
	services   map[string]*Service
	categories map[string]*Category
}

// NewInMemoryRepository creates an empty in-memory catalog.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		services:   make(map[string]*Service),
		categories: make(map[string]*Category),
	}
}

// CreateService adds a service after validating the request.
func (r *InMemoryRepository) CreateService(ctx context.Context, req *CreateServiceRequest) (*Service, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.categories[req.CategoryID]; !ok {
		return nil, ErrCategoryNotFound
	}

	now := time.Now().UTC()
	svc := &Service{
		ID:           uuid.New().String(),
		CategoryID:   req.CategoryID,
		Name:         req.Name,
		Description:  req.Description,
		PriceCents:   req.PriceCents,
		DurationMins: req.DurationMins,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.services[svc.ID] = svc
	out := *svc
	return &out, nil
}

// GetService retrieves a service by ID.
func (r *InMemoryRepository) GetService(ctx context.Context, id string) (*Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	svc, ok := r.services[id]
	if !ok {
		return nil, ErrServiceNotFound
	}
	out := *svc
	return &out, nil
}

// UpdateService applies the non-nil fields of req.
func (r *InMemoryRepository) UpdateService(ctx context.Context, id string, req *UpdateServiceRequest) (*Service, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	svc, ok := r.services[id]
	if !ok {
		return nil, ErrServiceNotFound
	}
	if req.Name != nil {
		svc.Name = *req.Name
	}
	if req.Description != nil {
		svc.Description = *req.Description
	}
	if req.PriceCents != nil {
		svc.PriceCents = *req.PriceCents
	}
	if req.DurationMins != nil {
		svc.DurationMins = *req.DurationMins
	}
	if req.Active != nil {
		svc.Active = *req.Active
	}
	svc.UpdatedAt = time.Now().UTC()
	out := *svc
	return &out, nil
}

// ListServices returns services, optionally only active ones.
func (r *InMemoryRepository) ListServices(ctx context.Context, activeOnly bool) ([]*Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Service, 0, len(r.services))
	for _, svc := range r.services {
		if activeOnly && !svc.Active {
			continue
		}
		cp := *svc
		out = append(out, &cp)
	}
	return out, nil
}

// CreateCategory adds a category.
func (r *InMemoryRepository) CreateCategory(ctx context.Context, req *CreateCategoryRequest) (*Category, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cat := &Category{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Description: req.Description,
		CreatedAt:   time.Now().UTC(),
	}
	r.categories[cat.ID] = cat
	out := *cat
	return &out, nil
}

// GetCategory retrieves a category by ID.
func (r *InMemoryRepository) GetCategory(ctx context.Context, id string) (*Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cat, ok := r.categories[id]
	if !ok {
		return nil, ErrCategoryNotFound
	}
	out := *cat
	return &out, nil
}

// ListCategories returns all categories.
func (r *InMemoryRepository) ListCategories(ctx context.Context) ([]*Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Category, 0, len(r.categories))
	for _, cat := range r.categories {
		cp := *cat
		out = append(out, &cp)
	}
	return out, nil
}
