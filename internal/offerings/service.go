package offerings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medhive/marketplace-platform/internal/catalog"
	"github.com/medhive/marketplace-platform/internal/identity"
	"github.com/medhive/marketplace-platform/internal/providers"
	"github.com/medhive/marketplace-platform/pkg/logging"
)

// CatalogReader resolves requested services.
type CatalogReader interface {
	GetService(ctx context.Context, id string) (*catalog.Service, error)
}

// ProviderDirectory resolves providers and applies approved offered sets.
type ProviderDirectory interface {
	GetByID(ctx context.Context, id string) (*providers.Provider, error)
	SetOfferedServices(ctx context.Context, id string, serviceIDs []string) (*providers.Provider, error)
}

// Service manages the offering request workflow.
type Service struct {
	repo      Repository
	catalog   CatalogReader
	providers ProviderDirectory
	logger    *logging.Logger
	clock     func() time.Time
}

// NewService constructs the offerings service.
func NewService(repo Repository, cat CatalogReader, dir ProviderDirectory, logger *logging.Logger) *Service {
	if repo == nil {
		panic("offerings: repository required")
	}
	if cat == nil || dir == nil {
		panic("offerings: catalog and provider collaborators required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{repo: repo, catalog: cat, providers: dir, logger: logger, clock: time.Now}
}

// Submit files a request by the provider to offer the given services. Every
// service must exist and be active.
func (s *Service) Submit(ctx context.Context, actor identity.Actor, providerID string, serviceIDs []string) (*Request, error) {
	if !actor.IsAdmin() && !(actor.Role == identity.RoleProvider && actor.ID == providerID) {
		return nil, ErrPermissionDenied
	}
	if len(serviceIDs) == 0 {
		return nil, ErrNoServices
	}

	if _, err := s.providers.GetByID(ctx, providerID); err != nil {
		if errors.Is(err, providers.ErrNotFound) {
			return nil, fmt.Errorf("%w: provider %s", ErrNotFound, providerID)
		}
		return nil, fmt.Errorf("offerings: load provider: %w", err)
	}
	for _, id := range serviceIDs {
		svc, err := s.catalog.GetService(ctx, id)
		if err != nil {
			if errors.Is(err, catalog.ErrServiceNotFound) {
				return nil, fmt.Errorf("%w: service %s", ErrNotFound, id)
			}
			return nil, fmt.Errorf("offerings: load service: %w", err)
		}
		if !svc.Active {
			return nil, fmt.Errorf("%w: service %s is inactive", ErrNoServices, id)
		}
	}

	req := &Request{
		ID:         uuid.New().String(),
		ProviderID: providerID,
		ServiceIDs: append([]string(nil), serviceIDs...),
		Status:     RequestPending,
		CreatedAt:  s.clock(),
	}
	if err := s.repo.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("offerings: create: %w", err)
	}

	s.logger.Info("offering request submitted",
		"request_id", req.ID, "provider_id", providerID, "services", len(serviceIDs))
	return req, nil
}

// Approve grants the request and merges its services into the provider's
// offered set. Only admins decide requests; decided requests are immutable.
func (s *Service) Approve(ctx context.Context, actor identity.Actor, requestID string) (*Request, error) {
	req, err := s.loadPending(ctx, actor, requestID)
	if err != nil {
		return nil, err
	}

	p, err := s.providers.GetByID(ctx, req.ProviderID)
	if err != nil {
		return nil, fmt.Errorf("offerings: load provider: %w", err)
	}

	merged := mergeServiceIDs(p.OfferedServiceIDs, req.ServiceIDs)
	if _, err := s.providers.SetOfferedServices(ctx, p.ID, merged); err != nil {
		return nil, fmt.Errorf("offerings: apply offered set: %w", err)
	}

	now := s.clock()
	req.Status = RequestApproved
	req.DecidedBy = actor.ID
	req.DecidedAt = &now
	if err := s.repo.Update(ctx, req); err != nil {
		return nil, fmt.Errorf("offerings: save decision: %w", err)
	}

	s.logger.Info("offering request approved",
		"request_id", req.ID, "provider_id", req.ProviderID, "offered_total", len(merged))
	return req, nil
}

// RejectRequest declines the request with a reason.
func (s *Service) RejectRequest(ctx context.Context, actor identity.Actor, requestID, reason string) (*Request, error) {
	req, err := s.loadPending(ctx, actor, requestID)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	req.Status = RequestRejected
	req.Reason = reason
	req.DecidedBy = actor.ID
	req.DecidedAt = &now
	if err := s.repo.Update(ctx, req); err != nil {
		return nil, fmt.Errorf("offerings: save decision: %w", err)
	}

	s.logger.Info("offering request rejected", "request_id", req.ID, "provider_id", req.ProviderID)
	return req, nil
}

// Get returns a request the actor may see.
func (s *Service) Get(ctx context.Context, actor identity.Actor, requestID string) (*Request, error) {
	req, err := s.repo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && actor.ID != req.ProviderID {
		return nil, ErrPermissionDenied
	}
	return req, nil
}

// ListForProvider returns the provider's requests.
func (s *Service) ListForProvider(ctx context.Context, actor identity.Actor, providerID string) ([]*Request, error) {
	if !actor.IsAdmin() && actor.ID != providerID {
		return nil, ErrPermissionDenied
	}
	return s.repo.ListByProvider(ctx, providerID)
}

// ListPending returns the admin review queue.
func (s *Service) ListPending(ctx context.Context, actor identity.Actor) ([]*Request, error) {
	if !actor.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	return s.repo.ListPending(ctx)
}

func (s *Service) loadPending(ctx context.Context, actor identity.Actor, requestID string) (*Request, error) {
	if !actor.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	req, err := s.repo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Decided() {
		return nil, fmt.Errorf("%w: request is %s", ErrAlreadyDecided, req.Status)
	}
	return req, nil
}

// mergeServiceIDs unions two id sets, preserving the existing order.
func mergeServiceIDs(existing, added []string) []string {
	seen := make(map[string]bool, len(existing)+len(added))
	out := make([]string, 0, len(existing)+len(added))
	for _, id := range existing {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	for _, id := range added {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
