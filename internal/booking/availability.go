package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"

	"github.com/medhive/marketplace-platform/internal/providers"
	"github.com/medhive/marketplace-platform/pkg/logging"
)

// overlaps is the interval conflict predicate. Intervals are half-open
// [start, end) in minutes from midnight: touching endpoints do not
// conflict, so a 13:00-14:00 booking does not block a 14:00-15:00 one.
func overlaps(startA, endA, startB, endB int) bool {
	return startA < endB && startB < endA
}

// FindAvailableProviders returns the providers who could take the booking:
// they offer its service, are verified and available, and have no
// conflicting confirmed or in-progress booking on the same date. The
// booking's own row never counts as a conflict, so an already assigned
// booking can be re-checked.
func (s *Service) FindAvailableProviders(ctx context.Context, id string) ([]*providers.Provider, error) {
	ctx, span := tracer.Start(ctx, "booking.find_available_providers")
	defer span.End()

	started := time.Now()
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if cached, ok := s.cache.Get(ctx, b); ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		s.metrics.ObserveAvailabilityCheck(time.Since(started).Seconds(), true)
		return cached, nil
	}

	candidates, err := s.providers.ListOffering(ctx, b.ServiceID)
	if err != nil {
		return nil, fmt.Errorf("booking: list providers for service: %w", err)
	}

	var out []*providers.Provider
	for _, p := range candidates {
		if !p.Bookable() {
			continue
		}
		conflicted, err := s.hasConflict(ctx, p.ID, b)
		if err != nil {
			return nil, err
		}
		if !conflicted {
			out = append(out, p)
		}
	}

	s.cache.Put(ctx, b, out)
	span.SetAttributes(attribute.Int("providers.available", len(out)))
	s.metrics.ObserveAvailabilityCheck(time.Since(started).Seconds(), false)
	return out, nil
}

// hasConflict reports whether the provider has a blocking booking that
// overlaps the candidate's interval on the same date.
func (s *Service) hasConflict(ctx context.Context, providerID string, candidate *Booking) (bool, error) {
	existing, err := s.repo.ListByProviderAndDate(ctx, providerID, candidate.ScheduledDate)
	if err != nil {
		return false, fmt.Errorf("booking: list provider schedule: %w", err)
	}
	for _, other := range existing {
		if other.ID == candidate.ID {
			continue
		}
		if !other.Status.blocksProviderSchedule() {
			continue
		}
		if overlaps(candidate.StartMinutes, candidate.EndMinutes(), other.StartMinutes, other.EndMinutes()) {
			return true, nil
		}
	}
	return false, nil
}

// AvailabilityCache keeps recent availability results in Redis. Lookups
// fail open: a cache error is logged and treated as a miss, never as a
// request failure.
type AvailabilityCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

// NewAvailabilityCache creates a cache with the given TTL.
func NewAvailabilityCache(client *redis.Client, ttl time.Duration, logger *logging.Logger) *AvailabilityCache {
	if logger == nil {
		logger = logging.Default()
	}
	return &AvailabilityCache{client: client, ttl: ttl, logger: logger}
}

func (c *AvailabilityCache) key(b *Booking) string {
	return fmt.Sprintf("availability:%s:%s:%s:%d:%d", b.ID, b.ServiceID, b.ScheduledDate, b.StartMinutes, b.EndMinutes())
}

// Get returns a cached result for the booking's current slot, if any.
func (c *AvailabilityCache) Get(ctx context.Context, b *Booking) ([]*providers.Provider, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, c.key(b)).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("availability cache read failed", "error", err)
		}
		return nil, false
	}
	var out []*providers.Provider
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		c.logger.Warn("availability cache entry corrupt", "error", err)
		return nil, false
	}
	return out, true
}

// Put stores a result; failures are logged and ignored.
func (c *AvailabilityCache) Put(ctx context.Context, b *Booking, result []*providers.Provider) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.key(b), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("availability cache write failed", "error", err)
	}
}
