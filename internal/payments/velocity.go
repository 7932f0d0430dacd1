package payments

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/medhive/marketplace-platform/pkg/logging"
)

// VelocityChecker rate limits refund requests per user as a basic fraud
// control. Checks fail open: if Redis is unreachable the request is allowed
// and the error logged.
type VelocityChecker struct {
	redis  *redis.Client
	logger *logging.Logger
	config VelocityConfig
}

// VelocityConfig contains velocity check configuration.
type VelocityConfig struct {
	// Max refund requests per user per window.
	MaxRefundsPerUser int
	RefundWindow      time.Duration
}

// DefaultVelocityConfig returns the default refund limits.
func DefaultVelocityConfig() VelocityConfig {
	return VelocityConfig{
		MaxRefundsPerUser: 3,
		RefundWindow:      24 * time.Hour,
	}
}

// VelocityResult contains the result of a velocity check.
type VelocityResult struct {
	Allowed      bool
	CurrentCount int
	MaxAllowed   int
	WindowExpiry time.Time
}

// NewVelocityChecker creates a new velocity checker.
func NewVelocityChecker(redisClient *redis.Client, config VelocityConfig, logger *logging.Logger) *VelocityChecker {
	if logger == nil {
		logger = logging.Default()
	}
	return &VelocityChecker{redis: redisClient, logger: logger, config: config}
}

// CheckRefund counts a refund attempt for the user and reports whether it is
// within the window limit. A nil checker allows everything.
func (v *VelocityChecker) CheckRefund(ctx context.Context, userID string) *VelocityResult {
	if v == nil || v.redis == nil || v.config.MaxRefundsPerUser <= 0 {
		return &VelocityResult{Allowed: true}
	}

	key := v.key(userID)
	count, err := v.redis.Incr(ctx, key).Result()
	if err != nil {
		v.logger.Error("refund velocity check failed", "error", err, "key", key)
		return &VelocityResult{Allowed: true}
	}
	if count == 1 {
		v.redis.Expire(ctx, key, v.config.RefundWindow)
	}

	ttl, err := v.redis.TTL(ctx, key).Result()
	if err != nil {
		ttl = v.config.RefundWindow
	}

	result := &VelocityResult{
		Allowed:      int(count) <= v.config.MaxRefundsPerUser,
		CurrentCount: int(count),
		MaxAllowed:   v.config.MaxRefundsPerUser,
		WindowExpiry: time.Now().Add(ttl),
	}
	if !result.Allowed {
		v.logger.Warn("refund velocity exceeded",
			"user_id", userID,
			"count", count,
			"max", v.config.MaxRefundsPerUser,
		)
	}
	return result
}

// Reset clears the user's refund counter, for admin use.
func (v *VelocityChecker) Reset(ctx context.Context, userID string) error {
	if v == nil || v.redis == nil {
		return nil
	}
	return v.redis.Del(ctx, v.key(userID)).Err()
}

func (v *VelocityChecker) key(userID string) string {
	return fmt.Sprintf("velocity:refund:%s", userID)
}
