package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/delivery/storefront/internal/domain/order"
	"github.com/redis/go-redis/v9"
)

// RedisSubmissionGuard implements order.SubmissionGuard with SETNX holds
type RedisSubmissionGuard struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisSubmissionGuardWithClient creates a guard with an existing Redis client
func NewRedisSubmissionGuardWithClient(client *redis.Client, keyPrefix string) *RedisSubmissionGuard {
	return &RedisSubmissionGuard{
		client:    client,
		keyPrefix: keyPrefix + "checkout:",
	}
}

// Begin takes the hold for key, false if another submission holds it.
// The hold lapses after ttl even if End is never called.
func (g *RedisSubmissionGuard) Begin(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := g.client.SetNX(ctx, g.keyPrefix+key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to take checkout hold: %w", err)
	}
	return ok, nil
}

// End releases the hold for key
func (g *RedisSubmissionGuard) End(ctx context.Context, key string) error {
	if err := g.client.Del(ctx, g.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to release checkout hold: %w", err)
	}
	return nil
}

var _ order.SubmissionGuard = (*RedisSubmissionGuard)(nil)
