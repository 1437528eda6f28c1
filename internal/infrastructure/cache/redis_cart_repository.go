package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/delivery/storefront/internal/domain/cart"
	"github.com/redis/go-redis/v9"
)

// RedisCartRepository implements cart.Repository with one JSON string per browser
type RedisCartRepository struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisCartRepositoryWithClient creates a repository with an existing Redis client
func NewRedisCartRepositoryWithClient(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisCartRepository {
	return &RedisCartRepository{
		client:    client,
		keyPrefix: keyPrefix + "cart:",
		ttl:       ttl,
	}
}

// Get returns the browser's cart, nil if none
func (r *RedisCartRepository) Get(ctx context.Context, browserID string) (*cart.Cart, error) {
	data, err := r.client.Get(ctx, r.keyPrefix+browserID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	c := &cart.Cart{}
	if err := json.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	return c, nil
}

// Save stores the cart and refreshes its TTL
func (r *RedisCartRepository) Save(ctx context.Context, browserID string, c *cart.Cart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := r.client.Set(ctx, r.keyPrefix+browserID, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

// Delete removes the cart
func (r *RedisCartRepository) Delete(ctx context.Context, browserID string) error {
	if err := r.client.Del(ctx, r.keyPrefix+browserID).Err(); err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}

var _ cart.Repository = (*RedisCartRepository)(nil)
