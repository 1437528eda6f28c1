package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/delivery/storefront/internal/domain/cart"
)

// entry is a stored value with expiration
type entry struct {
	value     []byte
	expiresAt time.Time
}

// InMemoryCartRepository implements cart.Repository using an in-memory map.
// Carts are stored encoded so callers never share a *cart.Cart.
type InMemoryCartRepository struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

// NewInMemoryCartRepository creates a repository whose carts expire after ttl of inactivity
func NewInMemoryCartRepository(ttl time.Duration) *InMemoryCartRepository {
	return &InMemoryCartRepository{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the browser's cart, nil if none
func (r *InMemoryCartRepository) Get(ctx context.Context, browserID string) (*cart.Cart, error) {
	r.mu.RLock()
	e, ok := r.entries[browserID]
	r.mu.RUnlock()
	if !ok || r.now().After(e.expiresAt) {
		return nil, nil
	}

	c := &cart.Cart{}
	if err := json.Unmarshal(e.value, c); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	return c, nil
}

// Save stores the cart
func (r *InMemoryCartRepository) Save(ctx context.Context, browserID string, c *cart.Cart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[browserID] = entry{value: data, expiresAt: r.now().Add(r.ttl)}
	r.sweepLocked()
	return nil
}

// Delete removes the cart
func (r *InMemoryCartRepository) Delete(ctx context.Context, browserID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, browserID)
	return nil
}

// sweepLocked drops expired carts. Caller holds mu.
func (r *InMemoryCartRepository) sweepLocked() {
	now := r.now()
	for id, e := range r.entries {
		if now.After(e.expiresAt) {
			delete(r.entries, id)
		}
	}
}

var _ cart.Repository = (*InMemoryCartRepository)(nil)
