package cache

import (
	"context"
	"sync"
	"time"

	"github.com/delivery/storefront/internal/domain/order"
)

// InMemorySubmissionGuard implements order.SubmissionGuard with a map of
// hold deadlines. Expired holds are overwritten by the next Begin.
type InMemorySubmissionGuard struct {
	mu    sync.Mutex
	holds map[string]time.Time
	now   func() time.Time
}

// NewInMemorySubmissionGuard creates an in-memory guard
func NewInMemorySubmissionGuard() *InMemorySubmissionGuard {
	return &InMemorySubmissionGuard{
		holds: make(map[string]time.Time),
		now:   time.Now,
	}
}

// Begin takes the hold for key, false if another submission holds it
func (g *InMemorySubmissionGuard) Begin(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if until, held := g.holds[key]; held && now.Before(until) {
		return false, nil
	}
	g.holds[key] = now.Add(ttl)
	return true, nil
}

// End releases the hold for key
func (g *InMemorySubmissionGuard) End(ctx context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.holds, key)
	return nil
}

var _ order.SubmissionGuard = (*InMemorySubmissionGuard)(nil)
