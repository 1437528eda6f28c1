package ordering

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/delivery/storefront/internal/domain/order"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultLookupLimit bounds concurrent restaurant name lookups
const DefaultLookupLimit = 4

// FallbackRestaurantName labels a restaurant whose name could not be loaded
func FallbackRestaurantName(id int64) string {
	return fmt.Sprintf("Restaurant %d", id)
}

// NameResolver fills in the restaurant names of order listings. Orders only
// carry a restaurant id, so each distinct id is looked up once.
type NameResolver struct {
	menus  MenuReader
	limit  int
	logger *zap.Logger
}

// NewNameResolver creates a NameResolver fetching at most limit names at once
func NewNameResolver(menus MenuReader, limit int, logger *zap.Logger) *NameResolver {
	if limit <= 0 {
		limit = DefaultLookupLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NameResolver{menus: menus, limit: limit, logger: logger}
}

// Annotate sets RestaurantName on every order. A failed lookup never fails
// the listing; the order gets FallbackRestaurantName instead.
func (r *NameResolver) Annotate(ctx context.Context, orders []order.Order) {
	names := r.names(ctx, orders)
	for i := range orders {
		orders[i].RestaurantName = names[orders[i].RestaurantID]
	}
}

func (r *NameResolver) names(ctx context.Context, orders []order.Order) map[int64]string {
	ids := make([]int64, 0)
	seen := make(map[int64]struct{})
	for _, o := range orders {
		if _, ok := seen[o.RestaurantID]; ok {
			continue
		}
		seen[o.RestaurantID] = struct{}{}
		ids = append(ids, o.RestaurantID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var mu sync.Mutex
	names := make(map[int64]string, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.limit)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			name := FallbackRestaurantName(id)
			rest, err := r.menus.Get(gctx, id)
			if err != nil {
				r.logger.Debug("Restaurant name lookup failed", zap.Int64("restaurant_id", id), zap.Error(err))
			} else if rest.Name != "" {
				name = rest.Name
			}
			mu.Lock()
			names[id] = name
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return names
}
