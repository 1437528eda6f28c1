package ordering

import (
	"context"

	"github.com/delivery/storefront/internal/domain/catalog"
	"github.com/delivery/storefront/internal/domain/shared"
)

// RestaurantLister pages through the public restaurant listing
type RestaurantLister interface {
	List(ctx context.Context, q catalog.ListQuery) (shared.Paginated[catalog.Restaurant], error)
}

// Browser serves the restaurant listing view
type Browser struct {
	restaurants RestaurantLister
}

// NewBrowser creates a new Browser
func NewBrowser(restaurants RestaurantLister) *Browser {
	return &Browser{restaurants: restaurants}
}

// Restaurants returns one page of restaurants. A negative page is rejected
// before any backend call.
func (b *Browser) Restaurants(ctx context.Context, q catalog.ListQuery) (shared.Paginated[catalog.Restaurant], error) {
	if q.Page != nil && *q.Page < 0 {
		return shared.Paginated[catalog.Restaurant]{}, shared.ErrInvalidInput
	}
	page, err := b.restaurants.List(ctx, q)
	if err != nil {
		return shared.Paginated[catalog.Restaurant]{}, err
	}
	if page.Items == nil {
		page.Items = []catalog.Restaurant{}
	}
	return page, nil
}
