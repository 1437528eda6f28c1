// Package ordering runs the menu, cart and checkout workflow.
package ordering

import (
	"context"
	"fmt"

	"github.com/delivery/storefront/internal/domain/cart"
	"github.com/delivery/storefront/internal/domain/catalog"
	"github.com/delivery/storefront/internal/domain/order"
	"github.com/delivery/storefront/internal/domain/session"
	"github.com/delivery/storefront/internal/domain/shared"
	"go.uber.org/zap"
)

// ErrDishNotOnMenu is returned when a dish is not served by the restaurant
var ErrDishNotOnMenu = shared.NewDomainError("DISH_NOT_FOUND", "Dish is not on this restaurant's menu")

// MenuReader loads a restaurant with its current menu
type MenuReader interface {
	Get(ctx context.Context, id int64) (catalog.Restaurant, error)
}

// MenuPath is the view path of a restaurant's menu
func MenuPath(restaurantID int64) string {
	return fmt.Sprintf("/restaurants/%d", restaurantID)
}

// CartService manages the browser's cart while a menu view is open
type CartService struct {
	menus  MenuReader
	carts  cart.Repository
	logger *zap.Logger
}

// NewCartService creates a new CartService
func NewCartService(menus MenuReader, carts cart.Repository, logger *zap.Logger) *CartService {
	return &CartService{
		menus:  menus,
		carts:  carts,
		logger: logger,
	}
}

// Open loads a restaurant's menu view. Opening a different restaurant than
// the cart is bound to starts a fresh cart. A dish picked before login is
// added once the customer returns to its restaurant.
func (s *CartService) Open(ctx context.Context, h *session.Handle, restaurantID int64) (*MenuView, error) {
	restaurant, err := s.menus.Get(ctx, restaurantID)
	if err != nil {
		return nil, err
	}

	c, err := s.carts.Get(ctx, h.ID())
	if err != nil {
		return nil, err
	}
	changed := false
	if c == nil || c.RestaurantID() != restaurantID {
		if c != nil && !c.IsEmpty() {
			s.logger.Debug("Discarding cart of another restaurant",
				zap.Int64("previous_restaurant_id", c.RestaurantID()),
				zap.Int64("restaurant_id", restaurantID))
		}
		c = cart.New(restaurantID)
		changed = true
	}

	view := &MenuView{Restaurant: restaurant, PaymentMethods: order.PaymentMethods}

	if h.IsAuthenticated() {
		pending, err := h.TakePendingDish(ctx)
		if err != nil {
			s.logger.Warn("Failed to read pending dish", zap.Error(err))
		}
		if pending != nil && pending.RestaurantID == restaurantID {
			if dish, ok := restaurant.Dish(pending.DishID); ok {
				if err := c.Add(toCartDish(restaurantID, dish)); err == nil {
					view.Added = pending
					changed = true
				}
			}
		}
	}

	if changed {
		if err := s.carts.Save(ctx, h.ID(), c); err != nil {
			return nil, err
		}
	}
	view.Cart = NewCartView(c)
	return view, nil
}

// Add puts one more of the dish in the cart. Without a session the dish is
// remembered, the menu becomes the post-login redirect and
// shared.ErrLoginRequired is returned.
func (s *CartService) Add(ctx context.Context, h *session.Handle, restaurantID, dishID int64) (*CartView, error) {
	restaurant, err := s.menus.Get(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	dish, ok := restaurant.Dish(dishID)
	if !ok {
		return nil, ErrDishNotOnMenu
	}

	if !h.IsAuthenticated() {
		if err := h.RememberPendingDish(ctx, session.PendingDish{
			RestaurantID: restaurantID,
			DishID:       dish.ID,
			Name:         dish.Name,
		}); err != nil {
			return nil, err
		}
		return nil, requireLogin(ctx, h, restaurantID)
	}

	c, err := s.load(ctx, h, restaurantID)
	if err != nil {
		return nil, err
	}
	if err := c.Add(toCartDish(restaurantID, dish)); err != nil {
		return nil, err
	}
	if err := s.carts.Save(ctx, h.ID(), c); err != nil {
		return nil, err
	}

	view := NewCartView(c)
	return &view, nil
}

// SetQuantity changes a line's quantity; below 1 removes the line
func (s *CartService) SetQuantity(ctx context.Context, h *session.Handle, restaurantID, dishID int64, quantity int) (*CartView, error) {
	if !h.IsAuthenticated() {
		return nil, requireLogin(ctx, h, restaurantID)
	}
	c, err := s.load(ctx, h, restaurantID)
	if err != nil {
		return nil, err
	}
	if c.RestaurantID() != restaurantID {
		// another restaurant's cart is not visible from this menu
		empty := cart.New(restaurantID)
		if err := empty.SetQuantity(dishID, quantity); err != nil {
			return nil, err
		}
		view := NewCartView(empty)
		return &view, nil
	}
	if err := c.SetQuantity(dishID, quantity); err != nil {
		return nil, err
	}
	if err := s.carts.Save(ctx, h.ID(), c); err != nil {
		return nil, err
	}
	view := NewCartView(c)
	return &view, nil
}

// Remove drops the dish from the cart; a dish not in the cart is a no-op,
// as is any dish when the cart belongs to another restaurant
func (s *CartService) Remove(ctx context.Context, h *session.Handle, restaurantID, dishID int64) (*CartView, error) {
	if !h.IsAuthenticated() {
		return nil, requireLogin(ctx, h, restaurantID)
	}
	c, err := s.load(ctx, h, restaurantID)
	if err != nil {
		return nil, err
	}
	if c.RestaurantID() != restaurantID {
		view := NewCartView(cart.New(restaurantID))
		return &view, nil
	}
	c.Remove(dishID)
	if err := s.carts.Save(ctx, h.ID(), c); err != nil {
		return nil, err
	}
	view := NewCartView(c)
	return &view, nil
}

// View returns the cart for the restaurant, empty when the browser's cart
// belongs to another restaurant
func (s *CartService) View(ctx context.Context, h *session.Handle, restaurantID int64) (*CartView, error) {
	c, err := s.carts.Get(ctx, h.ID())
	if err != nil {
		return nil, err
	}
	if c == nil || c.RestaurantID() != restaurantID {
		c = cart.New(restaurantID)
	}
	view := NewCartView(c)
	return &view, nil
}

// load returns the stored cart, or a fresh one bound to restaurantID.
// A stored cart for another restaurant is returned as is: Add reports the
// mismatch while SetQuantity and Remove see no lines and save nothing.
func (s *CartService) load(ctx context.Context, h *session.Handle, restaurantID int64) (*cart.Cart, error) {
	c, err := s.carts.Get(ctx, h.ID())
	if err != nil {
		return nil, err
	}
	if c == nil {
		c = cart.New(restaurantID)
	}
	return c, nil
}

func toCartDish(restaurantID int64, d catalog.Dish) cart.Dish {
	return cart.Dish{
		ID:           d.ID,
		RestaurantID: restaurantID,
		Name:         d.Name,
		UnitPrice:    d.Price,
	}
}

// requireLogin remembers the menu as the post-login redirect
func requireLogin(ctx context.Context, h *session.Handle, restaurantID int64) error {
	if err := h.RememberRedirect(ctx, MenuPath(restaurantID)); err != nil {
		return err
	}
	return shared.ErrLoginRequired
}
