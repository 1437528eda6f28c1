// Package admin backs the management views: users, their orders, order
// status and the restaurant catalog.
package admin

import (
	"context"

	"github.com/delivery/storefront/internal/application/ordering"
	"github.com/delivery/storefront/internal/domain/account"
	"github.com/delivery/storefront/internal/domain/catalog"
	"github.com/delivery/storefront/internal/domain/order"
	"github.com/delivery/storefront/internal/domain/shared"
	"go.uber.org/zap"
)

// ErrConfirmationRequired is returned when a destructive action is not confirmed
var ErrConfirmationRequired = shared.NewDomainError("CONFIRMATION_REQUIRED", "Please confirm this action")

// ErrNonPositivePrice is returned for a dish priced at zero or below
var ErrNonPositivePrice = shared.NewDomainError("INVALID_PRICE", "Price must be positive")

// UserDirectory lists and removes accounts
type UserDirectory interface {
	List(ctx context.Context) (shared.Paginated[account.Profile], error)
	Delete(ctx context.Context, id int64) error
}

// OrderDirectory reads any user's orders and moves them through their lifecycle
type OrderDirectory interface {
	ByUser(ctx context.Context, userID int64) ([]order.Order, error)
	UpdateStatus(ctx context.Context, orderID int64, status order.Status) error
}

// RestaurantCatalog reads and edits restaurants and dishes
type RestaurantCatalog interface {
	Get(ctx context.Context, id int64) (catalog.Restaurant, error)
	Dishes(ctx context.Context, restaurantID int64) ([]catalog.Dish, error)
	CreateRestaurant(ctx context.Context, in catalog.RestaurantInput) (catalog.Restaurant, error)
	UpdateRestaurant(ctx context.Context, id int64, in catalog.RestaurantInput) (catalog.Restaurant, error)
	DeleteRestaurant(ctx context.Context, id int64) error
	CreateDish(ctx context.Context, restaurantID int64, in catalog.DishInput) (catalog.Dish, error)
	UpdateDish(ctx context.Context, dishID int64, in catalog.DishInput) (catalog.Dish, error)
	DeleteDish(ctx context.Context, dishID int64) error
}

// Service implements the admin use cases
type Service struct {
	users       UserDirectory
	orders      OrderDirectory
	restaurants RestaurantCatalog
	lookupLimit int
	logger      *zap.Logger
}

// Option is a functional option for Service
type Option func(*Service)

// WithLookupLimit sets how many restaurant names are fetched at once
func WithLookupLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.lookupLimit = n
		}
	}
}

// NewService creates a new admin Service
func NewService(users UserDirectory, orders OrderDirectory, restaurants RestaurantCatalog, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		users:       users,
		orders:      orders,
		restaurants: restaurants,
		lookupLimit: ordering.DefaultLookupLimit,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Users lists all accounts
func (s *Service) Users(ctx context.Context) (shared.Paginated[account.Profile], error) {
	return s.users.List(ctx)
}

// DeleteUser removes an account
func (s *Service) DeleteUser(ctx context.Context, id int64, confirm bool) error {
	if !confirm {
		return ErrConfirmationRequired
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("User deleted", zap.Int64("user_id", id))
	return nil
}

// UserOrders lists a user's orders with restaurant names. Names are looked
// up after the list is fetched; a failed lookup falls back to a label
// built from the restaurant id.
func (s *Service) UserOrders(ctx context.Context, userID int64) ([]order.Order, error) {
	orders, err := s.orders.ByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	ordering.NewNameResolver(s.restaurants, s.lookupLimit, s.logger).Annotate(ctx, orders)
	return orders, nil
}

// UpdateOrderStatus moves an order to the named status
func (s *Service) UpdateOrderStatus(ctx context.Context, orderID int64, status string) (order.Status, error) {
	st, err := order.ParseStatus(status)
	if err != nil {
		return "", err
	}
	if err := s.orders.UpdateStatus(ctx, orderID, st); err != nil {
		return "", err
	}
	s.logger.Info("Order status updated", zap.Int64("order_id", orderID), zap.String("status", string(st)))
	return st, nil
}

// CreateRestaurant adds a restaurant
func (s *Service) CreateRestaurant(ctx context.Context, in catalog.RestaurantInput) (*catalog.Restaurant, error) {
	r, err := s.restaurants.CreateRestaurant(ctx, in)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// UpdateRestaurant replaces a restaurant's details
func (s *Service) UpdateRestaurant(ctx context.Context, id int64, in catalog.RestaurantInput) (*catalog.Restaurant, error) {
	r, err := s.restaurants.UpdateRestaurant(ctx, id, in)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// DeleteRestaurant removes a restaurant and its menu
func (s *Service) DeleteRestaurant(ctx context.Context, id int64, confirm bool) error {
	if !confirm {
		return ErrConfirmationRequired
	}
	if err := s.restaurants.DeleteRestaurant(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Restaurant deleted", zap.Int64("restaurant_id", id))
	return nil
}

// Dishes lists a restaurant's menu
func (s *Service) Dishes(ctx context.Context, restaurantID int64) ([]catalog.Dish, error) {
	return s.restaurants.Dishes(ctx, restaurantID)
}

// CreateDish adds a dish to a restaurant's menu
func (s *Service) CreateDish(ctx context.Context, restaurantID int64, in catalog.DishInput) (*catalog.Dish, error) {
	if !in.Price.IsPositive() {
		return nil, ErrNonPositivePrice
	}
	d, err := s.restaurants.CreateDish(ctx, restaurantID, in)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// UpdateDish replaces a dish
func (s *Service) UpdateDish(ctx context.Context, dishID int64, in catalog.DishInput) (*catalog.Dish, error) {
	if !in.Price.IsPositive() {
		return nil, ErrNonPositivePrice
	}
	d, err := s.restaurants.UpdateDish(ctx, dishID, in)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// DeleteDish removes a dish
func (s *Service) DeleteDish(ctx context.Context, dishID int64, confirm bool) error {
	if !confirm {
		return ErrConfirmationRequired
	}
	if err := s.restaurants.DeleteDish(ctx, dishID); err != nil {
		return err
	}
	s.logger.Info("Dish deleted", zap.Int64("dish_id", dishID))
	return nil
}
