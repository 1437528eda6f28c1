package ordering

import (
	"context"
	"time"

	"github.com/delivery/storefront/internal/domain/cart"
	"github.com/delivery/storefront/internal/domain/order"
	"github.com/delivery/storefront/internal/domain/session"
	"go.uber.org/zap"
)

// GuardMargin is the default slack added to the backend call budget of one
// checkout so that a hold outlives the request it protects
const GuardMargin = 5 * time.Second

// GuardTTL bounds a checkout hold. A checkout makes two backend calls,
// each limited by serviceTimeout.
func GuardTTL(serviceTimeout, margin time.Duration) time.Duration {
	if margin <= 0 {
		margin = GuardMargin
	}
	return 2*serviceTimeout + margin
}

// OrderGateway creates and lists orders
type OrderGateway interface {
	Create(ctx context.Context, s *order.Submission) (order.Order, error)
	Mine(ctx context.Context) ([]order.Order, error)
}

// CheckoutService turns the browser's cart into exactly one order
type CheckoutService struct {
	menus    MenuReader
	orders   OrderGateway
	carts    cart.Repository
	guard    order.SubmissionGuard
	guardTTL time.Duration
	logger   *zap.Logger
}

// NewCheckoutService creates a new CheckoutService
func NewCheckoutService(
	menus MenuReader,
	orders OrderGateway,
	carts cart.Repository,
	guard order.SubmissionGuard,
	guardTTL time.Duration,
	logger *zap.Logger,
) *CheckoutService {
	return &CheckoutService{
		menus:    menus,
		orders:   orders,
		carts:    carts,
		guard:    guard,
		guardTTL: guardTTL,
		logger:   logger,
	}
}

// PlaceOrder submits the cart for restaurantID with the chosen payment method.
// While one submission is in flight for the browser, further calls fail with
// order.ErrSubmissionInProgress. Prices are read from the current menu. The
// cart is cleared only when the order service accepted the order.
func (s *CheckoutService) PlaceOrder(ctx context.Context, h *session.Handle, restaurantID int64, method string) (*Confirmation, error) {
	if !h.IsAuthenticated() {
		return nil, requireLogin(ctx, h, restaurantID)
	}
	pm, err := order.ParsePaymentMethod(method)
	if err != nil {
		return nil, err
	}

	acquired, err := s.guard.Begin(ctx, h.ID(), s.guardTTL)
	if err != nil {
		return nil, err
	}
	if !acquired {
		s.logger.Info("Checkout already in progress", zap.Int64("restaurant_id", restaurantID))
		return nil, order.ErrSubmissionInProgress
	}
	defer func() {
		if err := s.guard.End(context.WithoutCancel(ctx), h.ID()); err != nil {
			s.logger.Warn("Failed to release checkout hold", zap.Error(err))
		}
	}()

	// read the cart inside the hold so a finished submission is never replayed
	c, err := s.carts.Get(ctx, h.ID())
	if err != nil {
		return nil, err
	}
	if c == nil || c.IsEmpty() || c.RestaurantID() != restaurantID {
		return nil, order.ErrCartEmpty
	}

	restaurant, err := s.menus.Get(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	submission, err := order.NewSubmission(c, restaurant.Prices(), pm)
	if err != nil {
		return nil, err
	}

	created, err := s.orders.Create(ctx, submission)
	if err != nil {
		s.logger.Warn("Order submission failed",
			zap.Int64("restaurant_id", restaurantID),
			zap.String("payment_method", string(pm)),
			zap.Error(err))
		return nil, err
	}

	c.Clear()
	if err := s.carts.Save(ctx, h.ID(), c); err != nil {
		s.logger.Error("Failed to clear cart after checkout",
			zap.Int64("order_id", created.ID), zap.Error(err))
	}

	total := created.TotalPrice
	if total.IsZero() {
		total = submission.Total()
	}
	s.logger.Info("Order placed",
		zap.Int64("order_id", created.ID),
		zap.String("status", string(created.Status)),
		zap.String("total", total.StringFixed(2)))

	return &Confirmation{
		OrderID:       created.ID,
		Status:        created.Status,
		Total:         total,
		PaymentMethod: pm,
	}, nil
}

// OrderHistory lists the customer's own orders
type OrderHistory struct {
	orders OrderGateway
	names  *NameResolver
}

// NewOrderHistory creates a new OrderHistory
func NewOrderHistory(orders OrderGateway, names *NameResolver) *OrderHistory {
	return &OrderHistory{orders: orders, names: names}
}

// Mine returns the orders of the session's user, named by restaurant
func (o *OrderHistory) Mine(ctx context.Context) ([]order.Order, error) {
	orders, err := o.orders.Mine(ctx)
	if err != nil {
		return nil, err
	}
	if o.names != nil {
		o.names.Annotate(ctx, orders)
	}
	return orders, nil
}
