// Package order models order submissions and the orders the order service returns.
package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/delivery/storefront/internal/domain/cart"
	"github.com/delivery/storefront/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Order errors
var (
	ErrCartEmpty            = shared.NewDomainError("CART_EMPTY", "Your cart is empty")
	ErrDishUnavailable      = shared.NewDomainError("DISH_UNAVAILABLE", "A dish in your cart is no longer on the menu")
	ErrInvalidPaymentMethod = shared.NewDomainError("INVALID_PAYMENT_METHOD", "Payment method must be one of CARD, CASH, PAYPAL")
	ErrInvalidStatus        = shared.NewDomainError("INVALID_ORDER_STATUS", "Order status must be one of PLACED, COOKING, READY, DELIVERED, CANCELLED")
	ErrSubmissionInProgress = shared.NewDomainError("SUBMISSION_IN_PROGRESS", "Your order is already being placed")
)

// PaymentMethod is how the customer pays
type PaymentMethod string

// Payment methods accepted by the order service
const (
	PaymentCard   PaymentMethod = "CARD"
	PaymentCash   PaymentMethod = "CASH"
	PaymentPayPal PaymentMethod = "PAYPAL"
)

// PaymentMethods lists the accepted methods in display order
var PaymentMethods = []PaymentMethod{PaymentCard, PaymentCash, PaymentPayPal}

// ParsePaymentMethod parses a method name case-insensitively
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	m := PaymentMethod(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range PaymentMethods {
		if m == known {
			return m, nil
		}
	}
	return "", ErrInvalidPaymentMethod
}

// Status is the lifecycle state of an order
type Status string

// Order statuses
const (
	StatusPlaced    Status = "PLACED"
	StatusCooking   Status = "COOKING"
	StatusReady     Status = "READY"
	StatusDelivered Status = "DELIVERED"
	StatusCancelled Status = "CANCELLED"
)

// Statuses lists every order status in lifecycle order
var Statuses = []Status{StatusPlaced, StatusCooking, StatusReady, StatusDelivered, StatusCancelled}

// ParseStatus parses a status name case-insensitively
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Statuses {
		if st == known {
			return st, nil
		}
	}
	return "", ErrInvalidStatus
}

// SubmissionLine is one line of an order as sent to the order service
type SubmissionLine struct {
	DishID    int64
	Quantity  int
	UnitPrice decimal.Decimal
}

// Submission is an immutable order request. Prices are the ones read from the
// menu at submission time, not the ones cached in the cart.
type Submission struct {
	restaurantID int64
	lines        []SubmissionLine
	method       PaymentMethod
}

// NewSubmission builds a submission from the cart and the current menu prices
func NewSubmission(c *cart.Cart, prices map[int64]decimal.Decimal, method PaymentMethod) (*Submission, error) {
	if c == nil || c.IsEmpty() {
		return nil, ErrCartEmpty
	}
	if _, err := ParsePaymentMethod(string(method)); err != nil {
		return nil, err
	}

	cartLines := c.Lines()
	lines := make([]SubmissionLine, 0, len(cartLines))
	for _, l := range cartLines {
		price, ok := prices[l.Dish.ID]
		if !ok {
			return nil, &shared.DomainError{
				Code:    ErrDishUnavailable.Code,
				Message: fmt.Sprintf("%s is no longer on the menu", dishLabel(l.Dish)),
			}
		}
		lines = append(lines, SubmissionLine{
			DishID:    l.Dish.ID,
			Quantity:  l.Quantity,
			UnitPrice: price,
		})
	}

	return &Submission{
		restaurantID: c.RestaurantID(),
		lines:        lines,
		method:       method,
	}, nil
}

func dishLabel(d cart.Dish) string {
	if d.Name != "" {
		return d.Name
	}
	return fmt.Sprintf("Dish #%d", d.ID)
}

// RestaurantID returns the restaurant the order is placed with
func (s *Submission) RestaurantID() int64 {
	return s.restaurantID
}

// Lines returns a copy of the submission lines
func (s *Submission) Lines() []SubmissionLine {
	out := make([]SubmissionLine, len(s.lines))
	copy(out, s.lines)
	return out
}

// PaymentMethod returns the chosen payment method
func (s *Submission) PaymentMethod() PaymentMethod {
	return s.method
}

// Total returns the sum over the submission lines
func (s *Submission) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range s.lines {
		total = total.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}

// Item is one line of a stored order
type Item struct {
	ID       int64           `json:"id"`
	DishID   int64           `json:"dishId"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// Payment is the payment attached to an order
type Payment struct {
	ID      int64           `json:"id"`
	Method  PaymentMethod   `json:"method"`
	Amount  decimal.Decimal `json:"amount"`
	Status  string          `json:"status"`
	OrderID int64           `json:"orderId"`
}

// Order is an order as stored by the order service
type Order struct {
	ID             int64           `json:"id"`
	Status         Status          `json:"status"`
	OrderDate      string          `json:"orderDate"`
	UserID         int64           `json:"userId"`
	RestaurantID   int64           `json:"restaurantId"`
	RestaurantName string          `json:"restaurantName,omitempty"`
	TotalPrice     decimal.Decimal `json:"totalPrice"`
	Items          []Item          `json:"orderItems"`
	Payment        *Payment        `json:"payment,omitempty"`
}

// SubmissionGuard serializes order submissions per browser. Begin reports
// false while another submission for the same key is in flight; the hold
// lapses after ttl so a crashed request cannot block the cart forever.
type SubmissionGuard interface {
	Begin(ctx context.Context, key string, ttl time.Duration) (bool, error)
	End(ctx context.Context, key string) error
}
