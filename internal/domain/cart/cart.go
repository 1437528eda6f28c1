// Package cart holds the single-restaurant shopping cart of a browser session.
package cart

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/delivery/storefront/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Cart errors
var (
	ErrRestaurantMismatch = shared.NewDomainError("CART_RESTAURANT_MISMATCH", "The cart already holds dishes from another restaurant")
	ErrInvalidPrice       = shared.NewDomainError("CART_INVALID_PRICE", "Dish price must not be negative")
	ErrInvalidDish        = shared.NewDomainError("CART_INVALID_DISH", "Dish identity is required")
	ErrLineNotFound       = shared.NewDomainError("CART_LINE_NOT_FOUND", "Dish is not in the cart")
)

// Dish is the part of a menu dish the cart needs
type Dish struct {
	ID           int64           `json:"dishId"`
	RestaurantID int64           `json:"restaurantId"`
	Name         string          `json:"name"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
}

// Line is one dish and how many of it were ordered. Quantity is at least 1.
type Line struct {
	Dish     Dish `json:"dish"`
	Quantity int  `json:"quantity"`
}

// Subtotal returns quantity times unit price
func (l Line) Subtotal() decimal.Decimal {
	return l.Dish.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is an ordered list of lines bound to one restaurant. Dish ids are
// unique within the cart and totals are derived on every read.
type Cart struct {
	restaurantID int64
	lines        []Line
}

// New creates an empty cart for the restaurant
func New(restaurantID int64) *Cart {
	return &Cart{restaurantID: restaurantID}
}

// RestaurantID returns the restaurant the cart is bound to
func (c *Cart) RestaurantID() int64 {
	return c.restaurantID
}

// Add puts one more of the dish in the cart, appending a line if the dish is new.
// An empty cart rebinds to the dish's restaurant.
func (c *Cart) Add(d Dish) error {
	if d.ID <= 0 {
		return ErrInvalidDish
	}
	if d.UnitPrice.IsNegative() {
		return ErrInvalidPrice
	}
	if d.RestaurantID != 0 && d.RestaurantID != c.restaurantID {
		if !c.IsEmpty() {
			return ErrRestaurantMismatch
		}
		c.restaurantID = d.RestaurantID
	}
	d.RestaurantID = c.restaurantID

	if i := c.index(d.ID); i >= 0 {
		c.lines[i].Quantity++
		return nil
	}
	c.lines = append(c.lines, Line{Dish: d, Quantity: 1})
	return nil
}

// SetQuantity replaces a line's quantity; anything below 1 removes the line
func (c *Cart) SetQuantity(dishID int64, quantity int) error {
	i := c.index(dishID)
	if quantity < 1 {
		if i >= 0 {
			c.removeAt(i)
		}
		return nil
	}
	if i < 0 {
		return ErrLineNotFound
	}
	c.lines[i].Quantity = quantity
	return nil
}

// Remove drops the dish's line, if present
func (c *Cart) Remove(dishID int64) {
	if i := c.index(dishID); i >= 0 {
		c.removeAt(i)
	}
}

// Clear empties the cart and keeps the restaurant binding
func (c *Cart) Clear() {
	c.lines = nil
}

// Total returns the sum of quantity times unit price over the current lines
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// ItemCount returns the sum of quantities
func (c *Cart) ItemCount() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// Lines returns a copy of the lines in insertion order
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Line returns the line for the dish
func (c *Cart) Line(dishID int64) (Line, bool) {
	if i := c.index(dishID); i >= 0 {
		return c.lines[i], true
	}
	return Line{}, false
}

func (c *Cart) index(dishID int64) int {
	for i, l := range c.lines {
		if l.Dish.ID == dishID {
			return i
		}
	}
	return -1
}

func (c *Cart) removeAt(i int) {
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	if len(c.lines) == 0 {
		c.lines = nil
	}
}

type snapshot struct {
	RestaurantID int64  `json:"restaurantId"`
	Lines        []Line `json:"lines"`
}

// MarshalJSON encodes the cart for storage
func (c *Cart) MarshalJSON() ([]byte, error) {
	return json.Marshal(snapshot{RestaurantID: c.restaurantID, Lines: c.Lines()})
}

// UnmarshalJSON restores a stored cart, rejecting lines that break the cart rules
func (c *Cart) UnmarshalJSON(data []byte) error {
	var s snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	restored := New(s.RestaurantID)
	for _, l := range s.Lines {
		if l.Quantity < 1 {
			return fmt.Errorf("cart line %d: quantity %d below 1", l.Dish.ID, l.Quantity)
		}
		if restored.index(l.Dish.ID) >= 0 {
			return fmt.Errorf("cart line %d: duplicate dish", l.Dish.ID)
		}
		l.Dish.RestaurantID = s.RestaurantID
		if err := restored.Add(l.Dish); err != nil {
			return fmt.Errorf("cart line %d: %w", l.Dish.ID, err)
		}
		restored.lines[len(restored.lines)-1].Quantity = l.Quantity
	}
	*c = *restored
	return nil
}

// Repository stores one cart per browser session
type Repository interface {
	// Get returns the stored cart, nil when the browser has none
	Get(ctx context.Context, browserID string) (*Cart, error)
	Save(ctx context.Context, browserID string, c *Cart) error
	Delete(ctx context.Context, browserID string) error
}
