package ordering

import (
	"github.com/delivery/storefront/internal/domain/cart"
	"github.com/delivery/storefront/internal/domain/catalog"
	"github.com/delivery/storefront/internal/domain/order"
	"github.com/delivery/storefront/internal/domain/session"
	"github.com/shopspring/decimal"
)

// LineView is one cart line as shown in the menu view
type LineView struct {
	DishID    int64           `json:"dishId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// CartView is the cart with its derived totals
type CartView struct {
	RestaurantID int64           `json:"restaurantId"`
	Lines        []LineView      `json:"lines"`
	Total        decimal.Decimal `json:"total"`
	ItemCount    int             `json:"itemCount"`
}

// NewCartView derives the view from the cart's current lines
func NewCartView(c *cart.Cart) CartView {
	lines := c.Lines()
	view := CartView{
		RestaurantID: c.RestaurantID(),
		Lines:        make([]LineView, 0, len(lines)),
		Total:        c.Total(),
		ItemCount:    c.ItemCount(),
	}
	for _, l := range lines {
		view.Lines = append(view.Lines, LineView{
			DishID:    l.Dish.ID,
			Name:      l.Dish.Name,
			UnitPrice: l.Dish.UnitPrice,
			Quantity:  l.Quantity,
			Subtotal:  l.Subtotal(),
		})
	}
	return view
}

// MenuView is a restaurant's menu with the browser's cart for it
type MenuView struct {
	Restaurant     catalog.Restaurant    `json:"restaurant"`
	Cart           CartView              `json:"cart"`
	PaymentMethods []order.PaymentMethod `json:"paymentMethods"`
	// Added is the dish picked before login and now put in the cart
	Added *session.PendingDish `json:"added,omitempty"`
}

// Confirmation is what the customer sees after a successful checkout
type Confirmation struct {
	OrderID       int64               `json:"orderId"`
	Status        order.Status        `json:"status"`
	Total         decimal.Decimal     `json:"total"`
	PaymentMethod order.PaymentMethod `json:"paymentMethod"`
}
