package handler

import (
	"github.com/delivery/storefront/internal/application/ordering"
	"github.com/delivery/storefront/internal/domain/session"
	"github.com/delivery/storefront/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// CartHandler handles cart edits and checkout from a restaurant's menu.
// These routes are public; the services require login themselves so that
// the menu and the picked dish are remembered for after login.
type CartHandler struct {
	BaseHandler
	carts    *ordering.CartService
	checkout *ordering.CheckoutService
}

// NewCartHandler creates a new cart handler
func NewCartHandler(carts *ordering.CartService, checkout *ordering.CheckoutService) *CartHandler {
	return &CartHandler{
		carts:    carts,
		checkout: checkout,
	}
}

// menuRequest reads the restaurant id and the session, and makes the menu
// the current view for the rest of the request
func (h *CartHandler) menuRequest(c *gin.Context) (int64, *session.Handle, bool) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return 0, nil, false
	}
	s, ok := h.sessionOf(c)
	if !ok {
		return 0, nil, false
	}
	middleware.WithViewPath(c, ordering.MenuPath(id))
	return id, s, true
}

// View returns the cart for a restaurant
// GET /restaurants/:id/cart
func (h *CartHandler) View(c *gin.Context) {
	id, s, ok := h.menuRequest(c)
	if !ok {
		return
	}

	view, err := h.carts.View(c.Request.Context(), s, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// AddItem puts one more of a dish in the cart
// POST /restaurants/:id/cart/items
func (h *CartHandler) AddItem(c *gin.Context) {
	id, s, ok := h.menuRequest(c)
	if !ok {
		return
	}
	var req AddToCartRequest
	if !h.bindJSON(c, &req) {
		return
	}

	view, err := h.carts.Add(c.Request.Context(), s, id, req.DishID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// SetQuantity changes a line's quantity
// PUT /restaurants/:id/cart/items/:dishId
func (h *CartHandler) SetQuantity(c *gin.Context) {
	id, s, ok := h.menuRequest(c)
	if !ok {
		return
	}
	dishID, ok := h.parseID(c, "dishId")
	if !ok {
		return
	}
	var req SetQuantityRequest
	if !h.bindJSON(c, &req) {
		return
	}

	view, err := h.carts.SetQuantity(c.Request.Context(), s, id, dishID, *req.Quantity)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// RemoveItem drops a line from the cart
// DELETE /restaurants/:id/cart/items/:dishId
func (h *CartHandler) RemoveItem(c *gin.Context) {
	id, s, ok := h.menuRequest(c)
	if !ok {
		return
	}
	dishID, ok := h.parseID(c, "dishId")
	if !ok {
		return
	}

	view, err := h.carts.Remove(c.Request.Context(), s, id, dishID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// Checkout places the cart as one order
// POST /restaurants/:id/checkout
func (h *CartHandler) Checkout(c *gin.Context) {
	id, s, ok := h.menuRequest(c)
	if !ok {
		return
	}
	var req CheckoutRequest
	if !h.bindJSON(c, &req) {
		return
	}

	confirmation, err := h.checkout.PlaceOrder(c.Request.Context(), s, id, req.PaymentMethod)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, confirmation)
}
