package handler

import (
	"github.com/delivery/storefront/internal/application/ordering"
	"github.com/gin-gonic/gin"
)

// CatalogHandler serves the restaurant listing and menu views
type CatalogHandler struct {
	BaseHandler
	browser *ordering.Browser
	carts   *ordering.CartService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(browser *ordering.Browser, carts *ordering.CartService) *CatalogHandler {
	return &CatalogHandler{
		browser: browser,
		carts:   carts,
	}
}

// List returns a page of restaurants
// GET /restaurants?cuisine=&page=
func (h *CatalogHandler) List(c *gin.Context) {
	var query RestaurantListQuery
	if !h.bindQuery(c, &query) {
		return
	}

	page, err := h.browser.Restaurants(c.Request.Context(), query.ToDomain())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	successPage(&h.BaseHandler, c, page)
}

// Menu opens a restaurant's menu with the browser's cart for it. Opening
// another restaurant's menu starts a new cart.
// GET /restaurants/:id
func (h *CatalogHandler) Menu(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	s, ok := h.sessionOf(c)
	if !ok {
		return
	}

	view, err := h.carts.Open(c.Request.Context(), s, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}
