package handler

import (
	"github.com/delivery/storefront/internal/application/admin"
	"github.com/gin-gonic/gin"
)

// AdminHandler serves the administration views
type AdminHandler struct {
	BaseHandler
	service *admin.Service
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(service *admin.Service) *AdminHandler {
	return &AdminHandler{
		service: service,
	}
}

func (h *AdminHandler) confirmed(c *gin.Context) (bool, bool) {
	var q ConfirmQuery
	if !h.bindQuery(c, &q) {
		return false, false
	}
	return q.Confirm, true
}

// ListUsers lists all accounts
// GET /admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.service.Users(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	successPage(&h.BaseHandler, c, users)
}

// DeleteUser removes an account
// DELETE /admin/users/:id?confirm=true
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	confirm, ok := h.confirmed(c)
	if !ok {
		return
	}

	if err := h.service.DeleteUser(c.Request.Context(), id, confirm); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// UserOrders lists a user's orders with restaurant names
// GET /admin/users/:id/orders
func (h *AdminHandler) UserOrders(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	orders, err := h.service.UserOrders(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, orders)
}

// UpdateOrderStatus moves an order to another status
// PATCH /admin/orders/:id/status
func (h *AdminHandler) UpdateOrderStatus(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req OrderStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}

	status, err := h.service.UpdateOrderStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, OrderStatusResponse{OrderID: id, Status: string(status)})
}

// CreateRestaurant adds a restaurant
// POST /admin/restaurants
func (h *AdminHandler) CreateRestaurant(c *gin.Context) {
	var req RestaurantRequest
	if !h.bindJSON(c, &req) {
		return
	}

	restaurant, err := h.service.CreateRestaurant(c.Request.Context(), req.ToDomain())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, restaurant)
}

// UpdateRestaurant replaces a restaurant's details
// PUT /admin/restaurants/:id
func (h *AdminHandler) UpdateRestaurant(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req RestaurantRequest
	if !h.bindJSON(c, &req) {
		return
	}

	restaurant, err := h.service.UpdateRestaurant(c.Request.Context(), id, req.ToDomain())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, restaurant)
}

// DeleteRestaurant removes a restaurant
// DELETE /admin/restaurants/:id?confirm=true
func (h *AdminHandler) DeleteRestaurant(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	confirm, ok := h.confirmed(c)
	if !ok {
		return
	}

	if err := h.service.DeleteRestaurant(c.Request.Context(), id, confirm); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Dishes lists a restaurant's menu
// GET /admin/restaurants/:id/dishes
func (h *AdminHandler) Dishes(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	dishes, err := h.service.Dishes(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dishes)
}

// CreateDish adds a dish to a restaurant's menu
// POST /admin/restaurants/:id/dishes
func (h *AdminHandler) CreateDish(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req DishRequest
	if !h.bindJSON(c, &req) {
		return
	}

	dish, err := h.service.CreateDish(c.Request.Context(), id, req.ToDomain())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, dish)
}

// UpdateDish replaces a dish
// PUT /admin/restaurants/:id/dishes/:dishId
func (h *AdminHandler) UpdateDish(c *gin.Context) {
	if _, ok := h.parseID(c, "id"); !ok {
		return
	}
	dishID, ok := h.parseID(c, "dishId")
	if !ok {
		return
	}
	var req DishRequest
	if !h.bindJSON(c, &req) {
		return
	}

	dish, err := h.service.UpdateDish(c.Request.Context(), dishID, req.ToDomain())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dish)
}

// DeleteDish removes a dish
// DELETE /admin/restaurants/:id/dishes/:dishId?confirm=true
func (h *AdminHandler) DeleteDish(c *gin.Context) {
	if _, ok := h.parseID(c, "id"); !ok {
		return
	}
	dishID, ok := h.parseID(c, "dishId")
	if !ok {
		return
	}
	confirm, ok := h.confirmed(c)
	if !ok {
		return
	}

	if err := h.service.DeleteDish(c.Request.Context(), dishID, confirm); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
