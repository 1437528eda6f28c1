package handler

import (
	"github.com/delivery/storefront/internal/application/identity"
	"github.com/delivery/storefront/internal/application/ordering"
	"github.com/gin-gonic/gin"
)

// ProfileHandler serves the views of a logged-in customer
type ProfileHandler struct {
	BaseHandler
	authService *identity.AuthService
	history     *ordering.OrderHistory
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(authService *identity.AuthService, history *ordering.OrderHistory) *ProfileHandler {
	return &ProfileHandler{
		authService: authService,
		history:     history,
	}
}

// Home returns the session user for the home view
// GET /
func (h *ProfileHandler) Home(c *gin.Context) {
	s, ok := h.sessionOf(c)
	if !ok {
		return
	}
	h.Success(c, newSessionResponse(s))
}

// Profile returns the user's account
// GET /profile
func (h *ProfileHandler) Profile(c *gin.Context) {
	profile, err := h.authService.Profile(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, profile)
}

// UpdateProfile replaces the user's name and addresses
// PUT /profile
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if !h.bindJSON(c, &req) {
		return
	}
	s, ok := h.sessionOf(c)
	if !ok {
		return
	}

	profile, err := h.authService.UpdateProfile(c.Request.Context(), s, req.ToInput())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, profile)
}

// Orders lists the user's orders
// GET /orders
func (h *ProfileHandler) Orders(c *gin.Context) {
	orders, err := h.history.Mine(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, orders)
}
