package handler

import (
	"net/http"

	"github.com/delivery/storefront/internal/application/identity"
	"github.com/delivery/storefront/internal/application/navigation"
	"github.com/gin-gonic/gin"
)

// AuthHandler handles login, registration and logout
type AuthHandler struct {
	BaseHandler
	authService *identity.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *identity.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// View reports the session state for the login and registration views
// GET /login, GET /register
func (h *AuthHandler) View(c *gin.Context) {
	s, ok := h.sessionOf(c)
	if !ok {
		return
	}
	h.Success(c, newSessionResponse(s))
}

// Login authenticates the browser and names the view to continue on:
// the one remembered before login, else home
// POST /login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !h.bindJSON(c, &req) {
		return
	}
	s, ok := h.sessionOf(c)
	if !ok {
		return
	}

	result, err := h.authService.Login(c.Request.Context(), s, identity.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Navigate(c, http.StatusOK, newSessionResponse(s), result.Redirect)
}

// Register opens an account and logs the browser in
// POST /register
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !h.bindJSON(c, &req) {
		return
	}
	s, ok := h.sessionOf(c)
	if !ok {
		return
	}

	result, err := h.authService.Register(c.Request.Context(), s, req.ToInput())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Navigate(c, http.StatusCreated, newSessionResponse(s), result.Redirect)
}

// Logout ends the session
// POST /logout
func (h *AuthHandler) Logout(c *gin.Context) {
	s, ok := h.sessionOf(c)
	if !ok {
		return
	}

	cleared, err := h.authService.Logout(c.Request.Context(), s)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	message := "Logged out"
	if !cleared {
		message = "No active session"
	}
	h.Navigate(c, http.StatusOK, LogoutResponse{Message: message}, navigation.HomePath)
}
