package handler

import (
	"github.com/delivery/storefront/internal/application/identity"
	"github.com/delivery/storefront/internal/domain/account"
	"github.com/delivery/storefront/internal/domain/session"
)

// =====================
// Auth Request DTOs
// =====================

// LoginRequest represents the request body for user login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AddressRequest is one delivery address
type AddressRequest struct {
	Street  string `json:"street" binding:"required"`
	City    string `json:"city" binding:"required"`
	Zip     string `json:"zip" binding:"required"`
	State   string `json:"state" binding:"required"`
	Country string `json:"country" binding:"required"`
}

func toAddresses(in []AddressRequest) []account.Address {
	out := make([]account.Address, 0, len(in))
	for _, a := range in {
		out = append(out, account.Address{
			Street:  a.Street,
			City:    a.City,
			Zip:     a.Zip,
			State:   a.State,
			Country: a.Country,
		})
	}
	return out
}

// RegisterRequest represents the request body for opening an account
type RegisterRequest struct {
	Email     string           `json:"email" binding:"required,email"`
	Password  string           `json:"password" binding:"required,min=6,max=20"`
	FullName  string           `json:"fullName" binding:"required,min=2,max=20"`
	Addresses []AddressRequest `json:"addresses" binding:"omitempty,dive"`
}

// ToInput converts the request to the identity input
func (r RegisterRequest) ToInput() identity.RegisterInput {
	return identity.RegisterInput{
		Email:     r.Email,
		Password:  r.Password,
		FullName:  r.FullName,
		Addresses: toAddresses(r.Addresses),
	}
}

// UpdateProfileRequest replaces the editable part of the profile
type UpdateProfileRequest struct {
	FullName  string           `json:"fullName" binding:"required,min=2,max=20"`
	Addresses []AddressRequest `json:"addresses" binding:"omitempty,dive"`
}

// ToInput converts the request to the identity input
func (r UpdateProfileRequest) ToInput() identity.UpdateProfileInput {
	return identity.UpdateProfileInput{
		FullName:  r.FullName,
		Addresses: toAddresses(r.Addresses),
	}
}

// =====================
// Auth Response DTOs
// =====================

// SessionResponse describes the browser's session
type SessionResponse struct {
	Authenticated bool          `json:"authenticated"`
	User          *session.User `json:"user,omitempty"`
	IsAdmin       bool          `json:"isAdmin"`
}

func newSessionResponse(h *session.Handle) SessionResponse {
	return SessionResponse{
		Authenticated: h.IsAuthenticated(),
		User:          h.User(),
		IsAdmin:       h.HasRole(session.RoleAdmin),
	}
}

// LogoutResponse represents the response body for logout
type LogoutResponse struct {
	Message string `json:"message"`
}
