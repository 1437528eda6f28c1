// Package account describes customer accounts as owned by the user service.
package account

import (
	"github.com/delivery/storefront/internal/domain/session"
)

// Address is a delivery address
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	Zip     string `json:"zip"`
	State   string `json:"state"`
	Country string `json:"country"`
}

// Profile is the full account of a user
type Profile struct {
	ID        int64           `json:"id"`
	Email     string          `json:"email"`
	FullName  string          `json:"fullName"`
	CreatedAt string          `json:"createdAt,omitempty"`
	UpdatedAt string          `json:"updatedAt,omitempty"`
	Addresses []Address       `json:"addresses"`
	Roles     session.RoleSet `json:"roles"`
}

// ProfileUpdate replaces the editable part of a profile
type ProfileUpdate struct {
	FullName  string
	Addresses []Address
}

// Registration is the data needed to open an account
type Registration struct {
	Email     string
	Password  string
	FullName  string
	Addresses []Address
}

// Credentials identify a user at login
type Credentials struct {
	Email    string
	Password string
}

// Grant is what the auth service returns when it issues a token
type Grant struct {
	AccessToken  string
	RefreshToken string
	UserID       int64
	Email        string
	FullName     string
	Roles        session.RoleSet
}
