package identity

import (
	"github.com/delivery/storefront/internal/domain/account"
	"github.com/delivery/storefront/internal/domain/session"
)

// LoginInput represents login credentials
type LoginInput struct {
	Email    string
	Password string
}

// RegisterInput represents the data to open an account
type RegisterInput struct {
	Email     string
	Password  string
	FullName  string
	Addresses []account.Address
}

// AuthResult is the session established by login or registration and the
// view to navigate to next
type AuthResult struct {
	User     *session.User
	Redirect string
}

// UpdateProfileInput replaces the editable part of the profile
type UpdateProfileInput struct {
	FullName  string
	Addresses []account.Address
}
