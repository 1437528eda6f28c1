// Package identity establishes, reads and ends browser sessions.
package identity

import (
	"context"
	"strings"

	"github.com/delivery/storefront/internal/application/navigation"
	"github.com/delivery/storefront/internal/domain/account"
	"github.com/delivery/storefront/internal/domain/cart"
	"github.com/delivery/storefront/internal/domain/session"
	"github.com/delivery/storefront/internal/domain/shared"
	"github.com/delivery/storefront/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// Authenticator issues tokens
type Authenticator interface {
	Login(ctx context.Context, creds account.Credentials) (account.Grant, error)
	Register(ctx context.Context, reg account.Registration) (account.Grant, error)
}

// ProfileGateway reads and updates the current user's account
type ProfileGateway interface {
	Me(ctx context.Context) (account.Profile, error)
	UpdateMe(ctx context.Context, upd account.ProfileUpdate) (account.Profile, error)
}

// AuthService handles login, registration, logout and the profile views
type AuthService struct {
	authenticator Authenticator
	profiles      ProfileGateway
	carts         cart.Repository
	logger        *zap.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(authenticator Authenticator, profiles ProfileGateway, carts cart.Repository, logger *zap.Logger) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		profiles:      profiles,
		carts:         carts,
		logger:        logger,
	}
}

// Login exchanges credentials for a session and returns where to go next:
// the remembered redirect if any, else the home view.
func (s *AuthService) Login(ctx context.Context, h *session.Handle, input LoginInput) (*AuthResult, error) {
	email := strings.TrimSpace(input.Email)
	grant, err := s.authenticator.Login(ctx, account.Credentials{Email: email, Password: input.Password})
	if err != nil {
		s.logger.Info("Login rejected", zap.String("email", email), zap.Error(err))
		return nil, err
	}
	if grant.Email == "" {
		grant.Email = email
	}
	return s.establish(ctx, h, grant)
}

// Register opens an account and logs the new user in
func (s *AuthService) Register(ctx context.Context, h *session.Handle, input RegisterInput) (*AuthResult, error) {
	email := strings.TrimSpace(input.Email)
	grant, err := s.authenticator.Register(ctx, account.Registration{
		Email:     email,
		Password:  input.Password,
		FullName:  strings.TrimSpace(input.FullName),
		Addresses: input.Addresses,
	})
	if err != nil {
		s.logger.Info("Registration rejected", zap.String("email", email), zap.Error(err))
		return nil, err
	}
	if grant.Email == "" {
		grant.Email = email
	}
	if grant.FullName == "" {
		grant.FullName = strings.TrimSpace(input.FullName)
	}
	// the register response carries no roles; every new account is a customer
	if len(grant.Roles) == 0 {
		grant.Roles = session.NewRoleSet(string(session.RoleUser))
	}
	return s.establish(ctx, h, grant)
}

func (s *AuthService) establish(ctx context.Context, h *session.Handle, grant account.Grant) (*AuthResult, error) {
	if grant.AccessToken == "" {
		return nil, shared.NewDomainError("INVALID_AUTH_RESPONSE", "The server did not issue a session token")
	}

	userID := grant.UserID
	if userID == 0 {
		userID = auth.UserID(grant.AccessToken)
	}
	user := &session.User{
		ID:       userID,
		FullName: grant.FullName,
		Email:    grant.Email,
		Roles:    grant.Roles,
	}
	if user.Roles == nil {
		user.Roles = session.RoleSet{}
	}
	if err := h.Set(ctx, grant.AccessToken, user); err != nil {
		return nil, err
	}

	redirect, err := h.TakeRedirect(ctx)
	if err != nil {
		s.logger.Warn("Failed to read redirect after login", zap.Error(err))
	}
	if redirect == "" || redirect == navigation.LoginPath {
		redirect = navigation.HomePath
	}

	s.logger.Info("User logged in",
		zap.String("email", user.Email),
		zap.Strings("roles", user.Roles.Names()),
		zap.String("redirect", redirect))

	return &AuthResult{User: user, Redirect: redirect}, nil
}

// Logout ends the session and discards the browser's cart. It reports
// whether a session was present.
func (s *AuthService) Logout(ctx context.Context, h *session.Handle) (bool, error) {
	cleared, err := h.Clear(ctx)
	if err != nil {
		return false, err
	}
	if err := s.carts.Delete(ctx, h.ID()); err != nil {
		s.logger.Warn("Failed to discard cart on logout", zap.Error(err))
	}
	return cleared, nil
}

// Profile returns the current user's account
func (s *AuthService) Profile(ctx context.Context) (*account.Profile, error) {
	p, err := s.profiles.Me(ctx)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProfile replaces the full name and addresses and refreshes the
// display name held in the session
func (s *AuthService) UpdateProfile(ctx context.Context, h *session.Handle, input UpdateProfileInput) (*account.Profile, error) {
	p, err := s.profiles.UpdateMe(ctx, account.ProfileUpdate{
		FullName:  strings.TrimSpace(input.FullName),
		Addresses: input.Addresses,
	})
	if err != nil {
		return nil, err
	}

	if user := h.User(); user != nil && p.FullName != "" && p.FullName != user.FullName {
		user.FullName = p.FullName
		if err := h.Set(ctx, h.Token(), user); err != nil {
			s.logger.Warn("Failed to refresh session user", zap.Error(err))
		}
	}
	return &p, nil
}
