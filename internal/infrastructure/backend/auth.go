package backend

import (
	"context"

	"github.com/delivery/storefront/internal/domain/account"
	"github.com/delivery/storefront/internal/infrastructure/serviceclient"
)

// AuthAPI talks to the auth endpoints of the user service
type AuthAPI struct {
	client *serviceclient.Client
}

// NewAuthAPI creates a new AuthAPI
func NewAuthAPI(client *serviceclient.Client) *AuthAPI {
	return &AuthAPI{client: client}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Email     string       `json:"email"`
	Password  string       `json:"password"`
	FullName  string       `json:"fullName"`
	Addresses []addressDTO `json:"addresses"`
}

// grantResponse covers both the login and the register response shapes
type grantResponse struct {
	ID           int64    `json:"id"`
	Email        string   `json:"email"`
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
	FullName     string   `json:"fullName"`
	Roles        roleList `json:"roles"`
}

func (g grantResponse) toDomain() account.Grant {
	return account.Grant{
		AccessToken:  g.AccessToken,
		RefreshToken: g.RefreshToken,
		UserID:       g.ID,
		Email:        g.Email,
		FullName:     g.FullName,
		Roles:        g.Roles.set(),
	}
}

// Login exchanges credentials for a token
func (a *AuthAPI) Login(ctx context.Context, creds account.Credentials) (account.Grant, error) {
	resp, err := a.client.Post(ctx, "/auth/login", loginRequest(creds))
	if err != nil {
		return account.Grant{}, err
	}
	out, err := serviceclient.DecodeJSON[grantResponse](resp)
	if err != nil {
		return account.Grant{}, err
	}
	return out.toDomain(), nil
}

// Register opens an account and returns its first token
func (a *AuthAPI) Register(ctx context.Context, reg account.Registration) (account.Grant, error) {
	resp, err := a.client.Post(ctx, "/auth/register", registerRequest{
		Email:     reg.Email,
		Password:  reg.Password,
		FullName:  reg.FullName,
		Addresses: addressesToWire(reg.Addresses),
	})
	if err != nil {
		return account.Grant{}, err
	}
	out, err := serviceclient.DecodeJSON[grantResponse](resp)
	if err != nil {
		return account.Grant{}, err
	}
	return out.toDomain(), nil
}
