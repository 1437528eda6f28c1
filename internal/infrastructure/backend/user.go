package backend

import (
	"context"
	"strconv"

	"github.com/delivery/storefront/internal/domain/account"
	"github.com/delivery/storefront/internal/domain/shared"
	"github.com/delivery/storefront/internal/infrastructure/serviceclient"
)

// UserAPI talks to the user endpoints of the user service
type UserAPI struct {
	client *serviceclient.Client
}

// NewUserAPI creates a new UserAPI
func NewUserAPI(client *serviceclient.Client) *UserAPI {
	return &UserAPI{client: client}
}

type userResponse struct {
	ID        int64        `json:"id"`
	Email     string       `json:"email"`
	FullName  string       `json:"fullName"`
	CreatedAt string       `json:"createdAt"`
	UpdatedAt string       `json:"updatedAt"`
	Addresses []addressDTO `json:"addresses"`
	Roles     roleList     `json:"roles"`
}

func (u userResponse) toDomain() account.Profile {
	return account.Profile{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
		Addresses: addressesFromWire(u.Addresses),
		Roles:     u.Roles.set(),
	}
}

type updateUserRequest struct {
	FullName  string       `json:"fullName"`
	Addresses []addressDTO `json:"addresses"`
}

func decodeProfile(resp *serviceclient.Response) (account.Profile, error) {
	out, err := serviceclient.DecodeJSON[userResponse](resp)
	if err != nil {
		return account.Profile{}, err
	}
	return out.toDomain(), nil
}

// Me returns the profile of the session's user
func (a *UserAPI) Me(ctx context.Context) (account.Profile, error) {
	resp, err := a.client.Get(ctx, "/users/me", nil)
	if err != nil {
		return account.Profile{}, err
	}
	return decodeProfile(resp)
}

// UpdateMe replaces the full name and addresses of the session's user
func (a *UserAPI) UpdateMe(ctx context.Context, upd account.ProfileUpdate) (account.Profile, error) {
	resp, err := a.client.Put(ctx, "/users/me", updateUserRequest{
		FullName:  upd.FullName,
		Addresses: addressesToWire(upd.Addresses),
	})
	if err != nil {
		return account.Profile{}, err
	}
	return decodeProfile(resp)
}

// List returns all users (admin)
func (a *UserAPI) List(ctx context.Context) (shared.Paginated[account.Profile], error) {
	resp, err := a.client.Get(ctx, "/users", nil)
	if err != nil {
		return shared.Paginated[account.Profile]{}, err
	}
	page, err := serviceclient.DecodePage[userResponse](resp)
	if err != nil {
		return shared.Paginated[account.Profile]{}, err
	}
	return mapPage(page, userResponse.toDomain), nil
}

// Delete removes a user (admin)
func (a *UserAPI) Delete(ctx context.Context, id int64) error {
	_, err := a.client.Delete(ctx, "/users/"+strconv.FormatInt(id, 10))
	return err
}

// mapPage converts the items of a page, keeping its counters
func mapPage[From, To any](p shared.Paginated[From], fn func(From) To) shared.Paginated[To] {
	items := make([]To, 0, len(p.Items))
	for _, item := range p.Items {
		items = append(items, fn(item))
	}
	return shared.Paginated[To]{
		Items:      items,
		Total:      p.Total,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: p.TotalPages,
	}
}
