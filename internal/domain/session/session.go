// Package session models the authenticated session of one browser and the
// store that persists it between requests.
package session

import (
	"time"
)

// User is the identity attached to an authenticated session
type User struct {
	ID       int64   `json:"id,omitempty"`
	FullName string  `json:"fullName"`
	Email    string  `json:"email"`
	Roles    RoleSet `json:"roles"`
}

// HasRole reports whether the user carries the role
func (u *User) HasRole(role Role) bool {
	return u != nil && u.Roles.Has(role)
}

// Clone returns a deep copy of the user
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.Roles = make(RoleSet, len(u.Roles))
	for r := range u.Roles {
		c.Roles[r] = struct{}{}
	}
	return &c
}

// Session is the token and user pair. Either both are present or neither is.
type Session struct {
	Token     string    `json:"token,omitempty"`
	User      *User     `json:"user,omitempty"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
}

// IsAuthenticated reports whether a token and a user are both present
func (s Session) IsAuthenticated() bool {
	return s.Token != "" && s.User != nil
}

// HasRole reports whether the session's user carries the role
func (s Session) HasRole(role Role) bool {
	return s.IsAuthenticated() && s.User.HasRole(role)
}

// Expired reports whether the session outlived the token's expiry.
// A zero ExpiresAt means the expiry is unknown and the backend decides.
func (s Session) Expired(now time.Time) bool {
	return s.IsAuthenticated() && !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// PendingDish remembers a dish the visitor tried to add before logging in,
// so the menu view can offer it again after the login round trip.
type PendingDish struct {
	RestaurantID int64  `json:"restaurantId"`
	DishID       int64  `json:"dishId"`
	Name         string `json:"name,omitempty"`
}

// Record is everything the store keeps for one browser
type Record struct {
	Session     Session
	Redirect    string
	PendingDish *PendingDish
}
