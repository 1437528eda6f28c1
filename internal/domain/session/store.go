package session

import (
	"context"
	"errors"
)

// ErrInvalidSession is returned when a session is saved without a token or user
var ErrInvalidSession = errors.New("session requires both a token and a user")

// Store persists session records keyed by browser id.
// Implementations must be safe for concurrent use across requests and
// processes that share the same backing store.
type Store interface {
	// Load returns the record for the browser; an unknown id yields an empty record
	Load(ctx context.Context, id string) (Record, error)

	// Save stores the token and user, replacing any previous session
	Save(ctx context.Context, id string, s Session) error

	// Clear removes the token and user. It reports whether this call
	// performed the present to absent transition.
	Clear(ctx context.Context, id string) (bool, error)

	// Expire clears the session and, only on the call that performed the
	// transition, records returnTo as the post-login redirect.
	Expire(ctx context.Context, id, returnTo string) (bool, error)

	// SetRedirect records the path to return to after login
	SetRedirect(ctx context.Context, id, path string) error

	// TakeRedirect returns and removes the recorded redirect path
	TakeRedirect(ctx context.Context, id string) (string, error)

	// SetPendingDish records a dish to offer again after login
	SetPendingDish(ctx context.Context, id string, dish PendingDish) error

	// TakePendingDish returns and removes the recorded dish, nil if none
	TakePendingDish(ctx context.Context, id string) (*PendingDish, error)

	// Close releases resources held by the store
	Close() error
}

// Validate checks the token and user invariant before a save
func (s Session) Validate() error {
	if s.Token == "" || s.User == nil {
		return ErrInvalidSession
	}
	return nil
}
