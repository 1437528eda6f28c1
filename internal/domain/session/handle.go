package session

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// ExpiryFunc extracts the expiry time of a backend token, false if unknown
type ExpiryFunc func(token string) (time.Time, bool)

// Manager opens per-request handles over a single shared Store
type Manager struct {
	store  Store
	expiry ExpiryFunc
	now    func() time.Time
}

// ManagerOption is a functional option for Manager
type ManagerOption func(*Manager)

// WithExpiryFunc sets how token expiry is read when a session is established
func WithExpiryFunc(fn ExpiryFunc) ManagerOption {
	return func(m *Manager) {
		m.expiry = fn
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates a Manager over the given store
func NewManager(store Store, opts ...ManagerOption) *Manager {
	m := &Manager{
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Open loads the browser's record and returns a handle for the current request
func (m *Manager) Open(ctx context.Context, id string) (*Handle, error) {
	rec, err := m.store.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if !rec.Session.IsAuthenticated() {
		rec.Session = Session{}
	}
	return &Handle{
		id:      id,
		manager: m,
		session: rec.Session,
	}, nil
}

// Handle is one request's view of a browser session. Reads are served from
// the snapshot taken at Open; writes go through the store first.
type Handle struct {
	id      string
	manager *Manager

	mu      sync.RWMutex
	session Session
}

// ID returns the browser id
func (h *Handle) ID() string {
	return h.id
}

// Session returns a copy of the current session
func (h *Handle) Session() Session {
	h.mu.RLock()
	defer h.mu.RUnlock()
	s := h.session
	s.User = s.User.Clone()
	return s
}

// Token returns the bearer token, empty when unauthenticated
func (h *Handle) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.session.Token
}

// User returns a copy of the session user, nil when unauthenticated
func (h *Handle) User() *User {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.session.User.Clone()
}

// IsAuthenticated reports whether the session holds a token and user
func (h *Handle) IsAuthenticated() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.session.IsAuthenticated()
}

// HasRole reports whether the session user carries the role
func (h *Handle) HasRole(role Role) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.session.HasRole(role)
}

// Expired reports whether the stored token is past its expiry
func (h *Handle) Expired() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.session.Expired(h.manager.now())
}

// Set establishes the session from a freshly issued token
func (h *Handle) Set(ctx context.Context, token string, user *User) error {
	s := Session{Token: token, User: user.Clone()}
	if err := s.Validate(); err != nil {
		return err
	}
	if h.manager.expiry != nil {
		if exp, ok := h.manager.expiry(token); ok {
			s.ExpiresAt = exp
		}
	}
	if err := h.manager.store.Save(ctx, h.id, s); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	h.mu.Lock()
	h.session = s
	h.mu.Unlock()
	return nil
}

// Clear removes the session. It reports whether this call logged the browser out.
func (h *Handle) Clear(ctx context.Context) (bool, error) {
	cleared, err := h.manager.store.Clear(ctx, h.id)
	h.reset()
	if err != nil {
		return false, fmt.Errorf("clear session: %w", err)
	}
	return cleared, nil
}

// Expire clears the session after the backend rejected the token. The
// return path is recorded only by the call that performed the transition,
// so concurrent rejections leave exactly one redirect behind.
func (h *Handle) Expire(ctx context.Context, returnTo string) (bool, error) {
	expired, err := h.manager.store.Expire(ctx, h.id, returnTo)
	h.reset()
	if err != nil {
		return false, fmt.Errorf("expire session: %w", err)
	}
	return expired, nil
}

// RememberRedirect records where to go after the next login
func (h *Handle) RememberRedirect(ctx context.Context, path string) error {
	return h.manager.store.SetRedirect(ctx, h.id, path)
}

// TakeRedirect consumes the post-login redirect, empty if none
func (h *Handle) TakeRedirect(ctx context.Context) (string, error) {
	return h.manager.store.TakeRedirect(ctx, h.id)
}

// RememberPendingDish records a dish to offer again after login
func (h *Handle) RememberPendingDish(ctx context.Context, dish PendingDish) error {
	return h.manager.store.SetPendingDish(ctx, h.id, dish)
}

// TakePendingDish consumes the pending dish, nil if none
func (h *Handle) TakePendingDish(ctx context.Context) (*PendingDish, error) {
	return h.manager.store.TakePendingDish(ctx, h.id)
}

func (h *Handle) reset() {
	h.mu.Lock()
	h.session = Session{}
	h.mu.Unlock()
}
