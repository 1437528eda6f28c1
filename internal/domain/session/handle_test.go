package session_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/delivery/storefront/internal/domain/session"
	"github.com/delivery/storefront/internal/infrastructure/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T, opts ...session.ManagerOption) *session.Manager {
	t.Helper()
	store := cache.NewInMemorySessionStore(time.Hour)
	t.Cleanup(func() { _ = store.Close() })
	return session.NewManager(store, opts...)
}

func user() *session.User {
	return &session.User{ID: 1, FullName: "Grace Hopper", Email: "grace@example.com", Roles: session.NewRoleSet("USER")}
}

func TestHandle_SetAndReopen(t *testing.T) {
	ctx := context.Background()
	exp := time.Now().Add(time.Hour)
	m := newManager(t, session.WithExpiryFunc(func(token string) (time.Time, bool) { return exp, true }))

	h, err := m.Open(ctx, "browser-1")
	require.NoError(t, err)
	assert.False(t, h.IsAuthenticated())
	assert.Empty(t, h.Token())
	assert.Nil(t, h.User())

	require.NoError(t, h.Set(ctx, "T1", user()))
	assert.True(t, h.IsAuthenticated())
	assert.Equal(t, "T1", h.Token())
	assert.True(t, h.HasRole(session.RoleUser))
	assert.False(t, h.HasRole(session.RoleAdmin))

	again, err := m.Open(ctx, "browser-1")
	require.NoError(t, err)
	assert.Equal(t, "T1", again.Token())
	assert.Equal(t, "Grace Hopper", again.User().FullName)
	assert.True(t, exp.Equal(again.Session().ExpiresAt))

	other, err := m.Open(ctx, "browser-2")
	require.NoError(t, err)
	assert.False(t, other.IsAuthenticated(), "sessions are per browser")
}

func TestHandle_SetRejectsIncompleteSessions(t *testing.T) {
	ctx := context.Background()
	h, err := newManager(t).Open(ctx, "b")
	require.NoError(t, err)

	assert.ErrorIs(t, h.Set(ctx, "", user()), session.ErrInvalidSession)
	assert.ErrorIs(t, h.Set(ctx, "T1", nil), session.ErrInvalidSession)
	assert.False(t, h.IsAuthenticated())
}

func TestHandle_UserIsACopy(t *testing.T) {
	ctx := context.Background()
	h, err := newManager(t).Open(ctx, "b")
	require.NoError(t, err)

	u := user()
	require.NoError(t, h.Set(ctx, "T1", u))
	u.FullName = "changed"
	h.User().FullName = "changed too"

	assert.Equal(t, "Grace Hopper", h.User().FullName)
}

func TestHandle_Clear(t *testing.T) {
	ctx := context.Background()
	m := newManager(t)
	h, err := m.Open(ctx, "b")
	require.NoError(t, err)
	require.NoError(t, h.Set(ctx, "T1", user()))

	cleared, err := h.Clear(ctx)
	require.NoError(t, err)
	assert.True(t, cleared)
	assert.False(t, h.IsAuthenticated())

	cleared, err = h.Clear(ctx)
	require.NoError(t, err)
	assert.False(t, cleared)

	reopened, err := m.Open(ctx, "b")
	require.NoError(t, err)
	assert.False(t, reopened.IsAuthenticated())
}

func TestHandle_Expired(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	m := newManager(t,
		session.WithExpiryFunc(func(string) (time.Time, bool) { return now.Add(time.Minute), true }),
		session.WithClock(func() time.Time { return now }),
	)
	h, err := m.Open(ctx, "b")
	require.NoError(t, err)
	require.NoError(t, h.Set(ctx, "T1", user()))
	assert.False(t, h.Expired())

	now = now.Add(2 * time.Minute)
	assert.True(t, h.Expired())
}

func TestHandle_ConcurrentExpireLeavesOneRedirect(t *testing.T) {
	ctx := context.Background()
	m := newManager(t)

	first, err := m.Open(ctx, "b")
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "T1", user()))

	// several in-flight requests all opened the session before any 401 arrived
	handles := make([]*session.Handle, 8)
	for i := range handles {
		handles[i], err = m.Open(ctx, "b")
		require.NoError(t, err)
	}

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i, h := range handles {
		wg.Add(1)
		go func(i int, h *session.Handle) {
			defer wg.Done()
			returnTo := "/orders"
			if i%2 == 1 {
				returnTo = "/profile"
			}
			ok, err := h.Expire(ctx, returnTo)
			assert.NoError(t, err)
			if ok {
				wins.Add(1)
			}
			assert.False(t, h.IsAuthenticated())
		}(i, h)
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())

	redirect, err := first.TakeRedirect(ctx)
	require.NoError(t, err)
	assert.Contains(t, []string{"/orders", "/profile"}, redirect)

	redirect, err = first.TakeRedirect(ctx)
	require.NoError(t, err)
	assert.Empty(t, redirect)
}

func TestHandle_PendingDish(t *testing.T) {
	ctx := context.Background()
	h, err := newManager(t).Open(ctx, "b")
	require.NoError(t, err)

	require.NoError(t, h.RememberRedirect(ctx, "/restaurants/3"))
	require.NoError(t, h.RememberPendingDish(ctx, session.PendingDish{RestaurantID: 3, DishID: 9, Name: "Pho"}))

	path, err := h.TakeRedirect(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/restaurants/3", path)

	dish, err := h.TakePendingDish(ctx)
	require.NoError(t, err)
	require.NotNil(t, dish)
	assert.Equal(t, int64(9), dish.DishID)
}

func TestContext(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, session.FromContext(ctx))

	h, err := newManager(t).Open(ctx, "b")
	require.NoError(t, err)
	assert.Same(t, h, session.FromContext(session.WithHandle(ctx, h)))
}
