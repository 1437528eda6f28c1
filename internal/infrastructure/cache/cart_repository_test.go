package cache

import (
	"context"
	"testing"
	"time"

	"github.com/delivery/storefront/internal/domain/cart"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filledCart(t *testing.T) *cart.Cart {
	t.Helper()
	c := cart.New(3)
	require.NoError(t, c.Add(cart.Dish{ID: 10, RestaurantID: 3, Name: "Pho", UnitPrice: decimal.RequireFromString("10.00")}))
	require.NoError(t, c.Add(cart.Dish{ID: 10, RestaurantID: 3, Name: "Pho", UnitPrice: decimal.RequireFromString("10.00")}))
	require.NoError(t, c.Add(cart.Dish{ID: 11, RestaurantID: 3, Name: "Tea", UnitPrice: decimal.RequireFromString("5.50")}))
	return c
}

func TestCartRepository_Contract(t *testing.T) {
	_, client := newTestRedis(t)
	repos := map[string]cart.Repository{
		"memory": NewInMemoryCartRepository(time.Hour),
		"redis":  NewRedisCartRepositoryWithClient(client, "test:", time.Hour),
	}
	ctx := context.Background()

	for name, repo := range repos {
		t.Run(name, func(t *testing.T) {
			got, err := repo.Get(ctx, "none")
			require.NoError(t, err)
			assert.Nil(t, got)

			require.NoError(t, repo.Save(ctx, "b1", filledCart(t)))

			got, err = repo.Get(ctx, "b1")
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, int64(3), got.RestaurantID())
			assert.Equal(t, 3, got.ItemCount())
			assert.True(t, decimal.RequireFromString("25.50").Equal(got.Total()))
			assert.Equal(t, int64(10), got.Lines()[0].Dish.ID, "insertion order survives storage")

			require.NoError(t, repo.Delete(ctx, "b1"))
			got, err = repo.Get(ctx, "b1")
			require.NoError(t, err)
			assert.Nil(t, got)
		})
	}
}

func TestInMemoryCartRepository_Expiry(t *testing.T) {
	repo := NewInMemoryCartRepository(time.Minute)
	now := time.Now()
	repo.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "b1", filledCart(t)))
	now = now.Add(2 * time.Minute)

	got, err := repo.Get(ctx, "b1")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, repo.Save(ctx, "b2", cart.New(4)))
	repo.mu.RLock()
	_, kept := repo.entries["b1"]
	repo.mu.RUnlock()
	assert.False(t, kept, "expired carts are swept on write")
}

func TestRedisCartRepository_CorruptValue(t *testing.T) {
	mr, client := newTestRedis(t)
	repo := NewRedisCartRepositoryWithClient(client, "sf:", time.Minute)
	require.NoError(t, mr.Set("sf:cart:b1", "garbage"))

	_, err := repo.Get(context.Background(), "b1")
	assert.Error(t, err)
}
