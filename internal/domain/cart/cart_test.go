package cart

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dish(id int64, price string) Dish {
	return Dish{ID: id, RestaurantID: 7, Name: "dish", UnitPrice: decimal.RequireFromString(price)}
}

func TestCart_Add(t *testing.T) {
	t.Run("adding the same dish twice yields one line with quantity 2", func(t *testing.T) {
		c := New(7)
		require.NoError(t, c.Add(dish(1, "10.00")))
		require.NoError(t, c.Add(dish(1, "10.00")))

		lines := c.Lines()
		require.Len(t, lines, 1)
		assert.Equal(t, 2, lines[0].Quantity)
	})

	t.Run("keeps insertion order", func(t *testing.T) {
		c := New(7)
		require.NoError(t, c.Add(dish(3, "1")))
		require.NoError(t, c.Add(dish(1, "1")))
		require.NoError(t, c.Add(dish(3, "1")))

		lines := c.Lines()
		assert.Equal(t, int64(3), lines[0].Dish.ID)
		assert.Equal(t, int64(1), lines[1].Dish.ID)
	})

	t.Run("rejects another restaurant's dish while not empty", func(t *testing.T) {
		c := New(7)
		require.NoError(t, c.Add(dish(1, "10")))

		other := dish(2, "5")
		other.RestaurantID = 8
		assert.ErrorIs(t, c.Add(other), ErrRestaurantMismatch)
		assert.Equal(t, 1, c.ItemCount())
	})

	t.Run("empty cart rebinds to the dish's restaurant", func(t *testing.T) {
		c := New(7)
		other := dish(2, "5")
		other.RestaurantID = 8
		require.NoError(t, c.Add(other))
		assert.Equal(t, int64(8), c.RestaurantID())
	})

	t.Run("rejects negative price and missing id", func(t *testing.T) {
		c := New(7)
		assert.ErrorIs(t, c.Add(dish(1, "-1")), ErrInvalidPrice)
		assert.ErrorIs(t, c.Add(dish(0, "1")), ErrInvalidDish)
		assert.True(t, c.IsEmpty())
	})
}

func TestCart_Totals(t *testing.T) {
	t.Run("10.00 x2 and 5.50 x1 totals 25.50 over 3 items", func(t *testing.T) {
		c := New(7)
		require.NoError(t, c.Add(dish(1, "10.00")))
		require.NoError(t, c.Add(dish(1, "10.00")))
		require.NoError(t, c.Add(dish(2, "5.50")))

		assert.True(t, decimal.RequireFromString("25.50").Equal(c.Total()), c.Total().String())
		assert.Equal(t, 3, c.ItemCount())
	})

	t.Run("total follows every mutation", func(t *testing.T) {
		c := New(7)
		require.NoError(t, c.Add(dish(1, "2.25")))
		require.NoError(t, c.SetQuantity(1, 4))
		assert.Equal(t, "9", c.Total().String())

		c.Remove(1)
		assert.True(t, c.Total().IsZero())
	})
}

func TestCart_SetQuantity(t *testing.T) {
	t.Run("zero removes the line and the item count excludes it", func(t *testing.T) {
		c := New(7)
		require.NoError(t, c.Add(dish(1, "10")))
		require.NoError(t, c.Add(dish(2, "3")))
		require.NoError(t, c.SetQuantity(1, 0))

		_, ok := c.Line(1)
		assert.False(t, ok)
		assert.Equal(t, 1, c.ItemCount())
	})

	t.Run("negative removes too", func(t *testing.T) {
		c := New(7)
		require.NoError(t, c.Add(dish(1, "10")))
		require.NoError(t, c.SetQuantity(1, -3))
		assert.True(t, c.IsEmpty())
	})

	t.Run("unknown dish", func(t *testing.T) {
		c := New(7)
		assert.ErrorIs(t, c.SetQuantity(9, 2), ErrLineNotFound)
		assert.NoError(t, c.SetQuantity(9, 0))
	})
}

func TestCart_LinesIsACopy(t *testing.T) {
	c := New(7)
	require.NoError(t, c.Add(dish(1, "10")))

	lines := c.Lines()
	lines[0].Quantity = 99
	l, _ := c.Line(1)
	assert.Equal(t, 1, l.Quantity)
}

func TestCart_JSON(t *testing.T) {
	c := New(7)
	require.NoError(t, c.Add(dish(1, "10.00")))
	require.NoError(t, c.SetQuantity(1, 3))

	data, err := json.Marshal(c)
	require.NoError(t, err)

	restored := &Cart{}
	require.NoError(t, json.Unmarshal(data, restored))
	assert.Equal(t, int64(7), restored.RestaurantID())
	assert.Equal(t, 3, restored.ItemCount())
	assert.True(t, c.Total().Equal(restored.Total()))

	t.Run("rejects corrupt lines", func(t *testing.T) {
		err := json.Unmarshal([]byte(`{"restaurantId":7,"lines":[{"dish":{"dishId":1,"unitPrice":"1"},"quantity":0}]}`), &Cart{})
		assert.Error(t, err)

		err = json.Unmarshal([]byte(`{"restaurantId":7,"lines":[{"dish":{"dishId":1,"unitPrice":"1"},"quantity":1},{"dish":{"dishId":1,"unitPrice":"1"},"quantity":2}]}`), &Cart{})
		assert.Error(t, err)
	})
}
