package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/delivery/storefront/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiter(t *testing.T) {
	t.Run("allows requests within limit", func(t *testing.T) {
		limiter := NewRateLimiter(5, time.Minute)
		defer limiter.Close()

		for i := 0; i < 5; i++ {
			ok, _ := limiter.Allow("client1")
			assert.True(t, ok, "request %d should be allowed", i+1)
		}
	})

	t.Run("blocks requests exceeding limit", func(t *testing.T) {
		limiter := NewRateLimiter(3, time.Minute)
		defer limiter.Close()

		for i := 0; i < 3; i++ {
			ok, _ := limiter.Allow("client2")
			assert.True(t, ok)
		}

		ok, remaining := limiter.Allow("client2")
		assert.False(t, ok)
		assert.Equal(t, 0, remaining)
	})

	t.Run("separate limits per client", func(t *testing.T) {
		limiter := NewRateLimiter(1, time.Minute)
		defer limiter.Close()

		ok, _ := limiter.Allow("clientA")
		assert.True(t, ok)
		ok, _ = limiter.Allow("clientA")
		assert.False(t, ok)

		ok, _ = limiter.Allow("clientB")
		assert.True(t, ok)
	})

	t.Run("refills over the window", func(t *testing.T) {
		limiter := NewRateLimiter(2, time.Minute)
		defer limiter.Close()
		now := time.Now()
		limiter.now = func() time.Time { return now }

		limiter.Allow("client3")
		limiter.Allow("client3")
		ok, _ := limiter.Allow("client3")
		assert.False(t, ok)

		now = now.Add(31 * time.Second)
		ok, _ = limiter.Allow("client3")
		assert.True(t, ok)
	})

	t.Run("cleanup drops idle clients", func(t *testing.T) {
		limiter := NewRateLimiter(2, time.Minute)
		defer limiter.Close()
		now := time.Now()
		limiter.now = func() time.Time { return now }

		limiter.Allow("idle")
		now = now.Add(3 * time.Minute)
		limiter.cleanup()

		limiter.mu.Lock()
		defer limiter.mu.Unlock()
		assert.NotContains(t, limiter.clients, "idle")
	})

	t.Run("close is idempotent", func(t *testing.T) {
		limiter := NewRateLimiter(1, time.Minute)
		limiter.Close()
		assert.NotPanics(t, limiter.Close)
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := NewRateLimiter(2, time.Minute)
	defer limiter.Close()

	r := gin.New()
	r.Use(RequestID())
	r.POST("/login", RateLimit(limiter), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "203.0.113.7:1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := send()
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusOK, send().Code)

	w = send()
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), dto.ErrCodeRateLimited)
}
