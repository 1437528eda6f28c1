package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/delivery/storefront/internal/infrastructure/backend"
	"github.com/delivery/storefront/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// HealthChecker reports the status of one dependency
type HealthChecker interface {
	Name() string
	Check(ctx context.Context) (string, error)
}

// HealthResponse is the aggregated status of the storefront's backends
type HealthResponse struct {
	Status   string            `json:"status"`
	Time     string            `json:"time"`
	Services map[string]string `json:"services"`
}

// HealthHandler checks every backend the storefront depends on
type HealthHandler struct {
	checkers []HealthChecker
	timeout  time.Duration
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(timeout time.Duration, checkers ...HealthChecker) *HealthHandler {
	return &HealthHandler{checkers: checkers, timeout: timeout}
}

// Check probes all backends at once. The storefront is UP only when every
// backend is.
// GET /health
func (h *HealthHandler) Check(c *gin.Context) {
	ctx := c.Request.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}
	reqLog := logger.GetGinLogger(c)

	var mu sync.Mutex
	services := make(map[string]string, len(h.checkers))
	var g errgroup.Group
	for _, checker := range h.checkers {
		checker := checker
		g.Go(func() error {
			status, err := checker.Check(ctx)
			if err != nil {
				reqLog.Warn("Health check failed", zap.String("service", checker.Name()), zap.Error(err))
			}
			mu.Lock()
			services[checker.Name()] = status
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	resp := HealthResponse{
		Status:   backend.StatusUp,
		Time:     time.Now().Format(time.RFC3339),
		Services: services,
	}
	code := http.StatusOK
	for _, status := range services {
		if status != backend.StatusUp {
			resp.Status = backend.StatusDown
			code = http.StatusServiceUnavailable
			break
		}
	}
	c.JSON(code, resp)
}
