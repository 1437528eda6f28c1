package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "storefront", cfg.Namespace)
	assert.Equal(t, prometheus.DefBuckets, cfg.HistogramBuckets)
}

func TestRegistry_ObserveRequest(t *testing.T) {
	r := New(Config{})

	r.ObserveRequest(http.MethodGet, "/restaurants/:id", http.StatusOK, 20*time.Millisecond)
	r.ObserveRequest(http.MethodGet, "/restaurants/:id", http.StatusOK, 30*time.Millisecond)
	r.ObserveRequest(http.MethodPost, "", http.StatusNotFound, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.requestsTotal.WithLabelValues("GET", "/restaurants/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.requestsTotal.WithLabelValues("POST", "unmatched", "404")))
	assert.Equal(t, 2, testutil.CollectAndCount(r.requestDurationSeconds))
}

func TestRegistry_ObserveCall(t *testing.T) {
	r := New(Config{Namespace: "test"})

	r.ObserveCall("order", http.MethodPost, "ok", 10*time.Millisecond)
	r.ObserveCall("order", http.MethodPost, "network", time.Second)
	r.ObserveCall("restaurant", http.MethodGet, "ok", 5*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.backendCallsTotal.WithLabelValues("order", "POST", "network")))
	assert.Equal(t, 3, testutil.CollectAndCount(r.backendCallsTotal))
	assert.Equal(t, 2, testutil.CollectAndCount(r.backendDurationSeconds))
}

func TestRegistry_Handler(t *testing.T) {
	r := New(DefaultConfig())
	r.ObserveCall("auth", http.MethodPost, "unauthorized", time.Millisecond)

	w := httptest.NewRecorder()
	r.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `storefront_backend_calls_total{method="POST",outcome="unauthorized",service="auth"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
