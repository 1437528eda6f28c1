// Package metrics exposes the storefront's Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config holds configuration for the registry.
type Config struct {
	// Namespace prefixes every metric name.
	// Default: "storefront"
	Namespace string

	// HistogramBuckets are the buckets for request and backend call durations.
	// Default: prometheus.DefBuckets
	HistogramBuckets []float64
}

// DefaultConfig returns default configuration.
func DefaultConfig() Config {
	return Config{
		Namespace:        "storefront",
		HistogramBuckets: prometheus.DefBuckets,
	}
}

// Registry holds the storefront's metrics on a private registry.
//
// Thread Safety: Safe for concurrent use by multiple goroutines.
type Registry struct {
	registry *prometheus.Registry

	requestsTotal          *prometheus.CounterVec
	requestDurationSeconds *prometheus.HistogramVec
	backendCallsTotal      *prometheus.CounterVec
	backendDurationSeconds *prometheus.HistogramVec
}

// New creates a registry with the request, backend call and runtime metrics.
func New(cfg Config) *Registry {
	if cfg.Namespace == "" {
		cfg.Namespace = "storefront"
	}
	if len(cfg.HistogramBuckets) == 0 {
		cfg.HistogramBuckets = prometheus.DefBuckets
	}

	r := &Registry{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of requests served, by route and status.",
			},
			[]string{"method", "route", "status"},
		),
		requestDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of served requests in seconds.",
				Buckets:   cfg.HistogramBuckets,
			},
			[]string{"method", "route"},
		),
		backendCallsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "backend",
				Name:      "calls_total",
				Help:      "Total number of backend service calls, by outcome.",
			},
			[]string{"service", "method", "outcome"},
		),
		backendDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: "backend",
				Name:      "call_duration_seconds",
				Help:      "Duration of backend service calls in seconds.",
				Buckets:   cfg.HistogramBuckets,
			},
			[]string{"service"},
		),
	}

	r.registry.MustRegister(
		r.requestsTotal,
		r.requestDurationSeconds,
		r.backendCallsTotal,
		r.backendDurationSeconds,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// ObserveRequest records one served request. route is the route pattern,
// not the raw path, so ids do not explode the label set.
func (r *Registry) ObserveRequest(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	r.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.requestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveCall records one backend service call.
func (r *Registry) ObserveCall(service, method, outcome string, duration time.Duration) {
	r.backendCallsTotal.WithLabelValues(service, method, outcome).Inc()
	r.backendDurationSeconds.WithLabelValues(service).Observe(duration.Seconds())
}

// Handler returns the scrape endpoint for this registry.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Gatherer exposes the underlying registry.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}
