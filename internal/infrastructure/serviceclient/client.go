// Package serviceclient provides the HTTP client the storefront uses for
// each backend service. All clients share request decoration (bearer token,
// request id, trace context) and the 401 session policy; each keeps its own
// base address so one failing backend does not affect the others.
package serviceclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/delivery/storefront/internal/infrastructure/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	// DefaultTimeout bounds every backend call
	DefaultTimeout = 10 * time.Second

	maxResponseBytes = 10 << 20
	tracerName       = "github.com/delivery/storefront/serviceclient"
)

// DefaultPublicPaths are exempt from the 401 session policy
var DefaultPublicPaths = []string{"/auth/login", "/auth/register", "/auth/refresh"}

// SessionPolicy connects a client to the browser session of the current request
type SessionPolicy interface {
	// Token returns the bearer token to attach, empty for none
	Token(ctx context.Context) string
	// Unauthorized is called on a 401 from a protected request. It returns
	// the path the browser should be sent to, empty to stay put.
	Unauthorized(ctx context.Context) string
}

// CallObserver records the outcome of every backend call. outcome is "ok"
// or the Kind of the failure.
type CallObserver interface {
	ObserveCall(service, method, outcome string, duration time.Duration)
}

// Config configures one service client
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	Headers   map[string]string
}

// Client is the HTTP client for one backend service
type Client struct {
	name        string
	baseURL     *url.URL
	httpClient  *http.Client
	headers     map[string]string
	policy      SessionPolicy
	logger      *zap.Logger
	publicPaths []string
	tracer      trace.Tracer
	propagator  propagation.TextMapPropagator
	observer    CallObserver
}

// Option is a functional option for Client
type Option func(*Client)

// WithSessionPolicy sets the session policy
func WithSessionPolicy(p SessionPolicy) Option {
	return func(c *Client) {
		c.policy = p
	}
}

// WithLogger sets the fallback logger, used when the request context carries none
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithPublicPaths replaces the paths exempt from the 401 session policy
func WithPublicPaths(paths ...string) Option {
	return func(c *Client) {
		c.publicPaths = paths
	}
}

// WithTracerProvider sets the tracer provider, the global one by default
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) {
		c.tracer = tp.Tracer(tracerName)
	}
}

// WithCallObserver reports every call's outcome and duration to o
func WithCallObserver(o CallObserver) Option {
	return func(c *Client) {
		c.observer = o
	}
}

// New creates a client for the named service
func New(name string, cfg Config, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%s: base URL is required", name)
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%s: invalid base URL %q", name, cfg.BaseURL)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "storefront/1.0"
	}

	c := &Client{
		name:    name,
		baseURL: base,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		headers: map[string]string{
			"Content-Type": "application/json",
			"Accept":       "application/json",
			"User-Agent":   cfg.UserAgent,
		},
		logger:      zap.NewNop(),
		publicPaths: DefaultPublicPaths,
		tracer:      otel.GetTracerProvider().Tracer(tracerName),
		propagator:  otel.GetTextMapPropagator(),
	}
	for k, v := range cfg.Headers {
		c.headers[k] = v
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Name returns the service name
func (c *Client) Name() string {
	return c.name
}

// BaseURL returns the service base address
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Request is one backend call
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	Public bool // exempt from the 401 session policy
}

// Response is a successful backend response
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Duration   time.Duration
}

// Do executes the request. Non-2xx responses and transport failures are
// returned as *Error.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	u := c.buildURL(req.Path, req.Query)

	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	ctx, span := c.tracer.Start(ctx, c.name+" "+req.Method+" "+req.Path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("url.full", u.String()),
			attribute.String("storefront.service", c.name),
		),
	)
	defer span.End()

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("creating HTTP request: %w", err)
	}
	c.decorate(ctx, httpReq)

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	duration := time.Since(start)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "network")
		return nil, c.fail(ctx, req, &Error{Kind: KindNetwork, Err: err}, duration)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read body")
		return nil, c.fail(ctx, req, &Error{Kind: KindNetwork, StatusCode: httpResp.StatusCode, Err: err}, duration)
	}

	span.SetAttributes(attribute.Int("http.response.status_code", httpResp.StatusCode))
	if httpResp.StatusCode >= http.StatusBadRequest {
		span.SetStatus(codes.Error, http.StatusText(httpResp.StatusCode))
		return nil, c.fail(ctx, req, c.statusError(ctx, req, httpResp.StatusCode, data), duration)
	}

	c.observe(req, "ok", duration)
	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       data,
		Duration:   duration,
	}, nil
}

// decorate sets default headers, the bearer token, the request id and the
// trace context
func (c *Client) decorate(ctx context.Context, req *http.Request) {
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	if id := logger.GetRequestID(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}
	if c.policy != nil {
		if token := c.policy.Token(ctx); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	c.propagator.Inject(ctx, propagation.HeaderCarrier(req.Header))
}

// statusError classifies a non-2xx response. Only a 401 on a protected
// request touches the session.
func (c *Client) statusError(ctx context.Context, req Request, status int, body []byte) *Error {
	msg, fields := parseErrorBody(body)
	e := &Error{StatusCode: status, Message: msg, Fields: fields}

	switch {
	case status == http.StatusUnauthorized && !c.isPublic(req):
		e.Kind = KindUnauthorized
		if c.policy != nil {
			e.Redirect = c.policy.Unauthorized(ctx)
		}
	case status == http.StatusForbidden:
		e.Kind = KindForbidden
	default:
		e.Kind = KindStatus
	}
	return e
}

func (c *Client) fail(ctx context.Context, req Request, e *Error, duration time.Duration) *Error {
	e.Service, e.Method, e.Path = c.name, req.Method, req.Path
	c.observe(req, e.Kind.String(), duration)

	log := logger.L(ctx)
	if !log.Core().Enabled(zap.WarnLevel) {
		log = c.logger
	}
	fields := []zap.Field{
		zap.String("service", c.name),
		zap.String("method", req.Method),
		zap.String("path", req.Path),
		zap.String("kind", e.Kind.String()),
		zap.Duration("duration", duration),
	}
	if e.StatusCode != 0 {
		fields = append(fields, zap.Int("status", e.StatusCode))
	}
	if e.Err != nil {
		fields = append(fields, zap.Error(e.Err))
	}
	log.Warn("backend call failed", fields...)
	return e
}

func (c *Client) observe(req Request, outcome string, duration time.Duration) {
	if c.observer != nil {
		c.observer.ObserveCall(c.name, req.Method, outcome, duration)
	}
}

func (c *Client) isPublic(req Request) bool {
	if req.Public {
		return true
	}
	for _, p := range c.publicPaths {
		if req.Path == p || strings.HasPrefix(req.Path, p+"/") {
			return true
		}
	}
	return false
}

// buildURL resolves path against the base address, keeping any base path
func (c *Client) buildURL(path string, query url.Values) *url.URL {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u := *c.baseURL
	u.Path = strings.TrimSuffix(u.Path, "/") + path
	u.RawPath = ""
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return &u
}

// Get performs a GET request
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post performs a POST request
func (c *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body})
}

// Put performs a PUT request
func (c *Client) Put(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodPut, Path: path, Body: body})
}

// Patch performs a PATCH request
func (c *Client) Patch(ctx context.Context, path string, query url.Values, body any) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodPatch, Path: path, Query: query, Body: body})
}

// Delete performs a DELETE request
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: path})
}

// IsTimeout reports whether err is a timeout of the underlying call
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne interface{ Timeout() bool }
	return errors.As(err, &ne) && ne.Timeout()
}
