package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/delivery/storefront/internal/application/admin"
	"github.com/delivery/storefront/internal/application/identity"
	"github.com/delivery/storefront/internal/application/ordering"
	"github.com/delivery/storefront/internal/domain/session"
	"github.com/delivery/storefront/internal/infrastructure/auth"
	"github.com/delivery/storefront/internal/infrastructure/backend"
	"github.com/delivery/storefront/internal/infrastructure/config"
	"github.com/delivery/storefront/internal/infrastructure/logger"
	"github.com/delivery/storefront/internal/infrastructure/metrics"
	"github.com/delivery/storefront/internal/infrastructure/serviceclient"
	"github.com/delivery/storefront/internal/infrastructure/storage"
	"github.com/delivery/storefront/internal/infrastructure/telemetry"
	"github.com/delivery/storefront/internal/interfaces/http/dto"
	"github.com/delivery/storefront/internal/interfaces/http/handler"
	"github.com/delivery/storefront/internal/interfaces/http/middleware"
	"github.com/delivery/storefront/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const healthTimeout = 3 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting storefront",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Tracing is installed before any client so they pick up the global provider
	tracer, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		if err := tracer.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down tracer", zap.Error(err))
		}
	}()

	// Session, cart and checkout guard storage
	backends, err := storage.NewFactory(cfg, storage.WithLogger(log)).Create()
	if err != nil {
		log.Fatal("Failed to initialize session storage", zap.Error(err))
	}
	defer func() {
		if err := backends.Close(); err != nil {
			log.Error("Error closing session storage", zap.Error(err))
		}
	}()

	sessions := session.NewManager(backends.Sessions, session.WithExpiryFunc(auth.ExpiresAt))

	var registry *metrics.Registry
	if cfg.Metrics.Enabled {
		registry = metrics.New(metrics.Config{Namespace: cfg.Metrics.Namespace})
	}

	// Backend service clients share the session policy
	policy := identity.NewSessionPolicy(log)
	clientOpts := []serviceclient.Option{
		serviceclient.WithSessionPolicy(policy),
		serviceclient.WithLogger(log),
	}
	if registry != nil {
		clientOpts = append(clientOpts, serviceclient.WithCallObserver(registry))
	}
	newClient := func(name, baseURL string) *serviceclient.Client {
		client, err := serviceclient.New(name, serviceclient.Config{
			BaseURL: baseURL,
			Timeout: cfg.Services.Timeout,
		}, clientOpts...)
		if err != nil {
			log.Fatal("Failed to create service client", zap.String("service", name), zap.Error(err))
		}
		return client
	}
	authClient := newClient("auth", cfg.Services.AuthURL)
	userClient := newClient("user", cfg.Services.UserURL)
	restaurantClient := newClient("restaurant", cfg.Services.RestaurantURL)
	orderClient := newClient("order", cfg.Services.OrderURL)

	authAPI := backend.NewAuthAPI(authClient)
	userAPI := backend.NewUserAPI(userClient)
	restaurantAPI := backend.NewRestaurantAPI(restaurantClient)
	orderAPI := backend.NewOrderAPI(orderClient)

	// Initialize application services
	authService := identity.NewAuthService(authAPI, userAPI, backends.Carts, log)
	cartService := ordering.NewCartService(restaurantAPI, backends.Carts, log)
	checkoutService := ordering.NewCheckoutService(
		restaurantAPI, orderAPI, backends.Carts, backends.Guard, cfg.GuardTTL(), log,
	)
	names := ordering.NewNameResolver(restaurantAPI, ordering.DefaultLookupLimit, log)
	orderHistory := ordering.NewOrderHistory(orderAPI, names)
	browser := ordering.NewBrowser(restaurantAPI)
	adminService := admin.NewService(userAPI, orderAPI, restaurantAPI, log)

	// Initialize HTTP handlers
	handlers := router.Handlers{
		Auth:    handler.NewAuthHandler(authService),
		Catalog: handler.NewCatalogHandler(browser, cartService),
		Cart:    handler.NewCartHandler(cartService, checkoutService),
		Profile: handler.NewProfileHandler(authService, orderHistory),
		Admin:   handler.NewAdminHandler(adminService),
	}
	healthHandler := handler.NewHealthHandler(healthTimeout,
		backend.NewHealthProbe(authClient, cfg.Services.HealthPath),
		backend.NewHealthProbe(userClient, cfg.Services.HealthPath),
		backend.NewHealthProbe(restaurantClient, cfg.Services.HealthPath),
		backend.NewHealthProbe(orderClient, cfg.Services.HealthPath),
	)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Metrics - Count requests (if enabled)
	// 5. Tracing - Start the request span
	// 6. Security - Add security headers
	// 7. CORS - Handle cross-origin requests
	// 8. BodyLimit - Limit request body size
	// 9. RateLimit - Apply rate limiting (if enabled)
	// 10. Session - Open the browser's session
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	if registry != nil {
		engine.Use(middleware.Metrics(registry))
	}
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.SpanErrorMarker())

	securityConfig := middleware.DefaultSecurityConfig()
	securityConfig.HSTSEnabled = cfg.Cookie.Secure
	engine.Use(middleware.SecureWithConfig(securityConfig))

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		defer rateLimiter.Close()
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Health check endpoint, outside the session
	engine.GET("/health", healthHandler.Check)
	if registry != nil {
		engine.GET(cfg.Metrics.Path, gin.WrapH(registry.Handler()))
		log.Info("Metrics enabled", zap.String("path", cfg.Metrics.Path))
	}

	engine.Use(middleware.Session(sessions, middleware.SessionConfig{
		CookieName: cfg.Session.CookieName,
		MaxAge:     cfg.Session.TTL,
		Domain:     cfg.Cookie.Domain,
		Path:       cfg.Cookie.Path,
		Secure:     cfg.Cookie.Secure,
		SameSite:   middleware.ParseSameSite(cfg.Cookie.SameSite),
	}))
	engine.Use(middleware.SessionSpanAttributes())

	var authLimit gin.HandlerFunc
	if cfg.HTTP.AuthRateLimitEnabled {
		authLimiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		defer authLimiter.Close()
		authLimit = middleware.RateLimit(authLimiter)
		log.Info("Auth rate limiting enabled",
			zap.Int("requests", cfg.HTTP.AuthRateLimitRequests),
			zap.Duration("window", cfg.HTTP.AuthRateLimitWindow),
		)
	}

	r := router.NewRouter(engine)
	for _, registrar := range router.Storefront(handlers, authLimit) {
		r.Register(registrar)
	}
	r.Setup()

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeNotFound, "Page not found", middleware.GetRequestID(c),
		))
	})

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr), zap.String("store", backends.Driver))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
