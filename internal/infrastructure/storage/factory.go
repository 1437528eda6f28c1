// Package storage builds the session store, cart repository and checkout
// guard for the configured backend.
package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/delivery/storefront/internal/domain/cart"
	"github.com/delivery/storefront/internal/domain/order"
	"github.com/delivery/storefront/internal/domain/session"
	"github.com/delivery/storefront/internal/infrastructure/cache"
	"github.com/delivery/storefront/internal/infrastructure/config"
	"github.com/delivery/storefront/internal/infrastructure/logger"
	"github.com/delivery/storefront/internal/infrastructure/persistence"
	"github.com/delivery/storefront/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Backends are the stores one storefront process works against
type Backends struct {
	Sessions session.Store
	Carts    cart.Repository
	Guard    order.SubmissionGuard
	Driver   string

	closers   []func() error
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// Close stops background work and releases connections. Safe to call multiple times.
func (b *Backends) Close() error {
	var firstErr error
	b.closeOnce.Do(func() {
		if b.stopChan != nil {
			close(b.stopChan)
			b.wg.Wait()
		}
		for _, fn := range b.closers {
			if err := fn(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	})
	return firstErr
}

// Factory creates Backends based on configuration
type Factory struct {
	cfg                   *config.Config
	logger                *zap.Logger
	allowInMemoryFallback bool
	sweepInterval         time.Duration
}

// FactoryOption is a functional option for configuring the factory
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to in-memory stores
// when the configured backend is unavailable. Default is true.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *Factory) {
		f.allowInMemoryFallback = allow
	}
}

// WithSweepInterval sets how often expired SQL rows are purged
func WithSweepInterval(d time.Duration) FactoryOption {
	return func(f *Factory) {
		f.sweepInterval = d
	}
}

// NewFactory creates a new factory
func NewFactory(cfg *config.Config, opts ...FactoryOption) *Factory {
	f := &Factory{
		cfg:                   cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
		sweepInterval:         5 * time.Minute,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create builds the backends for cfg.Session.Store, falling back to
// in-memory stores if allowed and the backend cannot be reached
func (f *Factory) Create() (*Backends, error) {
	var (
		b   *Backends
		err error
	)
	switch f.cfg.Session.Store {
	case config.StoreMemory:
		return f.CreateInMemory(), nil
	case config.StoreRedis:
		b, err = f.CreateRedis()
	case config.StorePostgres, config.StoreSQLite:
		b, err = f.CreateDatabase()
	default:
		return nil, fmt.Errorf("unknown session store %q", f.cfg.Session.Store)
	}
	if err == nil {
		f.logger.Info("session storage ready", zap.String("store", b.Driver))
		return b, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("%s session store unavailable: %w", f.cfg.Session.Store, err)
	}
	f.logger.Warn("session store unavailable, falling back to in-memory storage. "+
		"Sessions and carts will not be shared between instances.",
		zap.String("store", f.cfg.Session.Store),
		zap.Error(err),
	)
	return f.CreateInMemory(), nil
}

// CreateInMemory creates process-local stores.
// WARNING: in-memory stores do not share state across process instances.
func (f *Factory) CreateInMemory() *Backends {
	sessions := cache.NewInMemorySessionStore(f.cfg.Session.TTL)
	return &Backends{
		Sessions: sessions,
		Carts:    cache.NewInMemoryCartRepository(f.cfg.Session.TTL),
		Guard:    cache.NewInMemorySubmissionGuard(),
		Driver:   config.StoreMemory,
		closers:  []func() error{sessions.Close},
	}
}

// CreateRedis creates stores sharing one Redis client
func (f *Factory) CreateRedis() (*Backends, error) {
	client, err := cache.NewRedisClient(f.cfg.Redis)
	if err != nil {
		return nil, err
	}
	prefix, ttl := f.cfg.Redis.KeyPrefix, f.cfg.Session.TTL
	return &Backends{
		Sessions: cache.NewRedisSessionStoreWithClient(client, prefix, ttl),
		Carts:    cache.NewRedisCartRepositoryWithClient(client, prefix, ttl),
		Guard:    cache.NewRedisSubmissionGuardWithClient(client, prefix),
		Driver:   config.StoreRedis,
		closers:  []func() error{client.Close},
	}, nil
}

// CreateDatabase creates stores on PostgreSQL or SQLite and starts the sweeper
func (f *Factory) CreateDatabase() (*Backends, error) {
	driver := f.cfg.Session.Store
	gormLog := logger.NewGormLogger(f.logger, logger.MapGormLogLevel(f.cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&f.cfg.Database, driver, gormLog)
	if err != nil {
		return nil, err
	}

	dbSystem := "postgresql"
	if driver == config.StoreSQLite {
		dbSystem = "sqlite"
	}
	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:  f.cfg.Telemetry.Enabled,
		DBSystem: dbSystem,
	}, f.logger); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to register database tracing: %w", err)
	}

	if err := db.Migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}

	ttl := f.cfg.Session.TTL
	sessions := persistence.NewGormSessionStore(db.DB, ttl)
	carts := persistence.NewGormCartRepository(db.DB, ttl)
	guard := persistence.NewGormSubmissionGuard(db.DB)

	b := &Backends{
		Sessions: sessions,
		Carts:    carts,
		Guard:    guard,
		Driver:   driver,
		closers:  []func() error{db.Close},
		stopChan: make(chan struct{}),
	}
	b.wg.Add(1)
	go f.sweepLoop(b, []purger{sessions, carts, guard})
	return b, nil
}

type purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

func (f *Factory) sweepLoop(b *Backends, purgers []purger) {
	defer b.wg.Done()

	ticker := time.NewTicker(f.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.C:
			f.sweep(purgers)
		}
	}
}

func (f *Factory) sweep(purgers []purger) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var total int64
	for _, p := range purgers {
		n, err := p.PurgeExpired(ctx)
		if err != nil {
			f.logger.Warn("failed to purge expired rows", zap.Error(err))
			continue
		}
		total += n
	}
	if total > 0 {
		f.logger.Debug("purged expired storefront rows", zap.Int64("rows", total))
	}
}
