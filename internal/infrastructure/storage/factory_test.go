package storage

import (
	"context"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/delivery/storefront/internal/domain/session"
	"github.com/delivery/storefront/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func testConfig(store string) *config.Config {
	return &config.Config{
		Session: config.SessionConfig{Store: store, TTL: time.Hour},
		Redis:   config.RedisConfig{Host: "127.0.0.1", Port: 1, KeyPrefix: "sf:"},
		Database: config.DatabaseConfig{
			MaxOpenConns:    1,
			ConnMaxLifetime: 60,
			ConnMaxIdleTime: 30,
		},
	}
}

func roundTrip(t *testing.T, b *Backends) {
	t.Helper()
	ctx := context.Background()
	user := &session.User{ID: 1, FullName: "A", Email: "a@example.com", Roles: session.NewRoleSet("USER")}
	require.NoError(t, b.Sessions.Save(ctx, "b1", session.Session{Token: "T", User: user}))
	rec, err := b.Sessions.Load(ctx, "b1")
	require.NoError(t, err)
	assert.True(t, rec.Session.IsAuthenticated())

	ok, err := b.Guard.Begin(ctx, "b1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFactory_Memory(t *testing.T) {
	b, err := NewFactory(testConfig(config.StoreMemory)).Create()
	require.NoError(t, err)
	defer b.Close()

	assert.Equal(t, config.StoreMemory, b.Driver)
	roundTrip(t, b)
}

func TestFactory_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(config.StoreRedis)
	cfg.Redis.Host = mr.Host()
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)
	cfg.Redis.Port = port

	b, err := NewFactory(cfg).Create()
	require.NoError(t, err)
	defer b.Close()

	assert.Equal(t, config.StoreRedis, b.Driver)
	roundTrip(t, b)
	assert.True(t, mr.Exists("sf:session:b1"))
	assert.True(t, mr.Exists("sf:checkout:b1"))
}

func TestFactory_SQLite(t *testing.T) {
	cfg := testConfig(config.StoreSQLite)
	cfg.Database.SQLitePath = filepath.Join(t.TempDir(), "sf.db")

	b, err := NewFactory(cfg, WithSweepInterval(10*time.Millisecond)).Create()
	require.NoError(t, err)

	assert.Equal(t, config.StoreSQLite, b.Driver)
	roundTrip(t, b)
	assert.NoError(t, b.Close())
	assert.NoError(t, b.Close())
}

func TestFactory_Fallback(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)

	b, err := NewFactory(testConfig(config.StoreRedis), WithLogger(zap.New(core))).Create()
	require.NoError(t, err)
	defer b.Close()

	assert.Equal(t, config.StoreMemory, b.Driver)
	assert.Equal(t, 1, logs.FilterMessageSnippet("falling back").Len())
}

func TestFactory_FallbackDisabled(t *testing.T) {
	_, err := NewFactory(testConfig(config.StoreRedis), WithInMemoryFallback(false)).Create()
	assert.Error(t, err)
}

func TestFactory_UnknownStore(t *testing.T) {
	_, err := NewFactory(testConfig("etcd")).Create()
	assert.Error(t, err)
}
