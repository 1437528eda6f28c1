package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func sqlFn(sql string, rows int64) func() (string, int64) {
	return func() (string, int64) { return sql, rows }
}

func TestGormLogger_Trace(t *testing.T) {
	t.Run("errors are logged with the statement", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		gl := NewGormLogger(zap.New(core), gormlogger.Warn)

		gl.Trace(context.Background(), time.Now(), sqlFn("SELECT 1", 0), errors.New("boom"))

		require.Equal(t, 1, logs.Len())
		entry := logs.All()[0]
		assert.Equal(t, zapcore.ErrorLevel, entry.Level)
		assert.Equal(t, "SELECT 1", entry.ContextMap()["sql"])
		assert.Equal(t, "gorm", entry.LoggerName)
	})

	t.Run("record not found is not an error", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		gl := NewGormLogger(zap.New(core), gormlogger.Warn, WithSlowThreshold(0))

		gl.Trace(context.Background(), time.Now(), sqlFn("SELECT * FROM storefront_carts", 0), gormlogger.ErrRecordNotFound)

		assert.Equal(t, 0, logs.Len())
	})

	t.Run("slow queries warn", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		gl := NewGormLogger(zap.New(core), gormlogger.Warn, WithSlowThreshold(time.Millisecond))

		gl.Trace(context.Background(), time.Now().Add(-time.Second), sqlFn("UPDATE x", 1), nil)

		require.Equal(t, 1, logs.Len())
		assert.Equal(t, zapcore.WarnLevel, logs.All()[0].Level)
	})

	t.Run("silent logs nothing", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		gl := NewGormLogger(zap.New(core), gormlogger.Warn).LogMode(gormlogger.Silent)

		gl.Trace(context.Background(), time.Now(), sqlFn("SELECT 1", 0), errors.New("boom"))

		assert.Equal(t, 0, logs.Len())
	})

	t.Run("uses the request logger from the context", func(t *testing.T) {
		baseCore, baseLogs := observer.New(zapcore.DebugLevel)
		reqCore, reqLogs := observer.New(zapcore.DebugLevel)
		gl := NewGormLogger(zap.New(baseCore), gormlogger.Info, WithSlowThreshold(0))

		ctx, _ := WithRequestID(context.Background(), zap.New(reqCore), "req-9")
		gl.Trace(ctx, time.Now(), sqlFn("SELECT 1", 1), nil)

		assert.Equal(t, 0, baseLogs.Len())
		require.Equal(t, 1, reqLogs.Len())
		assert.Equal(t, "req-9", reqLogs.All()[0].ContextMap()["request_id"])
	})
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("info"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("warn"))
	assert.Equal(t, gormlogger.Error, MapGormLogLevel("error"))
}
