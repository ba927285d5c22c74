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

func newObservedGorm(level gormlogger.LogLevel, opts ...GormLoggerOption) (*GormLogger, *observer.ObservedLogs) {
	core, recorded := observer.New(zapcore.DebugLevel)
	return NewGormLogger(zap.New(core), level, opts...), recorded
}

func sqlFn() (string, int64) { return "SELECT * FROM shops", 3 }

func TestGormLogger_Options(t *testing.T) {
	gl, _ := newObservedGorm(gormlogger.Info,
		WithSlowThreshold(500*time.Millisecond),
		WithIgnoreRecordNotFoundError(false),
	)
	assert.Equal(t, 500*time.Millisecond, gl.slowThreshold)
	assert.True(t, gl.logNotFound)
	assert.Equal(t, defaultMaxSQLLength, gl.maxSQLLength)

	clone := gl.LogMode(gormlogger.Warn).(*GormLogger)
	assert.Equal(t, gormlogger.Warn, clone.level)
	assert.Equal(t, gormlogger.Info, gl.level)
}

func TestGormLogger_Messages(t *testing.T) {
	gl, recorded := newObservedGorm(gormlogger.Warn)
	ctx := context.Background()

	gl.Info(ctx, "suppressed %d", 1)
	gl.Warn(ctx, "warned %s", "x")
	gl.Error(ctx, "failed %s", "y")

	entries := recorded.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "warned x", entries[0].Message)
	assert.Equal(t, "failed y", entries[1].Message)
}

func TestGormLogger_Trace(t *testing.T) {
	t.Run("error is logged", func(t *testing.T) {
		gl, recorded := newObservedGorm(gormlogger.Error)
		gl.Trace(context.Background(), time.Now(), sqlFn, errors.New("db down"))

		entries := recorded.FilterMessage("SQL Error").All()
		require.Len(t, entries, 1)
		assert.Equal(t, "SELECT * FROM shops", entries[0].ContextMap()["sql"])
		assert.Equal(t, "db down", entries[0].ContextMap()["error"])
	})

	t.Run("record not found can be logged", func(t *testing.T) {
		gl, recorded := newObservedGorm(gormlogger.Error, WithIgnoreRecordNotFoundError(false))
		gl.Trace(context.Background(), time.Now(), sqlFn, gormlogger.ErrRecordNotFound)
		assert.Equal(t, 1, recorded.Len())
	})

	t.Run("record not found is ignored by default", func(t *testing.T) {
		gl, recorded := newObservedGorm(gormlogger.Error)
		gl.Trace(context.Background(), time.Now(), sqlFn, gormlogger.ErrRecordNotFound)
		assert.Zero(t, recorded.Len())
	})

	t.Run("slow query warns", func(t *testing.T) {
		gl, recorded := newObservedGorm(gormlogger.Warn, WithSlowThreshold(time.Millisecond))
		gl.Trace(context.Background(), time.Now().Add(-time.Second), sqlFn, nil)

		entries := recorded.FilterMessage("Slow SQL").All()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	})

	t.Run("long statements are truncated", func(t *testing.T) {
		gl, recorded := newObservedGorm(gormlogger.Info, WithMaxSQLLength(6))
		gl.Trace(context.Background(), time.Now(), sqlFn, nil)

		require.Equal(t, 1, recorded.Len())
		assert.Equal(t, "SELECT...", recorded.All()[0].ContextMap()["sql"])
	})

	t.Run("normal query at info level is debug", func(t *testing.T) {
		gl, recorded := newObservedGorm(gormlogger.Info)
		ctx, log := WithRequestID(context.Background(), zap.NewNop(), "req-7")
		ctx, _ = WithUserID(ctx, log, "user-1")
		gl.Trace(ctx, time.Now(), sqlFn, nil)

		entries := recorded.FilterMessage("SQL Query").All()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
		assert.Equal(t, "req-7", entries[0].ContextMap()["request_id"])
		assert.Equal(t, "user-1", entries[0].ContextMap()["user_id"])
	})

	t.Run("silent logs nothing", func(t *testing.T) {
		gl, recorded := newObservedGorm(gormlogger.Silent)
		gl.Trace(context.Background(), time.Now(), sqlFn, errors.New("x"))
		assert.Zero(t, recorded.Len())
	})
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Error, MapGormLogLevel("error"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("warn"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("unknown"))
}
