package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBConfig controls database instrumentation
type DBConfig struct {
	DBName        string
	DBSystem      string        // default "postgresql"
	SlowThreshold time.Duration // default 200ms; negative disables slow query logging
}

const (
	slowQueryStartKey = "telemetry:query_start"
	slowQueryCallback = "telemetry:slow_query"
)

// InstrumentDB adds otelgorm spans, connection pool gauges and slow query
// logging to db.
func InstrumentDB(db *gorm.DB, meter metric.Meter, cfg DBConfig, logger *zap.Logger) error {
	if cfg.DBSystem == "" {
		cfg.DBSystem = "postgresql"
	}
	if cfg.SlowThreshold == 0 {
		cfg.SlowThreshold = 200 * time.Millisecond
	}

	plugin := otelgorm.NewPlugin(
		otelgorm.WithDBName(cfg.DBName),
		otelgorm.WithAttributes(attribute.String("db.system", cfg.DBSystem)),
		otelgorm.WithoutQueryVariables(),
	)
	if err := db.Use(plugin); err != nil {
		return fmt.Errorf("failed to register otelgorm: %w", err)
	}

	if meter != nil {
		if err := registerPoolGauges(db, meter); err != nil {
			return err
		}
	}
	if cfg.SlowThreshold > 0 {
		if err := registerSlowQueryLog(db, cfg.SlowThreshold, logger); err != nil {
			return err
		}
	}
	return nil
}

// registerPoolGauges observes database/sql pool statistics at collection time
func registerPoolGauges(db *gorm.DB, meter metric.Meter) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}

	connections, err := meter.Int64ObservableGauge("shop_db_pool_connections",
		metric.WithDescription("Database pool connections by state"),
		metric.WithUnit("{connections}"))
	if err != nil {
		return err
	}
	waits, err := meter.Int64ObservableCounter("shop_db_pool_wait_total",
		metric.WithDescription("Connections waited for"),
		metric.WithUnit("{waits}"))
	if err != nil {
		return err
	}

	_, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stats := sqlDB.Stats()
		o.ObserveInt64(connections, int64(stats.InUse), metric.WithAttributes(AttrDBPoolState.String("in_use")))
		o.ObserveInt64(connections, int64(stats.Idle), metric.WithAttributes(AttrDBPoolState.String("idle")))
		o.ObserveInt64(connections, int64(stats.MaxOpenConnections), metric.WithAttributes(AttrDBPoolState.String("max")))
		o.ObserveInt64(waits, stats.WaitCount)
		return nil
	}, connections, waits)
	return err
}

func registerSlowQueryLog(db *gorm.DB, threshold time.Duration, logger *zap.Logger) error {
	start := func(tx *gorm.DB) {
		tx.InstanceSet(slowQueryStartKey, time.Now())
	}
	finish := func(tx *gorm.DB) {
		v, ok := tx.InstanceGet(slowQueryStartKey)
		if !ok {
			return
		}
		elapsed := time.Since(v.(time.Time))
		if elapsed < threshold {
			return
		}
		logger.Warn("Slow query",
			zap.String("table", tx.Statement.Table),
			zap.Duration("elapsed", elapsed),
			zap.Int64("rows", tx.Statement.RowsAffected),
		)
	}

	cb := db.Callback()
	if err := cb.Create().Before("gorm:create").Register(slowQueryCallback+":before_create", start); err != nil {
		return err
	}
	if err := cb.Create().After("gorm:create").Register(slowQueryCallback+":after_create", finish); err != nil {
		return err
	}
	if err := cb.Query().Before("gorm:query").Register(slowQueryCallback+":before_query", start); err != nil {
		return err
	}
	if err := cb.Query().After("gorm:query").Register(slowQueryCallback+":after_query", finish); err != nil {
		return err
	}
	if err := cb.Update().Before("gorm:update").Register(slowQueryCallback+":before_update", start); err != nil {
		return err
	}
	if err := cb.Update().After("gorm:update").Register(slowQueryCallback+":after_update", finish); err != nil {
		return err
	}
	if err := cb.Delete().Before("gorm:delete").Register(slowQueryCallback+":before_delete", start); err != nil {
		return err
	}
	if err := cb.Delete().After("gorm:delete").Register(slowQueryCallback+":after_delete", finish); err != nil {
		return err
	}
	if err := cb.Row().Before("gorm:row").Register(slowQueryCallback+":before_row", start); err != nil {
		return err
	}
	return cb.Row().After("gorm:row").Register(slowQueryCallback+":after_row", finish)
}
