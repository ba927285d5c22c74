// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BusinessMetrics provides business metrics for the marketplace.
// It tracks registrations, basket activity, orders, price-list imports and
// catalog health.
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	userRegisteredTotal     *Counter
	basketMutationTotal     *Counter
	orderPlacedTotal        *Counter
	orderAmountTotal        *Counter
	orderStatusChangedTotal *Counter
	importTotal             *Counter
	importOffersTotal       *Counter

	// Gauge metrics (point-in-time values)
	activeShops      *Gauge
	outOfStockOffers *Gauge

	// Periodic collector
	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	catalogProvider CatalogMetricsProvider
}

// CatalogMetricsProvider provides catalog data for periodic metrics collection.
// This interface allows the telemetry layer to query catalog state without
// depending on the catalog domain directly.
type CatalogMetricsProvider interface {
	// CountActiveShops returns the number of shops accepting orders
	CountActiveShops(ctx context.Context) (int64, error)

	// CountOutOfStockOffers returns the number of offers with zero quantity
	CountOutOfStockOffers(ctx context.Context) (int64, error)
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter           metric.Meter
	Logger          *zap.Logger
	CollectInterval time.Duration // Default: 5 minutes
	CatalogProvider CatalogMetricsProvider
}

// NewBusinessMetrics creates a new BusinessMetrics instance.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		meter:           cfg.Meter,
		logger:          logger,
		stopChan:        make(chan struct{}),
		catalogProvider: cfg.CatalogProvider,
	}

	counters := []struct {
		target      **Counter
		name        string
		description string
		unit        string
	}{
		{&bm.userRegisteredTotal, "shop_user_registered_total", "Total number of registered users", "{users}"},
		{&bm.basketMutationTotal, "shop_basket_mutation_total", "Total number of basket changes", "{changes}"},
		{&bm.orderPlacedTotal, "shop_order_placed_total", "Total number of placed orders", "{orders}"},
		{&bm.orderAmountTotal, "shop_order_amount_total", "Total placed order amount in kopecks", "{kopecks}"},
		{&bm.orderStatusChangedTotal, "shop_order_status_changed_total", "Total number of order status changes", "{changes}"},
		{&bm.importTotal, "shop_pricelist_import_total", "Total number of finished price-list imports", "{imports}"},
		{&bm.importOffersTotal, "shop_pricelist_offers_total", "Total number of offers loaded from price lists", "{offers}"},
	}
	for _, c := range counters {
		counter, err := NewCounter(cfg.Meter, c.name, c.description, c.unit)
		if err != nil {
			return nil, err
		}
		*c.target = counter
	}

	var err error
	bm.activeShops, err = NewGauge(
		cfg.Meter,
		"shop_active_shops",
		"Number of shops in state on",
		"{shops}",
	)
	if err != nil {
		return nil, err
	}

	bm.outOfStockOffers, err = NewGauge(
		cfg.Meter,
		"shop_out_of_stock_offers",
		"Number of offers with zero quantity",
		"{offers}",
	)
	if err != nil {
		return nil, err
	}

	return bm, nil
}

// =============================================================================
// Identity Metrics
// =============================================================================

// RecordUserRegistered records a successful registration.
func (bm *BusinessMetrics) RecordUserRegistered(ctx context.Context, userType string) {
	bm.userRegisteredTotal.Inc(ctx, AttrUserType.String(userType))
}

// =============================================================================
// Trade Metrics
// =============================================================================

// BasketOperation labels basket mutations.
type BasketOperation string

const (
	BasketOperationAdd    BasketOperation = "add"
	BasketOperationUpdate BasketOperation = "update"
	BasketOperationRemove BasketOperation = "remove"
)

// RecordBasketMutation records how many basket lines an operation touched.
func (bm *BusinessMetrics) RecordBasketMutation(ctx context.Context, op BasketOperation, lines int) {
	if lines <= 0 {
		return
	}
	bm.basketMutationTotal.Add(ctx, int64(lines), AttrBasketOperation.String(string(op)))
}

// RecordOrderPlaced records a placed order and its total.
func (bm *BusinessMetrics) RecordOrderPlaced(ctx context.Context, total decimal.Decimal) {
	bm.orderPlacedTotal.Inc(ctx)
	bm.orderAmountTotal.Add(ctx, total.Mul(decimal.NewFromInt(100)).IntPart())
}

// RecordOrderStatusChanged records an order status transition.
func (bm *BusinessMetrics) RecordOrderStatusChanged(ctx context.Context, status string) {
	bm.orderStatusChangedTotal.Inc(ctx, AttrOrderStatus.String(status))
}

// =============================================================================
// Import Metrics
// =============================================================================

// RecordImport records a finished price-list import.
func (bm *BusinessMetrics) RecordImport(ctx context.Context, status string, offers int) {
	bm.importTotal.Inc(ctx, AttrImportStatus.String(status))
	if offers > 0 {
		bm.importOffersTotal.Add(ctx, int64(offers))
	}
}

// =============================================================================
// Catalog Gauges
// =============================================================================

// RecordActiveShops records the number of enabled shops.
func (bm *BusinessMetrics) RecordActiveShops(ctx context.Context, count int64) {
	bm.activeShops.Record(ctx, count)
}

// RecordOutOfStockOffers records the number of offers that cannot be bought.
func (bm *BusinessMetrics) RecordOutOfStockOffers(ctx context.Context, count int64) {
	bm.outOfStockOffers.Record(ctx, count)
}

// =============================================================================
// Periodic Collection
// =============================================================================

// StartPeriodicCollection starts periodic collection of gauge metrics.
// It collects catalog metrics every interval (default: 5 minutes).
// This is non-blocking - use Stop() to stop collection.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	bm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}

		go bm.runPeriodicCollection(ctx, interval)
	})
}

// runPeriodicCollection runs the periodic collection loop.
func (bm *BusinessMetrics) runPeriodicCollection(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Collect immediately on start
	bm.collectCatalogMetrics(ctx)

	for {
		select {
		case <-bm.stopChan:
			bm.logger.Info("Stopping periodic business metrics collection")
			return
		case <-ctx.Done():
			bm.logger.Info("Context cancelled, stopping periodic business metrics collection")
			return
		case <-ticker.C:
			bm.collectCatalogMetrics(ctx)
		}
	}
}

func (bm *BusinessMetrics) collectCatalogMetrics(ctx context.Context) {
	if bm.catalogProvider == nil {
		bm.logger.Debug("No catalog provider configured, skipping catalog metrics collection")
		return
	}

	if count, err := bm.catalogProvider.CountActiveShops(ctx); err != nil {
		bm.logger.Warn("Failed to count active shops", zap.Error(err))
	} else {
		bm.RecordActiveShops(ctx, count)
	}

	if count, err := bm.catalogProvider.CountOutOfStockOffers(ctx); err != nil {
		bm.logger.Warn("Failed to count out of stock offers", zap.Error(err))
	} else {
		bm.RecordOutOfStockOffers(ctx, count)
	}
}

// Stop stops the periodic collection.
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
	})
}

// =============================================================================
// Error Types
// =============================================================================

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewBusinessMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
