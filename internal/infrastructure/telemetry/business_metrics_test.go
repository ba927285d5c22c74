package telemetry_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopfront/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewBusinessMetrics_NilMeter(t *testing.T) {
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{Logger: zap.NewNop()})

	require.Error(t, err)
	assert.Nil(t, bm)
	assert.Equal(t, "NewBusinessMetrics: meter cannot be nil", err.Error())
}

func TestBusinessMetrics_Counters(t *testing.T) {
	meter, reader := newTestMeter(t)
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{Meter: meter})
	require.NoError(t, err)

	ctx := context.Background()
	bm.RecordUserRegistered(ctx, "shop")
	bm.RecordUserRegistered(ctx, "buyer")
	bm.RecordBasketMutation(ctx, telemetry.BasketOperationAdd, 2)
	bm.RecordBasketMutation(ctx, telemetry.BasketOperationRemove, 0)
	bm.RecordOrderPlaced(ctx, decimal.RequireFromString("1999.90"))
	bm.RecordOrderStatusChanged(ctx, "confirmed")
	bm.RecordImport(ctx, "success", 14)
	bm.RecordImport(ctx, "failed", 0)

	metrics := collect(t, reader)
	assert.Equal(t, int64(1), sumOf(t, metrics["shop_user_registered_total"], telemetry.AttrUserType.String("shop")))
	assert.Equal(t, int64(2), sumOf(t, metrics["shop_basket_mutation_total"], telemetry.AttrBasketOperation.String("add")))
	assert.Equal(t, int64(1), sumOf(t, metrics["shop_order_placed_total"]))
	assert.Equal(t, int64(199990), sumOf(t, metrics["shop_order_amount_total"]))
	assert.Equal(t, int64(1), sumOf(t, metrics["shop_order_status_changed_total"], telemetry.AttrOrderStatus.String("confirmed")))
	assert.Equal(t, int64(1), sumOf(t, metrics["shop_pricelist_import_total"], telemetry.AttrImportStatus.String("failed")))
	assert.Equal(t, int64(14), sumOf(t, metrics["shop_pricelist_offers_total"]))
}

type stubCatalogProvider struct {
	calls    atomic.Int32
	shops    int64
	shopsErr error
}

func (p *stubCatalogProvider) CountActiveShops(context.Context) (int64, error) {
	p.calls.Add(1)
	return p.shops, p.shopsErr
}

func (p *stubCatalogProvider) CountOutOfStockOffers(context.Context) (int64, error) {
	return 12, nil
}

func TestBusinessMetrics_PeriodicCollection(t *testing.T) {
	meter, reader := newTestMeter(t)
	provider := &stubCatalogProvider{shops: 3}
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:           meter,
		CatalogProvider: provider,
	})
	require.NoError(t, err)

	bm.StartPeriodicCollection(context.Background(), time.Hour)
	defer bm.Stop()

	require.Eventually(t, func() bool { return provider.calls.Load() > 0 }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool {
		_, ok := collect(t, reader)["shop_out_of_stock_offers"]
		return ok
	}, time.Second, 5*time.Millisecond)

	metrics := collect(t, reader)
	assert.Equal(t, int64(3), sumOf(t, metrics["shop_active_shops"]))
	assert.Equal(t, int64(12), sumOf(t, metrics["shop_out_of_stock_offers"]))
}

func TestBusinessMetrics_ProviderErrorSkipsGauge(t *testing.T) {
	meter, reader := newTestMeter(t)
	provider := &stubCatalogProvider{shopsErr: errors.New("db down")}
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:           meter,
		CatalogProvider: provider,
	})
	require.NoError(t, err)

	bm.StartPeriodicCollection(context.Background(), time.Hour)
	defer bm.Stop()

	require.Eventually(t, func() bool {
		_, ok := collect(t, reader)["shop_out_of_stock_offers"]
		return ok
	}, time.Second, 5*time.Millisecond)
	_, ok := collect(t, reader)["shop_active_shops"]
	assert.False(t, ok)
}

func TestBusinessMetrics_StopIsIdempotent(t *testing.T) {
	meter, _ := newTestMeter(t)
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{Meter: meter})
	require.NoError(t, err)

	bm.StartPeriodicCollection(context.Background(), time.Millisecond)
	bm.Stop()
	bm.Stop()
}
