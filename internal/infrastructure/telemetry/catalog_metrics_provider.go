package telemetry

import (
	"context"

	"gorm.io/gorm"
)

// GormCatalogMetricsProvider implements CatalogMetricsProvider using GORM.
// It queries the shops and product_infos tables directly.
type GormCatalogMetricsProvider struct {
	db *gorm.DB
}

// NewGormCatalogMetricsProvider creates a new GormCatalogMetricsProvider.
func NewGormCatalogMetricsProvider(db *gorm.DB) *GormCatalogMetricsProvider {
	return &GormCatalogMetricsProvider{db: db}
}

// CountActiveShops returns the number of shops in state on.
func (p *GormCatalogMetricsProvider) CountActiveShops(ctx context.Context) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Table("shops").
		Where("state = ?", "on").
		Count(&count).Error

	return count, err
}

// CountOutOfStockOffers returns the number of offers with nothing left to sell.
func (p *GormCatalogMetricsProvider) CountOutOfStockOffers(ctx context.Context) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Table("product_infos").
		Where("quantity = 0").
		Count(&count).Error

	return count, err
}

var _ CatalogMetricsProvider = (*GormCatalogMetricsProvider)(nil)
