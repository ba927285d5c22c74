package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/shared"
)

// CategoryRepository defines the interface for category persistence
type CategoryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Category, error)
	FindByExternalID(ctx context.Context, externalID int64) (*Category, error)
	FindAll(ctx context.Context, filter CategoryFilter) ([]Category, int64, error)
	Create(ctx context.Context, category *Category) error
	// LinkShop records that a shop sells in the category; linking twice is a no-op
	LinkShop(ctx context.Context, categoryID, shopID uuid.UUID) error
}

// CategoryFilter narrows category listings
type CategoryFilter struct {
	shared.Filter
	ShopID *uuid.UUID
}

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindByNameAndCategory(ctx context.Context, name string, categoryID uuid.UUID) (*Product, error)
	Create(ctx context.Context, product *Product) error
	// FindAll returns products with category and offers of enabled shops loaded
	FindAll(ctx context.Context, filter ProductFilter) ([]Product, int64, error)
}

// ProductFilter narrows product listings
type ProductFilter struct {
	shared.Filter
	ShopID     *uuid.UUID
	CategoryID *uuid.UUID
}

// ProductInfoRepository persists shop offers
type ProductInfoRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ProductInfo, error)
	// FindByIDs loads offers with product and shop names
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]ProductInfo, error)
	Create(ctx context.Context, info *ProductInfo) error
	// DeleteByShop removes every offer of a shop with its parameter values
	DeleteByShop(ctx context.Context, shopID uuid.UUID) (int64, error)
	// DecreaseStock takes quantity units if available, else returns
	// shared.ErrInsufficientStock
	DecreaseStock(ctx context.Context, id uuid.UUID, quantity int) error
	IncreaseStock(ctx context.Context, id uuid.UUID, quantity int) error
}

// ParameterRepository persists parameter names
type ParameterRepository interface {
	FindByName(ctx context.Context, name string) (*Parameter, error)
	Create(ctx context.Context, param *Parameter) error
}
