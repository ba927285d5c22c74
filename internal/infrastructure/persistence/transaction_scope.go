package persistence

import (
	"context"

	apppartner "github.com/shopfront/backend/internal/application/partner"
	apptrade "github.com/shopfront/backend/internal/application/trade"
	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopfront/backend/internal/domain/partner"
	"github.com/shopfront/backend/internal/domain/trade"
	"gorm.io/gorm"
)

// GormImportTransactionScope runs price-list imports in a GORM transaction
type GormImportTransactionScope struct {
	db *gorm.DB
}

// NewGormImportTransactionScope creates a new GormImportTransactionScope
func NewGormImportTransactionScope(db *gorm.DB) *GormImportTransactionScope {
	return &GormImportTransactionScope{db: db}
}

// Execute runs fn within a database transaction.
// If fn returns an error, the transaction is rolled back.
func (s *GormImportTransactionScope) Execute(ctx context.Context, fn func(repos apppartner.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// GormTradeTransactionScope runs basket and order changes in a GORM transaction
type GormTradeTransactionScope struct {
	db *gorm.DB
}

// NewGormTradeTransactionScope creates a new GormTradeTransactionScope
func NewGormTradeTransactionScope(db *gorm.DB) *GormTradeTransactionScope {
	return &GormTradeTransactionScope{db: db}
}

// Execute runs fn within a database transaction.
// If fn returns an error, the transaction is rolled back.
func (s *GormTradeTransactionScope) Execute(ctx context.Context, fn func(repos apptrade.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// ShopRepo returns the shop repository scoped to the current transaction.
func (r *gormTransactionalRepositories) ShopRepo() partner.ShopRepository {
	return NewGormShopRepository(r.tx)
}

// CategoryRepo returns the category repository scoped to the current transaction.
func (r *gormTransactionalRepositories) CategoryRepo() catalog.CategoryRepository {
	return NewGormCategoryRepository(r.tx)
}

// ProductRepo returns the product repository scoped to the current transaction.
func (r *gormTransactionalRepositories) ProductRepo() catalog.ProductRepository {
	return NewGormProductRepository(r.tx)
}

// ProductInfoRepo returns the offer repository scoped to the current transaction.
func (r *gormTransactionalRepositories) ProductInfoRepo() catalog.ProductInfoRepository {
	return NewGormProductInfoRepository(r.tx)
}

// ParameterRepo returns the parameter repository scoped to the current transaction.
func (r *gormTransactionalRepositories) ParameterRepo() catalog.ParameterRepository {
	return NewGormParameterRepository(r.tx)
}

// OrderRepo returns the order repository scoped to the current transaction.
func (r *gormTransactionalRepositories) OrderRepo() trade.OrderRepository {
	return NewGormOrderRepository(r.tx)
}

var (
	_ apppartner.TransactionScope          = (*GormImportTransactionScope)(nil)
	_ apptrade.TransactionScope            = (*GormTradeTransactionScope)(nil)
	_ apppartner.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
	_ apptrade.TransactionalRepositories   = (*gormTransactionalRepositories)(nil)
)
