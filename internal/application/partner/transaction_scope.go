package partner

import (
	"context"

	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopfront/backend/internal/domain/partner"
)

// TransactionScope provides transactional access to the repositories touched
// by a price-list import. All repository operations executed inside fn are
// committed or rolled back together.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the shop and catalog
// repositories within a transaction
type TransactionalRepositories interface {
	ShopRepo() partner.ShopRepository
	CategoryRepo() catalog.CategoryRepository
	ProductRepo() catalog.ProductRepository
	ProductInfoRepo() catalog.ProductInfoRepository
	ParameterRepo() catalog.ParameterRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use transactions.
// This is useful for testing or when transaction support is not required.
type NoOpTransactionScope struct {
	shopRepo        partner.ShopRepository
	categoryRepo    catalog.CategoryRepository
	productRepo     catalog.ProductRepository
	productInfoRepo catalog.ProductInfoRepository
	parameterRepo   catalog.ParameterRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	shopRepo partner.ShopRepository,
	categoryRepo catalog.CategoryRepository,
	productRepo catalog.ProductRepository,
	productInfoRepo catalog.ProductInfoRepository,
	parameterRepo catalog.ParameterRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		shopRepo:        shopRepo,
		categoryRepo:    categoryRepo,
		productRepo:     productRepo,
		productInfoRepo: productInfoRepo,
		parameterRepo:   parameterRepo,
	}
}

// Execute runs the function without a real transaction (for testing/compatibility).
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// ShopRepo returns the shop repository.
func (s *NoOpTransactionScope) ShopRepo() partner.ShopRepository {
	return s.shopRepo
}

// CategoryRepo returns the category repository.
func (s *NoOpTransactionScope) CategoryRepo() catalog.CategoryRepository {
	return s.categoryRepo
}

// ProductRepo returns the product repository.
func (s *NoOpTransactionScope) ProductRepo() catalog.ProductRepository {
	return s.productRepo
}

// ProductInfoRepo returns the offer repository.
func (s *NoOpTransactionScope) ProductInfoRepo() catalog.ProductInfoRepository {
	return s.productInfoRepo
}

// ParameterRepo returns the parameter repository.
func (s *NoOpTransactionScope) ParameterRepo() catalog.ParameterRepository {
	return s.parameterRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
