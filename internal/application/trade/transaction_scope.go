package trade

import (
	"context"

	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopfront/backend/internal/domain/partner"
	"github.com/shopfront/backend/internal/domain/trade"
)

// TransactionScope runs basket and order changes atomically.
// Implementations must roll back everything when fn returns an error.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides repositories bound to the same
// transaction.
type TransactionalRepositories interface {
	OrderRepo() trade.OrderRepository
	ProductInfoRepo() catalog.ProductInfoRepository
	ShopRepo() partner.ShopRepository
}

// NoOpTransactionScope calls fn directly with the wrapped repositories.
// It is used in unit tests with mocks.
type NoOpTransactionScope struct {
	orderRepo       trade.OrderRepository
	productInfoRepo catalog.ProductInfoRepository
	shopRepo        partner.ShopRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope
func NewNoOpTransactionScope(
	orderRepo trade.OrderRepository,
	productInfoRepo catalog.ProductInfoRepository,
	shopRepo partner.ShopRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		orderRepo:       orderRepo,
		productInfoRepo: productInfoRepo,
		shopRepo:        shopRepo,
	}
}

// Execute runs fn without a transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

func (s *NoOpTransactionScope) OrderRepo() trade.OrderRepository {
	return s.orderRepo
}

func (s *NoOpTransactionScope) ProductInfoRepo() catalog.ProductInfoRepository {
	return s.productInfoRepo
}

func (s *NoOpTransactionScope) ShopRepo() partner.ShopRepository {
	return s.shopRepo
}

var (
	_ TransactionScope          = (*NoOpTransactionScope)(nil)
	_ TransactionalRepositories = (*NoOpTransactionScope)(nil)
)
