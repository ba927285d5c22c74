package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopfront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CatalogService serves category and product browsing
type CatalogService struct {
	categoryRepo catalog.CategoryRepository
	productRepo  catalog.ProductRepository
	logger       *zap.Logger
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(
	categoryRepo catalog.CategoryRepository,
	productRepo catalog.ProductRepository,
	logger *zap.Logger,
) *CatalogService {
	return &CatalogService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		logger:       logger,
	}
}

// ListCategories lists categories, optionally only those a shop sells in
func (s *CatalogService) ListCategories(ctx context.Context, filter catalog.CategoryFilter) (shared.Paginated[CategoryResponse], error) {
	categories, total, err := s.categoryRepo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[CategoryResponse]{}, err
	}
	items := make([]CategoryResponse, len(categories))
	for i := range categories {
		items[i] = ToCategoryResponse(&categories[i])
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// ListProducts lists products offered by enabled shops
func (s *CatalogService) ListProducts(ctx context.Context, filter catalog.ProductFilter) (shared.Paginated[ProductResponse], error) {
	products, total, err := s.productRepo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[ProductResponse]{}, err
	}
	items := make([]ProductResponse, len(products))
	for i := range products {
		items[i] = ToProductResponse(&products[i])
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// GetProduct returns one product with its current offers
func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Product not found")
		}
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}
