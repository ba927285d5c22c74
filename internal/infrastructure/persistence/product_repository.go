package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopfront/backend/internal/domain/partner"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/domain/trade"
	"github.com/shopfront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID loads a product with its category and the offers of enabled shops
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	products := []catalog.Product{*model.ToDomain()}
	if err := r.hydrate(ctx, products, nil); err != nil {
		return nil, err
	}
	return &products[0], nil
}

// FindByNameAndCategory finds a product by its natural key
func (r *GormProductRepository) FindByNameAndCategory(ctx context.Context, name string, categoryID uuid.UUID) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).
		Where("name = ? AND category_id = ?", strings.TrimSpace(name), categoryID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Create creates a product
func (r *GormProductRepository) Create(ctx context.Context, product *catalog.Product) error {
	if err := r.db.WithContext(ctx).Create(models.ProductModelFromDomain(product)).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// FindAll lists products that have at least one offer from an enabled shop
func (r *GormProductRepository) FindAll(ctx context.Context, filter catalog.ProductFilter) ([]catalog.Product, int64, error) {
	offerCond := "EXISTS (SELECT 1 FROM product_infos pi JOIN shops s ON s.id = pi.shop_id WHERE pi.product_id = products.id AND s.state = ?"
	args := []any{partner.ShopStateOn}
	if filter.ShopID != nil {
		offerCond += " AND pi.shop_id = ?"
		args = append(args, *filter.ShopID)
	}
	offerCond += ")"

	query := r.db.WithContext(ctx).Model(&models.ProductModel{}).Where(offerCond, args...)
	if filter.CategoryID != nil {
		query = query.Where("products.category_id = ?", *filter.CategoryID)
	}
	if filter.Search != "" {
		query = query.Where(`LOWER(products.name) LIKE ? ESCAPE '\'`, likePattern(filter.Search))
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.ProductModel
	if err := paginate(query.Order(orderClause("products", filter.Filter, ProductSortFields, "name", "ASC")), filter.Filter).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	products := make([]catalog.Product, len(rows))
	for i := range rows {
		products[i] = *rows[i].ToDomain()
	}
	if err := r.hydrate(ctx, products, filter.ShopID); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// hydrate attaches categories and offers (with parameters) to products.
// Only offers of enabled shops are attached, optionally narrowed to one shop.
func (r *GormProductRepository) hydrate(ctx context.Context, products []catalog.Product, shopID *uuid.UUID) error {
	if len(products) == 0 {
		return nil
	}

	productIDs := make([]uuid.UUID, len(products))
	categoryIDs := make([]uuid.UUID, 0, len(products))
	index := make(map[uuid.UUID]int, len(products))
	for i, p := range products {
		productIDs[i] = p.ID
		categoryIDs = append(categoryIDs, p.CategoryID)
		index[p.ID] = i
	}

	var categories []models.CategoryModel
	if err := r.db.WithContext(ctx).Where("id IN ?", categoryIDs).Find(&categories).Error; err != nil {
		return err
	}
	byID := make(map[uuid.UUID]*catalog.Category, len(categories))
	for i := range categories {
		byID[categories[i].ID] = categories[i].ToDomain()
	}
	for i := range products {
		products[i].Category = byID[products[i].CategoryID]
	}

	query := offerQuery(r.db.WithContext(ctx)).
		Where("product_infos.product_id IN ? AND shops.state = ?", productIDs, partner.ShopStateOn)
	if shopID != nil {
		query = query.Where("product_infos.shop_id = ?", *shopID)
	}
	offers, err := scanOffers(ctx, r.db, query.Order("shops.name ASC"))
	if err != nil {
		return err
	}
	for _, o := range offers {
		p := &products[index[o.ProductID]]
		p.Offers = append(p.Offers, o)
	}
	return nil
}

// offerRow is the read shape of product_infos joined with product and shop names
type offerRow struct {
	models.ProductInfoModel
	ProductName string
	ShopName    string
}

func offerQuery(db *gorm.DB) *gorm.DB {
	return db.Table("product_infos").
		Select("product_infos.*, products.name AS product_name, shops.name AS shop_name").
		Joins("JOIN products ON products.id = product_infos.product_id").
		Joins("JOIN shops ON shops.id = product_infos.shop_id")
}

// scanOffers runs an offer query and loads the parameter values of the result
func scanOffers(ctx context.Context, db *gorm.DB, query *gorm.DB) ([]catalog.ProductInfo, error) {
	var rows []offerRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []catalog.ProductInfo{}, nil
	}

	offers := make([]catalog.ProductInfo, len(rows))
	ids := make([]uuid.UUID, len(rows))
	index := make(map[uuid.UUID]int, len(rows))
	for i := range rows {
		o := rows[i].ProductInfoModel.ToDomain()
		o.ProductName = rows[i].ProductName
		o.ShopName = rows[i].ShopName
		offers[i] = *o
		ids[i] = o.ID
		index[o.ID] = i
	}

	var params []parameterValueRow
	if err := db.WithContext(ctx).Table("product_parameters").
		Select("product_parameters.*, parameters.name AS name").
		Joins("JOIN parameters ON parameters.id = product_parameters.parameter_id").
		Where("product_parameters.product_info_id IN ?", ids).
		Order("parameters.name ASC").
		Scan(&params).Error; err != nil {
		return nil, err
	}
	for _, p := range params {
		o := &offers[index[p.ProductInfoID]]
		o.Parameters = append(o.Parameters, catalog.ProductParameter{
			ID:            p.ID,
			ProductInfoID: p.ProductInfoID,
			ParameterID:   p.ParameterID,
			Name:          p.Name,
			Value:         p.Value,
		})
	}
	return offers, nil
}

type parameterValueRow struct {
	models.ProductParameterModel
	Name string
}

// GormProductInfoRepository implements catalog.ProductInfoRepository using GORM
type GormProductInfoRepository struct {
	db *gorm.DB
}

// NewGormProductInfoRepository creates a new GormProductInfoRepository
func NewGormProductInfoRepository(db *gorm.DB) *GormProductInfoRepository {
	return &GormProductInfoRepository{db: db}
}

// FindByID finds an offer with product and shop names
func (r *GormProductInfoRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.ProductInfo, error) {
	offers, err := r.FindByIDs(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	if len(offers) == 0 {
		return nil, shared.ErrNotFound
	}
	return &offers[0], nil
}

// FindByIDs loads offers with product and shop names
func (r *GormProductInfoRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.ProductInfo, error) {
	if len(ids) == 0 {
		return []catalog.ProductInfo{}, nil
	}
	return scanOffers(ctx, r.db, offerQuery(r.db.WithContext(ctx)).Where("product_infos.id IN ?", ids))
}

// Create creates an offer together with its parameter values
func (r *GormProductInfoRepository) Create(ctx context.Context, info *catalog.ProductInfo) error {
	db := r.db.WithContext(ctx)
	if err := db.Create(models.ProductInfoModelFromDomain(info)).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	if len(info.Parameters) == 0 {
		return nil
	}
	values := make([]*models.ProductParameterModel, len(info.Parameters))
	for i, pp := range info.Parameters {
		values[i] = models.ProductParameterModelFromDomain(pp)
	}
	return db.Create(values).Error
}

// DeleteByShop removes every offer of a shop with its parameter values.
// Basket lines for those offers go with them; lines of placed orders are
// kept, detached from the offer, with the values stored at placement.
func (r *GormProductInfoRepository) DeleteByShop(ctx context.Context, shopID uuid.UUID) (int64, error) {
	db := r.db.WithContext(ctx)
	offers := func() *gorm.DB {
		return db.Model(&models.ProductInfoModel{}).Select("id").Where("shop_id = ?", shopID)
	}

	if err := db.Where("product_info_id IN (?)", offers()).
		Delete(&models.ProductParameterModel{}).Error; err != nil {
		return 0, err
	}
	if err := db.Where("product_info_id IN (?)", offers()).
		Where("order_id IN (?)", db.Model(&models.OrderModel{}).Select("id").Where("status = ?", trade.OrderStatusBasket)).
		Delete(&models.OrderItemModel{}).Error; err != nil {
		return 0, err
	}
	if err := db.Model(&models.OrderItemModel{}).
		Where("product_info_id IN (?)", offers()).
		Update("product_info_id", nil).Error; err != nil {
		return 0, err
	}

	result := db.Where("shop_id = ?", shopID).Delete(&models.ProductInfoModel{})
	return result.RowsAffected, result.Error
}

// DecreaseStock takes quantity units with a guarded update so concurrent
// orders never drive stock negative
func (r *GormProductInfoRepository) DecreaseStock(ctx context.Context, id uuid.UUID, quantity int) error {
	result := r.db.WithContext(ctx).
		Model(&models.ProductInfoModel{}).
		Where("id = ? AND quantity >= ?", id, quantity).
		Update("quantity", gorm.Expr("quantity - ?", quantity))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.ProductInfoModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return shared.ErrNotFound
		}
		return shared.ErrInsufficientStock
	}
	return nil
}

// IncreaseStock returns quantity units to an offer. An offer removed by a
// later price-list import is not an error; there is nothing to restock.
func (r *GormProductInfoRepository) IncreaseStock(ctx context.Context, id uuid.UUID, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&models.ProductInfoModel{}).
		Where("id = ?", id).
		Update("quantity", gorm.Expr("quantity + ?", quantity)).Error
}

// GormParameterRepository implements catalog.ParameterRepository using GORM
type GormParameterRepository struct {
	db *gorm.DB
}

// NewGormParameterRepository creates a new GormParameterRepository
func NewGormParameterRepository(db *gorm.DB) *GormParameterRepository {
	return &GormParameterRepository{db: db}
}

// FindByName finds a parameter by its name
func (r *GormParameterRepository) FindByName(ctx context.Context, name string) (*catalog.Parameter, error) {
	var model models.ParameterModel
	if err := r.db.WithContext(ctx).Where("name = ?", strings.TrimSpace(name)).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &catalog.Parameter{ID: model.ID, Name: model.Name}, nil
}

// Create creates a parameter
func (r *GormParameterRepository) Create(ctx context.Context, param *catalog.Parameter) error {
	if err := r.db.WithContext(ctx).Create(&models.ParameterModel{ID: param.ID, Name: param.Name}).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

var (
	_ catalog.ProductRepository     = (*GormProductRepository)(nil)
	_ catalog.ProductInfoRepository = (*GormProductInfoRepository)(nil)
	_ catalog.ParameterRepository   = (*GormParameterRepository)(nil)
)
