package models

import (
	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// CategoryModel is the persistence model for the Category entity.
type CategoryModel struct {
	BaseModel
	ExternalID int64  `gorm:"not null;uniqueIndex"`
	Name       string `gorm:"type:varchar(100);not null"`
}

// TableName returns the table name for GORM
func (CategoryModel) TableName() string {
	return "categories"
}

// ToDomain converts the persistence model to a domain Category. Shop links
// are attached by the repository.
func (m *CategoryModel) ToDomain() *catalog.Category {
	return &catalog.Category{
		BaseEntity: m.BaseModel.ToDomain(),
		ExternalID: m.ExternalID,
		Name:       m.Name,
		ShopIDs:    make([]uuid.UUID, 0),
	}
}

// CategoryModelFromDomain creates a persistence model from a domain Category.
func CategoryModelFromDomain(c *catalog.Category) *CategoryModel {
	m := &CategoryModel{ExternalID: c.ExternalID, Name: c.Name}
	m.FromDomainBaseEntity(c.BaseEntity)
	return m
}

// CategoryShopModel links a category to the shops selling in it.
type CategoryShopModel struct {
	CategoryID uuid.UUID `gorm:"type:uuid;primaryKey"`
	ShopID     uuid.UUID `gorm:"type:uuid;primaryKey;index"`
}

// TableName returns the table name for GORM
func (CategoryShopModel) TableName() string {
	return "category_shops"
}

// ProductModel is the persistence model for the Product entity.
type ProductModel struct {
	BaseModel
	Name       string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_product_name_category,priority:1"`
	CategoryID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_product_name_category,priority:2;index"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product.
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		BaseEntity: m.BaseModel.ToDomain(),
		Name:       m.Name,
		CategoryID: m.CategoryID,
		Offers:     make([]catalog.ProductInfo, 0),
	}
}

// ProductModelFromDomain creates a persistence model from a domain Product.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{Name: p.Name, CategoryID: p.CategoryID}
	m.FromDomainBaseEntity(p.BaseEntity)
	return m
}

// ProductInfoModel is the persistence model for a shop offer.
type ProductInfoModel struct {
	BaseModel
	ProductID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	ShopID     uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_product_info_shop_external,priority:1"`
	ExternalID int64           `gorm:"not null;uniqueIndex:idx_product_info_shop_external,priority:2"`
	Model      string          `gorm:"type:varchar(80);not null;default:''"`
	Quantity   int             `gorm:"not null;default:0;check:quantity >= 0"`
	Price      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PriceRRC   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

// TableName returns the table name for GORM
func (ProductInfoModel) TableName() string {
	return "product_infos"
}

// ToDomain converts the persistence model to a domain ProductInfo.
func (m *ProductInfoModel) ToDomain() *catalog.ProductInfo {
	return &catalog.ProductInfo{
		BaseEntity: m.BaseModel.ToDomain(),
		ProductID:  m.ProductID,
		ShopID:     m.ShopID,
		ExternalID: m.ExternalID,
		Model:      m.Model,
		Quantity:   m.Quantity,
		Price:      m.Price,
		PriceRRC:   m.PriceRRC,
		Parameters: make([]catalog.ProductParameter, 0),
	}
}

// ProductInfoModelFromDomain creates a persistence model from a domain ProductInfo.
func ProductInfoModelFromDomain(p *catalog.ProductInfo) *ProductInfoModel {
	m := &ProductInfoModel{
		ProductID:  p.ProductID,
		ShopID:     p.ShopID,
		ExternalID: p.ExternalID,
		Model:      p.Model,
		Quantity:   p.Quantity,
		Price:      p.Price,
		PriceRRC:   p.PriceRRC,
	}
	m.FromDomainBaseEntity(p.BaseEntity)
	return m
}

// ParameterModel is the persistence model for a parameter name.
type ParameterModel struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name string    `gorm:"type:varchar(100);not null;uniqueIndex"`
}

// TableName returns the table name for GORM
func (ParameterModel) TableName() string {
	return "parameters"
}

// ProductParameterModel stores one parameter value of an offer.
type ProductParameterModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductInfoID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_product_parameter,priority:1"`
	ParameterID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_product_parameter,priority:2"`
	Value         string    `gorm:"type:varchar(100);not null"`
}

// TableName returns the table name for GORM
func (ProductParameterModel) TableName() string {
	return "product_parameters"
}

// ProductParameterModelFromDomain creates a persistence model from a parameter value.
func ProductParameterModelFromDomain(pp catalog.ProductParameter) *ProductParameterModel {
	return &ProductParameterModel{
		ID:            pp.ID,
		ProductInfoID: pp.ProductInfoID,
		ParameterID:   pp.ParameterID,
		Value:         pp.Value,
	}
}
