package catalog

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Product is a catalog item independent of who sells it. Products are
// identified by (name, category).
type Product struct {
	shared.BaseEntity
	Name       string
	CategoryID uuid.UUID

	// Read side, populated by repositories
	Category *Category
	Offers   []ProductInfo
}

// NewProduct creates a product in a category
func NewProduct(name string, categoryID uuid.UUID) (*Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name is required")
	}
	if len(name) > 100 {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot exceed 100 characters")
	}
	if categoryID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Product category is required")
	}
	return &Product{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		CategoryID: categoryID,
	}, nil
}

// ProductInfo is a shop's offer for a product: its price and stock.
type ProductInfo struct {
	shared.BaseEntity
	ProductID  uuid.UUID
	ShopID     uuid.UUID
	ExternalID int64
	Model      string
	Quantity   int
	Price      decimal.Decimal
	PriceRRC   decimal.Decimal
	Parameters []ProductParameter

	// Read side, populated by repositories
	ProductName string
	ShopName    string
}

// NewProductInfo creates an offer
func NewProductInfo(productID, shopID uuid.UUID, externalID int64, model string, quantity int, price, priceRRC decimal.Decimal) (*ProductInfo, error) {
	if productID == uuid.Nil || shopID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT_INFO", "Product and shop are required")
	}
	if quantity < 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot be negative")
	}
	if price.IsNegative() || priceRRC.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	return &ProductInfo{
		BaseEntity: shared.NewBaseEntity(),
		ProductID:  productID,
		ShopID:     shopID,
		ExternalID: externalID,
		Model:      strings.TrimSpace(model),
		Quantity:   quantity,
		Price:      price,
		PriceRRC:   priceRRC,
		Parameters: make([]ProductParameter, 0),
	}, nil
}

// AddParameter attaches a named characteristic to the offer
func (p *ProductInfo) AddParameter(param *Parameter, value string) ProductParameter {
	pp := ProductParameter{
		ID:            uuid.New(),
		ProductInfoID: p.ID,
		ParameterID:   param.ID,
		Name:          param.Name,
		Value:         value,
	}
	p.Parameters = append(p.Parameters, pp)
	return pp
}

// HasStock reports whether quantity units can be taken
func (p *ProductInfo) HasStock(quantity int) bool {
	return p.Quantity >= quantity
}

// Parameter is a named product characteristic such as "Цвет" or "Диагональ"
type Parameter struct {
	ID   uuid.UUID
	Name string
}

// NewParameter creates a parameter
func NewParameter(name string) (*Parameter, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_PARAMETER_NAME", "Parameter name is required")
	}
	if len(name) > 100 {
		return nil, shared.NewDomainError("INVALID_PARAMETER_NAME", "Parameter name cannot exceed 100 characters")
	}
	return &Parameter{ID: uuid.New(), Name: name}, nil
}

// ProductParameter is the value of a parameter for an offer
type ProductParameter struct {
	ID            uuid.UUID
	ProductInfoID uuid.UUID
	ParameterID   uuid.UUID
	Name          string
	Value         string
}
