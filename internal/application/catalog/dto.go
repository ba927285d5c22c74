package catalog

import (
	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID         uuid.UUID   `json:"id"`
	ExternalID int64       `json:"external_id"`
	Name       string      `json:"name"`
	Shops      []uuid.UUID `json:"shops"`
}

// ToCategoryResponse converts a domain Category to response DTO
func ToCategoryResponse(c *catalog.Category) CategoryResponse {
	shops := c.ShopIDs
	if shops == nil {
		shops = []uuid.UUID{}
	}
	return CategoryResponse{
		ID:         c.ID,
		ExternalID: c.ExternalID,
		Name:       c.Name,
		Shops:      shops,
	}
}

// ShopRef is the short shop view nested in offers
type ShopRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// ParameterResponse is a parameter value of an offer
type ParameterResponse struct {
	Parameter string `json:"parameter"`
	Value     string `json:"value"`
}

// OfferResponse is a shop's offer for a product
type OfferResponse struct {
	ID         uuid.UUID           `json:"id"`
	ExternalID int64               `json:"external_id"`
	Model      string              `json:"model"`
	Shop       ShopRef             `json:"shop"`
	Quantity   int                 `json:"quantity"`
	Price      decimal.Decimal     `json:"price"`
	PriceRRC   decimal.Decimal     `json:"price_rrc"`
	Parameters []ParameterResponse `json:"product_parameters"`
}

// ProductResponse represents a product with its category and offers
type ProductResponse struct {
	ID       uuid.UUID         `json:"id"`
	Name     string            `json:"name"`
	Category *CategoryResponse `json:"category,omitempty"`
	Offers   []OfferResponse   `json:"product_infos"`
}

// ToProductResponse converts a domain Product to response DTO
func ToProductResponse(p *catalog.Product) ProductResponse {
	resp := ProductResponse{
		ID:     p.ID,
		Name:   p.Name,
		Offers: make([]OfferResponse, len(p.Offers)),
	}
	if p.Category != nil {
		c := ToCategoryResponse(p.Category)
		resp.Category = &c
	}
	for i := range p.Offers {
		resp.Offers[i] = ToOfferResponse(&p.Offers[i])
	}
	return resp
}

// ToOfferResponse converts a domain ProductInfo to response DTO
func ToOfferResponse(info *catalog.ProductInfo) OfferResponse {
	params := make([]ParameterResponse, len(info.Parameters))
	for i, pp := range info.Parameters {
		params[i] = ParameterResponse{Parameter: pp.Name, Value: pp.Value}
	}
	return OfferResponse{
		ID:         info.ID,
		ExternalID: info.ExternalID,
		Model:      info.Model,
		Shop:       ShopRef{ID: info.ShopID, Name: info.ShopName},
		Quantity:   info.Quantity,
		Price:      info.Price,
		PriceRRC:   info.PriceRRC,
		Parameters: params,
	}
}
