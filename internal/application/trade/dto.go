package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// ==================== Basket DTOs ====================

// BasketItemInput is one requested basket line
type BasketItemInput struct {
	Shop        uuid.UUID `json:"shop"`
	ProductInfo uuid.UUID `json:"product_info"`
	Quantity    int       `json:"quantity"`
}

// BasketChangeResult reports how many lines were created and updated
type BasketChangeResult struct {
	Created int           `json:"created"`
	Updated int           `json:"updated"`
	Basket  OrderResponse `json:"basket"`
}

// BasketRemoveResult reports how many lines were removed
type BasketRemoveResult struct {
	Deleted int           `json:"deleted"`
	Basket  OrderResponse `json:"basket"`
}

// ==================== Order DTOs ====================

// OrderResponse represents an order or a basket in API responses
type OrderResponse struct {
	ID            uuid.UUID           `json:"id"`
	Status        string              `json:"status"`
	ContactID     *uuid.UUID          `json:"contact,omitempty"`
	Items         []OrderItemResponse `json:"ordered_items"`
	TotalQuantity int                 `json:"total_quantity"`
	TotalSum      decimal.Decimal     `json:"total_sum"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// OrderItemResponse represents an order line in API responses
type OrderItemResponse struct {
	ID            uuid.UUID       `json:"id"`
	ProductInfoID uuid.UUID       `json:"product_info"`
	ProductID     uuid.UUID       `json:"product_id"`
	ProductName   string          `json:"product"`
	ShopID        uuid.UUID       `json:"shop_id"`
	ShopName      string          `json:"shop"`
	Quantity      int             `json:"quantity"`
	Price         decimal.Decimal `json:"price"`
	PriceRRC      decimal.Decimal `json:"price_rrc"`
	Sum           decimal.Decimal `json:"sum"`
}

// ToOrderResponse converts a domain Order to response DTO
func ToOrderResponse(order *trade.Order) OrderResponse {
	return toOrderResponse(order, order.Items)
}

// ToShopOrderResponse converts a domain Order keeping only the lines of one
// shop. Totals cover those lines only.
func ToShopOrderResponse(order *trade.Order, shopID uuid.UUID) OrderResponse {
	return toOrderResponse(order, order.ItemsOfShop(shopID))
}

func toOrderResponse(order *trade.Order, lines []trade.OrderItem) OrderResponse {
	items := make([]OrderItemResponse, len(lines))
	quantity := 0
	total := decimal.Zero
	for i := range lines {
		items[i] = ToOrderItemResponse(&lines[i])
		quantity += lines[i].Quantity
		total = total.Add(items[i].Sum)
	}
	return OrderResponse{
		ID:            order.ID,
		Status:        string(order.Status),
		ContactID:     order.ContactID,
		Items:         items,
		TotalQuantity: quantity,
		TotalSum:      total,
		CreatedAt:     order.CreatedAt,
		UpdatedAt:     order.UpdatedAt,
	}
}

// ToOrderItemResponse converts a domain OrderItem to response DTO
func ToOrderItemResponse(item *trade.OrderItem) OrderItemResponse {
	return OrderItemResponse{
		ID:            item.ID,
		ProductInfoID: item.ProductInfoID,
		ProductID:     item.ProductID,
		ProductName:   item.ProductName,
		ShopID:        item.ShopID,
		ShopName:      item.ShopName,
		Quantity:      item.Quantity,
		Price:         item.Price,
		PriceRRC:      item.PriceRRC,
		Sum:           item.Sum(),
	}
}

// ToOrderResponses converts a page of orders
func ToOrderResponses(orders []trade.Order) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i := range orders {
		out[i] = ToOrderResponse(&orders[i])
	}
	return out
}
