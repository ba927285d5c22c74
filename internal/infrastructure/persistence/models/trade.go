package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// OrderModel is the persistence model for the Order aggregate.
type OrderModel struct {
	BaseModel
	UserID    uuid.UUID         `gorm:"type:uuid;not null;index"`
	Status    trade.OrderStatus `gorm:"type:varchar(15);not null;index"`
	ContactID *uuid.UUID        `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order. Items are
// attached by the repository.
func (m *OrderModel) ToDomain() *trade.Order {
	return &trade.Order{
		BaseAggregateRoot: m.ToAggregateRoot(),
		UserID:            m.UserID,
		Status:            m.Status,
		ContactID:         m.ContactID,
		Items:             make([]trade.OrderItem, 0),
	}
}

// OrderModelFromDomain creates a persistence model from a domain Order.
func OrderModelFromDomain(o *trade.Order) *OrderModel {
	m := &OrderModel{
		UserID:    o.UserID,
		Status:    o.Status,
		ContactID: o.ContactID,
	}
	m.FromDomainBaseEntity(o.BaseEntity)
	return m
}

// OrderItemModel is the persistence model for an order line. ProductInfoID
// is NULL once a price-list import has replaced the offer; placed orders
// keep the product, shop and prices they were sold at.
type OrderItemModel struct {
	ID            uuid.UUID           `gorm:"type:uuid;primaryKey"`
	OrderID       uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex:idx_order_item_offer,priority:1"`
	ProductInfoID *uuid.UUID          `gorm:"type:uuid;uniqueIndex:idx_order_item_offer,priority:2"`
	ProductID     uuid.UUID           `gorm:"type:uuid;not null"`
	ShopID        uuid.UUID           `gorm:"type:uuid;not null;index"`
	Quantity      int                 `gorm:"not null;check:quantity > 0"`
	ProductName   string              `gorm:"type:varchar(100);not null;default:''"`
	ShopName      string              `gorm:"type:varchar(100);not null;default:''"`
	Price         decimal.NullDecimal `gorm:"type:decimal(12,2)"`
	PriceRRC      decimal.NullDecimal `gorm:"type:decimal(12,2)"`
	CreatedAt     time.Time           `gorm:"not null"`
	UpdatedAt     time.Time           `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts the persistence model to a domain OrderItem.
func (m *OrderItemModel) ToDomain() trade.OrderItem {
	item := trade.OrderItem{
		ID:          m.ID,
		OrderID:     m.OrderID,
		ProductID:   m.ProductID,
		ShopID:      m.ShopID,
		Quantity:    m.Quantity,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
		ProductName: m.ProductName,
		ShopName:    m.ShopName,
		Price:       m.Price.Decimal,
		PriceRRC:    m.PriceRRC.Decimal,
	}
	if m.ProductInfoID != nil {
		item.ProductInfoID = *m.ProductInfoID
	}
	return item
}

// OrderItemModelFromDomain creates a persistence model from a domain
// OrderItem. Prices are stored only once the order has left the basket.
func OrderItemModelFromDomain(i *trade.OrderItem, placed bool) *OrderItemModel {
	m := &OrderItemModel{
		ID:          i.ID,
		OrderID:     i.OrderID,
		ProductID:   i.ProductID,
		ShopID:      i.ShopID,
		Quantity:    i.Quantity,
		ProductName: i.ProductName,
		ShopName:    i.ShopName,
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
	if i.ProductInfoID != uuid.Nil {
		id := i.ProductInfoID
		m.ProductInfoID = &id
	}
	if placed {
		m.Price = decimal.NewNullDecimal(i.Price)
		m.PriceRRC = decimal.NewNullDecimal(i.PriceRRC)
	}
	return m
}
