package trade

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the lifecycle state of an order
type OrderStatus string

const (
	OrderStatusBasket    OrderStatus = "basket"
	OrderStatusNew       OrderStatus = "new"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusAssembled OrderStatus = "assembled"
	OrderStatusSent      OrderStatus = "sent"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCanceled  OrderStatus = "canceled"
	OrderStatusReturned  OrderStatus = "returned"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusBasket, OrderStatusNew, OrderStatusConfirmed, OrderStatusAssembled,
		OrderStatusSent, OrderStatusDelivered, OrderStatusCanceled, OrderStatusReturned:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusBasket:
		return target == OrderStatusNew
	case OrderStatusNew:
		return target == OrderStatusConfirmed || target == OrderStatusCanceled
	case OrderStatusConfirmed:
		return target == OrderStatusAssembled || target == OrderStatusCanceled
	case OrderStatusAssembled:
		return target == OrderStatusSent || target == OrderStatusCanceled
	case OrderStatusSent:
		return target == OrderStatusDelivered
	case OrderStatusDelivered:
		return target == OrderStatusReturned
	}
	return false
}

// RestoresStock reports whether entering the status puts goods back on sale
func (s OrderStatus) RestoresStock() bool {
	return s == OrderStatusCanceled || s == OrderStatusReturned
}

// OrderItem is a line of an order. An order holds at most one item per offer.
type OrderItem struct {
	ID            uuid.UUID
	OrderID       uuid.UUID
	ProductInfoID uuid.UUID
	ProductID     uuid.UUID
	ShopID        uuid.UUID
	Quantity      int
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Read side, populated by repositories
	ProductName string
	ShopName    string
	Price       decimal.Decimal
	PriceRRC    decimal.Decimal
}

// Sum returns price times quantity
func (i *OrderItem) Sum() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order is the aggregate root for baskets and placed orders
type Order struct {
	shared.BaseAggregateRoot
	UserID    uuid.UUID
	Status    OrderStatus
	ContactID *uuid.UUID
	Items     []OrderItem
}

// NewBasket creates an empty basket for a user
func NewBasket(userID uuid.UUID) (*Order, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User is required")
	}
	return &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		Status:            OrderStatusBasket,
		Items:             make([]OrderItem, 0),
	}, nil
}

// IsBasket reports whether the order is still a basket
func (o *Order) IsBasket() bool {
	return o.Status == OrderStatusBasket
}

// GetItem returns the item for an offer, or nil
func (o *Order) GetItem(productInfoID uuid.UUID) *OrderItem {
	for i := range o.Items {
		if o.Items[i].ProductInfoID == productInfoID {
			return &o.Items[i]
		}
	}
	return nil
}

// PutItem sets the quantity of an offer in the basket, adding the line when
// missing. It returns true when a new line was created.
func (o *Order) PutItem(offer Offer, quantity int) (bool, error) {
	if !o.IsBasket() {
		return false, shared.NewDomainError("INVALID_STATE", "Only a basket can be modified")
	}
	if quantity < 1 {
		return false, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
	}
	now := time.Now()
	if item := o.GetItem(offer.ID); item != nil {
		item.Quantity = quantity
		item.Price = offer.Price
		item.PriceRRC = offer.PriceRRC
		item.UpdatedAt = now
		o.Touch()
		return false, nil
	}
	o.Items = append(o.Items, OrderItem{
		ID:            uuid.New(),
		OrderID:       o.ID,
		ProductInfoID: offer.ID,
		ProductID:     offer.ProductID,
		ShopID:        offer.ShopID,
		Quantity:      quantity,
		CreatedAt:     now,
		UpdatedAt:     now,
		ProductName:   offer.ProductName,
		ShopName:      offer.ShopName,
		Price:         offer.Price,
		PriceRRC:      offer.PriceRRC,
	})
	o.Touch()
	return true, nil
}

// UpdateItem changes the quantity of a line already in the basket
func (o *Order) UpdateItem(offer Offer, quantity int) error {
	if o.GetItem(offer.ID) == nil {
		return shared.NewDomainError("NOT_FOUND", fmt.Sprintf("Product with id %s is not in basket", offer.ID))
	}
	_, err := o.PutItem(offer, quantity)
	return err
}

// RemoveItems drops the lines for the given offers and returns how many
// were removed
func (o *Order) RemoveItems(productInfoIDs []uuid.UUID) (int, error) {
	if !o.IsBasket() {
		return 0, shared.NewDomainError("INVALID_STATE", "Only a basket can be modified")
	}
	drop := make(map[uuid.UUID]bool, len(productInfoIDs))
	for _, id := range productInfoIDs {
		drop[id] = true
	}
	kept := o.Items[:0]
	removed := 0
	for _, item := range o.Items {
		if drop[item.ProductInfoID] {
			removed++
			continue
		}
		kept = append(kept, item)
	}
	o.Items = kept
	if removed > 0 {
		o.Touch()
	}
	return removed, nil
}

// Place turns the basket into a new order delivered to contactID
func (o *Order) Place(contactID uuid.UUID) error {
	if !o.IsBasket() {
		return shared.NewDomainError("INVALID_STATE", "Only a basket can be placed")
	}
	if len(o.Items) == 0 {
		return shared.NewDomainError("EMPTY_BASKET", "Basket is empty")
	}
	if contactID == uuid.Nil {
		return shared.NewDomainError("INVALID_CONTACT", "Contact is required")
	}
	o.ContactID = &contactID
	return o.transition(OrderStatusNew)
}

// ChangeStatus moves a placed order along its lifecycle
func (o *Order) ChangeStatus(target OrderStatus) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Unknown order status %q", target))
	}
	if o.IsBasket() {
		return shared.NewDomainError("INVALID_STATE", "Basket status cannot be changed directly")
	}
	return o.transition(target)
}

func (o *Order) transition(target OrderStatus) error {
	if !o.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot change order status from %s to %s", o.Status, target))
	}
	old := o.Status
	o.Status = target
	o.Touch()
	o.AddDomainEvent(NewOrderStatusChangedEvent(o, old))
	return nil
}

// Total returns the sum of all lines
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for i := range o.Items {
		total = total.Add(o.Items[i].Sum())
	}
	return total
}

// TotalQuantity returns the number of units across lines
func (o *Order) TotalQuantity() int {
	n := 0
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}

// HasShop reports whether any line is sold by the shop
func (o *Order) HasShop(shopID uuid.UUID) bool {
	for _, item := range o.Items {
		if item.ShopID == shopID {
			return true
		}
	}
	return false
}

// ItemsOfShop returns the lines sold by the shop
func (o *Order) ItemsOfShop(shopID uuid.UUID) []OrderItem {
	items := make([]OrderItem, 0)
	for _, item := range o.Items {
		if item.ShopID == shopID {
			items = append(items, item)
		}
	}
	return items
}
