package trade

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/shared"
)

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// FindBasket returns the user's basket or shared.ErrNotFound
	FindBasket(ctx context.Context, userID uuid.UUID) (*Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	// FindByUser lists placed orders of a user, newest first
	FindByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]Order, int64, error)
	// FindByShop lists placed orders containing items of a shop, newest first
	FindByShop(ctx context.Context, shopID uuid.UUID, filter OrderFilter) ([]Order, int64, error)
	// Save inserts or updates the order and replaces its items
	Save(ctx context.Context, order *Order) error
}

// OrderFilter narrows order listings
type OrderFilter struct {
	shared.Filter
	Status *OrderStatus
}
