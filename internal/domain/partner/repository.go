package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/shared"
)

// ShopRepository defines the interface for shop persistence
type ShopRepository interface {
	Create(ctx context.Context, shop *Shop) error
	Update(ctx context.Context, shop *Shop) error
	FindByID(ctx context.Context, id uuid.UUID) (*Shop, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*Shop, error)
	// FindByIDs returns the shops that exist among ids, in no particular order
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Shop, error)
	FindAll(ctx context.Context, filter ShopFilter) ([]Shop, int64, error)
}

// ShopFilter narrows shop listings
type ShopFilter struct {
	shared.Filter
	State *ShopState
}
