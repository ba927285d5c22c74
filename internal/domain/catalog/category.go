package catalog

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/shared"
)

// Category groups products. ExternalID is the id used by partner price
// lists; it is unique across the catalog.
type Category struct {
	shared.BaseEntity
	ExternalID int64
	Name       string
	ShopIDs    []uuid.UUID
}

// NewCategory creates a category for an external id
func NewCategory(externalID int64, name string) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_CATEGORY_NAME", "Category name is required")
	}
	if len(name) > 100 {
		return nil, shared.NewDomainError("INVALID_CATEGORY_NAME", "Category name cannot exceed 100 characters")
	}
	if externalID <= 0 {
		return nil, shared.NewDomainError("INVALID_CATEGORY_ID", "Category id must be positive")
	}
	return &Category{
		BaseEntity: shared.NewBaseEntity(),
		ExternalID: externalID,
		Name:       name,
		ShopIDs:    make([]uuid.UUID, 0),
	}, nil
}

// HasShop reports whether the shop sells in this category
func (c *Category) HasShop(shopID uuid.UUID) bool {
	for _, id := range c.ShopIDs {
		if id == shopID {
			return true
		}
	}
	return false
}
