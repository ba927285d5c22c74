package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/shared"
)

// BaseModel provides common persistence fields for all models.
// It maps to the domain's BaseEntity.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// ToDomain converts BaseModel to domain BaseEntity
func (m *BaseModel) ToDomain() shared.BaseEntity {
	return shared.BaseEntity{
		ID:        m.ID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromDomainBaseEntity populates BaseModel from domain BaseEntity
func (m *BaseModel) FromDomainBaseEntity(e shared.BaseEntity) {
	m.ID = e.ID
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
}

// ToAggregateRoot converts BaseModel to a domain BaseAggregateRoot with no
// pending events
func (m *BaseModel) ToAggregateRoot() shared.BaseAggregateRoot {
	return shared.BaseAggregateRoot{BaseEntity: m.ToDomain()}
}

// All returns every model in dependency order, for AutoMigrate in tests
func All() []any {
	return []any{
		&UserModel{},
		&VerificationTokenModel{},
		&ShopModel{},
		&CategoryModel{},
		&CategoryShopModel{},
		&ProductModel{},
		&ProductInfoModel{},
		&ParameterModel{},
		&ProductParameterModel{},
		&ContactModel{},
		&OrderModel{},
		&OrderItemModel{},
	}
}
