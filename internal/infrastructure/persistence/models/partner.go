package models

import (
	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/partner"
)

// ShopModel is the persistence model for the Shop aggregate.
type ShopModel struct {
	BaseModel
	Name   string            `gorm:"type:varchar(100);not null"`
	URL    string            `gorm:"type:varchar(500);not null;default:''"`
	State  partner.ShopState `gorm:"type:varchar(3);not null;default:'on';index"`
	UserID uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex"`
}

// TableName returns the table name for GORM
func (ShopModel) TableName() string {
	return "shops"
}

// ToDomain converts the persistence model to a domain Shop.
func (m *ShopModel) ToDomain() *partner.Shop {
	return &partner.Shop{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Name:              m.Name,
		URL:               m.URL,
		State:             m.State,
		UserID:            m.UserID,
	}
}

// ShopModelFromDomain creates a persistence model from a domain Shop.
func ShopModelFromDomain(s *partner.Shop) *ShopModel {
	m := &ShopModel{
		Name:   s.Name,
		URL:    s.URL,
		State:  s.State,
		UserID: s.UserID,
	}
	m.FromDomainBaseEntity(s.BaseEntity)
	return m
}
