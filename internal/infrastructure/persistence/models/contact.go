package models

import (
	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/contact"
)

// ContactModel is the persistence model for a user's delivery contact.
type ContactModel struct {
	BaseModel
	UserID    uuid.UUID    `gorm:"type:uuid;not null;index"`
	Type      contact.Type `gorm:"type:varchar(5);not null;default:'buyer'"`
	Name      string       `gorm:"type:varchar(100);not null;default:''"`
	Phone     string       `gorm:"type:varchar(20);not null"`
	City      string       `gorm:"type:varchar(100);not null"`
	Street    string       `gorm:"type:varchar(100);not null"`
	House     string       `gorm:"type:varchar(100);not null"`
	Structure string       `gorm:"type:varchar(100);not null;default:''"`
	Building  string       `gorm:"type:varchar(100);not null;default:''"`
	Apartment string       `gorm:"type:varchar(100);not null;default:''"`
}

// TableName returns the table name for GORM
func (ContactModel) TableName() string {
	return "contacts"
}

// ToDomain converts the persistence model to a domain Contact.
func (m *ContactModel) ToDomain() *contact.Contact {
	return &contact.Contact{
		BaseEntity: m.BaseModel.ToDomain(),
		UserID:     m.UserID,
		Type:       m.Type,
		Name:       m.Name,
		Phone:      m.Phone,
		City:       m.City,
		Street:     m.Street,
		House:      m.House,
		Structure:  m.Structure,
		Building:   m.Building,
		Apartment:  m.Apartment,
	}
}

// ContactModelFromDomain creates a persistence model from a domain Contact.
func ContactModelFromDomain(c *contact.Contact) *ContactModel {
	m := &ContactModel{
		UserID:    c.UserID,
		Type:      c.Type,
		Name:      c.Name,
		Phone:     c.Phone,
		City:      c.City,
		Street:    c.Street,
		House:     c.House,
		Structure: c.Structure,
		Building:  c.Building,
		Apartment: c.Apartment,
	}
	m.FromDomainBaseEntity(c.BaseEntity)
	return m
}
