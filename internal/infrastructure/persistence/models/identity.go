package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/identity"
)

// UserModel is the persistence model for the User domain entity.
type UserModel struct {
	BaseModel
	Email            string            `gorm:"type:varchar(254);not null;uniqueIndex"`
	PasswordHash     string            `gorm:"type:varchar(255);not null"`
	FirstName        string            `gorm:"type:varchar(30);not null;default:''"`
	LastName         string            `gorm:"type:varchar(30);not null;default:''"`
	MiddleName       string            `gorm:"type:varchar(30);not null;default:''"`
	Company          string            `gorm:"type:varchar(40);not null;default:''"`
	Position         string            `gorm:"type:varchar(40);not null;default:''"`
	Type             identity.UserType `gorm:"type:varchar(5);not null;default:'buyer'"`
	IsActive         bool              `gorm:"not null;default:true"`
	IsStaff          bool              `gorm:"not null;default:false"`
	IsEmailConfirmed bool              `gorm:"not null;default:false"`
	LastLoginAt      *time.Time
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User entity.
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Email:             m.Email,
		PasswordHash:      m.PasswordHash,
		FirstName:         m.FirstName,
		LastName:          m.LastName,
		MiddleName:        m.MiddleName,
		Company:           m.Company,
		Position:          m.Position,
		Type:              m.Type,
		IsActive:          m.IsActive,
		IsStaff:           m.IsStaff,
		IsEmailConfirmed:  m.IsEmailConfirmed,
		LastLoginAt:       m.LastLoginAt,
	}
}

// FromDomain populates the persistence model from a domain User entity.
func (m *UserModel) FromDomain(u *identity.User) {
	m.FromDomainBaseEntity(u.BaseEntity)
	m.Email = u.Email
	m.PasswordHash = u.PasswordHash
	m.FirstName = u.FirstName
	m.LastName = u.LastName
	m.MiddleName = u.MiddleName
	m.Company = u.Company
	m.Position = u.Position
	m.Type = u.Type
	m.IsActive = u.IsActive
	m.IsStaff = u.IsStaff
	m.IsEmailConfirmed = u.IsEmailConfirmed
	m.LastLoginAt = u.LastLoginAt
}

// UserModelFromDomain creates a new persistence model from a domain User entity.
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{}
	m.FromDomain(u)
	return m
}

// VerificationTokenModel is the persistence model for verification tokens.
type VerificationTokenModel struct {
	BaseModel
	UserID    uuid.UUID             `gorm:"type:uuid;not null;uniqueIndex:idx_token_user_purpose,priority:1"`
	Purpose   identity.TokenPurpose `gorm:"type:varchar(20);not null;uniqueIndex:idx_token_user_purpose,priority:2"`
	Key       string                `gorm:"column:token_key;type:varchar(64);not null;uniqueIndex"`
	ExpiresAt time.Time             `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (VerificationTokenModel) TableName() string {
	return "verification_tokens"
}

// ToDomain converts the persistence model to a domain VerificationToken.
func (m *VerificationTokenModel) ToDomain() *identity.VerificationToken {
	return &identity.VerificationToken{
		BaseEntity: m.BaseModel.ToDomain(),
		UserID:     m.UserID,
		Purpose:    m.Purpose,
		Key:        m.Key,
		ExpiresAt:  m.ExpiresAt,
	}
}

// VerificationTokenModelFromDomain creates a persistence model from a token.
func VerificationTokenModelFromDomain(t *identity.VerificationToken) *VerificationTokenModel {
	m := &VerificationTokenModel{
		UserID:    t.UserID,
		Purpose:   t.Purpose,
		Key:       t.Key,
		ExpiresAt: t.ExpiresAt.UTC(),
	}
	m.FromDomainBaseEntity(t.BaseEntity)
	return m
}
