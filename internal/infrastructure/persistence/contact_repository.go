package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/contact"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormContactRepository implements contact.ContactRepository using GORM
type GormContactRepository struct {
	db *gorm.DB
}

// NewGormContactRepository creates a new GormContactRepository
func NewGormContactRepository(db *gorm.DB) *GormContactRepository {
	return &GormContactRepository{db: db}
}

// Create creates a contact
func (r *GormContactRepository) Create(ctx context.Context, c *contact.Contact) error {
	return r.db.WithContext(ctx).Create(models.ContactModelFromDomain(c)).Error
}

// Update updates a contact
func (r *GormContactRepository) Update(ctx context.Context, c *contact.Contact) error {
	result := r.db.WithContext(ctx).Save(models.ContactModelFromDomain(c))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID finds a contact by ID
func (r *GormContactRepository) FindByID(ctx context.Context, id uuid.UUID) (*contact.Contact, error) {
	var model models.ContactModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByUser lists the contacts of a user, oldest first
func (r *GormContactRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]contact.Contact, error) {
	var rows []models.ContactModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	contacts := make([]contact.Contact, len(rows))
	for i := range rows {
		contacts[i] = *rows[i].ToDomain()
	}
	return contacts, nil
}

// CreateLimited counts and inserts in one transaction holding the owner's
// user row, so concurrent creates for one user are serialized
func (r *GormContactRepository) CreateLimited(ctx context.Context, c *contact.Contact, limit int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owner []models.UserModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			Where("id = ?", c.UserID).
			Find(&owner).Error; err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.ContactModel{}).Where("user_id = ?", c.UserID).Count(&count).Error; err != nil {
			return err
		}
		if count >= int64(limit) {
			return contact.ErrLimitReached
		}
		return tx.Create(models.ContactModelFromDomain(c)).Error
	})
}

// DeleteForUser removes the user's contacts among ids
func (r *GormContactRepository) DeleteForUser(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND id IN ?", userID, ids).
		Delete(&models.ContactModel{})
	return result.RowsAffected, result.Error
}

var _ contact.ContactRepository = (*GormContactRepository)(nil)
