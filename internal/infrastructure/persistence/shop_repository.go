package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/partner"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormShopRepository implements partner.ShopRepository using GORM
type GormShopRepository struct {
	db *gorm.DB
}

// NewGormShopRepository creates a new GormShopRepository
func NewGormShopRepository(db *gorm.DB) *GormShopRepository {
	return &GormShopRepository{db: db}
}

// Create creates a new shop
func (r *GormShopRepository) Create(ctx context.Context, shop *partner.Shop) error {
	if err := r.db.WithContext(ctx).Create(models.ShopModelFromDomain(shop)).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Update updates an existing shop
func (r *GormShopRepository) Update(ctx context.Context, shop *partner.Shop) error {
	result := r.db.WithContext(ctx).Save(models.ShopModelFromDomain(shop))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID finds a shop by ID
func (r *GormShopRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Shop, error) {
	return r.first(ctx, "id = ?", id)
}

// FindByUserID finds the shop owned by a partner user
func (r *GormShopRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*partner.Shop, error) {
	return r.first(ctx, "user_id = ?", userID)
}

func (r *GormShopRepository) first(ctx context.Context, query string, args ...any) (*partner.Shop, error) {
	var model models.ShopModel
	if err := r.db.WithContext(ctx).Where(query, args...).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs returns the shops that exist among ids
func (r *GormShopRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]partner.Shop, error) {
	if len(ids) == 0 {
		return []partner.Shop{}, nil
	}
	var rows []models.ShopModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return toShops(rows), nil
}

// FindAll lists shops ordered by name descending unless the filter says otherwise
func (r *GormShopRepository) FindAll(ctx context.Context, filter partner.ShopFilter) ([]partner.Shop, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ShopModel{})
	if filter.State != nil {
		query = query.Where("state = ?", *filter.State)
	}
	if filter.Search != "" {
		query = query.Where(`LOWER(name) LIKE ? ESCAPE '\'`, likePattern(filter.Search))
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.ShopModel
	if err := paginate(query.Order(orderClause("shops", filter.Filter, ShopSortFields, "name", "DESC")), filter.Filter).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return toShops(rows), total, nil
}

func toShops(rows []models.ShopModel) []partner.Shop {
	shops := make([]partner.Shop, len(rows))
	for i := range rows {
		shops[i] = *rows[i].ToDomain()
	}
	return shops
}

var _ partner.ShopRepository = (*GormShopRepository)(nil)
