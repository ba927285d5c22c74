package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCategoryRepository implements catalog.CategoryRepository using GORM
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewGormCategoryRepository creates a new GormCategoryRepository
func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

// FindByID finds a category by its ID
func (r *GormCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	return r.first(ctx, "id = ?", id)
}

// FindByExternalID finds a category by the id used in partner price lists
func (r *GormCategoryRepository) FindByExternalID(ctx context.Context, externalID int64) (*catalog.Category, error) {
	return r.first(ctx, "external_id = ?", externalID)
}

func (r *GormCategoryRepository) first(ctx context.Context, query string, args ...any) (*catalog.Category, error) {
	var model models.CategoryModel
	if err := r.db.WithContext(ctx).Where(query, args...).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	categories := []catalog.Category{*model.ToDomain()}
	if err := r.attachShops(ctx, categories); err != nil {
		return nil, err
	}
	return &categories[0], nil
}

// FindAll lists categories, by default ordered by name descending
func (r *GormCategoryRepository) FindAll(ctx context.Context, filter catalog.CategoryFilter) ([]catalog.Category, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.CategoryModel{})
	if filter.ShopID != nil {
		query = query.Where("EXISTS (SELECT 1 FROM category_shops cs WHERE cs.category_id = categories.id AND cs.shop_id = ?)", *filter.ShopID)
	}
	if filter.Search != "" {
		query = query.Where(`LOWER(categories.name) LIKE ? ESCAPE '\'`, likePattern(filter.Search))
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.CategoryModel
	if err := paginate(query.Order(orderClause("categories", filter.Filter, CategorySortFields, "name", "DESC")), filter.Filter).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	categories := make([]catalog.Category, len(rows))
	for i := range rows {
		categories[i] = *rows[i].ToDomain()
	}
	if err := r.attachShops(ctx, categories); err != nil {
		return nil, 0, err
	}
	return categories, total, nil
}

func (r *GormCategoryRepository) attachShops(ctx context.Context, categories []catalog.Category) error {
	if len(categories) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(categories))
	index := make(map[uuid.UUID]int, len(categories))
	for i, c := range categories {
		ids[i] = c.ID
		index[c.ID] = i
	}

	var links []models.CategoryShopModel
	if err := r.db.WithContext(ctx).Where("category_id IN ?", ids).Find(&links).Error; err != nil {
		return err
	}
	for _, l := range links {
		c := &categories[index[l.CategoryID]]
		c.ShopIDs = append(c.ShopIDs, l.ShopID)
	}
	return nil
}

// Create creates a category and its shop links
func (r *GormCategoryRepository) Create(ctx context.Context, category *catalog.Category) error {
	if err := r.db.WithContext(ctx).Create(models.CategoryModelFromDomain(category)).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	for _, shopID := range category.ShopIDs {
		if err := r.LinkShop(ctx, category.ID, shopID); err != nil {
			return err
		}
	}
	return nil
}

// LinkShop records that a shop sells in the category
func (r *GormCategoryRepository) LinkShop(ctx context.Context, categoryID, shopID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.CategoryShopModel{CategoryID: categoryID, ShopID: shopID}).Error
}

var _ catalog.CategoryRepository = (*GormCategoryRepository)(nil)
