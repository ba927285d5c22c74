package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/domain/trade"
	"github.com/shopfront/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormOrderRepository implements trade.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindBasket returns the user's basket
func (r *GormOrderRepository) FindBasket(ctx context.Context, userID uuid.UUID) (*trade.Order, error) {
	return r.first(ctx, "user_id = ? AND status = ?", userID, trade.OrderStatusBasket)
}

// FindByID finds an order by ID
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Order, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *GormOrderRepository) first(ctx context.Context, query string, args ...any) (*trade.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).Where(query, args...).Order("created_at ASC").First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	orders := []trade.Order{*model.ToDomain()}
	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

// FindByUser lists placed orders of a user, newest first
func (r *GormOrderRepository) FindByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]trade.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Where("orders.user_id = ? AND orders.status <> ?", userID, trade.OrderStatusBasket)
	return r.list(ctx, query, filter)
}

// FindByShop lists placed orders containing items of a shop, newest first
func (r *GormOrderRepository) FindByShop(ctx context.Context, shopID uuid.UUID, filter trade.OrderFilter) ([]trade.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Where("orders.status <> ?", trade.OrderStatusBasket).
		Where("EXISTS (SELECT 1 FROM order_items oi WHERE oi.order_id = orders.id AND oi.shop_id = ?)", shopID)
	if filter.Status != nil {
		query = query.Where("orders.status = ?", *filter.Status)
	}
	return r.list(ctx, query, filter.Filter)
}

func (r *GormOrderRepository) list(ctx context.Context, query *gorm.DB, filter shared.Filter) ([]trade.Order, int64, error) {
	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.OrderModel
	if err := paginate(query.Order(orderClause("orders", filter, OrderSortFields, "created_at", "DESC")), filter).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	orders := make([]trade.Order, len(rows))
	for i := range rows {
		orders[i] = *rows[i].ToDomain()
	}
	if err := r.attachItems(ctx, orders); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// orderItemRow is an order line with the live catalog values next to the
// ones stored at placement. Offers removed by a later import leave the live
// columns NULL.
type orderItemRow struct {
	models.OrderItemModel
	LiveProductName string
	LiveShopName    string
	LivePrice       decimal.NullDecimal
	LivePriceRRC    decimal.NullDecimal
}

func (r *GormOrderRepository) attachItems(ctx context.Context, orders []trade.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(orders))
	index := make(map[uuid.UUID]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		index[o.ID] = i
	}

	var rows []orderItemRow
	if err := r.db.WithContext(ctx).Table("order_items").
		Select(`order_items.*,
			COALESCE(products.name, '') AS live_product_name,
			COALESCE(shops.name, '') AS live_shop_name,
			product_infos.price AS live_price,
			product_infos.price_rrc AS live_price_rrc`).
		Joins("LEFT JOIN products ON products.id = order_items.product_id").
		Joins("LEFT JOIN shops ON shops.id = order_items.shop_id").
		Joins("LEFT JOIN product_infos ON product_infos.id = order_items.product_info_id").
		Where("order_items.order_id IN ?", ids).
		Order("order_items.created_at ASC").
		Scan(&rows).Error; err != nil {
		return err
	}

	for _, row := range rows {
		o := &orders[index[row.OrderID]]
		o.Items = append(o.Items, row.item(o.IsBasket()))
	}
	return nil
}

// item resolves the line: baskets follow the catalog, placed orders keep
// what was stored when they were placed
func (row *orderItemRow) item(basket bool) trade.OrderItem {
	item := row.OrderItemModel.ToDomain()
	if basket || !row.Price.Valid {
		item.ProductName = row.LiveProductName
		item.ShopName = row.LiveShopName
		item.Price = row.LivePrice.Decimal
		item.PriceRRC = row.LivePriceRRC.Decimal
	}
	return item
}

// Save upserts the order and replaces its items
func (r *GormOrderRepository) Save(ctx context.Context, order *trade.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(models.OrderModelFromDomain(order)).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderItemModel{}).Error; err != nil {
			return err
		}
		if len(order.Items) == 0 {
			return nil
		}
		items := make([]*models.OrderItemModel, len(order.Items))
		for i := range order.Items {
			items[i] = models.OrderItemModelFromDomain(&order.Items[i], !order.IsBasket())
		}
		return tx.Create(items).Error
	})
}

var _ trade.OrderRepository = (*GormOrderRepository)(nil)
