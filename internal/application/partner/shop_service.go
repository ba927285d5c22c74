package partner

import (
	"context"
	"errors"

	"github.com/google/uuid"
	apptrade "github.com/shopfront/backend/internal/application/trade"
	"github.com/shopfront/backend/internal/domain/identity"
	"github.com/shopfront/backend/internal/domain/partner"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/domain/trade"
	"go.uber.org/zap"
)

var (
	errOnlyShops    = shared.NewDomainError("FORBIDDEN", "Only shops are allowed")
	errShopNotFound = shared.NewDomainError("NOT_FOUND", "Shop not found")
)

// ShopService serves the public shop list and the partner's own shop
type ShopService struct {
	shopRepo  partner.ShopRepository
	userRepo  identity.UserRepository
	orderRepo trade.OrderRepository
	logger    *zap.Logger
}

// NewShopService creates a new shop service
func NewShopService(
	shopRepo partner.ShopRepository,
	userRepo identity.UserRepository,
	orderRepo trade.OrderRepository,
	logger *zap.Logger,
) *ShopService {
	return &ShopService{
		shopRepo:  shopRepo,
		userRepo:  userRepo,
		orderRepo: orderRepo,
		logger:    logger,
	}
}

// ListShops lists shops accepting orders
func (s *ShopService) ListShops(ctx context.Context, filter shared.Filter) (shared.Paginated[ShopResponse], error) {
	on := partner.ShopStateOn
	shops, total, err := s.shopRepo.FindAll(ctx, partner.ShopFilter{Filter: filter, State: &on})
	if err != nil {
		return shared.Paginated[ShopResponse]{}, err
	}
	return shared.NewPaginated(ToShopResponses(shops), total, filter.Page, filter.PageSize), nil
}

// GetState returns the partner's own shop
func (s *ShopService) GetState(ctx context.Context, userID uuid.UUID) (*ShopResponse, error) {
	shop, err := s.partnerShop(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := ToShopResponse(shop)
	return &resp, nil
}

// SetState switches the partner's shop on or off. Accepts on/off and
// true/false.
func (s *ShopService) SetState(ctx context.Context, userID uuid.UUID, state string) (*ShopResponse, error) {
	if state == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "All necessary arguments are not specified")
	}
	shop, err := s.partnerShop(ctx, userID)
	if err != nil {
		return nil, err
	}
	parsed, err := partner.ParseShopState(state)
	if err != nil {
		return nil, err
	}
	if err := shop.SetState(parsed); err != nil {
		return nil, err
	}
	if err := s.shopRepo.Update(ctx, shop); err != nil {
		s.logger.Error("Failed to update shop state", zap.Error(err))
		return nil, err
	}

	s.logger.Info("Shop state changed",
		zap.String("shop_id", shop.ID.String()),
		zap.String("state", string(shop.State)))

	resp := ToShopResponse(shop)
	return &resp, nil
}

// ListPartnerOrders lists placed orders containing the partner's products.
// Each order carries only the partner's lines.
func (s *ShopService) ListPartnerOrders(ctx context.Context, userID uuid.UUID, filter trade.OrderFilter) (shared.Paginated[apptrade.OrderResponse], error) {
	shop, err := s.partnerShop(ctx, userID)
	if err != nil {
		return shared.Paginated[apptrade.OrderResponse]{}, err
	}
	orders, total, err := s.orderRepo.FindByShop(ctx, shop.ID, filter)
	if err != nil {
		return shared.Paginated[apptrade.OrderResponse]{}, err
	}
	items := make([]apptrade.OrderResponse, len(orders))
	for i := range orders {
		items[i] = apptrade.ToShopOrderResponse(&orders[i], shop.ID)
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// RequirePartner loads the user and checks it is a shop account
func (s *ShopService) RequirePartner(ctx context.Context, userID uuid.UUID) (*identity.User, error) {
	return requirePartner(ctx, s.userRepo, userID)
}

func (s *ShopService) partnerShop(ctx context.Context, userID uuid.UUID) (*partner.Shop, error) {
	if _, err := s.RequirePartner(ctx, userID); err != nil {
		return nil, err
	}
	shop, err := s.shopRepo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, errShopNotFound
		}
		return nil, err
	}
	return shop, nil
}

func requirePartner(ctx context.Context, users identity.UserRepository, userID uuid.UUID) (*identity.User, error) {
	user, err := users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrUnauthorized
		}
		return nil, err
	}
	if !user.IsShop() {
		return nil, errOnlyShops
	}
	return user, nil
}
