package trade

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopfront/backend/internal/domain/identity"
	"github.com/shopfront/backend/internal/domain/partner"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/domain/trade"
	"github.com/shopfront/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

var (
	errEmailNotConfirmed = shared.NewDomainError("EMAIL_NOT_CONFIRMED", "Email is not confirmed")
	errItemsRequired     = shared.NewDomainError("VALIDATION_ERROR", "Items are required")
	errNothingRemoved    = shared.NewDomainError("NOT_FOUND", "Products not found in basket")
)

// BasketService manages the user's basket
type BasketService struct {
	orderRepo       trade.OrderRepository
	userRepo        identity.UserRepository
	txScope         TransactionScope
	logger          *zap.Logger
	businessMetrics *telemetry.BusinessMetrics
}

// NewBasketService creates a new BasketService
func NewBasketService(
	orderRepo trade.OrderRepository,
	userRepo identity.UserRepository,
	txScope TransactionScope,
	logger *zap.Logger,
) *BasketService {
	return &BasketService{
		orderRepo: orderRepo,
		userRepo:  userRepo,
		txScope:   txScope,
		logger:    logger,
	}
}

// SetBusinessMetrics sets the business metrics collector
func (s *BasketService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// GetBasket returns the user's basket, creating an empty one on first use
func (s *BasketService) GetBasket(ctx context.Context, userID uuid.UUID) (*OrderResponse, error) {
	if _, err := requireConfirmed(ctx, s.userRepo, userID); err != nil {
		return nil, err
	}
	basket, err := loadBasket(ctx, s.orderRepo, userID, true)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(basket)
	return &resp, nil
}

// AddToBasket validates the items and sets their quantities in the basket.
// Lines not yet in the basket are created.
func (s *BasketService) AddToBasket(ctx context.Context, userID uuid.UUID, items []BasketItemInput) (*BasketChangeResult, error) {
	return s.change(ctx, userID, items, telemetry.BasketOperationAdd)
}

// UpdateBasket validates the items and changes quantities of lines already
// in the basket
func (s *BasketService) UpdateBasket(ctx context.Context, userID uuid.UUID, items []BasketItemInput) (*BasketChangeResult, error) {
	return s.change(ctx, userID, items, telemetry.BasketOperationUpdate)
}

func (s *BasketService) change(ctx context.Context, userID uuid.UUID, items []BasketItemInput, op telemetry.BasketOperation) (*BasketChangeResult, error) {
	if _, err := requireConfirmed(ctx, s.userRepo, userID); err != nil {
		return nil, err
	}
	lines := toBasketLines(items)
	if err := trade.ValidateLines(lines); err != nil {
		return nil, err
	}

	result := &BasketChangeResult{}
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		offers, err := validateBasketLines(ctx, repos.ShopRepo(), repos.ProductInfoRepo(), lines)
		if err != nil {
			return err
		}
		basket, err := loadBasket(ctx, repos.OrderRepo(), userID, op == telemetry.BasketOperationAdd)
		if errors.Is(err, shared.ErrNotFound) {
			// nothing to update; UpdateItem reports the first missing line
			basket, err = trade.NewBasket(userID)
		}
		if err != nil {
			return err
		}

		result.Created, result.Updated = 0, 0
		for i, offer := range offers {
			if op == telemetry.BasketOperationUpdate {
				if err := basket.UpdateItem(offer, lines[i].Quantity); err != nil {
					return err
				}
				result.Updated++
				continue
			}
			created, err := basket.PutItem(offer, lines[i].Quantity)
			if err != nil {
				return err
			}
			if created {
				result.Created++
			} else {
				result.Updated++
			}
		}

		if err := repos.OrderRepo().Save(ctx, basket); err != nil {
			return err
		}
		result.Basket = ToOrderResponse(basket)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.businessMetrics != nil {
		s.businessMetrics.RecordBasketMutation(ctx, op, result.Created+result.Updated)
	}
	s.logger.Debug("Basket changed",
		zap.String("user_id", userID.String()),
		zap.String("operation", string(op)),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated))

	return result, nil
}

// RemoveFromBasket drops the lines of the given offers
func (s *BasketService) RemoveFromBasket(ctx context.Context, userID uuid.UUID, productInfoIDs []uuid.UUID) (*BasketRemoveResult, error) {
	if _, err := requireConfirmed(ctx, s.userRepo, userID); err != nil {
		return nil, err
	}
	if len(productInfoIDs) == 0 {
		return nil, errItemsRequired
	}

	result := &BasketRemoveResult{}
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		basket, err := loadBasket(ctx, repos.OrderRepo(), userID, false)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return errNothingRemoved
			}
			return err
		}
		removed, err := basket.RemoveItems(productInfoIDs)
		if err != nil {
			return err
		}
		if removed == 0 {
			return errNothingRemoved
		}
		if err := repos.OrderRepo().Save(ctx, basket); err != nil {
			return err
		}
		result.Deleted = removed
		result.Basket = ToOrderResponse(basket)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.businessMetrics != nil {
		s.businessMetrics.RecordBasketMutation(ctx, telemetry.BasketOperationRemove, result.Deleted)
	}
	return result, nil
}

func toBasketLines(items []BasketItemInput) []trade.BasketLine {
	lines := make([]trade.BasketLine, len(items))
	for i, item := range items {
		lines[i] = trade.BasketLine{
			ShopID:        item.Shop,
			ProductInfoID: item.ProductInfo,
			Quantity:      item.Quantity,
		}
	}
	return lines
}

// validateBasketLines runs the shop check and then the product check.
// It returns the offers in line order.
func validateBasketLines(ctx context.Context, shops partner.ShopRepository, infos catalog.ProductInfoRepository, lines []trade.BasketLine) ([]trade.Offer, error) {
	found, err := shops.FindByIDs(ctx, trade.RequestedShopIDs(lines))
	if err != nil {
		return nil, err
	}
	availability := make([]trade.ShopAvailability, len(found))
	for i := range found {
		availability[i] = trade.ShopAvailability{ID: found[i].ID, Enabled: found[i].IsOn()}
	}
	if err := trade.CheckShops(lines, availability); err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(lines))
	for i, l := range lines {
		ids[i] = l.ProductInfoID
	}
	rows, err := infos.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	offers := make([]trade.Offer, len(rows))
	for i := range rows {
		offers[i] = toOffer(&rows[i])
	}
	return trade.MatchOffers(lines, offers)
}

func toOffer(info *catalog.ProductInfo) trade.Offer {
	return trade.Offer{
		ID:          info.ID,
		ShopID:      info.ShopID,
		ProductID:   info.ProductID,
		ProductName: info.ProductName,
		ShopName:    info.ShopName,
		Quantity:    info.Quantity,
		Price:       info.Price,
		PriceRRC:    info.PriceRRC,
	}
}

// loadBasket returns the user's basket. With create set, a missing basket
// is created and saved.
func loadBasket(ctx context.Context, repo trade.OrderRepository, userID uuid.UUID, create bool) (*trade.Order, error) {
	basket, err := repo.FindBasket(ctx, userID)
	if err == nil {
		return basket, nil
	}
	if !errors.Is(err, shared.ErrNotFound) || !create {
		return nil, err
	}
	basket, err = trade.NewBasket(userID)
	if err != nil {
		return nil, err
	}
	if err := repo.Save(ctx, basket); err != nil {
		return nil, err
	}
	return basket, nil
}

func requireConfirmed(ctx context.Context, users identity.UserRepository, userID uuid.UUID) (*identity.User, error) {
	user, err := users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrUnauthorized
		}
		return nil, err
	}
	if !user.IsEmailConfirmed {
		return nil, errEmailNotConfirmed
	}
	return user, nil
}
