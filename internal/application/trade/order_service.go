package trade

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/contact"
	"github.com/shopfront/backend/internal/domain/identity"
	"github.com/shopfront/backend/internal/domain/partner"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/domain/trade"
	"github.com/shopfront/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

var (
	errOrderNotFound   = shared.NewDomainError("NOT_FOUND", "Order not found")
	errContactNotFound = shared.NewDomainError("NOT_FOUND", "Contact not found")
	errEmptyBasket     = shared.NewDomainError("EMPTY_BASKET", "Basket is empty")
	errStatusForbidden = shared.NewDomainError("FORBIDDEN", "You are not allowed to change the status of this order")
)

// PlaceOrderInput places the basket
type PlaceOrderInput struct {
	Contact uuid.UUID `json:"contact"`
}

// ChangeStatusInput moves an order to a new status
type ChangeStatusInput struct {
	Status string `json:"status"`
}

// OrderService handles order placement and the order lifecycle
type OrderService struct {
	orderRepo      trade.OrderRepository
	contactRepo    contact.ContactRepository
	userRepo       identity.UserRepository
	shopRepo       partner.ShopRepository
	txScope        TransactionScope
	logger         *zap.Logger
	eventPublisher shared.EventPublisher

	businessMetrics *telemetry.BusinessMetrics
}

// NewOrderService creates a new OrderService
func NewOrderService(
	orderRepo trade.OrderRepository,
	contactRepo contact.ContactRepository,
	userRepo identity.UserRepository,
	shopRepo partner.ShopRepository,
	txScope TransactionScope,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		contactRepo: contactRepo,
		userRepo:    userRepo,
		shopRepo:    shopRepo,
		txScope:     txScope,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *OrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetBusinessMetrics sets the business metrics collector
func (s *OrderService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// PlaceOrder turns the user's basket into a new order.
// Stock is taken and the status set in one transaction; any failure leaves
// basket and stock untouched.
func (s *OrderService) PlaceOrder(ctx context.Context, userID uuid.UUID, input PlaceOrderInput) (*OrderResponse, error) {
	if _, err := requireConfirmed(ctx, s.userRepo, userID); err != nil {
		return nil, err
	}
	if input.Contact == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "All necessary arguments are not specified")
	}
	c, err := s.contactRepo.FindByID(ctx, input.Contact)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, errContactNotFound
		}
		return nil, err
	}
	if !c.BelongsTo(userID) {
		return nil, errContactNotFound
	}

	var placed *trade.Order
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		basket, err := repos.OrderRepo().FindBasket(ctx, userID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return errEmptyBasket
			}
			return err
		}
		if len(basket.Items) == 0 {
			return errEmptyBasket
		}

		lines := make([]trade.BasketLine, len(basket.Items))
		for i, item := range basket.Items {
			lines[i] = trade.BasketLine{ShopID: item.ShopID, ProductInfoID: item.ProductInfoID, Quantity: item.Quantity}
		}
		offers, err := validateBasketLines(ctx, repos.ShopRepo(), repos.ProductInfoRepo(), lines)
		if err != nil {
			return err
		}

		for i, offer := range offers {
			if err := repos.ProductInfoRepo().DecreaseStock(ctx, offer.ID, lines[i].Quantity); err != nil {
				if errors.Is(err, shared.ErrInsufficientStock) {
					return shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("Not enough product with id %s in stock", offer.ID))
				}
				return err
			}
			// refresh prices for the order total
			if _, err := basket.PutItem(offer, lines[i].Quantity); err != nil {
				return err
			}
		}

		if err := basket.Place(input.Contact); err != nil {
			return err
		}
		if err := repos.OrderRepo().Save(ctx, basket); err != nil {
			return err
		}
		placed = basket
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Order placed",
		zap.String("order_id", placed.ID.String()),
		zap.String("user_id", userID.String()),
		zap.Int("items", len(placed.Items)),
		zap.String("total", placed.Total().String()))

	s.publishEvents(ctx, placed)
	if s.businessMetrics != nil {
		s.businessMetrics.RecordOrderPlaced(ctx, placed.Total())
		s.businessMetrics.RecordOrderStatusChanged(ctx, string(placed.Status))
	}

	resp := ToOrderResponse(placed)
	return &resp, nil
}

// ListOrders lists the user's placed orders, newest first
func (s *OrderService) ListOrders(ctx context.Context, userID uuid.UUID, filter shared.Filter) (shared.Paginated[OrderResponse], error) {
	if _, err := requireConfirmed(ctx, s.userRepo, userID); err != nil {
		return shared.Paginated[OrderResponse]{}, err
	}
	orders, total, err := s.orderRepo.FindByUser(ctx, userID, filter)
	if err != nil {
		return shared.Paginated[OrderResponse]{}, err
	}
	return shared.NewPaginated(ToOrderResponses(orders), total, filter.Page, filter.PageSize), nil
}

// GetOrder returns one of the user's placed orders
func (s *OrderService) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*OrderResponse, error) {
	if _, err := requireConfirmed(ctx, s.userRepo, userID); err != nil {
		return nil, err
	}
	order, err := s.findPlaced(ctx, s.orderRepo, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, errOrderNotFound
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}

// ChangeOrderStatus moves an order along its lifecycle. Staff may change
// any order; a partner only orders that contain its shop's items.
// Canceling or returning puts the goods back in stock.
func (s *OrderService) ChangeOrderStatus(ctx context.Context, userID, orderID uuid.UUID, input ChangeStatusInput) (*OrderResponse, error) {
	target := trade.OrderStatus(input.Status)
	if !target.IsValid() {
		return nil, shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Unknown order status %q", input.Status))
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrUnauthorized
		}
		return nil, err
	}

	var changed *trade.Order
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		order, err := s.findPlaced(ctx, repos.OrderRepo(), orderID)
		if err != nil {
			return err
		}
		if err := s.authorizeStatusChange(ctx, repos.ShopRepo(), user, order); err != nil {
			return err
		}
		if err := order.ChangeStatus(target); err != nil {
			return err
		}
		if target.RestoresStock() {
			for _, item := range order.Items {
				// the offer was replaced by a later import
				if item.ProductInfoID == uuid.Nil {
					continue
				}
				if err := repos.ProductInfoRepo().IncreaseStock(ctx, item.ProductInfoID, item.Quantity); err != nil {
					return err
				}
			}
		}
		if err := repos.OrderRepo().Save(ctx, order); err != nil {
			return err
		}
		changed = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Order status changed",
		zap.String("order_id", changed.ID.String()),
		zap.String("status", string(changed.Status)),
		zap.String("changed_by", userID.String()))

	s.publishEvents(ctx, changed)
	if s.businessMetrics != nil {
		s.businessMetrics.RecordOrderStatusChanged(ctx, string(changed.Status))
	}

	resp := ToOrderResponse(changed)
	return &resp, nil
}

func (s *OrderService) authorizeStatusChange(ctx context.Context, shops partner.ShopRepository, user *identity.User, order *trade.Order) error {
	if user.IsStaff {
		return nil
	}
	if !user.IsShop() {
		return errStatusForbidden
	}
	shop, err := shops.FindByUserID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return errStatusForbidden
		}
		return err
	}
	if !order.HasShop(shop.ID) {
		return errStatusForbidden
	}
	return nil
}

func (s *OrderService) findPlaced(ctx context.Context, repo trade.OrderRepository, orderID uuid.UUID) (*trade.Order, error) {
	order, err := repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, errOrderNotFound
		}
		return nil, err
	}
	if order.IsBasket() {
		return nil, errOrderNotFound
	}
	return order, nil
}

func (s *OrderService) publishEvents(ctx context.Context, order *trade.Order) {
	events := order.PullDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Error("Failed to publish order events",
			zap.String("order_id", order.ID.String()),
			zap.Error(err))
	}
}
