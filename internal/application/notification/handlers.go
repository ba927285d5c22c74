// Package notification mails users about account and order events.
package notification

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopfront/backend/internal/domain/identity"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/domain/trade"
	"github.com/shopfront/backend/internal/infrastructure/mail"
	"go.uber.org/zap"
)

// Mail subjects
const (
	SubjectEmailConfirmation = "Email Confirmation"
	SubjectOrderStatus       = "Your order status has been changed"
)

// EmailConfirmationHandler issues an e-mail confirmation token for new users
// and for unconfirmed users asking for another one
type EmailConfirmationHandler struct {
	tokenRepo identity.TokenRepository
	mailer    mail.Mailer
	logger    *zap.Logger
}

// NewEmailConfirmationHandler creates a new EmailConfirmationHandler
func NewEmailConfirmationHandler(tokenRepo identity.TokenRepository, mailer mail.Mailer, logger *zap.Logger) *EmailConfirmationHandler {
	return &EmailConfirmationHandler{
		tokenRepo: tokenRepo,
		mailer:    mailer,
		logger:    logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *EmailConfirmationHandler) EventTypes() []string {
	return []string{identity.EventTypeUserRegistered, identity.EventTypeEmailConfirmationRequested}
}

// Handle creates the token and mails its key. A new token replaces the
// previous one.
func (h *EmailConfirmationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	var email string
	switch e := event.(type) {
	case *identity.UserRegisteredEvent:
		email = e.Email
	case *identity.EmailConfirmationRequestedEvent:
		email = e.Email
	default:
		return fmt.Errorf("unexpected event type: expected %s or %s, got %s",
			identity.EventTypeUserRegistered, identity.EventTypeEmailConfirmationRequested, event.EventType())
	}
	userID := event.AggregateID()

	token, err := identity.NewVerificationToken(userID, identity.TokenPurposeEmailConfirm, identity.EmailConfirmTTL)
	if err != nil {
		return err
	}
	if err := h.tokenRepo.Save(ctx, token); err != nil {
		return fmt.Errorf("save confirmation token: %w", err)
	}

	body := fmt.Sprintf("Your confirmation token is: %s", token.Key)
	if err := h.mailer.Send(ctx, email, SubjectEmailConfirmation, body); err != nil {
		return fmt.Errorf("send confirmation mail: %w", err)
	}

	h.logger.Info("Confirmation mail sent", zap.String("user_id", userID.String()))
	return nil
}

// PasswordResetHandler mails password reset tokens
type PasswordResetHandler struct {
	mailer mail.Mailer
	logger *zap.Logger
}

// NewPasswordResetHandler creates a new PasswordResetHandler
func NewPasswordResetHandler(mailer mail.Mailer, logger *zap.Logger) *PasswordResetHandler {
	return &PasswordResetHandler{mailer: mailer, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *PasswordResetHandler) EventTypes() []string {
	return []string{identity.EventTypePasswordResetRequested}
}

// Handle mails the reset token key
func (h *PasswordResetHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	requested, ok := event.(*identity.PasswordResetRequestedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			identity.EventTypePasswordResetRequested, event.EventType())
	}

	subject := fmt.Sprintf("Token for password reset for %s", requested.Email)
	body := fmt.Sprintf("Your password reset token is: %s", requested.TokenKey)
	if err := h.mailer.Send(ctx, requested.Email, subject, body); err != nil {
		return fmt.Errorf("send password reset mail: %w", err)
	}
	h.logger.Info("Password reset mail sent", zap.String("user_id", requested.AggregateID().String()))
	return nil
}

// OrderStatusHandler tells buyers their order moved to a new status
type OrderStatusHandler struct {
	userRepo identity.UserRepository
	mailer   mail.Mailer
	logger   *zap.Logger
}

// NewOrderStatusHandler creates a new OrderStatusHandler
func NewOrderStatusHandler(userRepo identity.UserRepository, mailer mail.Mailer, logger *zap.Logger) *OrderStatusHandler {
	return &OrderStatusHandler{
		userRepo: userRepo,
		mailer:   mailer,
		logger:   logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *OrderStatusHandler) EventTypes() []string {
	return []string{trade.EventTypeOrderStatusChanged}
}

// Handle mails the order owner
func (h *OrderStatusHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	changed, ok := event.(*trade.OrderStatusChangedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			trade.EventTypeOrderStatusChanged, event.EventType())
	}

	user, err := h.userRepo.FindByID(ctx, changed.UserID)
	if err != nil {
		return fmt.Errorf("load order owner %s: %w", changed.UserID, err)
	}

	body := fmt.Sprintf("Your order number %s status has been changed to %s", changed.OrderID, capitalize(string(changed.NewStatus)))
	if err := h.mailer.Send(ctx, user.Email, SubjectOrderStatus, body); err != nil {
		return fmt.Errorf("send order status mail: %w", err)
	}

	h.logger.Info("Order status mail sent",
		zap.String("order_id", changed.OrderID.String()),
		zap.String("status", string(changed.NewStatus)))
	return nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Register subscribes all handlers to the bus
func Register(bus shared.EventSubscriber, handlers ...shared.EventHandler) {
	for _, h := range handlers {
		bus.Subscribe(h, h.EventTypes()...)
	}
}

var (
	_ shared.EventHandler = (*EmailConfirmationHandler)(nil)
	_ shared.EventHandler = (*PasswordResetHandler)(nil)
	_ shared.EventHandler = (*OrderStatusHandler)(nil)
)
