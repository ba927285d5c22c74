package identity

import (
	"github.com/shopfront/backend/internal/domain/shared"
)

// Aggregate type constant for User
const AggregateTypeUser = "User"

// User domain event types
const (
	EventTypeUserRegistered             = "UserRegistered"
	EventTypeEmailConfirmationRequested = "EmailConfirmationRequested"
	EventTypePasswordResetRequested     = "PasswordResetRequested"
)

// UserRegisteredEvent is published when an account is created
type UserRegisteredEvent struct {
	shared.BaseDomainEvent
	Email string   `json:"email"`
	Type  UserType `json:"type"`
}

// NewUserRegisteredEvent creates a new UserRegisteredEvent
func NewUserRegisteredEvent(user *User) *UserRegisteredEvent {
	return &UserRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserRegistered, AggregateTypeUser, user.ID),
		Email:           user.Email,
		Type:            user.Type,
	}
}

// EmailConfirmationRequestedEvent is published when an unconfirmed user asks
// for a new confirmation token
type EmailConfirmationRequestedEvent struct {
	shared.BaseDomainEvent
	Email string `json:"email"`
}

// NewEmailConfirmationRequestedEvent creates a new EmailConfirmationRequestedEvent
func NewEmailConfirmationRequestedEvent(user *User) *EmailConfirmationRequestedEvent {
	return &EmailConfirmationRequestedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeEmailConfirmationRequested, AggregateTypeUser, user.ID),
		Email:           user.Email,
	}
}

// PasswordResetRequestedEvent carries a freshly issued reset token
type PasswordResetRequestedEvent struct {
	shared.BaseDomainEvent
	Email    string `json:"email"`
	TokenKey string `json:"-"`
}

// NewPasswordResetRequestedEvent creates a new PasswordResetRequestedEvent
func NewPasswordResetRequestedEvent(user *User, token *VerificationToken) *PasswordResetRequestedEvent {
	return &PasswordResetRequestedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePasswordResetRequested, AggregateTypeUser, user.ID),
		Email:           user.Email,
		TokenKey:        token.Key,
	}
}
