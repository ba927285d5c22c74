package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// TokenRepository persists verification tokens
type TokenRepository interface {
	// Save stores the token, replacing any previous token of the same
	// purpose for the user
	Save(ctx context.Context, token *VerificationToken) error
	FindByKey(ctx context.Context, purpose TokenPurpose, key string) (*VerificationToken, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteExpired(ctx context.Context) (int64, error)
}
