package contact

import (
	"context"

	"github.com/google/uuid"
)

// ContactRepository defines the interface for contact persistence
type ContactRepository interface {
	Create(ctx context.Context, contact *Contact) error
	Update(ctx context.Context, contact *Contact) error
	FindByID(ctx context.Context, id uuid.UUID) (*Contact, error)
	FindByUser(ctx context.Context, userID uuid.UUID) ([]Contact, error)
	// CreateLimited stores the contact unless its owner already keeps limit
	// contacts, in which case it returns ErrLimitReached. The check and the
	// insert are atomic per user.
	CreateLimited(ctx context.Context, contact *Contact, limit int) error
	// DeleteForUser removes the user's contacts among ids and returns the count
	DeleteForUser(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error)
}
