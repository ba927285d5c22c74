package identity

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/shared"
)

// TokenPurpose tells what a verification token unlocks
type TokenPurpose string

const (
	TokenPurposeEmailConfirm  TokenPurpose = "email_confirm"
	TokenPurposePasswordReset TokenPurpose = "password_reset"
)

// Default lifetimes for verification tokens
const (
	EmailConfirmTTL  = 72 * time.Hour
	PasswordResetTTL = 24 * time.Hour
)

// VerificationToken is a one-time key mailed to the user
type VerificationToken struct {
	shared.BaseEntity
	UserID    uuid.UUID
	Purpose   TokenPurpose
	Key       string
	ExpiresAt time.Time
}

// NewVerificationToken issues a random 40 hex character key
func NewVerificationToken(userID uuid.UUID, purpose TokenPurpose, ttl time.Duration) (*VerificationToken, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return nil, shared.NewDomainError("TOKEN_GENERATION_ERROR", "Failed to generate token")
	}
	base := shared.NewBaseEntity()
	return &VerificationToken{
		BaseEntity: base,
		UserID:     userID,
		Purpose:    purpose,
		Key:        hex.EncodeToString(buf),
		ExpiresAt:  base.CreatedAt.Add(ttl),
	}, nil
}

// IsExpired reports whether the token is past its lifetime
func (t *VerificationToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
