package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/identity"
	"github.com/shopfront/backend/internal/infrastructure/auth"
)

// RegisterInput contains the input for user registration
type RegisterInput struct {
	Email      string
	Password   string
	FirstName  string
	LastName   string
	MiddleName string
	Company    string
	Position   string
	Type       string
}

// ConfirmEmailInput contains the e-mail confirmation pair
type ConfirmEmailInput struct {
	Email string
	Token string
}

// ResendConfirmationInput asks for a new e-mail confirmation token
type ResendConfirmationInput struct {
	Email string
}

// LoginInput contains the input for user login
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult contains the result of a successful login
type LoginResult struct {
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
	TokenType             string
	User                  UserDTO
}

// RefreshTokenInput contains the input for token refresh
type RefreshTokenInput struct {
	RefreshToken string
}

// RefreshTokenResult contains the result of a token refresh
type RefreshTokenResult struct {
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
	TokenType             string
}

// LogoutInput contains the input for user logout
type LogoutInput struct {
	Claims       *auth.Claims
	RefreshToken string // optional, revoked as well when present
}

// PasswordResetInput starts a password reset
type PasswordResetInput struct {
	Email string
}

// ConfirmPasswordResetInput completes a password reset
type ConfirmPasswordResetInput struct {
	Token    string
	Password string
}

// UpdateDetailsInput contains a partial profile update. Nil fields are left
// unchanged.
type UpdateDetailsInput struct {
	UserID     uuid.UUID
	FirstName  *string
	LastName   *string
	MiddleName *string
	Company    *string
	Position   *string
	Password   *string
}

// UserDTO is the public view of a user
type UserDTO struct {
	ID               uuid.UUID
	Email            string
	FirstName        string
	LastName         string
	MiddleName       string
	Company          string
	Position         string
	Type             string
	IsStaff          bool
	IsEmailConfirmed bool
	CreatedAt        time.Time
}

// ToUserDTO converts a domain user
func ToUserDTO(u *identity.User) UserDTO {
	return UserDTO{
		ID:               u.ID,
		Email:            u.Email,
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		MiddleName:       u.MiddleName,
		Company:          u.Company,
		Position:         u.Position,
		Type:             string(u.Type),
		IsStaff:          u.IsStaff,
		IsEmailConfirmed: u.IsEmailConfirmed,
		CreatedAt:        u.CreatedAt,
	}
}
