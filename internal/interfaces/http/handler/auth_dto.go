package handler

import (
	"time"

	"github.com/google/uuid"
	appidentity "github.com/shopfront/backend/internal/application/identity"
)

// =====================
// Auth Request DTOs
// =====================

// RegisterRequest represents the request body for registration. Presence of
// email and password is checked by the service so the messages come in a
// fixed order.
type RegisterRequest struct {
	Email      string `json:"email" binding:"max=254"`
	Password   string `json:"password" binding:"max=128"`
	FirstName  string `json:"first_name" binding:"max=100"`
	LastName   string `json:"last_name" binding:"max=100"`
	MiddleName string `json:"middle_name" binding:"max=100"`
	Company    string `json:"company" binding:"max=100"`
	Position   string `json:"position" binding:"max=100"`
	Type       string `json:"type" binding:"omitempty,user_type"`
}

// ConfirmEmailRequest represents the request body for e-mail confirmation
type ConfirmEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
	Token string `json:"token" binding:"required,max=64"`
}

// ResendConfirmationRequest asks for a new confirmation token
type ResendConfirmationRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// LoginRequest represents the request body for user login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,max=128"`
}

// RefreshTokenRequest represents the request body for token refresh
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// LogoutRequest optionally carries the refresh token to revoke with the
// access token
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// PasswordResetRequest starts a password reset
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// ConfirmPasswordResetRequest completes a password reset
type ConfirmPasswordResetRequest struct {
	Token    string `json:"token" binding:"required,max=64"`
	Password string `json:"password" binding:"max=128"`
}

// UpdateDetailsRequest is a partial profile update. The e-mail is read-only.
type UpdateDetailsRequest struct {
	FirstName  *string `json:"first_name" binding:"omitempty,max=100"`
	LastName   *string `json:"last_name" binding:"omitempty,max=100"`
	MiddleName *string `json:"middle_name" binding:"omitempty,max=100"`
	Company    *string `json:"company" binding:"omitempty,max=100"`
	Position   *string `json:"position" binding:"omitempty,max=100"`
	Password   *string `json:"password" binding:"omitempty,max=128"`
}

// =====================
// Auth Response DTOs
// =====================

// UserResponse is the public view of a user
type UserResponse struct {
	ID               uuid.UUID `json:"id"`
	Email            string    `json:"email"`
	FirstName        string    `json:"first_name"`
	LastName         string    `json:"last_name"`
	MiddleName       string    `json:"middle_name"`
	Company          string    `json:"company"`
	Position         string    `json:"position"`
	Type             string    `json:"type"`
	IsStaff          bool      `json:"is_staff"`
	IsEmailConfirmed bool      `json:"is_email_confirmed"`
	DateJoined       time.Time `json:"date_joined"`
}

func toUserResponse(u appidentity.UserDTO) UserResponse {
	return UserResponse{
		ID:               u.ID,
		Email:            u.Email,
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		MiddleName:       u.MiddleName,
		Company:          u.Company,
		Position:         u.Position,
		Type:             u.Type,
		IsStaff:          u.IsStaff,
		IsEmailConfirmed: u.IsEmailConfirmed,
		DateJoined:       u.CreatedAt,
	}
}

// LoginResponse represents the response body for successful login
type LoginResponse struct {
	Token                 string       `json:"token"`
	RefreshToken          string       `json:"refresh_token"`
	TokenType             string       `json:"token_type"`
	ExpiresAt             time.Time    `json:"expires_at"`
	RefreshTokenExpiresAt time.Time    `json:"refresh_token_expires_at"`
	User                  UserResponse `json:"user"`
}

// RefreshTokenResponse represents the response body for successful token refresh
type RefreshTokenResponse struct {
	Token                 string    `json:"token"`
	RefreshToken          string    `json:"refresh_token"`
	TokenType             string    `json:"token_type"`
	ExpiresAt             time.Time `json:"expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
}
