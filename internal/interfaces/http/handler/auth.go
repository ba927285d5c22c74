package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	appidentity "github.com/shopfront/backend/internal/application/identity"
	"github.com/shopfront/backend/internal/interfaces/http/middleware"
)

// AuthService is the part of the identity application the auth endpoints use
type AuthService interface {
	Register(ctx context.Context, input appidentity.RegisterInput) (*appidentity.UserDTO, error)
	ConfirmEmail(ctx context.Context, input appidentity.ConfirmEmailInput) error
	ResendConfirmation(ctx context.Context, input appidentity.ResendConfirmationInput) error
	Login(ctx context.Context, input appidentity.LoginInput) (*appidentity.LoginResult, error)
	RefreshToken(ctx context.Context, input appidentity.RefreshTokenInput) (*appidentity.RefreshTokenResult, error)
	Logout(ctx context.Context, input appidentity.LogoutInput) error
	RequestPasswordReset(ctx context.Context, input appidentity.PasswordResetInput) error
	ConfirmPasswordReset(ctx context.Context, input appidentity.ConfirmPasswordResetInput) error
}

// AuthHandler handles registration, login and password reset
type AuthHandler struct {
	BaseHandler
	authService AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register godoc
// @Summary      Register a new account
// @Description  Creates a buyer or shop account and mails an e-mail confirmation token
// @Tags         user
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Account data"
// @Success      201 {object} APIResponse[dto.MessageResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /user/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !h.BindJSON(c, &req) {
		return
	}

	_, err := h.authService.Register(c.Request.Context(), appidentity.RegisterInput{
		Email:      req.Email,
		Password:   req.Password,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		MiddleName: req.MiddleName,
		Company:    req.Company,
		Position:   req.Position,
		Type:       req.Type,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Message(c, http.StatusCreated, "User created successfully")
}

// ConfirmEmail godoc
// @Summary      Confirm e-mail address
// @Tags         user
// @Accept       json
// @Produce      json
// @Param        request body ConfirmEmailRequest true "E-mail and token"
// @Success      200 {object} APIResponse[dto.MessageResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /user/register/confirm [post]
func (h *AuthHandler) ConfirmEmail(c *gin.Context) {
	var req ConfirmEmailRequest
	if !h.BindJSON(c, &req) {
		return
	}

	err := h.authService.ConfirmEmail(c.Request.Context(), appidentity.ConfirmEmailInput{
		Email: req.Email,
		Token: req.Token,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Message(c, http.StatusOK, "Email confirmed successfully")
}

// ResendConfirmation godoc
// @Summary      Mail a new e-mail confirmation token
// @Description  Replaces the confirmation token of an unconfirmed account. The answer does not reveal whether the address is registered.
// @Tags         user
// @Accept       json
// @Produce      json
// @Param        request body ResendConfirmationRequest true "E-mail"
// @Success      200 {object} APIResponse[dto.MessageResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /user/register/confirm/resend [post]
func (h *AuthHandler) ResendConfirmation(c *gin.Context) {
	var req ResendConfirmationRequest
	if !h.BindJSON(c, &req) {
		return
	}

	err := h.authService.ResendConfirmation(c.Request.Context(), appidentity.ResendConfirmationInput{
		Email: req.Email,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Message(c, http.StatusOK, "Confirmation token sent if the email awaits confirmation")
}

// Login godoc
// @Summary      User login
// @Description  Authenticate with e-mail and password
// @Tags         user
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      201 {object} APIResponse[LoginResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Router       /user/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.authService.Login(c.Request.Context(), appidentity.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, LoginResponse{
		Token:                 result.AccessToken,
		RefreshToken:          result.RefreshToken,
		TokenType:             result.TokenType,
		ExpiresAt:             result.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: result.RefreshTokenExpiresAt,
		User:                  toUserResponse(result.User),
	})
}

// RefreshToken godoc
// @Summary      Refresh access token
// @Description  Exchanges a refresh token for a new token pair
// @Tags         user
// @Accept       json
// @Produce      json
// @Param        request body RefreshTokenRequest true "Refresh token"
// @Success      200 {object} APIResponse[RefreshTokenResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Router       /user/token/refresh [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.authService.RefreshToken(c.Request.Context(), appidentity.RefreshTokenInput{
		RefreshToken: req.RefreshToken,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, RefreshTokenResponse{
		Token:                 result.AccessToken,
		RefreshToken:          result.RefreshToken,
		TokenType:             result.TokenType,
		ExpiresAt:             result.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: result.RefreshTokenExpiresAt,
	})
}

// Logout godoc
// @Summary      User logout
// @Description  Revokes the access token and, when given, the refresh token
// @Tags         user
// @Accept       json
// @Produce      json
// @Param        request body LogoutRequest false "Refresh token to revoke"
// @Success      200 {object} APIResponse[dto.MessageResponse]
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /user/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	// the body is optional
	var req LogoutRequest
	if c.Request.ContentLength > 0 && !h.BindJSON(c, &req) {
		return
	}

	err := h.authService.Logout(c.Request.Context(), appidentity.LogoutInput{
		Claims:       claims,
		RefreshToken: req.RefreshToken,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Message(c, http.StatusOK, "Logged out successfully")
}

// RequestPasswordReset godoc
// @Summary      Request a password reset
// @Description  Mails a reset token to known addresses. The answer does not reveal whether the address is registered.
// @Tags         password_reset
// @Accept       json
// @Produce      json
// @Param        request body PasswordResetRequest true "E-mail"
// @Success      200 {object} APIResponse[dto.MessageResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /password_reset [post]
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var req PasswordResetRequest
	if !h.BindJSON(c, &req) {
		return
	}

	err := h.authService.RequestPasswordReset(c.Request.Context(), appidentity.PasswordResetInput{
		Email: req.Email,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Message(c, http.StatusOK, "Password reset token sent if the email is registered")
}

// ConfirmPasswordReset godoc
// @Summary      Set a new password with a reset token
// @Tags         password_reset
// @Accept       json
// @Produce      json
// @Param        request body ConfirmPasswordResetRequest true "Token and new password"
// @Success      200 {object} APIResponse[dto.MessageResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /password_reset/confirm [post]
func (h *AuthHandler) ConfirmPasswordReset(c *gin.Context) {
	var req ConfirmPasswordResetRequest
	if !h.BindJSON(c, &req) {
		return
	}

	err := h.authService.ConfirmPasswordReset(c.Request.Context(), appidentity.ConfirmPasswordResetInput{
		Token:    req.Token,
		Password: req.Password,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Message(c, http.StatusOK, "Password has been reset")
}
