package identity

import (
	"context"
	"errors"
	"time"

	"github.com/shopfront/backend/internal/domain/identity"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/infrastructure/auth"
	"github.com/shopfront/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

var (
	errInvalidCredentials = shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	errInvalidEmailToken  = shared.NewDomainError("INVALID_TOKEN", "Invalid token or email")
	errInvalidResetToken  = shared.NewDomainError("INVALID_TOKEN", "Invalid or expired password reset token")
)

// AuthService handles registration, authentication and account recovery
type AuthService struct {
	userRepo        identity.UserRepository
	tokenRepo       identity.TokenRepository
	jwtService      *auth.JWTService
	blacklist       auth.TokenBlacklist
	eventPublisher  shared.EventPublisher
	businessMetrics *telemetry.BusinessMetrics
	logger          *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo identity.UserRepository,
	tokenRepo identity.TokenRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		tokenRepo:  tokenRepo,
		jwtService: jwtService,
		blacklist:  blacklist,
		logger:     logger,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *AuthService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetBusinessMetrics sets the business metrics collector
func (s *AuthService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// Register creates a new account. The confirmation token is sent by the
// UserRegistered event handler.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*UserDTO, error) {
	if input.Password == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Password is required")
	}
	if input.Email == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Email is required")
	}

	user, err := identity.NewUser(input.Email, input.Password, identity.UserType(input.Type), identity.Profile{
		FirstName:  input.FirstName,
		LastName:   input.LastName,
		MiddleName: input.MiddleName,
		Company:    input.Company,
		Position:   input.Position,
	})
	if err != nil {
		return nil, err
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, user.Email)
	if err != nil {
		s.logger.Error("Failed to check email uniqueness", zap.Error(err))
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "User with this email already exists")
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "User with this email already exists")
		}
		s.logger.Error("Failed to create user", zap.Error(err))
		return nil, err
	}

	s.publish(ctx, user)
	if s.businessMetrics != nil {
		s.businessMetrics.RecordUserRegistered(ctx, string(user.Type))
	}

	s.logger.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("type", string(user.Type)))

	dto := ToUserDTO(user)
	return &dto, nil
}

// ConfirmEmail marks the account confirmed when the token belongs to the
// given e-mail. The token is single use.
func (s *AuthService) ConfirmEmail(ctx context.Context, input ConfirmEmailInput) error {
	if input.Email == "" || input.Token == "" {
		return shared.NewDomainError("VALIDATION_ERROR", "All necessary arguments are not specified")
	}

	token, err := s.tokenRepo.FindByKey(ctx, identity.TokenPurposeEmailConfirm, input.Token)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return errInvalidEmailToken
		}
		return err
	}
	if token.IsExpired(time.Now()) {
		return errInvalidEmailToken
	}

	user, err := s.userRepo.FindByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return errInvalidEmailToken
		}
		return err
	}
	if user.Email != identity.NormalizeEmail(input.Email) {
		return errInvalidEmailToken
	}

	user.ConfirmEmail()
	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("Failed to confirm email", zap.Error(err))
		return err
	}
	if err := s.tokenRepo.Delete(ctx, token.ID); err != nil {
		s.logger.Warn("Failed to delete used confirmation token", zap.Error(err))
	}

	s.logger.Info("Email confirmed", zap.String("user_id", user.ID.String()))
	return nil
}

// ResendConfirmation mails a new confirmation token to an unconfirmed
// account. The new token replaces the previous one. Unknown and already
// confirmed addresses are not reported to the caller.
func (s *AuthService) ResendConfirmation(ctx context.Context, input ResendConfirmationInput) error {
	if input.Email == "" {
		return shared.NewDomainError("VALIDATION_ERROR", "Email is required")
	}

	user, err := s.userRepo.FindByEmail(ctx, identity.NormalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Info("Confirmation resend requested for unknown email")
			return nil
		}
		return err
	}
	if user.IsEmailConfirmed || !user.IsActive {
		s.logger.Info("Confirmation resend not needed", zap.String("user_id", user.ID.String()))
		return nil
	}

	user.AddDomainEvent(identity.NewEmailConfirmationRequestedEvent(user))
	s.publish(ctx, user)

	s.logger.Info("Confirmation resend requested", zap.String("user_id", user.ID.String()))
	return nil
}

// Login authenticates a user and returns tokens
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	if input.Email == "" || input.Password == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Email and password are required")
	}

	user, err := s.userRepo.FindByEmail(ctx, identity.NormalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Login attempt for unknown email")
			return nil, errInvalidCredentials
		}
		return nil, err
	}

	if !user.VerifyPassword(input.Password) {
		s.logger.Warn("Invalid password attempt", zap.String("user_id", user.ID.String()))
		return nil, errInvalidCredentials
	}
	if !user.CanLogin() {
		s.logger.Warn("Login attempt for inactive account", zap.String("user_id", user.ID.String()))
		return nil, shared.NewDomainError("ACCOUNT_INACTIVE", "Account is not active")
	}

	pair, err := s.jwtService.GenerateTokenPair(subjectOf(user))
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication tokens")
	}

	user.RecordLogin()
	if err := s.userRepo.Update(ctx, user); err != nil {
		// Don't fail the login - just log the error
		s.logger.Error("Failed to update user after successful login", zap.Error(err))
	}

	s.logger.Info("User logged in successfully", zap.String("user_id", user.ID.String()))

	return &LoginResult{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             pair.TokenType,
		User:                  ToUserDTO(user),
	}, nil
}

// RefreshToken exchanges a refresh token for a new pair. The used refresh
// token is revoked.
func (s *AuthService) RefreshToken(ctx context.Context, input RefreshTokenInput) (*RefreshTokenResult, error) {
	claims, err := s.jwtService.ValidateRefreshToken(input.RefreshToken)
	if err != nil {
		s.logger.Warn("Refresh token validation failed", zap.Error(err))
		return nil, mapTokenError(err)
	}

	revoked, err := s.blacklist.IsRevoked(ctx, claims)
	if err != nil {
		s.logger.Error("Failed to check token blacklist", zap.Error(err))
		return nil, err
	}
	if revoked {
		return nil, mapTokenError(auth.ErrTokenBlacklisted)
	}

	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, mapTokenError(auth.ErrInvalidToken)
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, mapTokenError(auth.ErrInvalidToken)
		}
		return nil, err
	}
	if !user.CanLogin() {
		return nil, shared.NewDomainError("ACCOUNT_INACTIVE", "Account is no longer active")
	}

	pair, err := s.jwtService.RefreshTokenPair(claims, subjectOf(user))
	if err != nil {
		s.logger.Warn("Token refresh failed", zap.Error(err))
		return nil, mapTokenError(err)
	}
	if err := s.blacklist.Revoke(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
		s.logger.Warn("Failed to revoke used refresh token", zap.Error(err))
	}

	s.logger.Info("Token refreshed successfully", zap.String("user_id", userID.String()))

	return &RefreshTokenResult{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             pair.TokenType,
	}, nil
}

// Logout revokes the access token until it expires, and the refresh token
// when one is supplied
func (s *AuthService) Logout(ctx context.Context, input LogoutInput) error {
	if input.Claims == nil {
		return shared.ErrUnauthorized
	}

	if err := s.blacklist.Revoke(ctx, input.Claims.ID, input.Claims.GetRemainingTTL()); err != nil {
		s.logger.Error("Failed to revoke access token", zap.Error(err))
		return err
	}

	if input.RefreshToken != "" {
		refresh, err := s.jwtService.ValidateRefreshToken(input.RefreshToken)
		switch {
		case err != nil:
			s.logger.Debug("Ignoring invalid refresh token on logout", zap.Error(err))
		case refresh.UserID != input.Claims.UserID:
			s.logger.Warn("Refresh token on logout belongs to another user",
				zap.String("user_id", input.Claims.UserID))
		default:
			if err := s.blacklist.Revoke(ctx, refresh.ID, refresh.GetRemainingTTL()); err != nil {
				s.logger.Error("Failed to revoke refresh token", zap.Error(err))
				return err
			}
		}
	}

	s.logger.Info("User logout", zap.String("user_id", input.Claims.UserID))
	return nil
}

// RequestPasswordReset issues a reset token for a known e-mail. Unknown
// addresses are not reported to the caller.
func (s *AuthService) RequestPasswordReset(ctx context.Context, input PasswordResetInput) error {
	if input.Email == "" {
		return shared.NewDomainError("VALIDATION_ERROR", "Email is required")
	}

	user, err := s.userRepo.FindByEmail(ctx, identity.NormalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Info("Password reset requested for unknown email")
			return nil
		}
		return err
	}
	if !user.CanLogin() {
		s.logger.Info("Password reset requested for inactive account", zap.String("user_id", user.ID.String()))
		return nil
	}

	token, err := identity.NewVerificationToken(user.ID, identity.TokenPurposePasswordReset, identity.PasswordResetTTL)
	if err != nil {
		return err
	}
	if err := s.tokenRepo.Save(ctx, token); err != nil {
		s.logger.Error("Failed to save password reset token", zap.Error(err))
		return err
	}

	user.AddDomainEvent(identity.NewPasswordResetRequestedEvent(user, token))
	s.publish(ctx, user)

	s.logger.Info("Password reset requested", zap.String("user_id", user.ID.String()))
	return nil
}

// ConfirmPasswordReset sets a new password and revokes every token issued
// to the user before now
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, input ConfirmPasswordResetInput) error {
	if input.Token == "" {
		return shared.NewDomainError("VALIDATION_ERROR", "Token is required")
	}

	token, err := s.tokenRepo.FindByKey(ctx, identity.TokenPurposePasswordReset, input.Token)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return errInvalidResetToken
		}
		return err
	}
	if token.IsExpired(time.Now()) {
		if err := s.tokenRepo.Delete(ctx, token.ID); err != nil {
			s.logger.Warn("Failed to delete expired reset token", zap.Error(err))
		}
		return errInvalidResetToken
	}

	user, err := s.userRepo.FindByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return errInvalidResetToken
		}
		return err
	}
	if err := user.SetPassword(input.Password); err != nil {
		return err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("Failed to update password", zap.Error(err))
		return err
	}
	if err := s.tokenRepo.Delete(ctx, token.ID); err != nil {
		s.logger.Warn("Failed to delete used reset token", zap.Error(err))
	}
	if err := s.blacklist.RevokeUser(ctx, user.ID.String(), s.jwtService.RefreshTokenExpiration()); err != nil {
		s.logger.Error("Failed to revoke existing sessions", zap.Error(err))
	}

	s.logger.Info("Password reset completed", zap.String("user_id", user.ID.String()))
	return nil
}

// PurgeExpiredTokens removes expired confirmation and reset tokens
func (s *AuthService) PurgeExpiredTokens(ctx context.Context) error {
	n, err := s.tokenRepo.DeleteExpired(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		s.logger.Info("Purged expired verification tokens", zap.Int64("count", n))
	}
	return nil
}

func (s *AuthService) publish(ctx context.Context, user *identity.User) {
	events := user.PullDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Error("Failed to publish user events",
			zap.String("user_id", user.ID.String()),
			zap.Error(err))
	}
}

func subjectOf(user *identity.User) auth.Subject {
	return auth.Subject{
		UserID:   user.ID,
		Email:    user.Email,
		UserType: string(user.Type),
		IsStaff:  user.IsStaff,
	}
}

func mapTokenError(err error) error {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return shared.NewDomainError("TOKEN_EXPIRED", "Refresh token has expired")
	case errors.Is(err, auth.ErrMaxRefreshExceeded):
		return shared.NewDomainError("TOKEN_MAX_REFRESH", "Maximum token refresh count exceeded. Please log in again")
	case errors.Is(err, auth.ErrTokenBlacklisted):
		return shared.NewDomainError("TOKEN_REVOKED", "Refresh token has been revoked")
	default:
		return shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
	}
}
