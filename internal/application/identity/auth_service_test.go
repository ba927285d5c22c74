package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/identity"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/infrastructure/auth"
	"github.com/shopfront/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

// MockTokenRepository is a mock implementation of identity.TokenRepository
type MockTokenRepository struct {
	mock.Mock
}

func (m *MockTokenRepository) Save(ctx context.Context, token *identity.VerificationToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockTokenRepository) FindByKey(ctx context.Context, purpose identity.TokenPurpose, key string) (*identity.VerificationToken, error) {
	args := m.Called(ctx, purpose, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.VerificationToken), args.Error(1)
}

func (m *MockTokenRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockEventPublisher records published events
type MockEventPublisher struct {
	mock.Mock
	events []shared.DomainEvent
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	m.events = append(m.events, events...)
	args := m.Called(ctx, events)
	return args.Error(0)
}

type authFixture struct {
	service   *AuthService
	users     *MockUserRepository
	tokens    *MockTokenRepository
	publisher *MockEventPublisher
	blacklist *auth.InMemoryTokenBlacklist
	jwt       *auth.JWTService
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		users:     new(MockUserRepository),
		tokens:    new(MockTokenRepository),
		publisher: new(MockEventPublisher),
		blacklist: auth.NewInMemoryTokenBlacklist(),
		jwt: auth.NewJWTService(config.JWTConfig{
			Secret:                 "test-secret-key-at-least-32-chars",
			RefreshSecret:          "test-refresh-secret-key-32-chars",
			AccessTokenExpiration:  15 * time.Minute,
			RefreshTokenExpiration: 24 * time.Hour,
			Issuer:                 "shopfront-test",
			MaxRefreshCount:        5,
		}),
	}
	f.service = NewAuthService(f.users, f.tokens, f.jwt, f.blacklist, zap.NewNop())
	f.service.SetEventPublisher(f.publisher)
	return f
}

func newTestUser(t *testing.T, email string) *identity.User {
	t.Helper()
	user, err := identity.NewUser(email, "testpassword", identity.UserTypeBuyer, identity.Profile{FirstName: "Ivan"})
	require.NoError(t, err)
	user.ClearDomainEvents()
	return user
}

func domainCode(t *testing.T, err error) string {
	t.Helper()
	var de *shared.DomainError
	require.True(t, errors.As(err, &de), "expected domain error, got %v", err)
	return de.Code
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("creates user and publishes event", func(t *testing.T) {
		f := newAuthFixture()
		f.users.On("ExistsByEmail", ctx, "new@example.com").Return(false, nil)
		f.users.On("Create", ctx, mock.AnythingOfType("*identity.User")).Return(nil)
		f.publisher.On("Publish", ctx, mock.Anything).Return(nil)

		dto, err := f.service.Register(ctx, RegisterInput{
			Email:     "New@Example.com",
			Password:  "testpassword",
			FirstName: "Ivan",
			Type:      "shop",
		})

		require.NoError(t, err)
		assert.Equal(t, "new@example.com", dto.Email)
		assert.Equal(t, "shop", dto.Type)
		assert.False(t, dto.IsEmailConfirmed)
		require.Len(t, f.publisher.events, 1)
		assert.Equal(t, identity.EventTypeUserRegistered, f.publisher.events[0].EventType())
		f.users.AssertExpectations(t)
	})

	t.Run("password is checked before email", func(t *testing.T) {
		f := newAuthFixture()

		_, err := f.service.Register(ctx, RegisterInput{})

		require.Error(t, err)
		assert.Equal(t, "Password is required", err.Error())
	})

	t.Run("missing email", func(t *testing.T) {
		f := newAuthFixture()

		_, err := f.service.Register(ctx, RegisterInput{Password: "testpassword"})

		require.Error(t, err)
		assert.Equal(t, "Email is required", err.Error())
	})

	t.Run("weak password", func(t *testing.T) {
		f := newAuthFixture()

		_, err := f.service.Register(ctx, RegisterInput{Email: "a@example.com", Password: "12345678"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "entirely numeric")
		f.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("duplicate email", func(t *testing.T) {
		f := newAuthFixture()
		f.users.On("ExistsByEmail", ctx, "taken@example.com").Return(true, nil)

		_, err := f.service.Register(ctx, RegisterInput{Email: "taken@example.com", Password: "testpassword"})

		require.Error(t, err)
		assert.Equal(t, "ALREADY_EXISTS", domainCode(t, err))
	})

	t.Run("unique violation on insert", func(t *testing.T) {
		f := newAuthFixture()
		f.users.On("ExistsByEmail", ctx, "race@example.com").Return(false, nil)
		f.users.On("Create", ctx, mock.Anything).Return(shared.ErrAlreadyExists)

		_, err := f.service.Register(ctx, RegisterInput{Email: "race@example.com", Password: "testpassword"})

		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
		assert.Empty(t, f.publisher.events)
	})
}

func TestAuthService_ConfirmEmail(t *testing.T) {
	ctx := context.Background()

	t.Run("confirms and deletes token", func(t *testing.T) {
		f := newAuthFixture()
		user := newTestUser(t, "buyer@example.com")
		token, err := identity.NewVerificationToken(user.ID, identity.TokenPurposeEmailConfirm, time.Hour)
		require.NoError(t, err)

		f.tokens.On("FindByKey", ctx, identity.TokenPurposeEmailConfirm, token.Key).Return(token, nil)
		f.users.On("FindByID", ctx, user.ID).Return(user, nil)
		f.users.On("Update", ctx, user).Return(nil)
		f.tokens.On("Delete", ctx, token.ID).Return(nil)

		err = f.service.ConfirmEmail(ctx, ConfirmEmailInput{Email: "Buyer@example.com", Token: token.Key})

		require.NoError(t, err)
		assert.True(t, user.IsEmailConfirmed)
		f.tokens.AssertExpectations(t)
	})

	t.Run("token of another user", func(t *testing.T) {
		f := newAuthFixture()
		user := newTestUser(t, "buyer@example.com")
		token, _ := identity.NewVerificationToken(user.ID, identity.TokenPurposeEmailConfirm, time.Hour)

		f.tokens.On("FindByKey", ctx, identity.TokenPurposeEmailConfirm, token.Key).Return(token, nil)
		f.users.On("FindByID", ctx, user.ID).Return(user, nil)

		err := f.service.ConfirmEmail(ctx, ConfirmEmailInput{Email: "other@example.com", Token: token.Key})

		require.Error(t, err)
		assert.Equal(t, "Invalid token or email", err.Error())
		assert.False(t, user.IsEmailConfirmed)
		f.users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("unknown token", func(t *testing.T) {
		f := newAuthFixture()
		f.tokens.On("FindByKey", ctx, identity.TokenPurposeEmailConfirm, "nope").Return(nil, shared.ErrNotFound)

		err := f.service.ConfirmEmail(ctx, ConfirmEmailInput{Email: "a@example.com", Token: "nope"})

		require.Error(t, err)
		assert.Equal(t, "Invalid token or email", err.Error())
	})

	t.Run("missing arguments", func(t *testing.T) {
		f := newAuthFixture()

		err := f.service.ConfirmEmail(ctx, ConfirmEmailInput{Email: "a@example.com"})

		require.Error(t, err)
		assert.Equal(t, "VALIDATION_ERROR", domainCode(t, err))
	})
}

func TestAuthService_ResendConfirmation(t *testing.T) {
	ctx := context.Background()

	t.Run("unconfirmed user gets a new token", func(t *testing.T) {
		f := newAuthFixture()
		user := newTestUser(t, "buyer@example.com")
		f.users.On("FindByEmail", ctx, "buyer@example.com").Return(user, nil)
		f.publisher.On("Publish", ctx, mock.Anything).Return(nil)

		require.NoError(t, f.service.ResendConfirmation(ctx, ResendConfirmationInput{Email: "Buyer@Example.com"}))

		require.Len(t, f.publisher.events, 1)
		event, ok := f.publisher.events[0].(*identity.EmailConfirmationRequestedEvent)
		require.True(t, ok)
		assert.Equal(t, user.ID, event.AggregateID())
		assert.Equal(t, "buyer@example.com", event.Email)
		assert.Empty(t, user.DomainEvents())
	})

	t.Run("confirmed and unknown addresses are silent", func(t *testing.T) {
		f := newAuthFixture()
		user := newTestUser(t, "buyer@example.com")
		user.ConfirmEmail()
		f.users.On("FindByEmail", ctx, "buyer@example.com").Return(user, nil)
		f.users.On("FindByEmail", ctx, "ghost@example.com").Return(nil, shared.ErrNotFound)

		require.NoError(t, f.service.ResendConfirmation(ctx, ResendConfirmationInput{Email: "buyer@example.com"}))
		require.NoError(t, f.service.ResendConfirmation(ctx, ResendConfirmationInput{Email: "ghost@example.com"}))
		assert.Empty(t, f.publisher.events)
	})

	t.Run("missing email", func(t *testing.T) {
		f := newAuthFixture()
		err := f.service.ResendConfirmation(ctx, ResendConfirmationInput{})
		require.Error(t, err)
		assert.Equal(t, "VALIDATION_ERROR", domainCode(t, err))
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	user := newTestUser(t, "buyer@example.com")

	t.Run("issues tokens", func(t *testing.T) {
		f := newAuthFixture()
		f.users.On("FindByEmail", ctx, "buyer@example.com").Return(user, nil)
		f.users.On("Update", ctx, user).Return(nil)

		result, err := f.service.Login(ctx, LoginInput{Email: " BUYER@example.com", Password: "testpassword"})

		require.NoError(t, err)
		assert.NotEmpty(t, result.AccessToken)
		assert.NotEmpty(t, result.RefreshToken)
		assert.Equal(t, "Bearer", result.TokenType)
		assert.Equal(t, user.ID, result.User.ID)
		assert.NotNil(t, user.LastLoginAt)

		claims, err := f.jwt.ValidateAccessToken(result.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "buyer", claims.UserType)
	})

	t.Run("wrong password", func(t *testing.T) {
		f := newAuthFixture()
		f.users.On("FindByEmail", ctx, "buyer@example.com").Return(user, nil)

		_, err := f.service.Login(ctx, LoginInput{Email: "buyer@example.com", Password: "wrongpassword"})

		require.Error(t, err)
		assert.Equal(t, "INVALID_CREDENTIALS", domainCode(t, err))
	})

	t.Run("unknown email", func(t *testing.T) {
		f := newAuthFixture()
		f.users.On("FindByEmail", ctx, "ghost@example.com").Return(nil, shared.ErrNotFound)

		_, err := f.service.Login(ctx, LoginInput{Email: "ghost@example.com", Password: "testpassword"})

		require.Error(t, err)
		assert.Equal(t, "INVALID_CREDENTIALS", domainCode(t, err))
	})

	t.Run("inactive account", func(t *testing.T) {
		f := newAuthFixture()
		inactive := newTestUser(t, "off@example.com")
		inactive.IsActive = false
		f.users.On("FindByEmail", ctx, "off@example.com").Return(inactive, nil)

		_, err := f.service.Login(ctx, LoginInput{Email: "off@example.com", Password: "testpassword"})

		require.Error(t, err)
		assert.Equal(t, "ACCOUNT_INACTIVE", domainCode(t, err))
	})
}

func TestAuthService_RefreshToken(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	user := newTestUser(t, "buyer@example.com")
	f.users.On("FindByID", ctx, user.ID).Return(user, nil)

	pair, err := f.jwt.GenerateTokenPair(subjectOf(user))
	require.NoError(t, err)

	result, err := f.service.RefreshToken(ctx, RefreshTokenInput{RefreshToken: pair.RefreshToken})
	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.NotEqual(t, pair.RefreshToken, result.RefreshToken)

	_, err = f.service.RefreshToken(ctx, RefreshTokenInput{RefreshToken: pair.RefreshToken})
	require.Error(t, err)
	assert.Equal(t, "TOKEN_REVOKED", domainCode(t, err))

	_, err = f.service.RefreshToken(ctx, RefreshTokenInput{RefreshToken: "garbage"})
	require.Error(t, err)
	assert.Equal(t, "TOKEN_INVALID", domainCode(t, err))
}

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	user := newTestUser(t, "buyer@example.com")

	pair, err := f.jwt.GenerateTokenPair(subjectOf(user))
	require.NoError(t, err)
	access, err := f.jwt.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)

	require.NoError(t, f.service.Logout(ctx, LogoutInput{Claims: access, RefreshToken: pair.RefreshToken}))

	revoked, err := f.blacklist.IsRevoked(ctx, access)
	require.NoError(t, err)
	assert.True(t, revoked)

	refresh, err := f.jwt.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	revoked, err = f.blacklist.IsRevoked(ctx, refresh)
	require.NoError(t, err)
	assert.True(t, revoked)

	assert.ErrorIs(t, f.service.Logout(ctx, LogoutInput{}), shared.ErrUnauthorized)
}

func TestAuthService_RequestPasswordReset(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown email is silent", func(t *testing.T) {
		f := newAuthFixture()
		f.users.On("FindByEmail", ctx, "ghost@example.com").Return(nil, shared.ErrNotFound)

		require.NoError(t, f.service.RequestPasswordReset(ctx, PasswordResetInput{Email: "ghost@example.com"}))
		f.tokens.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		assert.Empty(t, f.publisher.events)
	})

	t.Run("saves token and publishes event", func(t *testing.T) {
		f := newAuthFixture()
		user := newTestUser(t, "buyer@example.com")
		f.users.On("FindByEmail", ctx, "buyer@example.com").Return(user, nil)

		var saved *identity.VerificationToken
		f.tokens.On("Save", ctx, mock.AnythingOfType("*identity.VerificationToken")).
			Run(func(args mock.Arguments) { saved = args.Get(1).(*identity.VerificationToken) }).
			Return(nil)
		f.publisher.On("Publish", ctx, mock.Anything).Return(nil)

		require.NoError(t, f.service.RequestPasswordReset(ctx, PasswordResetInput{Email: "buyer@example.com"}))

		require.NotNil(t, saved)
		assert.Equal(t, identity.TokenPurposePasswordReset, saved.Purpose)
		require.Len(t, f.publisher.events, 1)
		event, ok := f.publisher.events[0].(*identity.PasswordResetRequestedEvent)
		require.True(t, ok)
		assert.Equal(t, saved.Key, event.TokenKey)
		assert.Empty(t, user.DomainEvents())
	})
}

func TestAuthService_ConfirmPasswordReset(t *testing.T) {
	ctx := context.Background()

	t.Run("sets password and revokes sessions", func(t *testing.T) {
		f := newAuthFixture()
		user := newTestUser(t, "buyer@example.com")
		token, _ := identity.NewVerificationToken(user.ID, identity.TokenPurposePasswordReset, time.Hour)

		pair, err := f.jwt.GenerateTokenPair(subjectOf(user))
		require.NoError(t, err)
		before, err := f.jwt.ValidateAccessToken(pair.AccessToken)
		require.NoError(t, err)

		f.tokens.On("FindByKey", ctx, identity.TokenPurposePasswordReset, token.Key).Return(token, nil)
		f.users.On("FindByID", ctx, user.ID).Return(user, nil)
		f.users.On("Update", ctx, user).Return(nil)
		f.tokens.On("Delete", ctx, token.ID).Return(nil)

		err = f.service.ConfirmPasswordReset(ctx, ConfirmPasswordResetInput{Token: token.Key, Password: "newpassword1"})

		require.NoError(t, err)
		assert.True(t, user.VerifyPassword("newpassword1"))
		revoked, err := f.blacklist.IsRevoked(ctx, before)
		require.NoError(t, err)
		assert.True(t, revoked)
	})

	t.Run("expired token", func(t *testing.T) {
		f := newAuthFixture()
		token, _ := identity.NewVerificationToken(uuid.New(), identity.TokenPurposePasswordReset, -time.Minute)
		f.tokens.On("FindByKey", ctx, identity.TokenPurposePasswordReset, token.Key).Return(token, nil)
		f.tokens.On("Delete", ctx, token.ID).Return(nil)

		err := f.service.ConfirmPasswordReset(ctx, ConfirmPasswordResetInput{Token: token.Key, Password: "newpassword1"})

		require.Error(t, err)
		assert.Equal(t, "INVALID_TOKEN", domainCode(t, err))
		f.users.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("weak password keeps token", func(t *testing.T) {
		f := newAuthFixture()
		user := newTestUser(t, "buyer@example.com")
		token, _ := identity.NewVerificationToken(user.ID, identity.TokenPurposePasswordReset, time.Hour)
		f.tokens.On("FindByKey", ctx, identity.TokenPurposePasswordReset, token.Key).Return(token, nil)
		f.users.On("FindByID", ctx, user.ID).Return(user, nil)

		err := f.service.ConfirmPasswordReset(ctx, ConfirmPasswordResetInput{Token: token.Key, Password: "short"})

		require.Error(t, err)
		f.tokens.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestAuthService_PurgeExpiredTokens(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	f.tokens.On("DeleteExpired", ctx).Return(int64(3), nil).Once()
	f.tokens.On("DeleteExpired", ctx).Return(int64(0), errors.New("db down")).Once()

	assert.NoError(t, f.service.PurgeExpiredTokens(ctx))
	assert.EqualError(t, f.service.PurgeExpiredTokens(ctx), "db down")
}
