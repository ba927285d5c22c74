package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/identity"
	"github.com/shopfront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// UserService handles profile reads and updates for the signed-in user
type UserService struct {
	userRepo identity.UserRepository
	logger   *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(userRepo identity.UserRepository, logger *zap.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// GetDetails returns the profile of a user
func (s *UserService) GetDetails(ctx context.Context, userID uuid.UUID) (*UserDTO, error) {
	user, err := s.find(ctx, userID)
	if err != nil {
		return nil, err
	}
	dto := ToUserDTO(user)
	return &dto, nil
}

// UpdateDetails applies a partial profile update. The e-mail is read-only;
// a new password goes through the same policy as registration.
func (s *UserService) UpdateDetails(ctx context.Context, input UpdateDetailsInput) (*UserDTO, error) {
	user, err := s.find(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	profile := user.Profile()
	setIfPresent(&profile.FirstName, input.FirstName)
	setIfPresent(&profile.LastName, input.LastName)
	setIfPresent(&profile.MiddleName, input.MiddleName)
	setIfPresent(&profile.Company, input.Company)
	setIfPresent(&profile.Position, input.Position)
	if err := user.UpdateProfile(profile); err != nil {
		return nil, err
	}

	if input.Password != nil {
		if err := user.SetPassword(*input.Password); err != nil {
			return nil, err
		}
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("Failed to update user details", zap.Error(err))
		return nil, err
	}

	s.logger.Info("User details updated",
		zap.String("user_id", user.ID.String()),
		zap.Bool("password_changed", input.Password != nil))

	dto := ToUserDTO(user)
	return &dto, nil
}

func (s *UserService) find(ctx context.Context, userID uuid.UUID) (*identity.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "User not found")
		}
		return nil, err
	}
	return user, nil
}

func setIfPresent(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
