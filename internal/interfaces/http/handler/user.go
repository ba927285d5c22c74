package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appidentity "github.com/shopfront/backend/internal/application/identity"
)

// UserService reads and updates user profiles
type UserService interface {
	GetDetails(ctx context.Context, userID uuid.UUID) (*appidentity.UserDTO, error)
	UpdateDetails(ctx context.Context, input appidentity.UpdateDetailsInput) (*appidentity.UserDTO, error)
}

// UserHandler serves the authenticated user's profile
type UserHandler struct {
	BaseHandler
	userService UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GetDetails godoc
// @Summary      Get profile
// @Tags         user
// @Produce      json
// @Success      200 {object} APIResponse[UserResponse]
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /user/details [get]
func (h *UserHandler) GetDetails(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	user, err := h.userService.GetDetails(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toUserResponse(*user))
}

// UpdateDetails godoc
// @Summary      Update profile
// @Description  Partial update. A new password is checked against the password policy.
// @Tags         user
// @Accept       json
// @Produce      json
// @Param        request body UpdateDetailsRequest true "Changed fields"
// @Success      200 {object} APIResponse[UserResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /user/details [patch]
func (h *UserHandler) UpdateDetails(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	var req UpdateDetailsRequest
	if !h.BindJSON(c, &req) {
		return
	}

	user, err := h.userService.UpdateDetails(c.Request.Context(), appidentity.UpdateDetailsInput{
		UserID:     userID,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		MiddleName: req.MiddleName,
		Company:    req.Company,
		Position:   req.Position,
		Password:   req.Password,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toUserResponse(*user))
}
