package handler

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	appidentity "github.com/shopfront/backend/internal/application/identity"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUserHandler_GetDetails(t *testing.T) {
	userID := uuid.New()
	svc := new(MockUserService)
	svc.On("GetDetails", mock.Anything, userID).
		Return(&appidentity.UserDTO{ID: userID, Email: "a@example.com", FirstName: "Ann", Type: "shop"}, nil)

	h := NewUserHandler(svc)
	r := newTestRouter(userID)
	r.GET("/user/details", h.GetDetails)

	w := perform(r, http.MethodGet, "/user/details", nil)

	var resp UserResponse
	decodeData(t, w, &resp)
	assert.Equal(t, userID, resp.ID)
	assert.Equal(t, "Ann", resp.FirstName)
	assert.Equal(t, "shop", resp.Type)
}

func TestUserHandler_UpdateDetails(t *testing.T) {
	userID := uuid.New()

	t.Run("partial update", func(t *testing.T) {
		svc := new(MockUserService)
		svc.On("UpdateDetails", mock.Anything, mock.MatchedBy(func(in appidentity.UpdateDetailsInput) bool {
			return in.UserID == userID &&
				in.Company != nil && *in.Company == "ACME" &&
				in.FirstName == nil && in.Password == nil
		})).Return(&appidentity.UserDTO{ID: userID, Company: "ACME"}, nil)

		r := newTestRouter(userID)
		r.PATCH("/user/details", NewUserHandler(svc).UpdateDetails)

		w := perform(r, http.MethodPatch, "/user/details", map[string]string{"company": "ACME"})

		var resp UserResponse
		decodeData(t, w, &resp)
		assert.Equal(t, "ACME", resp.Company)
		svc.AssertExpectations(t)
	})

	t.Run("weak password", func(t *testing.T) {
		svc := new(MockUserService)
		svc.On("UpdateDetails", mock.Anything, mock.Anything).
			Return(nil, shared.NewDomainError("INVALID_PASSWORD", "This password is entirely numeric."))

		r := newTestRouter(userID)
		r.PATCH("/user/details", NewUserHandler(svc).UpdateDetails)

		w := perform(r, http.MethodPatch, "/user/details", map[string]string{"password": "12345678"})

		env := assertError(t, w, http.StatusBadRequest, dto.ErrCodeValidation)
		require.NotNil(t, env.Error)
		assert.Equal(t, "This password is entirely numeric.", env.Error.Message)
	})
}
