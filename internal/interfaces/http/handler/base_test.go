package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/infrastructure/auth"
	"github.com/shopfront/backend/internal/interfaces/http/dto"
	"github.com/shopfront/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := middleware.SetupValidator(); err != nil {
		panic(err)
	}
}

// envelope mirrors dto.Response with a raw data field
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *dto.ErrorInfo  `json:"error"`
	Meta    *dto.Meta       `json:"meta"`
}

// newTestRouter returns an engine with the request id middleware and, when
// userID is not nil, an authenticated user
func newTestRouter(userID uuid.UUID) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID())
	if userID != uuid.Nil {
		r.Use(func(c *gin.Context) {
			c.Set(middleware.JWTClaimsKey, &auth.Claims{
				UserID:    userID.String(),
				TokenType: auth.TokenTypeAccess,
			})
			c.Next()
		})
	}
	return r
}

// perform sends a request with an optional JSON body
func perform(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	env := decodeEnvelope(t, w)
	require.True(t, env.Success, w.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, out))
}

func assertError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) envelope {
	t.Helper()
	assert.Equal(t, status, w.Code, w.Body.String())
	env := decodeEnvelope(t, w)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, code, env.Error.Code)
	assert.NotEmpty(t, env.Error.RequestID)
	return env
}

func TestBaseHandler_HandleError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{
			name:    "not found",
			err:     shared.NewDomainError("NOT_FOUND", "Product not found"),
			status:  http.StatusNotFound,
			code:    dto.ErrCodeNotFound,
			message: "Product not found",
		},
		{
			name:    "wrapped domain error",
			err:     errors.Join(errors.New("context"), shared.NewDomainError("FORBIDDEN", "Only shops are allowed")),
			status:  http.StatusForbidden,
			code:    dto.ErrCodeForbidden,
			message: "Only shops are allowed",
		},
		{
			name:    "field validation",
			err:     shared.NewDomainError("INVALID_PASSWORD", "This password is too short."),
			status:  http.StatusBadRequest,
			code:    dto.ErrCodeValidation,
			message: "This password is too short.",
		},
		{
			name:    "business rule",
			err:     shared.NewDomainError("INSUFFICIENT_STOCK", "Not enough product"),
			status:  http.StatusBadRequest,
			code:    dto.ErrCodeInsufficientStock,
			message: "Not enough product",
		},
		{
			name:    "unknown domain code hides message",
			err:     shared.NewDomainError("SOMETHING_ODD", "db detail"),
			status:  http.StatusInternalServerError,
			code:    dto.ErrCodeInternal,
			message: "An unexpected error occurred",
		},
		{
			name:    "plain error",
			err:     errors.New("connection refused"),
			status:  http.StatusInternalServerError,
			code:    dto.ErrCodeInternal,
			message: "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &BaseHandler{}
			r := newTestRouter(uuid.Nil)
			r.GET("/test", func(c *gin.Context) { h.HandleError(c, tt.err) })

			w := perform(r, http.MethodGet, "/test", nil)

			env := assertError(t, w, tt.status, tt.code)
			assert.Equal(t, tt.message, env.Error.Message)
		})
	}
}

func TestBaseHandler_BindJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name" binding:"required"`
	}
	h := &BaseHandler{}
	r := newTestRouter(uuid.Nil)
	r.Use(middleware.BodyLimit(64))
	r.POST("/test", func(c *gin.Context) {
		var p payload
		if !h.BindJSON(c, &p) {
			return
		}
		h.Success(c, p)
	})

	t.Run("valid", func(t *testing.T) {
		w := perform(r, http.MethodPost, "/test", map[string]string{"name": "x"})
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing field", func(t *testing.T) {
		w := perform(r, http.MethodPost, "/test", map[string]string{})
		env := assertError(t, w, http.StatusBadRequest, dto.ErrCodeValidation)
		assert.Equal(t, "Name is required", env.Error.Message)
		require.Len(t, env.Error.Details, 1)
		assert.Equal(t, "name", env.Error.Details[0].Field)
	})

	t.Run("malformed", func(t *testing.T) {
		w := perform(r, http.MethodPost, "/test", "{")
		assertError(t, w, http.StatusBadRequest, dto.ErrCodeInvalidJSON)
	})

	t.Run("too large without content length", func(t *testing.T) {
		body := `{"name":"` + strings.Repeat("a", 100) + `"}`
		req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
		req.ContentLength = -1
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assertError(t, w, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge)
	})
}

func TestBaseHandler_PathIDAndCurrentUser(t *testing.T) {
	h := &BaseHandler{}
	handle := func(c *gin.Context) {
		if _, ok := h.CurrentUserID(c); !ok {
			return
		}
		id, ok := h.PathID(c, "id")
		if !ok {
			return
		}
		h.Success(c, id)
	}

	t.Run("anonymous", func(t *testing.T) {
		r := newTestRouter(uuid.Nil)
		r.GET("/items/:id", handle)
		w := perform(r, http.MethodGet, "/items/"+uuid.NewString(), nil)
		assertError(t, w, http.StatusUnauthorized, dto.ErrCodeUnauthorized)
	})

	t.Run("invalid id", func(t *testing.T) {
		r := newTestRouter(uuid.New())
		r.GET("/items/:id", handle)
		w := perform(r, http.MethodGet, "/items/42", nil)
		env := assertError(t, w, http.StatusBadRequest, dto.ErrCodeValidation)
		assert.Equal(t, "id", env.Error.Details[0].Field)
	})

	t.Run("valid", func(t *testing.T) {
		id := uuid.New()
		r := newTestRouter(uuid.New())
		r.GET("/items/:id", handle)
		w := perform(r, http.MethodGet, "/items/"+id.String(), nil)
		var got uuid.UUID
		decodeData(t, w, &got)
		assert.Equal(t, id, got)
	})
}
