package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopfront/backend/internal/domain/contact"
	"github.com/shopfront/backend/internal/domain/identity"
	"github.com/shopfront/backend/internal/domain/partner"
	"github.com/shopfront/backend/internal/interfaces/http/dto"
)

// SetupValidator configures gin's validator: field names come from json (or
// form) tags and the phone, city, user_type and shop_state tags are
// registered.
func SetupValidator() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected validator engine")
	}
	return RegisterValidations(v)
}

// RegisterValidations registers the API's tag name function and custom tags on v
func RegisterValidations(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})

	custom := map[string]validator.Func{
		"phone": func(fl validator.FieldLevel) bool {
			return contact.ValidPhone(fl.Field().String())
		},
		"city": func(fl validator.FieldLevel) bool {
			return contact.ValidCity(fl.Field().String())
		},
		"user_type": func(fl validator.FieldLevel) bool {
			return identity.UserType(fl.Field().String()).IsValid()
		},
		"shop_state": func(fl validator.FieldLevel) bool {
			_, err := partner.ParseShopState(fl.Field().String())
			return err == nil
		},
	}
	for tag, fn := range custom {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

// FormatValidationErrors renders a binding error. Validator errors become
// ERR_VALIDATION with per-field details; anything else is a malformed body.
func FormatValidationErrors(err error, requestID string) dto.Response {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return dto.NewErrorResponseWithRequestID(dto.ErrCodeInvalidJSON, "Malformed request body", requestID)
	}

	details := make([]dto.ValidationDetail, 0, len(validationErrors))
	for _, e := range validationErrors {
		details = append(details, dto.ValidationDetail{
			Field:   e.Field(),
			Message: validationMessage(e),
		})
	}
	// the first detail doubles as the headline message
	return dto.NewValidationErrorResponse(details[0].Message, requestID, details)
}

// HandleValidationError answers 400 for a failed ShouldBind call
func HandleValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, FormatValidationErrors(err, GetRequestID(c)))
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fieldTitle(e.Field()) + " is required"
	case "email":
		return "Enter a valid email address."
	case "phone":
		return contact.MsgInvalidPhone
	case "city":
		return contact.MsgInvalidCity
	case "user_type":
		return "User type must be one of: shop, buyer"
	case "shop_state":
		return "State must be one of: on, off"
	case "min":
		if e.Kind() == reflect.String {
			return "Must be at least " + e.Param() + " characters"
		}
		if e.Kind() == reflect.Slice {
			return "Must contain at least " + e.Param() + " items"
		}
		return "Must be at least " + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return "Must be at most " + e.Param() + " characters"
		}
		return "Must be at most " + e.Param()
	case "uuid":
		return "Invalid UUID format"
	case "oneof":
		return "Must be one of: " + e.Param()
	case "gte":
		return "Must be greater than or equal to " + e.Param()
	case "url", "http_url":
		return "Enter a valid URL."
	default:
		return "Invalid value"
	}
}

// fieldTitle turns a json field name into "Field name"
func fieldTitle(field string) string {
	if field == "" {
		return "Field"
	}
	s := strings.ReplaceAll(field, "_", " ")
	return strings.ToUpper(s[:1]) + s[1:]
}
