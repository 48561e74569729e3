package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/marketplace/backend/internal/infrastructure/logger"
	"github.com/marketplace/backend/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
)

// Decimal2Tag validates a positive decimal string with at most two fraction digits
const Decimal2Tag = "decimal2"

var setupOnce sync.Once

// SetupValidator configures gin's validator: JSON field names in errors and
// the decimal2 rule. Safe to call more than once.
func SetupValidator() {
	setupOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		RegisterValidators(v)
	})
}

// RegisterValidators installs the tag name func and custom rules on v
func RegisterValidators(v *validator.Validate) {
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
	_ = v.RegisterValidation(Decimal2Tag, validateDecimal2)
}

func validateDecimal2(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.String {
		return false
	}
	return IsDecimal2(fl.Field().String())
}

// IsDecimal2 reports whether s is a positive decimal with at most two fraction digits
func IsDecimal2(s string) bool {
	if s == "" || strings.TrimSpace(s) != s {
		return false
	}
	if i := strings.IndexByte(s, '.'); i >= 0 && len(s)-i-1 > 2 {
		return false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return false
	}
	return d.IsPositive() && d.Round(2).Equal(d)
}

// FormatValidationErrors formats validation errors into a standard response
func FormatValidationErrors(err error, message, requestID string) dto.Response {
	var details []dto.ValidationDetail

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			details = append(details, dto.ValidationDetail{
				Field:   e.Field(),
				Message: getValidationMessage(e),
			})
		}
	}

	return dto.NewValidationErrorResponse(message, requestID, details)
}

// HandleValidationError writes a 400 for a failed bind. Field failures are
// listed; malformed bodies get ERR_INVALID_JSON.
func HandleValidationError(c *gin.Context, err error) {
	requestID := logger.GetRequestID(c.Request.Context())

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		if maxErr := new(http.MaxBytesError); errors.As(err, &maxErr) {
			AbortWithError(c, dto.ErrCodeTooLarge)
			return
		}
		AbortWithError(c, dto.ErrCodeInvalidJSON)
		return
	}

	msg := dto.LocalizedMessage(GetLocale(c), dto.ErrCodeValidation, "Request validation failed")
	c.AbortWithStatusJSON(http.StatusBadRequest, FormatValidationErrors(err, msg, requestID))
}

// getValidationMessage returns a human-readable validation message
func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case Decimal2Tag:
		return "Must be a positive amount with at most 2 decimal places"
	case "min":
		if e.Type().Kind() == reflect.String {
			return "Must be at least " + e.Param() + " characters"
		}
		return "Must be at least " + e.Param()
	case "max":
		if e.Type().Kind() == reflect.String {
			return "Must be at most " + e.Param() + " characters"
		}
		return "Must be at most " + e.Param()
	case "uuid":
		return "Invalid UUID format"
	case "oneof":
		return "Must be one of: " + e.Param()
	case "gte":
		return "Must be greater than or equal to " + e.Param()
	case "lte":
		return "Must be less than or equal to " + e.Param()
	case "gt":
		return "Must be greater than " + e.Param()
	case "lt":
		return "Must be less than " + e.Param()
	default:
		return "Invalid value"
	}
}
