package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appcart "github.com/marketplace/backend/internal/application/cart"
	"github.com/marketplace/backend/internal/domain/cart"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/infrastructure/logger"
	"github.com/marketplace/backend/internal/interfaces/http/dto"
	"github.com/marketplace/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// ErrorWithCode sends a localized error response, deriving status from code
func (h *BaseHandler) ErrorWithCode(c *gin.Context, code string) {
	h.respondError(c, code, dto.LocalizedMessage(middleware.GetLocale(c), code, code), nil, nil)
}

// BadRequest sends a 400 response for a malformed path or query parameter
func (h *BaseHandler) BadRequest(c *gin.Context, field, message string) {
	requestID := logger.GetRequestID(c.Request.Context())
	msg := dto.LocalizedMessage(middleware.GetLocale(c), dto.ErrCodeValidation, "Request validation failed")
	c.Set(middleware.ErrorCodeKey, dto.ErrCodeValidation)
	c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(msg, requestID,
		[]dto.ValidationDetail{{Field: field, Message: message}}))
}

// HandleDomainError converts an error from the application layer into an
// HTTP response. Domain errors map to stable ERR_* codes with a localized
// message, and cart issues travel along. Anything else is logged and
// reported as ERR_INTERNAL without its text.
func (h *BaseHandler) HandleDomainError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	if !errors.As(err, &domainErr) {
		logger.L(c.Request.Context()).Error("Unhandled error", zap.Error(err))
		h.ErrorWithCode(c, dto.ErrCodeInternal)
		return
	}

	code := dto.NormalizeErrorCode(domainErr.Code)
	if dto.GetHTTPStatus(code) >= http.StatusInternalServerError {
		logger.L(c.Request.Context()).Error("Request failed",
			zap.String("code", domainErr.Code), zap.Error(err))
	}

	// Domain messages may carry identifiers, so clients get the catalog
	// text; field-level input errors keep theirs as a detail.
	message := dto.LocalizedMessage(middleware.GetLocale(c), code, "An unexpected error occurred")
	var details []dto.ValidationDetail
	if code == dto.ErrCodeInvalidInput && domainErr.Message != "" {
		details = []dto.ValidationDetail{{Field: "request", Message: domainErr.Message}}
	}

	var issues []appcart.IssueResponse
	if raw, ok := domainErr.Details["issues"]; ok {
		if list, ok := raw.([]cart.Issue); ok {
			issues = appcart.ToIssueResponses(list)
		}
	}
	h.respondError(c, code, message, issues, details)
}

func (h *BaseHandler) respondError(c *gin.Context, code, message string, issues []appcart.IssueResponse, details []dto.ValidationDetail) {
	resp := dto.NewErrorResponseWithRequestID(code, message, logger.GetRequestID(c.Request.Context()))
	if len(issues) > 0 {
		resp.Error.Issues = issues
	}
	resp.Error.Details = details
	c.Set(middleware.ErrorCodeKey, code)
	c.JSON(dto.GetHTTPStatus(code), resp)
}

// bindJSON binds the body and writes the 400 itself on failure
func (h *BaseHandler) bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// bindQuery binds query parameters and writes the 400 itself on failure
func (h *BaseHandler) bindQuery(c *gin.Context, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// pathUUID parses a UUID path parameter and writes the 400 itself on failure
func (h *BaseHandler) pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.BadRequest(c, name, "Invalid UUID format")
		return uuid.Nil, false
	}
	return id, true
}

// queryInt reads an optional integer query parameter
func (h *BaseHandler) queryInt(c *gin.Context, name string, def int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		h.BadRequest(c, name, "Must be an integer")
		return 0, false
	}
	return v, true
}

// principal returns the authenticated caller. Routes are mounted behind
// JWTAuthMiddleware so a missing principal is a wiring bug; it still answers 401.
func (h *BaseHandler) principal(c *gin.Context) (middleware.Principal, bool) {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		h.ErrorWithCode(c, dto.ErrCodeUnauthorized)
	}
	return p, ok
}
