package dto

import (
	"net/http"
	"strings"
)

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	ErrCodeUnknown            = "ERR_UNKNOWN"
	ErrCodeInternal           = "ERR_INTERNAL"
	ErrCodeServiceUnavailable = "ERR_SERVICE_UNAVAILABLE"
)

// Input error codes
const (
	ErrCodeValidation   = "ERR_VALIDATION"
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON  = "ERR_INVALID_JSON"
	ErrCodeTooLarge     = "ERR_REQUEST_TOO_LARGE"
)

// Authentication error codes
const (
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
)

// Resource error codes
const (
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConflict            = "ERR_CONFLICT"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Checkout and settlement error codes
const (
	ErrCodeCartInvalid         = "ERR_CART_INVALID"
	ErrCodeEmptyCart           = "ERR_EMPTY_CART"
	ErrCodeStockRaceLost       = "ERR_STOCK_RACE_LOST"
	ErrCodeOfferUnavailable    = "ERR_OFFER_UNAVAILABLE"
	ErrCodeInvalidState        = "ERR_INVALID_STATE"
	ErrCodeNotCancellable      = "ERR_NOT_CANCELLABLE"
	ErrCodeInsufficientStock   = "ERR_INSUFFICIENT_STOCK"
	ErrCodeInsufficientBalance = "ERR_INSUFFICIENT_BALANCE"
	ErrCodeInvariantViolation  = "ERR_INVARIANT_VIOLATION"
	ErrCodeSequenceExhausted   = "ERR_SEQUENCE_EXHAUSTED"
	ErrCodeIdempotencyReplay   = "ERR_IDEMPOTENCY_IN_PROGRESS"
)

// Rate limiting error codes
const (
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:            http.StatusInternalServerError,
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,

	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,
	ErrCodeTooLarge:     http.StatusRequestEntityTooLarge,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	ErrCodeCartInvalid:         http.StatusUnprocessableEntity,
	ErrCodeEmptyCart:           http.StatusUnprocessableEntity,
	ErrCodeStockRaceLost:       http.StatusConflict,
	ErrCodeOfferUnavailable:    http.StatusUnprocessableEntity,
	ErrCodeInvalidState:        http.StatusUnprocessableEntity,
	ErrCodeNotCancellable:      http.StatusUnprocessableEntity,
	ErrCodeInsufficientStock:   http.StatusUnprocessableEntity,
	ErrCodeInsufficientBalance: http.StatusUnprocessableEntity,
	ErrCodeInvariantViolation:  http.StatusInternalServerError,
	ErrCodeSequenceExhausted:   http.StatusServiceUnavailable,
	ErrCodeIdempotencyReplay:   http.StatusConflict,

	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// retryableCodes are failures the client may repeat unchanged
var retryableCodes = map[string]bool{
	ErrCodeStockRaceLost:       true,
	ErrCodeConcurrencyConflict: true,
	ErrCodeSequenceExhausted:   true,
	ErrCodeIdempotencyReplay:   true,
	ErrCodeServiceUnavailable:  true,
	ErrCodeRateLimited:         true,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// IsRetryable reports whether the client may retry a request that failed with code
func IsRetryable(code string) bool {
	return retryableCodes[code]
}

// domainCodeMapping maps domain error codes to API error codes
var domainCodeMapping = map[string]string{
	"NOT_FOUND":               ErrCodeNotFound,
	"ALREADY_EXISTS":          ErrCodeAlreadyExists,
	"INVALID_INPUT":           ErrCodeInvalidInput,
	"VALIDATION_FAILED":       ErrCodeCartInvalid,
	"EMPTY_CART":              ErrCodeEmptyCart,
	"STOCK_RACE_LOST":         ErrCodeStockRaceLost,
	"OFFER_UNAVAILABLE":       ErrCodeOfferUnavailable,
	"INVALID_STATE":           ErrCodeInvalidState,
	"NOT_CANCELLABLE":         ErrCodeNotCancellable,
	"UNAUTHORIZED":            ErrCodeUnauthorized,
	"FORBIDDEN":               ErrCodeForbidden,
	"CONCURRENCY_CONFLICT":    ErrCodeConcurrencyConflict,
	"INSUFFICIENT_STOCK":      ErrCodeInsufficientStock,
	"INSUFFICIENT_BALANCE":    ErrCodeInsufficientBalance,
	"INVARIANT_VIOLATION":     ErrCodeInvariantViolation,
	"SEQUENCE_EXHAUSTED":      ErrCodeSequenceExhausted,
	"IDEMPOTENCY_IN_PROGRESS": ErrCodeIdempotencyReplay,
	"VALIDATION_ERROR":        ErrCodeValidation,
	"BAD_REQUEST":             ErrCodeBadRequest,
	"INTERNAL_ERROR":          ErrCodeInternal,
}

// NormalizeErrorCode converts a domain error code to its API code.
// Field-level INVALID_* codes collapse into ERR_INVALID_INPUT; codes already
// in ERR_ form pass through; anything else is ERR_UNKNOWN.
func NormalizeErrorCode(code string) string {
	if mapped, ok := domainCodeMapping[code]; ok {
		return mapped
	}
	if strings.HasPrefix(code, "ERR_") {
		return code
	}
	if strings.HasPrefix(code, "INVALID_") {
		return ErrCodeInvalidInput
	}
	return ErrCodeUnknown
}
