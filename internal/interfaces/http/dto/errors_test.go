package dto

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeUnknown, http.StatusInternalServerError},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeInvalidInput, http.StatusBadRequest},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{ErrCodeForbidden, http.StatusForbidden},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeCartInvalid, http.StatusUnprocessableEntity},
		{ErrCodeEmptyCart, http.StatusUnprocessableEntity},
		{ErrCodeStockRaceLost, http.StatusConflict},
		{ErrCodeConcurrencyConflict, http.StatusConflict},
		{ErrCodeNotCancellable, http.StatusUnprocessableEntity},
		{ErrCodeInsufficientBalance, http.StatusUnprocessableEntity},
		{ErrCodeInvariantViolation, http.StatusInternalServerError},
		{ErrCodeTooLarge, http.StatusRequestEntityTooLarge},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		{"UNKNOWN_CODE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNormalizeErrorCode(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"NOT_FOUND", ErrCodeNotFound},
		{"VALIDATION_FAILED", ErrCodeCartInvalid},
		{"EMPTY_CART", ErrCodeEmptyCart},
		{"STOCK_RACE_LOST", ErrCodeStockRaceLost},
		{"NOT_CANCELLABLE", ErrCodeNotCancellable},
		{"INSUFFICIENT_BALANCE", ErrCodeInsufficientBalance},
		{"INVARIANT_VIOLATION", ErrCodeInvariantViolation},
		{"INVALID_QUANTITY", ErrCodeInvalidInput},
		{"INVALID_DESI", ErrCodeInvalidInput},
		{"INVALID_STATE", ErrCodeInvalidState},
		{ErrCodeNotFound, ErrCodeNotFound},
		{"CUSTOM_ERROR", ErrCodeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeErrorCode(tt.input))
		})
	}
}

func TestEveryCodeHasStatusAndTranslation(t *testing.T) {
	for code := range ErrorCodeHTTPStatus {
		assert.True(t, HasTranslation(code), "missing translation for %s", code)
	}
	for code := range translations {
		_, ok := ErrorCodeHTTPStatus[code]
		assert.True(t, ok, "missing status for %s", code)
	}
	for _, mapped := range domainCodeMapping {
		_, ok := ErrorCodeHTTPStatus[mapped]
		assert.True(t, ok, "domain code maps to unregistered %s", mapped)
	}
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(ErrCodeStockRaceLost))
	assert.True(t, IsRetryable(ErrCodeConcurrencyConflict))
	assert.False(t, IsRetryable(ErrCodeCartInvalid))
	assert.False(t, IsRetryable(ErrCodeInvariantViolation))
}

func TestNewErrorResponse(t *testing.T) {
	resp := NewErrorResponseWithRequestID(ErrCodeStockRaceLost, "retry", "req-1")

	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "req-1", resp.Error.RequestID)
	assert.True(t, resp.Error.Retryable)

	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"error":{"code":"ERR_STOCK_RACE_LOST","message":"retry","request_id":"req-1","retryable":true}}`, string(raw))
}

func TestNewErrorResponse_OmitsRetryableWhenFalse(t *testing.T) {
	raw, err := json.Marshal(NewErrorResponse(ErrCodeNotFound, "missing"))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "retryable")
}

func TestNewValidationErrorResponse(t *testing.T) {
	resp := NewValidationErrorResponse("bad", "req-2", []ValidationDetail{{Field: "quantity", Message: "must be at least 1"}})

	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	require.Len(t, resp.Error.Details, 1)
	assert.Equal(t, "quantity", resp.Error.Details[0].Field)
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	resp := NewSuccessResponseWithMeta([]int{1, 2}, 21, 2, 10)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 3, resp.Meta.TotalPages)
	assert.Equal(t, int64(21), resp.Meta.Total)

	empty := NewSuccessResponseWithMeta(nil, 0, 1, 10)
	assert.Equal(t, 0, empty.Meta.TotalPages)
}

func TestNegotiateLanguage(t *testing.T) {
	tests := []struct {
		header   string
		expected language.Tag
	}{
		{"", language.English},
		{"tr-TR,tr;q=0.9,en;q=0.8", language.Turkish},
		{"tr", language.Turkish},
		{"en-US", language.English},
		{"de-DE", language.English},
		{"!!garbage!!", language.English},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			base, _ := NegotiateLanguage(tt.header).Base()
			want, _ := tt.expected.Base()
			assert.Equal(t, want, base)
		})
	}
}

func TestLocalizedMessage(t *testing.T) {
	assert.Equal(t, "Your cart is empty", LocalizedMessage(language.English, ErrCodeEmptyCart, "x"))
	assert.Equal(t, "Sepetiniz boş", LocalizedMessage(language.Turkish, ErrCodeEmptyCart, "x"))
	assert.Equal(t, "fallback", LocalizedMessage(language.Turkish, "ERR_NOT_REGISTERED", "fallback"))
}
