package shared

import (
	"errors"
	"fmt"
)

// DomainError represents a domain-level error.
// Two DomainErrors match under errors.Is when their codes are equal, so a
// detailed copy of a sentinel still satisfies errors.Is(err, ErrNotFound).
type DomainError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	Err     error          `json:"-"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped cause
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a DomainError with the same code
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithMessage returns a copy of the error with a more specific message
func (e *DomainError) WithMessage(message string) *DomainError {
	cp := *e
	cp.Message = message
	return &cp
}

// WithDetails returns a copy of the error carrying structured details
func (e *DomainError) WithDetails(details map[string]any) *DomainError {
	cp := *e
	cp.Details = details
	return &cp
}

// Wrap returns a copy of the error that wraps cause
func (e *DomainError) Wrap(cause error) *DomainError {
	cp := *e
	cp.Err = cause
	return &cp
}

// Error codes shared by every bounded context.
const (
	CodeNotFound           = "NOT_FOUND"
	CodeAlreadyExists      = "ALREADY_EXISTS"
	CodeInvalidInput       = "INVALID_INPUT"
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeEmptyCart          = "EMPTY_CART"
	CodeStockRaceLost      = "STOCK_RACE_LOST"
	CodeConcurrency        = "CONCURRENCY_CONFLICT"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeInvalidState       = "INVALID_STATE"
	CodeNotCancellable     = "NOT_CANCELLABLE"
	CodeInsufficientStock  = "INSUFFICIENT_STOCK"
	CodeInsufficientFunds  = "INSUFFICIENT_BALANCE"
	CodeInvariantViolation = "INVARIANT_VIOLATION"
	CodeSequenceExhausted  = "SEQUENCE_EXHAUSTED"
	CodeInProgress         = "IDEMPOTENCY_IN_PROGRESS"
)

// Common domain errors
var (
	ErrNotFound            = NewDomainError(CodeNotFound, "Resource not found")
	ErrAlreadyExists       = NewDomainError(CodeAlreadyExists, "Resource already exists")
	ErrInvalidInput        = NewDomainError(CodeInvalidInput, "Invalid input provided")
	ErrValidationFailed    = NewDomainError(CodeValidationFailed, "Cart has unresolved issues")
	ErrEmptyCart           = NewDomainError(CodeEmptyCart, "Cart has no items")
	ErrStockRaceLost       = NewDomainError(CodeStockRaceLost, "Stock changed while the order was being placed")
	ErrConcurrencyConflict = NewDomainError(CodeConcurrency, "Resource was modified by another process")
	ErrUnauthorized        = NewDomainError(CodeUnauthorized, "Not authorized to perform this action")
	ErrForbidden           = NewDomainError(CodeForbidden, "Access to this resource is forbidden")
	ErrInvalidState        = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
	ErrNotCancellable      = NewDomainError(CodeNotCancellable, "Order can no longer be cancelled")
	ErrInsufficientStock   = NewDomainError(CodeInsufficientStock, "Insufficient stock available")
	ErrInsufficientBalance = NewDomainError(CodeInsufficientFunds, "Insufficient balance available")
	ErrInvariantViolation  = NewDomainError(CodeInvariantViolation, "Ledger invariant violated")
	ErrSequenceExhausted   = NewDomainError(CodeSequenceExhausted, "Could not allocate an order number")
	ErrRequestInProgress   = NewDomainError(CodeInProgress, "A request with this idempotency key is still in progress")
)

// IsRetryable reports whether the caller may retry the operation unchanged
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStockRaceLost) ||
		errors.Is(err, ErrConcurrencyConflict) ||
		errors.Is(err, ErrSequenceExhausted) ||
		errors.Is(err, ErrRequestInProgress)
}
