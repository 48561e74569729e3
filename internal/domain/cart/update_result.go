package cart

import "github.com/google/uuid"

// UpdateResult is the outcome of UpdateQuantity: one of Removed, Updated or Failed.
type UpdateResult interface {
	isUpdateResult()
}

// FailureReason explains a Failed update
type FailureReason string

const (
	FailureInsufficientStock FailureReason = "insufficient_stock"
	FailureUnavailable       FailureReason = "unavailable"
)

// Removed means the line was deleted
type Removed struct {
	ItemID uuid.UUID
}

// Updated carries the line after the change
type Updated struct {
	Item Item
}

// Failed means the line was left untouched
type Failed struct {
	Reason         FailureReason
	AvailableStock int
}

func (Removed) isUpdateResult() {}
func (Updated) isUpdateResult() {}
func (Failed) isUpdateResult()  {}
