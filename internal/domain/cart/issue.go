package cart

import (
	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/shared/valueobject"
)

// IssueType classifies a problem found on a cart line
type IssueType string

const (
	IssueUnavailable  IssueType = "unavailable"
	IssueStock        IssueType = "stock"
	IssuePriceChanged IssueType = "price_changed"
)

// Issue is a problem that blocks checkout until the buyer resolves it.
// AvailableStock is set for stock issues, NewPrice for price changes.
type Issue struct {
	ItemID         uuid.UUID
	OfferID        uuid.UUID
	Type           IssueType
	AvailableStock int
	NewPrice       valueobject.Money
}
