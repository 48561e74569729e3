package catalog

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// OfferStatus is the lifecycle status of an offer.
// Deleted offers stay in storage but are filtered out by every repository query.
type OfferStatus string

const (
	OfferStatusActive   OfferStatus = "active"
	OfferStatusInactive OfferStatus = "inactive"
	OfferStatusSoldOut  OfferStatus = "sold_out"
	OfferStatusDeleted  OfferStatus = "deleted"
)

// IsValid checks if the status is a known OfferStatus
func (s OfferStatus) IsValid() bool {
	switch s {
	case OfferStatusActive, OfferStatusInactive, OfferStatusSoldOut, OfferStatusDeleted:
		return true
	}
	return false
}

// String returns the string representation of OfferStatus
func (s OfferStatus) String() string {
	return string(s)
}

// Offer is a seller's sellable unit of a product
type Offer struct {
	shared.BaseAggregateRoot
	SellerID   uuid.UUID
	ProductID  uuid.UUID
	CategoryID uuid.UUID
	Title      string
	Price      valueobject.Money
	Stock      int
	Desi       decimal.Decimal
	Status     OfferStatus
	ExpiryDate *time.Time
}

// NewOffer creates an active offer
func NewOffer(sellerID, productID, categoryID uuid.UUID, title string, price valueobject.Money, stock int, desi decimal.Decimal) (*Offer, error) {
	if sellerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SELLER", "Seller ID cannot be empty")
	}
	if categoryID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Category ID cannot be empty")
	}
	if !price.IsPositive() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price must be positive")
	}
	if stock < 0 {
		return nil, shared.NewDomainError("INVALID_STOCK", "Stock cannot be negative")
	}
	if desi.IsNegative() {
		return nil, shared.NewDomainError("INVALID_DESI", "Desi cannot be negative")
	}

	status := OfferStatusActive
	if stock == 0 {
		status = OfferStatusSoldOut
	}

	return &Offer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SellerID:          sellerID,
		ProductID:         productID,
		CategoryID:        categoryID,
		Title:             title,
		Price:             price,
		Stock:             stock,
		Desi:              desi,
		Status:            status,
	}, nil
}

// IsExpired reports whether the offer's expiry date has passed at now
func (o *Offer) IsExpired(now time.Time) bool {
	return o.ExpiryDate != nil && now.After(*o.ExpiryDate)
}

// IsPurchasable reports whether the offer can be put into a cart or ordered at now
func (o *Offer) IsPurchasable(now time.Time) bool {
	return o.Status == OfferStatusActive && !o.IsExpired(now)
}

// HasStock reports whether qty units are available
func (o *Offer) HasStock(qty int) bool {
	return qty <= o.Stock
}

// DecreaseStock removes qty units. Reaching zero flips an active offer to sold_out.
func (o *Offer) DecreaseStock(qty int) error {
	if qty <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if qty > o.Stock {
		return shared.ErrInsufficientStock.
			WithMessage(fmt.Sprintf("Only %d units left for offer %s", o.Stock, o.ID)).
			WithDetails(map[string]any{"available_stock": o.Stock})
	}

	o.Stock -= qty
	if o.Stock == 0 && o.Status == OfferStatusActive {
		o.Status = OfferStatusSoldOut
	}
	o.UpdatedAt = time.Now()
	return nil
}

// RestoreStock puts qty units back. A sold_out offer becomes active again.
func (o *Offer) RestoreStock(qty int) error {
	if qty <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	o.Stock += qty
	if o.Status == OfferStatusSoldOut {
		o.Status = OfferStatusActive
	}
	o.UpdatedAt = time.Now()
	return nil
}

// Deactivate takes the offer off sale without deleting it
func (o *Offer) Deactivate() error {
	if o.Status == OfferStatusDeleted {
		return shared.NewDomainError("INVALID_STATE", "Cannot deactivate a deleted offer")
	}
	o.Status = OfferStatusInactive
	o.UpdatedAt = time.Now()
	return nil
}

// Delete moves the offer to the terminal deleted status
func (o *Offer) Delete() {
	o.Status = OfferStatusDeleted
	o.UpdatedAt = time.Now()
}
