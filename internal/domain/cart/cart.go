package cart

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/catalog"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/domain/shared/valueobject"
)

// Status is the lifecycle status of a cart
type Status string

const (
	StatusActive    Status = "active"
	StatusConverted Status = "converted"
)

// ErrOfferUnavailable is returned when an offer cannot be put into a cart
var ErrOfferUnavailable = shared.NewDomainError("OFFER_UNAVAILABLE", "Offer is not available for purchase")

// Item is a cart line. PriceAtAddition is frozen when the line is created
// and is what price drift is measured against.
type Item struct {
	ID              uuid.UUID
	CartID          uuid.UUID
	OfferID         uuid.UUID
	Quantity        int
	PriceAtAddition valueobject.Money
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Cart is a user's shopping cart. A user has at most one active cart;
// a converted cart is never reused.
type Cart struct {
	shared.BaseAggregateRoot
	UserID uuid.UUID
	Status Status
	Items  []Item
}

// NewCart creates an empty active cart for userID
func NewCart(userID uuid.UUID) (*Cart, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	return &Cart{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		Status:            StatusActive,
		Items:             make([]Item, 0),
	}, nil
}

// IsEmpty returns true when the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// IsActive returns true while the cart can still be modified
func (c *Cart) IsActive() bool {
	return c.Status == StatusActive
}

// FindItem returns the line for offerID, or nil
func (c *Cart) FindItem(offerID uuid.UUID) *Item {
	for i := range c.Items {
		if c.Items[i].OfferID == offerID {
			return &c.Items[i]
		}
	}
	return nil
}

// FindItemByID returns the line with the given id, or nil
func (c *Cart) FindItemByID(itemID uuid.UUID) *Item {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			return &c.Items[i]
		}
	}
	return nil
}

// OfferIDs returns the distinct offers referenced by the cart
func (c *Cart) OfferIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(c.Items))
	for _, item := range c.Items {
		ids = append(ids, item.OfferID)
	}
	return ids
}

// AddItem puts qty units of offer into the cart. When a line for the offer
// already exists its quantity grows instead, revalidated against current
// stock; the frozen price of the existing line is kept.
func (c *Cart) AddItem(offer *catalog.Offer, qty int, now time.Time) (*Item, error) {
	if !c.IsActive() {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot modify a converted cart")
	}
	if qty < 1 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
	}
	if offer == nil || !offer.IsPurchasable(now) {
		return nil, ErrOfferUnavailable
	}

	existing := c.FindItem(offer.ID)
	wanted := qty
	if existing != nil {
		wanted += existing.Quantity
	}
	if !offer.HasStock(wanted) {
		return nil, shared.ErrInsufficientStock.
			WithMessage(fmt.Sprintf("Only %d units available", offer.Stock)).
			WithDetails(map[string]any{"available_stock": offer.Stock})
	}

	if existing != nil {
		existing.Quantity = wanted
		existing.UpdatedAt = now
		c.UpdatedAt = now
		return existing, nil
	}

	c.Items = append(c.Items, Item{
		ID:              uuid.New(),
		CartID:          c.ID,
		OfferID:         offer.ID,
		Quantity:        qty,
		PriceAtAddition: offer.Price,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	c.UpdatedAt = now
	return &c.Items[len(c.Items)-1], nil
}

// UpdateQuantity sets the quantity of a line. A quantity of zero or less
// removes the line. Stock shortfalls are reported as a Failed result, not
// an error; errors are reserved for a missing line or a converted cart.
func (c *Cart) UpdateQuantity(itemID uuid.UUID, qty int, offer *catalog.Offer, now time.Time) (UpdateResult, error) {
	if !c.IsActive() {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot modify a converted cart")
	}
	item := c.FindItemByID(itemID)
	if item == nil {
		return nil, shared.ErrNotFound.WithMessage("Cart item not found")
	}

	if qty <= 0 {
		c.removeItem(itemID)
		c.UpdatedAt = now
		return Removed{ItemID: itemID}, nil
	}

	if offer == nil || !offer.IsPurchasable(now) {
		return Failed{Reason: FailureUnavailable}, nil
	}
	if !offer.HasStock(qty) {
		return Failed{Reason: FailureInsufficientStock, AvailableStock: offer.Stock}, nil
	}

	item.Quantity = qty
	item.UpdatedAt = now
	c.UpdatedAt = now
	return Updated{Item: *item}, nil
}

// MarkConverted moves the cart to its terminal state
func (c *Cart) MarkConverted() error {
	if !c.IsActive() {
		return shared.NewDomainError("INVALID_STATE", "Cart has already been converted")
	}
	c.Status = StatusConverted
	c.UpdatedAt = time.Now()
	return nil
}

func (c *Cart) removeItem(itemID uuid.UUID) {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return
		}
	}
}
