package order

import (
	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/domain/shared/valueobject"
)

// AggregateTypeOrder names the order aggregate in events
const AggregateTypeOrder = "Order"

// Event type constants
const (
	EventTypePlaced    = "order.placed"
	EventTypeCancelled = "order.cancelled"
)

// EventItem is the line information carried by order events
type EventItem struct {
	OfferID         uuid.UUID         `json:"offer_id"`
	SellerID        uuid.UUID         `json:"seller_id"`
	Quantity        int               `json:"quantity"`
	TotalPrice      valueobject.Money `json:"total_price"`
	NetSellerAmount valueobject.Money `json:"net_seller_amount"`
}

// PlacedEvent is raised when an order is created from a cart
type PlacedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID         `json:"order_id"`
	OrderNumber string            `json:"order_number"`
	BuyerID     uuid.UUID         `json:"buyer_id"`
	Items       []EventItem       `json:"items"`
	Subtotal    valueobject.Money `json:"subtotal"`
	TotalAmount valueobject.Money `json:"total_amount"`
}

// NewPlacedEvent creates a PlacedEvent
func NewPlacedEvent(o *Order) *PlacedEvent {
	return &PlacedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePlaced, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		BuyerID:         o.BuyerID,
		Items:           eventItems(o.Items),
		Subtotal:        o.Subtotal,
		TotalAmount:     o.TotalAmount,
	}
}

// CancelledEvent is raised when an order is cancelled
type CancelledEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID   `json:"order_id"`
	OrderNumber string      `json:"order_number"`
	Reason      string      `json:"reason,omitempty"`
	Items       []EventItem `json:"items"`
}

// NewCancelledEvent creates a CancelledEvent
func NewCancelledEvent(o *Order) *CancelledEvent {
	return &CancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCancelled, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		Reason:          o.CancelReason,
		Items:           eventItems(o.Items),
	}
}

func eventItems(items []Item) []EventItem {
	out := make([]EventItem, len(items))
	for i, it := range items {
		out[i] = EventItem{
			OfferID:         it.OfferID,
			SellerID:        it.SellerID,
			Quantity:        it.Quantity,
			TotalPrice:      it.TotalPrice,
			NetSellerAmount: it.NetSellerAmount,
		}
	}
	return out
}
