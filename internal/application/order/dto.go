package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/order"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// CheckoutRequest turns the buyer's active cart into an order
type CheckoutRequest struct {
	BuyerID          uuid.UUID
	ShippingAddress  string
	Region           string
	ShippingProvider string
	Notes            string
	IdempotencyKey   string
}

// CancelRequest cancels an order. A nil BuyerID means an operator cancels
// on behalf of the buyer.
type CancelRequest struct {
	OrderID uuid.UUID
	BuyerID *uuid.UUID
	Reason  string
}

// StatusUpdateRequest moves an order and/or its payment forward
type StatusUpdateRequest struct {
	OrderID       uuid.UUID
	Status        *order.Status
	PaymentStatus *order.PaymentStatus
}

// ListRequest filters order listings
type ListRequest struct {
	BuyerID   *uuid.UUID
	SellerID  *uuid.UUID
	Status    *order.Status
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// OrderItemResponse is the frozen financial snapshot of one line
type OrderItemResponse struct {
	ID                uuid.UUID         `json:"id"`
	OfferID           uuid.UUID         `json:"offer_id"`
	SellerID          uuid.UUID         `json:"seller_id"`
	Title             string            `json:"title"`
	Quantity          int               `json:"quantity"`
	UnitPrice         valueobject.Money `json:"unit_price"`
	TotalPrice        valueobject.Money `json:"total_price"`
	CommissionRate    decimal.Decimal   `json:"commission_rate"`
	CommissionAmount  valueobject.Money `json:"commission_amount"`
	MarketplaceFee    valueobject.Money `json:"marketplace_fee"`
	WithholdingTax    valueobject.Money `json:"withholding_tax"`
	ShippingCostShare valueobject.Money `json:"shipping_cost_share"`
	NetSellerAmount   valueobject.Money `json:"net_seller_amount"`
}

// OrderResponse is the API view of an order
type OrderResponse struct {
	ID               uuid.UUID           `json:"id"`
	OrderNumber      string              `json:"order_number"`
	BuyerID          uuid.UUID           `json:"buyer_id"`
	Status           string              `json:"status"`
	PaymentStatus    string              `json:"payment_status"`
	Subtotal         valueobject.Money   `json:"subtotal"`
	ShippingCost     valueobject.Money   `json:"shipping_cost"`
	TotalAmount      valueobject.Money   `json:"total_amount"`
	TotalCommission  valueobject.Money   `json:"total_commission"`
	ShippingProvider string              `json:"shipping_provider"`
	ShippingRegion   string              `json:"shipping_region,omitempty"`
	ShippingAddress  string              `json:"shipping_address"`
	TotalDesi        decimal.Decimal     `json:"total_desi"`
	FreeShipping     bool                `json:"free_shipping"`
	Notes            string              `json:"notes,omitempty"`
	CancelReason     string              `json:"cancel_reason,omitempty"`
	Items            []OrderItemResponse `json:"items"`
	CreatedAt        time.Time           `json:"created_at"`
	DeliveredAt      *time.Time          `json:"delivered_at,omitempty"`
	CancelledAt      *time.Time          `json:"cancelled_at,omitempty"`
}

// OrderListResponse is one page of orders
type OrderListResponse = shared.Paginated[OrderResponse]

// ToOrderResponse converts a domain order to its response
func ToOrderResponse(o *order.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = OrderItemResponse{
			ID:                it.ID,
			OfferID:           it.OfferID,
			SellerID:          it.SellerID,
			Title:             it.Title,
			Quantity:          it.Quantity,
			UnitPrice:         it.UnitPrice,
			TotalPrice:        it.TotalPrice,
			CommissionRate:    it.CommissionRate,
			CommissionAmount:  it.CommissionAmount,
			MarketplaceFee:    it.MarketplaceFee,
			WithholdingTax:    it.WithholdingTax,
			ShippingCostShare: it.ShippingCostShare,
			NetSellerAmount:   it.NetSellerAmount,
		}
	}
	return OrderResponse{
		ID:               o.ID,
		OrderNumber:      o.OrderNumber,
		BuyerID:          o.BuyerID,
		Status:           string(o.Status),
		PaymentStatus:    string(o.PaymentStatus),
		Subtotal:         o.Subtotal,
		ShippingCost:     o.ShippingCost,
		TotalAmount:      o.TotalAmount,
		TotalCommission:  o.TotalCommission,
		ShippingProvider: o.Shipping.Provider,
		ShippingRegion:   o.Shipping.Region,
		ShippingAddress:  o.Shipping.Address,
		TotalDesi:        o.Shipping.TotalDesi,
		FreeShipping:     o.Shipping.FreeShipping,
		Notes:            o.Notes,
		CancelReason:     o.CancelReason,
		Items:            items,
		CreatedAt:        o.CreatedAt,
		DeliveredAt:      o.DeliveredAt,
		CancelledAt:      o.CancelledAt,
	}
}
