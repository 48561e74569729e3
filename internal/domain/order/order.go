package order

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Shipping holds the delivery details chosen at checkout
type Shipping struct {
	Provider     string
	Region       string
	Address      string
	TotalDesi    decimal.Decimal
	FreeShipping bool
	// CarrierCost is the quoted carrier price. The buyer pays it as the
	// order's ShippingCost unless FreeShipping is set; then the sellers
	// carry it through the items' shipping shares.
	CarrierCost valueobject.Money
}

// Order is a buyer's placed order. Everything except status, payment
// status, shipping progress and the earnings release marker is frozen at
// creation.
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber     string
	BuyerID         uuid.UUID
	CartID          uuid.UUID
	Status          Status
	PaymentStatus   PaymentStatus
	Items           []Item
	Subtotal        valueobject.Money
	ShippingCost    valueobject.Money
	TotalAmount     valueobject.Money
	TotalCommission valueobject.Money
	Shipping        Shipping
	Notes           string
	CancelReason    string

	ConfirmedAt        *time.Time
	ShippedAt          *time.Time
	DeliveredAt        *time.Time
	CancelledAt        *time.Time
	EarningsReleasedAt *time.Time
}

// NewOrderParams groups everything needed to place an order
type NewOrderParams struct {
	OrderNumber string
	BuyerID     uuid.UUID
	CartID      uuid.UUID
	Lines       []LineInput
	Rates       Rates
	Shipping    Shipping
	Notes       string
}

// NewOrder prices the lines and computes the order totals
func NewOrder(p NewOrderParams) (*Order, error) {
	if p.BuyerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BUYER", "Buyer ID cannot be empty")
	}
	if !ValidOrderNumber(p.OrderNumber) {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", fmt.Sprintf("Malformed order number %q", p.OrderNumber))
	}

	sellerShipping := valueobject.Zero()
	if p.Shipping.FreeShipping {
		sellerShipping = p.Shipping.CarrierCost
	}
	items, err := PriceLines(p.Lines, p.Rates, sellerShipping)
	if err != nil {
		return nil, err
	}

	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       p.OrderNumber,
		BuyerID:           p.BuyerID,
		CartID:            p.CartID,
		Status:            StatusPending,
		PaymentStatus:     PaymentPending,
		Shipping:          p.Shipping,
		Notes:             p.Notes,
	}
	for i := range items {
		items[i].OrderID = o.ID
	}
	o.Items = items

	o.Subtotal = valueobject.Zero()
	o.TotalCommission = valueobject.Zero()
	for _, it := range items {
		o.Subtotal = o.Subtotal.Add(it.TotalPrice)
		o.TotalCommission = o.TotalCommission.Add(it.CommissionAmount)
	}
	o.ShippingCost = p.Shipping.CarrierCost
	if p.Shipping.FreeShipping {
		o.ShippingCost = valueobject.Zero()
	}
	o.TotalAmount = o.Subtotal.Add(o.ShippingCost)

	o.AddDomainEvent(NewPlacedEvent(o))
	return o, nil
}

// Settlements returns the per-seller earnings of the order
func (o *Order) Settlements() []SellerSettlement {
	return SettlementsBySeller(o.Items)
}

// SettlementFor returns the earnings of one seller, if the seller is part of the order
func (o *Order) SettlementFor(sellerID uuid.UUID) (SellerSettlement, bool) {
	for _, s := range o.Settlements() {
		if s.SellerID == sellerID {
			return s, true
		}
	}
	return SellerSettlement{}, false
}

// HasSeller reports whether any line belongs to sellerID
func (o *Order) HasSeller(sellerID uuid.UUID) bool {
	for _, it := range o.Items {
		if it.SellerID == sellerID {
			return true
		}
	}
	return false
}

// Confirm moves a pending order to confirmed
func (o *Order) Confirm() error {
	if err := o.transition(StatusConfirmed); err != nil {
		return err
	}
	now := time.Now()
	o.ConfirmedAt = &now
	return nil
}

// StartProcessing moves a confirmed order to processing
func (o *Order) StartProcessing() error {
	return o.transition(StatusProcessing)
}

// Ship marks the order as handed to the carrier
func (o *Order) Ship() error {
	if err := o.transition(StatusShipped); err != nil {
		return err
	}
	now := time.Now()
	o.ShippedAt = &now
	return nil
}

// Deliver marks the order as delivered
func (o *Order) Deliver(at time.Time) error {
	if err := o.transition(StatusDelivered); err != nil {
		return err
	}
	o.DeliveredAt = &at
	return nil
}

// Cancel cancels the order. Only pending and confirmed orders can be cancelled.
func (o *Order) Cancel(reason string) error {
	if !o.Status.IsCancellable() {
		return shared.ErrNotCancellable.WithMessage(fmt.Sprintf("Cannot cancel order in %s status", o.Status))
	}

	now := time.Now()
	o.Status = StatusCancelled
	o.CancelledAt = &now
	o.CancelReason = reason
	o.UpdatedAt = now

	o.AddDomainEvent(NewCancelledEvent(o))
	return nil
}

// MarkPaid records a successful payment capture
func (o *Order) MarkPaid() error {
	return o.transitionPayment(PaymentPaid)
}

// MarkPaymentFailed records a failed capture
func (o *Order) MarkPaymentFailed() error {
	return o.transitionPayment(PaymentFailed)
}

// MarkRefunded records a refund of a paid order
func (o *Order) MarkRefunded() error {
	return o.transitionPayment(PaymentRefunded)
}

// IsEarningsReleasable reports whether the seller earnings of a delivered
// order may be released at now, given the release delay
func (o *Order) IsEarningsReleasable(now time.Time, delay time.Duration) bool {
	return o.Status == StatusDelivered &&
		o.DeliveredAt != nil &&
		o.EarningsReleasedAt == nil &&
		!now.Before(o.DeliveredAt.Add(delay))
}

// MarkEarningsReleased records that pending earnings were moved to available
func (o *Order) MarkEarningsReleased(at time.Time) error {
	if o.Status != StatusDelivered {
		return shared.NewDomainError("INVALID_STATE", "Earnings can only be released for delivered orders")
	}
	if o.EarningsReleasedAt != nil {
		return shared.NewDomainError("INVALID_STATE", "Earnings have already been released")
	}
	o.EarningsReleasedAt = &at
	o.UpdatedAt = at
	return nil
}

// TotalQuantity sums the quantities of all lines
func (o *Order) TotalQuantity() int {
	total := 0
	for _, it := range o.Items {
		total += it.Quantity
	}
	return total
}

func (o *Order) transition(target Status) error {
	if !o.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot move order from %s to %s", o.Status, target))
	}
	o.Status = target
	o.UpdatedAt = time.Now()
	return nil
}

func (o *Order) transitionPayment(target PaymentStatus) error {
	if !o.PaymentStatus.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot move payment from %s to %s", o.PaymentStatus, target))
	}
	o.PaymentStatus = target
	o.UpdatedAt = time.Now()
	return nil
}
