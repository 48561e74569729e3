package order

import (
	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Item is the immutable financial snapshot of one order line.
// CommissionRate is copied from the category when the order is placed and
// none of the amounts are ever recalculated afterwards.
type Item struct {
	ID                uuid.UUID
	OrderID           uuid.UUID
	OfferID           uuid.UUID
	SellerID          uuid.UUID
	Title             string
	Quantity          int
	UnitPrice         valueobject.Money
	TotalPrice        valueobject.Money
	CommissionRate    decimal.Decimal
	CommissionAmount  valueobject.Money
	MarketplaceFee    valueobject.Money
	WithholdingTax    valueobject.Money
	ShippingCostShare valueobject.Money
	NetSellerAmount   valueobject.Money
}

// Deductions returns everything taken off the line total before payout
func (i Item) Deductions() valueobject.Money {
	return valueobject.Sum(i.CommissionAmount, i.MarketplaceFee, i.WithholdingTax, i.ShippingCostShare)
}
