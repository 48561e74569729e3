package order

import (
	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Rates are the marketplace-wide percentages applied to every line.
// They are passed in explicitly so pricing never reads ambient settings.
type Rates struct {
	MarketplaceFeeRate decimal.Decimal
	WithholdingTaxRate decimal.Decimal
}

// LineInput describes one line to be priced
type LineInput struct {
	OfferID        uuid.UUID
	SellerID       uuid.UUID
	Title          string
	Quantity       int
	UnitPrice      valueobject.Money
	CommissionRate decimal.Decimal
}

// PriceLines builds the financial snapshot of every line. sellerShipping is
// apportioned over the lines pro rata by line total. A line's share never
// exceeds what the line earns after commission, fee and tax, so a net seller
// amount is never negative; the part above that cap stays with the
// marketplace.
func PriceLines(lines []LineInput, rates Rates, sellerShipping valueobject.Money) ([]Item, error) {
	if len(lines) == 0 {
		return nil, shared.ErrEmptyCart
	}
	if sellerShipping.IsNegative() {
		return nil, shared.NewDomainError("INVALID_SHIPPING", "Shipping cost cannot be negative")
	}

	totals := make([]valueobject.Money, len(lines))
	for i, l := range lines {
		if l.Quantity < 1 {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
		}
		totals[i] = l.UnitPrice.MultiplyByInt(int64(l.Quantity))
	}

	shares, err := sellerShipping.AllocateByWeights(totals)
	if err != nil {
		return nil, err
	}

	items := make([]Item, len(lines))
	for i, l := range lines {
		total := totals[i]
		item := Item{
			ID:                uuid.New(),
			OfferID:           l.OfferID,
			SellerID:          l.SellerID,
			Title:             l.Title,
			Quantity:          l.Quantity,
			UnitPrice:         l.UnitPrice,
			TotalPrice:        total,
			CommissionRate:    l.CommissionRate,
			CommissionAmount:  total.Percentage(l.CommissionRate),
			MarketplaceFee:    total.Percentage(rates.MarketplaceFeeRate),
			WithholdingTax:    total.Percentage(rates.WithholdingTaxRate),
			ShippingCostShare: valueobject.Zero(),
		}
		item.ShippingCostShare = capShare(shares[i], total.Sub(item.Deductions()))
		item.NetSellerAmount = total.Sub(item.Deductions())
		items[i] = item
	}
	return items, nil
}

func capShare(share, room valueobject.Money) valueobject.Money {
	if room.IsNegative() {
		return valueobject.Zero()
	}
	if share.GreaterThan(room) {
		return room
	}
	return share
}

// SellerSettlement aggregates what one seller earns from an order
type SellerSettlement struct {
	SellerID       uuid.UUID
	Sale           valueobject.Money
	Commission     valueobject.Money
	MarketplaceFee valueobject.Money
	WithholdingTax valueobject.Money
	Shipping       valueobject.Money
	Net            valueobject.Money
}

// SettlementsBySeller groups items per seller, in order of first appearance
func SettlementsBySeller(items []Item) []SellerSettlement {
	index := make(map[uuid.UUID]int)
	var out []SellerSettlement
	for _, it := range items {
		pos, ok := index[it.SellerID]
		if !ok {
			pos = len(out)
			index[it.SellerID] = pos
			out = append(out, SellerSettlement{
				SellerID:       it.SellerID,
				Sale:           valueobject.Zero(),
				Commission:     valueobject.Zero(),
				MarketplaceFee: valueobject.Zero(),
				WithholdingTax: valueobject.Zero(),
				Shipping:       valueobject.Zero(),
				Net:            valueobject.Zero(),
			})
		}
		s := &out[pos]
		s.Sale = s.Sale.Add(it.TotalPrice)
		s.Commission = s.Commission.Add(it.CommissionAmount)
		s.MarketplaceFee = s.MarketplaceFee.Add(it.MarketplaceFee)
		s.WithholdingTax = s.WithholdingTax.Add(it.WithholdingTax)
		s.Shipping = s.Shipping.Add(it.ShippingCostShare)
		s.Net = s.Net.Add(it.NetSellerAmount)
	}
	return out
}
