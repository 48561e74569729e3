package shipping

import (
	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Rate is one desi tier of a provider's price table.
// RegionPrices overrides Price for specific delivery regions.
type Rate struct {
	ID           uuid.UUID
	Provider     string
	MinDesi      decimal.Decimal
	MaxDesi      decimal.Decimal
	Price        valueobject.Money
	RegionPrices map[string]valueobject.Money
	Active       bool
	// Position is the insertion order, used to break price ties between providers
	Position int
}

// NewRate validates and creates an active tier
func NewRate(provider string, minDesi, maxDesi decimal.Decimal, price valueobject.Money) (*Rate, error) {
	if provider == "" {
		return nil, shared.NewDomainError("INVALID_PROVIDER", "Provider cannot be empty")
	}
	if minDesi.IsNegative() || maxDesi.LessThan(minDesi) {
		return nil, shared.NewDomainError("INVALID_DESI_RANGE", "Desi range must satisfy 0 <= min <= max")
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	return &Rate{
		ID:           uuid.New(),
		Provider:     provider,
		MinDesi:      minDesi,
		MaxDesi:      maxDesi,
		Price:        price,
		RegionPrices: map[string]valueobject.Money{},
		Active:       true,
	}, nil
}

// Covers reports whether desi lies in [MinDesi, MaxDesi]
func (r Rate) Covers(desi decimal.Decimal) bool {
	return !desi.LessThan(r.MinDesi) && !desi.GreaterThan(r.MaxDesi)
}

// PriceFor returns the regional override for region, or the base price
func (r Rate) PriceFor(region string) valueobject.Money {
	if region != "" {
		if p, ok := r.RegionPrices[region]; ok {
			return p
		}
	}
	return r.Price
}

// FreeShippingRule waives the buyer's shipping charge above a threshold.
// A nil Provider makes the rule global; a nil MaxDesi means no desi limit.
type FreeShippingRule struct {
	ID             uuid.UUID
	Provider       *string
	MinOrderAmount valueobject.Money
	MaxDesi        *decimal.Decimal
	Active         bool
}

// AppliesTo reports whether the rule is active and covers provider
func (r FreeShippingRule) AppliesTo(provider string) bool {
	if !r.Active {
		return false
	}
	return r.Provider == nil || *r.Provider == provider
}

// AllowsDesi reports whether totalDesi is within the rule's desi limit
func (r FreeShippingRule) AllowsDesi(totalDesi decimal.Decimal) bool {
	return r.MaxDesi == nil || !r.MaxDesi.LessThan(totalDesi)
}
