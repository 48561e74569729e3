package catalog

import (
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Category carries the percentage rates applied to offers listed under it.
// Rates are percentages with two fraction digits (10.00 means 10%).
type Category struct {
	shared.BaseEntity
	Name            string
	CommissionRate  decimal.Decimal
	VATRate         decimal.Decimal
	WithholdingRate decimal.Decimal
}

var maxRate = decimal.NewFromInt(100)

// NewCategory creates a category after validating its rates
func NewCategory(name string, commissionRate, vatRate, withholdingRate decimal.Decimal) (*Category, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Category name cannot be empty")
	}
	for _, r := range []decimal.Decimal{commissionRate, vatRate, withholdingRate} {
		if r.IsNegative() || r.GreaterThan(maxRate) {
			return nil, shared.NewDomainError("INVALID_RATE", "Rates must be between 0 and 100")
		}
	}

	return &Category{
		BaseEntity:      shared.NewBaseEntity(),
		Name:            name,
		CommissionRate:  commissionRate.Round(2),
		VATRate:         vatRate.Round(2),
		WithholdingRate: withholdingRate.Round(2),
	}, nil
}
