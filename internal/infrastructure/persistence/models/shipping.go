package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/shared/valueobject"
	"github.com/marketplace/backend/internal/domain/shipping"
	"github.com/shopspring/decimal"
)

// ShippingRateModel is the persistence model for one desi tier of a provider.
// Position records insertion order so ties between providers resolve deterministically.
type ShippingRateModel struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key"`
	Provider         string          `gorm:"type:varchar(50);not null;index"`
	MinDesi          decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	MaxDesi          decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Price            decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	RegionPricesJSON string          `gorm:"column:region_prices;type:jsonb;default:'{}'"`
	Active           bool            `gorm:"not null;index"`
	Position         int             `gorm:"not null;default:0"`
	CreatedAt        time.Time       `gorm:"not null"`
	UpdatedAt        time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ShippingRateModel) TableName() string {
	return "shipping_rates"
}

// ToDomain converts the persistence model to a domain Rate.
// Malformed region prices are dropped and the base price applies.
func (m *ShippingRateModel) ToDomain() shipping.Rate {
	regionPrices := map[string]valueobject.Money{}
	if m.RegionPricesJSON != "" {
		_ = json.Unmarshal([]byte(m.RegionPricesJSON), &regionPrices)
	}
	return shipping.Rate{
		ID:           m.ID,
		Provider:     m.Provider,
		MinDesi:      m.MinDesi,
		MaxDesi:      m.MaxDesi,
		Price:        valueobject.NewMoney(m.Price),
		RegionPrices: regionPrices,
		Active:       m.Active,
		Position:     m.Position,
	}
}

// FromDomain populates the persistence model from a domain Rate.
func (m *ShippingRateModel) FromDomain(r *shipping.Rate) {
	m.ID = r.ID
	m.Provider = r.Provider
	m.MinDesi = r.MinDesi
	m.MaxDesi = r.MaxDesi
	m.Price = r.Price.Amount()
	m.Active = r.Active
	m.Position = r.Position
	m.RegionPricesJSON = "{}"
	if len(r.RegionPrices) > 0 {
		if jsonBytes, err := json.Marshal(r.RegionPrices); err == nil {
			m.RegionPricesJSON = string(jsonBytes)
		}
	}
}

// FreeShippingRuleModel is the persistence model for a free-shipping rule.
type FreeShippingRuleModel struct {
	ID             uuid.UUID        `gorm:"type:uuid;primary_key"`
	Provider       *string          `gorm:"type:varchar(50)"`
	MinOrderAmount decimal.Decimal  `gorm:"type:decimal(18,2);not null"`
	MaxDesi        *decimal.Decimal `gorm:"type:decimal(10,2)"`
	Active         bool             `gorm:"not null;index"`
	CreatedAt      time.Time        `gorm:"not null"`
	UpdatedAt      time.Time        `gorm:"not null"`
}

// TableName returns the table name for GORM
func (FreeShippingRuleModel) TableName() string {
	return "free_shipping_rules"
}

// ToDomain converts the persistence model to a domain FreeShippingRule.
func (m *FreeShippingRuleModel) ToDomain() shipping.FreeShippingRule {
	return shipping.FreeShippingRule{
		ID:             m.ID,
		Provider:       m.Provider,
		MinOrderAmount: valueobject.NewMoney(m.MinOrderAmount),
		MaxDesi:        m.MaxDesi,
		Active:         m.Active,
	}
}

// FromDomain populates the persistence model from a domain FreeShippingRule.
func (m *FreeShippingRuleModel) FromDomain(r *shipping.FreeShippingRule) {
	m.ID = r.ID
	m.Provider = r.Provider
	m.MinOrderAmount = r.MinOrderAmount.Amount()
	m.MaxDesi = r.MaxDesi
	m.Active = r.Active
}
