package settings

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Keys of the marketplace_settings table
const (
	KeyMarketplaceFeeRate      = "marketplace_fee_rate"
	KeyWithholdingTaxRate      = "withholding_tax_rate"
	KeyOrderNumberPrefix       = "order_number_prefix"
	KeyDefaultShippingProvider = "default_shipping_provider"
	KeyEarningsReleaseDays     = "earnings_release_days"
)

// ValueType tells how a stored value is parsed
type ValueType string

const (
	TypeString  ValueType = "string"
	TypeDecimal ValueType = "decimal"
	TypeInt     ValueType = "int"
)

// Entry is one key-value row of the settings store
type Entry struct {
	Key   string
	Value string
	Type  ValueType
}

// Marketplace is the typed snapshot of marketplace-wide settings.
// It is passed explicitly into checkout and ledger computations.
type Marketplace struct {
	MarketplaceFeeRate      decimal.Decimal `json:"marketplace_fee_rate"`
	WithholdingTaxRate      decimal.Decimal `json:"withholding_tax_rate"`
	OrderNumberPrefix       string          `json:"order_number_prefix"`
	DefaultShippingProvider string          `json:"default_shipping_provider"`
	EarningsReleaseDays     int             `json:"earnings_release_days"`
}

var prefixPattern = regexp.MustCompile(`^[A-Z]{3}$`)

// Validate checks rate bounds and the order number prefix
func (m Marketplace) Validate() error {
	for name, rate := range map[string]decimal.Decimal{
		KeyMarketplaceFeeRate: m.MarketplaceFeeRate,
		KeyWithholdingTaxRate: m.WithholdingTaxRate,
	} {
		if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(100)) {
			return shared.ErrInvalidInput.WithMessage(fmt.Sprintf("%s must be between 0 and 100", name))
		}
	}
	if !prefixPattern.MatchString(m.OrderNumberPrefix) {
		return shared.ErrInvalidInput.WithMessage("order_number_prefix must be three upper-case letters")
	}
	if m.EarningsReleaseDays < 0 {
		return shared.ErrInvalidInput.WithMessage("earnings_release_days cannot be negative")
	}
	return nil
}

// Parse overlays stored entries onto defaults. Unknown keys are ignored;
// a malformed value for a known key is an error.
func Parse(entries []Entry, defaults Marketplace) (Marketplace, error) {
	m := defaults
	for _, e := range entries {
		var err error
		switch e.Key {
		case KeyMarketplaceFeeRate:
			m.MarketplaceFeeRate, err = parseRate(e.Value)
		case KeyWithholdingTaxRate:
			m.WithholdingTaxRate, err = parseRate(e.Value)
		case KeyOrderNumberPrefix:
			m.OrderNumberPrefix = e.Value
		case KeyDefaultShippingProvider:
			m.DefaultShippingProvider = e.Value
		case KeyEarningsReleaseDays:
			m.EarningsReleaseDays, err = strconv.Atoi(e.Value)
		default:
			continue
		}
		if err != nil {
			return Marketplace{}, shared.ErrInvalidInput.
				WithMessage(fmt.Sprintf("setting %s has malformed value %q", e.Key, e.Value)).
				Wrap(err)
		}
	}
	return m, nil
}

// Entries flattens the snapshot back into storable rows
func (m Marketplace) Entries() []Entry {
	return []Entry{
		{Key: KeyMarketplaceFeeRate, Value: m.MarketplaceFeeRate.StringFixed(2), Type: TypeDecimal},
		{Key: KeyWithholdingTaxRate, Value: m.WithholdingTaxRate.StringFixed(2), Type: TypeDecimal},
		{Key: KeyOrderNumberPrefix, Value: m.OrderNumberPrefix, Type: TypeString},
		{Key: KeyDefaultShippingProvider, Value: m.DefaultShippingProvider, Type: TypeString},
		{Key: KeyEarningsReleaseDays, Value: strconv.Itoa(m.EarningsReleaseDays), Type: TypeInt},
	}
}

func parseRate(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return d.Round(2), nil
}

// Repository persists settings rows
type Repository interface {
	FindAll(ctx context.Context) ([]Entry, error)
	Upsert(ctx context.Context, entries []Entry) error
}

// Provider serves the current settings snapshot
type Provider interface {
	Current(ctx context.Context) (Marketplace, error)
}
