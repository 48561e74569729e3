package shipping

import (
	"fmt"
	"sort"

	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// ErrNoRate is returned when no active tier covers the requested desi
var ErrNoRate = shared.ErrNotFound.WithMessage("No shipping rate covers this shipment")

// Option is one provider's quote
type Option struct {
	Provider string
	Price    valueobject.Money
}

// Resolver quotes shipping prices from a snapshot of the rate tables.
// It is pure and safe for concurrent use once built.
type Resolver struct {
	rates           []Rate
	rules           []FreeShippingRule
	defaultProvider string
	// providerOrder is the Position of each provider's first inserted tier
	providerOrder map[string]int
}

// NewResolver keeps the active rates ordered by Position and the active rules
func NewResolver(rates []Rate, rules []FreeShippingRule, defaultProvider string) *Resolver {
	active := make([]Rate, 0, len(rates))
	providerOrder := make(map[string]int)
	for _, r := range rates {
		if pos, ok := providerOrder[r.Provider]; !ok || r.Position < pos {
			providerOrder[r.Provider] = r.Position
		}
		if r.Active {
			active = append(active, r)
		}
	}
	sort.SliceStable(active, func(i, j int) bool { return active[i].Position < active[j].Position })

	activeRules := make([]FreeShippingRule, 0, len(rules))
	for _, r := range rules {
		if r.Active {
			activeRules = append(activeRules, r)
		}
	}

	return &Resolver{
		rates:           active,
		rules:           activeRules,
		defaultProvider: defaultProvider,
		providerOrder:   providerOrder,
	}
}

// Quote prices a shipment of desi with provider, applying the region
// override when one matches. An empty provider means the default provider,
// or the cheapest option when no default is configured.
func (r *Resolver) Quote(desi decimal.Decimal, provider, region string) (valueobject.Money, error) {
	opt, err := r.Select(desi, provider, region)
	if err != nil {
		return valueobject.Money{}, err
	}
	return opt.Price, nil
}

// Select is Quote that also reports which provider was picked
func (r *Resolver) Select(desi decimal.Decimal, provider, region string) (Option, error) {
	provider = r.resolveProvider(provider)
	if provider == "" {
		options := r.optionsFor(desi, region)
		if len(options) == 0 {
			return Option{}, ErrNoRate
		}
		return options[0], nil
	}

	for _, rate := range r.rates {
		if rate.Provider == provider && rate.Covers(desi) {
			return Option{Provider: provider, Price: rate.PriceFor(region)}, nil
		}
	}
	return Option{}, ErrNoRate.WithMessage(fmt.Sprintf("Provider %s has no rate for %s desi", provider, desi))
}

// AllOptions returns every active provider's quote for desi, cheapest first.
// Equal prices keep provider insertion order.
func (r *Resolver) AllOptions(desi decimal.Decimal) []Option {
	return r.optionsFor(desi, "")
}

// IsFreeShippingEligible reports whether any applicable rule has a threshold
// at or below orderAmount and a desi limit that admits totalDesi
func (r *Resolver) IsFreeShippingEligible(orderAmount valueobject.Money, totalDesi decimal.Decimal, provider string) bool {
	provider = r.resolveProvider(provider)
	for _, rule := range r.rules {
		if rule.AppliesTo(provider) && rule.AllowsDesi(totalDesi) && !rule.MinOrderAmount.GreaterThan(orderAmount) {
			return true
		}
	}
	return false
}

// RemainingForFree returns how much more the buyer must spend to reach the
// cheapest applicable free-shipping threshold. It returns nil when the
// order is already eligible or no rule applies.
func (r *Resolver) RemainingForFree(orderAmount valueobject.Money, totalDesi decimal.Decimal, provider string) *valueobject.Money {
	if r.IsFreeShippingEligible(orderAmount, totalDesi, provider) {
		return nil
	}
	provider = r.resolveProvider(provider)

	var cheapest *valueobject.Money
	for _, rule := range r.rules {
		if !rule.AppliesTo(provider) || !rule.AllowsDesi(totalDesi) {
			continue
		}
		if cheapest == nil || rule.MinOrderAmount.LessThan(*cheapest) {
			threshold := rule.MinOrderAmount
			cheapest = &threshold
		}
	}
	if cheapest == nil {
		return nil
	}
	remaining := cheapest.Sub(orderAmount)
	return &remaining
}

func (r *Resolver) resolveProvider(provider string) string {
	if provider != "" {
		return provider
	}
	return r.defaultProvider
}

func (r *Resolver) optionsFor(desi decimal.Decimal, region string) []Option {
	seen := make(map[string]bool)
	var options []Option
	for _, rate := range r.rates {
		if seen[rate.Provider] || !rate.Covers(desi) {
			continue
		}
		seen[rate.Provider] = true
		options = append(options, Option{Provider: rate.Provider, Price: rate.PriceFor(region)})
	}
	sort.SliceStable(options, func(i, j int) bool {
		if !options[i].Price.Equals(options[j].Price) {
			return options[i].Price.LessThan(options[j].Price)
		}
		return r.providerOrder[options[i].Provider] < r.providerOrder[options[j].Provider]
	})
	return options
}
