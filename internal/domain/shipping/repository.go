package shipping

import "context"

// RateRepository reads the rate tables
type RateRepository interface {
	// FindActiveRates returns active tiers ordered by insertion position
	FindActiveRates(ctx context.Context) ([]Rate, error)
	// FindActiveRules returns active free-shipping rules
	FindActiveRules(ctx context.Context) ([]FreeShippingRule, error)
	SaveRate(ctx context.Context, rate *Rate) error
	SaveRule(ctx context.Context, rule *FreeShippingRule) error
}
