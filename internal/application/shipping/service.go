package shipping

import (
	"context"
	"fmt"

	"github.com/marketplace/backend/internal/domain/settings"
	"github.com/marketplace/backend/internal/domain/shared/valueobject"
	"github.com/marketplace/backend/internal/domain/shipping"
	"github.com/shopspring/decimal"
)

// QuoteRequest asks for the price of one shipment
type QuoteRequest struct {
	Desi     decimal.Decimal
	Provider string
	Region   string
}

// QuoteResponse is the chosen provider and its price
type QuoteResponse struct {
	Provider string            `json:"provider"`
	Price    valueobject.Money `json:"price"`
}

// FreeShippingRequest asks whether an order ships free
type FreeShippingRequest struct {
	Amount    valueobject.Money
	TotalDesi decimal.Decimal
	Provider  string
}

// FreeShippingResponse reports eligibility and, when not yet eligible, how
// much more the buyer has to spend
type FreeShippingResponse struct {
	Eligible  bool               `json:"eligible"`
	Remaining *valueobject.Money `json:"remaining,omitempty"`
}

// Service quotes shipping from the active rate tables
type Service struct {
	rates    shipping.RateRepository
	settings settings.Provider
}

// NewService creates a new shipping Service
func NewService(rates shipping.RateRepository, settingsProvider settings.Provider) *Service {
	return &Service{rates: rates, settings: settingsProvider}
}

// Resolver snapshots the active rate tables
func (s *Service) Resolver(ctx context.Context, defaultProvider string) (*shipping.Resolver, error) {
	rates, err := s.rates.FindActiveRates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load shipping rates: %w", err)
	}
	rules, err := s.rates.FindActiveRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load free shipping rules: %w", err)
	}
	return shipping.NewResolver(rates, rules, defaultProvider), nil
}

func (s *Service) currentResolver(ctx context.Context) (*shipping.Resolver, error) {
	cfg, err := s.settings.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load marketplace settings: %w", err)
	}
	return s.Resolver(ctx, cfg.DefaultShippingProvider)
}

// Quote prices a shipment
func (s *Service) Quote(ctx context.Context, req QuoteRequest) (*QuoteResponse, error) {
	r, err := s.currentResolver(ctx)
	if err != nil {
		return nil, err
	}
	opt, err := r.Select(req.Desi, req.Provider, req.Region)
	if err != nil {
		return nil, err
	}
	return &QuoteResponse{Provider: opt.Provider, Price: opt.Price}, nil
}

// Options lists every provider able to carry desi, cheapest first
func (s *Service) Options(ctx context.Context, desi decimal.Decimal) ([]QuoteResponse, error) {
	r, err := s.currentResolver(ctx)
	if err != nil {
		return nil, err
	}
	options := r.AllOptions(desi)
	out := make([]QuoteResponse, len(options))
	for i, o := range options {
		out[i] = QuoteResponse{Provider: o.Provider, Price: o.Price}
	}
	return out, nil
}

// FreeShipping checks the free-shipping rules for an order amount
func (s *Service) FreeShipping(ctx context.Context, req FreeShippingRequest) (*FreeShippingResponse, error) {
	r, err := s.currentResolver(ctx)
	if err != nil {
		return nil, err
	}
	return &FreeShippingResponse{
		Eligible:  r.IsFreeShippingEligible(req.Amount, req.TotalDesi, req.Provider),
		Remaining: r.RemainingForFree(req.Amount, req.TotalDesi, req.Provider),
	}, nil
}
