package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/cart"
	"github.com/marketplace/backend/internal/domain/catalog"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/infrastructure/telemetry"
)

// Service manages the buyer's cart. Reads here are unlocked; checkout
// re-validates everything under lock.
type Service struct {
	carts  cart.Repository
	offers catalog.OfferRepository
	now    func() time.Time
}

// NewService creates a new cart Service
func NewService(carts cart.Repository, offers catalog.OfferRepository) *Service {
	return &Service{carts: carts, offers: offers, now: time.Now}
}

// AddItem puts an offer into the buyer's active cart, creating the cart on
// first use. Adding an offer already in the cart grows that line.
func (s *Service) AddItem(ctx context.Context, req AddItemRequest) (*ItemResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "cart", "add_item")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrBuyerID, req.UserID.String(),
		"offer_id", req.OfferID.String(),
		"quantity", req.Quantity,
	)

	c, err := s.activeCart(ctx, req.UserID, true)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	offer, err := s.offers.FindByID(ctx, req.OfferID)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, cart.ErrOfferUnavailable
	}
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load offer: %w", err)
	}

	item, err := c.AddItem(offer, req.Quantity, s.now())
	if err != nil {
		return nil, err
	}
	resp := toItemResponse(*item)

	if err := s.carts.Save(ctx, c); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save cart: %w", err)
	}
	return &resp, nil
}

// UpdateQuantity changes one line. Zero or less removes it; a stock
// shortfall is reported in the response and leaves the line untouched.
func (s *Service) UpdateQuantity(ctx context.Context, req UpdateQuantityRequest) (*UpdateResponse, error) {
	c, err := s.activeCart(ctx, req.UserID, false)
	if err != nil {
		return nil, err
	}
	item := c.FindItemByID(req.ItemID)
	if item == nil {
		return nil, shared.ErrNotFound.WithMessage("Cart item not found")
	}

	var offer *catalog.Offer
	if req.Quantity > 0 {
		offer, err = s.offers.FindByID(ctx, item.OfferID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return nil, fmt.Errorf("failed to load offer: %w", err)
		}
	}

	result, err := c.UpdateQuantity(req.ItemID, req.Quantity, offer, s.now())
	if err != nil {
		return nil, err
	}
	if _, failed := result.(cart.Failed); !failed {
		if err := s.carts.Save(ctx, c); err != nil {
			return nil, fmt.Errorf("failed to save cart: %w", err)
		}
	}

	resp := toUpdateResponse(result)
	return &resp, nil
}

// Validate reports what would block checkout of the buyer's cart
func (s *Service) Validate(ctx context.Context, userID uuid.UUID) (*ValidationResponse, error) {
	c, err := s.activeCart(ctx, userID, false)
	if err != nil {
		return nil, err
	}
	offers, err := s.offers.FindByIDs(ctx, c.OfferIDs())
	if err != nil {
		return nil, fmt.Errorf("failed to load offers: %w", err)
	}

	issues := cart.Validate(c, cart.IndexOffers(offers), s.now())
	return &ValidationResponse{
		CartID: c.ID,
		Valid:  len(issues) == 0,
		Issues: ToIssueResponses(issues),
	}, nil
}

func (s *Service) activeCart(ctx context.Context, userID uuid.UUID, create bool) (*cart.Cart, error) {
	c, err := s.carts.FindActiveByUser(ctx, userID)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if !create {
		return nil, shared.ErrNotFound.WithMessage("No active cart")
	}
	return cart.NewCart(userID)
}
