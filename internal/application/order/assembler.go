package order

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	walletapp "github.com/marketplace/backend/internal/application/wallet"
	"github.com/marketplace/backend/internal/domain/cart"
	"github.com/marketplace/backend/internal/domain/catalog"
	"github.com/marketplace/backend/internal/domain/order"
	"github.com/marketplace/backend/internal/domain/settings"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/domain/shared/valueobject"
	"github.com/marketplace/backend/internal/domain/shipping"
	"github.com/marketplace/backend/internal/domain/wallet"
	"github.com/marketplace/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Checkout failure reasons reported to metrics
const (
	failureEmptyCart   = "empty_cart"
	failureValidation  = "validation_failed"
	failureStockRace   = "stock_race_lost"
	failureNoRate      = "no_shipping_rate"
	failureConcurrency = "concurrency_conflict"
	failureOther       = "other"
)

// CreateFromCart places an order from the buyer's active cart. Stock
// decrements, the order rows, the cart conversion, the sellers' pending
// credits and the order.placed outbox row commit together or not at all.
func (s *Service) CreateFromCart(ctx context.Context, req CheckoutRequest) (*OrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "create_from_cart")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrBuyerID, req.BuyerID.String())

	if req.IdempotencyKey != "" && s.idempotency != nil && s.idemConfig.Enabled {
		return s.createIdempotent(ctx, req)
	}

	started := s.now()
	var result *order.Order
	var operationErr error
	telemetry.WithProfilingLabels(ctx, telemetry.CheckoutOperationLabels(telemetry.OperationCheckout), func(c context.Context) {
		result, operationErr = s.assemble(c, req)
	})
	if operationErr != nil {
		telemetry.RecordError(span, operationErr)
		s.metrics.RecordCheckoutFailure(ctx, failureReason(operationErr))
		s.logger.Warn("Checkout failed",
			zap.String("buyer_id", req.BuyerID.String()),
			zap.Error(operationErr),
			zap.Bool("retryable", shared.IsRetryable(operationErr)))
		return nil, operationErr
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrOrderID, result.ID.String(),
		telemetry.SpanAttrOrderNumber, result.OrderNumber,
		telemetry.SpanAttrItemCount, len(result.Items),
		telemetry.SpanAttrAmount, result.TotalAmount.String(),
	)
	s.metrics.RecordOrderPlaced(ctx, result.TotalAmount.Amount(), s.now().Sub(started))
	s.logger.Info("Order placed",
		zap.String("order_id", result.ID.String()),
		zap.String("order_number", result.OrderNumber),
		zap.String("total_amount", result.TotalAmount.String()))

	resp := ToOrderResponse(result)
	return &resp, nil
}

// createIdempotent replays the order created by an earlier request with the
// same key, or places a new one and remembers it
func (s *Service) createIdempotent(ctx context.Context, req CheckoutRequest) (*OrderResponse, error) {
	key := "checkout:" + req.BuyerID.String() + ":" + req.IdempotencyKey
	reserved, stored, err := s.idempotency.Reserve(ctx, key, s.idemConfig.TTL)
	if err != nil {
		return nil, fmt.Errorf("failed to reserve idempotency key: %w", err)
	}
	if !reserved {
		if stored == "" {
			return nil, shared.ErrRequestInProgress
		}
		id, err := uuid.Parse(stored)
		if err != nil {
			return nil, fmt.Errorf("corrupt idempotency result %q: %w", stored, err)
		}
		return s.GetOrder(ctx, id, &req.BuyerID)
	}

	inner := req
	inner.IdempotencyKey = ""
	resp, err := s.CreateFromCart(ctx, inner)
	if err != nil {
		if releaseErr := s.idempotency.Release(ctx, key); releaseErr != nil {
			s.logger.Warn("Failed to release idempotency key", zap.String("key", key), zap.Error(releaseErr))
		}
		return nil, err
	}
	if err := s.idempotency.Complete(ctx, key, resp.ID.String(), s.idemConfig.TTL); err != nil {
		s.logger.Warn("Failed to store idempotency result", zap.String("key", key), zap.Error(err))
	}
	return resp, nil
}

func (s *Service) assemble(ctx context.Context, req CheckoutRequest) (*order.Order, error) {
	cfg, err := s.settings.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load marketplace settings: %w", err)
	}
	resolver, err := s.shipping.Resolver(ctx, cfg.DefaultShippingProvider)
	if err != nil {
		return nil, fmt.Errorf("failed to load shipping rates: %w", err)
	}

	var placed *order.Order
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		o, err := s.assembleInTx(ctx, repos, req, cfg, resolver)
		if err != nil {
			return err
		}
		placed = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return placed, nil
}

func (s *Service) assembleInTx(
	ctx context.Context,
	repos TransactionalRepositories,
	req CheckoutRequest,
	cfg settings.Marketplace,
	resolver *shipping.Resolver,
) (*order.Order, error) {
	now := s.now()

	c, err := repos.CartRepo().FindActiveByUser(ctx, req.BuyerID)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, shared.ErrEmptyCart
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if c.IsEmpty() {
		return nil, shared.ErrEmptyCart
	}

	// A cart that is already stale is the buyer's to fix, whatever the cause
	current, err := repos.OfferRepo().FindByIDs(ctx, c.OfferIDs())
	if err != nil {
		return nil, fmt.Errorf("failed to load offers: %w", err)
	}
	if issues := cart.Validate(c, cart.IndexOffers(current), now); len(issues) > 0 {
		return nil, shared.ErrValidationFailed.WithDetails(map[string]any{"issues": issues})
	}

	// The offers stay locked until commit; a concurrent checkout of the
	// same offer waits here.
	offers, err := repos.OfferRepo().FindByIDsForUpdate(ctx, c.OfferIDs())
	if err != nil {
		return nil, fmt.Errorf("failed to lock offers: %w", err)
	}
	index := cart.IndexOffers(offers)
	if err := checkLockedIssues(cart.Validate(c, index, now)); err != nil {
		return nil, err
	}

	categories, err := s.loadCategories(ctx, repos.CategoryRepo(), offers)
	if err != nil {
		return nil, err
	}

	lines := make([]order.LineInput, 0, len(c.Items))
	subtotal := valueobject.Zero()
	totalDesi := decimal.Zero
	for _, item := range c.Items {
		offer := index[item.OfferID]
		lines = append(lines, order.LineInput{
			OfferID:        offer.ID,
			SellerID:       offer.SellerID,
			Title:          offer.Title,
			Quantity:       item.Quantity,
			UnitPrice:      offer.Price,
			CommissionRate: categories[offer.CategoryID].CommissionRate,
		})
		subtotal = subtotal.Add(offer.Price.MultiplyByInt(int64(item.Quantity)))
		totalDesi = totalDesi.Add(offer.Desi.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	option, err := resolver.Select(totalDesi, req.ShippingProvider, req.Region)
	if err != nil {
		return nil, err
	}
	free := resolver.IsFreeShippingEligible(subtotal, totalDesi, option.Provider)

	for _, item := range c.Items {
		offer := index[item.OfferID]
		if err := offer.DecreaseStock(item.Quantity); err != nil {
			if errors.Is(err, shared.ErrInsufficientStock) {
				return nil, shared.ErrStockRaceLost.Wrap(err)
			}
			return nil, err
		}
		if err := repos.OfferRepo().UpdateStock(ctx, offer); err != nil {
			return nil, fmt.Errorf("failed to update stock: %w", err)
		}
	}

	number, err := s.numbers.Generate(ctx, cfg.OrderNumberPrefix, repos.OrderRepo())
	if err != nil {
		return nil, err
	}

	o, err := order.NewOrder(order.NewOrderParams{
		OrderNumber: number,
		BuyerID:     req.BuyerID,
		CartID:      c.ID,
		Lines:       lines,
		Rates: order.Rates{
			MarketplaceFeeRate: cfg.MarketplaceFeeRate,
			WithholdingTaxRate: cfg.WithholdingTaxRate,
		},
		Shipping: order.Shipping{
			Provider:     option.Provider,
			Region:       req.Region,
			Address:      req.ShippingAddress,
			TotalDesi:    totalDesi,
			FreeShipping: free,
			CarrierCost:  option.Price,
		},
		Notes: req.Notes,
	})
	if err != nil {
		return nil, err
	}
	if err := repos.OrderRepo().Create(ctx, o); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if err := c.MarkConverted(); err != nil {
		return nil, err
	}
	if err := repos.CartRepo().Save(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to convert cart: %w", err)
	}

	ledger := walletapp.NewLedgerFromRepos(repos)
	for _, st := range sortedSettlements(o) {
		if _, err := ledger.CreditPendingEarnings(ctx, st.SellerID, earningsOf(o.ID, st)); err != nil {
			return nil, fmt.Errorf("failed to credit seller %s: %w", st.SellerID, err)
		}
	}

	if err := repos.EventSaver().SaveEvents(ctx, o.GetDomainEvents()...); err != nil {
		return nil, fmt.Errorf("failed to save order events: %w", err)
	}
	o.ClearDomainEvents()
	return o, nil
}

func (s *Service) loadCategories(ctx context.Context, repo catalog.CategoryRepository, offers []*catalog.Offer) (map[uuid.UUID]*catalog.Category, error) {
	seen := make(map[uuid.UUID]bool)
	ids := make([]uuid.UUID, 0, len(offers))
	for _, o := range offers {
		if !seen[o.CategoryID] {
			seen[o.CategoryID] = true
			ids = append(ids, o.CategoryID)
		}
	}
	found, err := repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	out := make(map[uuid.UUID]*catalog.Category, len(found))
	for _, c := range found {
		out[c.ID] = c
	}
	for _, id := range ids {
		if _, ok := out[id]; !ok {
			return nil, shared.ErrNotFound.WithMessage(fmt.Sprintf("Category %s not found", id))
		}
	}
	return out, nil
}

// checkLockedIssues turns issues that appeared between the unlocked check
// and the lock into an error. Stock shortfalls alone mean another checkout
// won the race; anything else needs the buyer to fix the cart.
func checkLockedIssues(issues []cart.Issue) error {
	if len(issues) == 0 {
		return nil
	}
	details := map[string]any{"issues": issues}
	for _, is := range issues {
		if is.Type != cart.IssueStock {
			return shared.ErrValidationFailed.WithDetails(details)
		}
	}
	return shared.ErrStockRaceLost.WithDetails(details)
}

// sortedSettlements orders settlements by seller id so concurrent
// transactions lock wallets in the same order
func sortedSettlements(o *order.Order) []order.SellerSettlement {
	out := o.Settlements()
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i].SellerID[:], out[j].SellerID[:]) < 0
	})
	return out
}

func earningsOf(orderID uuid.UUID, st order.SellerSettlement) wallet.Earnings {
	return wallet.Earnings{
		OrderID:        orderID,
		Sale:           st.Sale,
		Commission:     st.Commission,
		MarketplaceFee: st.MarketplaceFee,
		WithholdingTax: st.WithholdingTax,
		Shipping:       st.Shipping,
	}
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, shared.ErrEmptyCart):
		return failureEmptyCart
	case errors.Is(err, shared.ErrValidationFailed):
		return failureValidation
	case errors.Is(err, shared.ErrStockRaceLost):
		return failureStockRace
	case errors.Is(err, shipping.ErrNoRate):
		return failureNoRate
	case errors.Is(err, shared.ErrConcurrencyConflict):
		return failureConcurrency
	}
	return failureOther
}
