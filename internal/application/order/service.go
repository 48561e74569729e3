package order

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/order"
	"github.com/marketplace/backend/internal/domain/settings"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/domain/shipping"
	"github.com/marketplace/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ShippingQuoter builds a resolver over the current rate tables
type ShippingQuoter interface {
	Resolver(ctx context.Context, defaultProvider string) (*shipping.Resolver, error)
}

// Service places, cancels and advances orders
type Service struct {
	scope       TransactionScope
	orders      order.Repository
	settings    settings.Provider
	shipping    ShippingQuoter
	numbers     *NumberGenerator
	idempotency shared.IdempotencyStore
	idemConfig  shared.IdempotencyConfig
	logger      *zap.Logger
	metrics     *telemetry.BusinessMetrics
	now         func() time.Time
}

// NewService creates a new order Service
func NewService(
	scope TransactionScope,
	orders order.Repository,
	settingsProvider settings.Provider,
	quoter ShippingQuoter,
	numbers *NumberGenerator,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		scope:    scope,
		orders:   orders,
		settings: settingsProvider,
		shipping: quoter,
		numbers:  numbers,
		logger:   logger,
		now:      time.Now,
	}
}

// SetBusinessMetrics sets the business metrics recorder
func (s *Service) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.metrics = bm
}

// SetIdempotencyStore enables Idempotency-Key handling on checkout
func (s *Service) SetIdempotencyStore(store shared.IdempotencyStore, cfg shared.IdempotencyConfig) {
	s.idempotency = store
	s.idemConfig = cfg
}

// GetOrder returns one order. When viewer is set the order must belong to
// that buyer; an order of another buyer is reported as not found.
func (s *Service) GetOrder(ctx context.Context, id uuid.UUID, viewer *uuid.UUID) (*OrderResponse, error) {
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if viewer != nil && o.BuyerID != *viewer {
		return nil, shared.ErrNotFound.WithMessage("Order not found")
	}
	resp := ToOrderResponse(o)
	return &resp, nil
}

// ListOrders returns a page of orders matching the request
func (s *Service) ListOrders(ctx context.Context, req ListRequest) (*OrderListResponse, error) {
	page, pageSize := shared.NormalizePage(req.Page, req.PageSize)
	result, err := s.orders.List(ctx, order.Filter{
		BuyerID:   req.BuyerID,
		SellerID:  req.SellerID,
		Status:    req.Status,
		Page:      page,
		PageSize:  pageSize,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	items := make([]OrderResponse, len(result.Items))
	for i := range result.Items {
		items[i] = ToOrderResponse(&result.Items[i])
	}
	resp := shared.NewPaginated(items, result.Total, page, pageSize)
	return &resp, nil
}
