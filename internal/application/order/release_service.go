package order

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	walletapp "github.com/marketplace/backend/internal/application/wallet"
	"github.com/marketplace/backend/internal/domain/order"
	"github.com/marketplace/backend/internal/domain/settings"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

const defaultReleaseBatchSize = 100

// ReleaseResult summarizes one release run
type ReleaseResult struct {
	Scanned  int
	Released int
	Failed   int
}

// EarningsReleaseService moves the pending earnings of delivered orders to
// the sellers' available balance once the release delay has passed
type EarningsReleaseService struct {
	scope     TransactionScope
	orders    order.Repository
	settings  settings.Provider
	logger    *zap.Logger
	metrics   *telemetry.BusinessMetrics
	batchSize int
	now       func() time.Time
}

// NewEarningsReleaseService creates a new EarningsReleaseService
func NewEarningsReleaseService(
	scope TransactionScope,
	orders order.Repository,
	settingsProvider settings.Provider,
	logger *zap.Logger,
) *EarningsReleaseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EarningsReleaseService{
		scope:     scope,
		orders:    orders,
		settings:  settingsProvider,
		logger:    logger,
		batchSize: defaultReleaseBatchSize,
		now:       time.Now,
	}
}

// SetBusinessMetrics sets the business metrics recorder
func (s *EarningsReleaseService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.metrics = bm
}

// SetBatchSize limits how many orders one run picks up
func (s *EarningsReleaseService) SetBatchSize(n int) {
	if n > 0 {
		s.batchSize = n
	}
}

// ReleaseDue releases every due order, each in its own transaction. A
// failing order is logged and left for the next run.
func (s *EarningsReleaseService) ReleaseDue(ctx context.Context) (ReleaseResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "wallet", "release_due_earnings")
	defer span.End()

	var result ReleaseResult
	cfg, err := s.settings.Current(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return result, fmt.Errorf("failed to load marketplace settings: %w", err)
	}

	now := s.now()
	delay := time.Duration(cfg.EarningsReleaseDays) * 24 * time.Hour
	due, err := s.orders.FindReleasable(ctx, now.Add(-delay), s.batchSize)
	if err != nil {
		telemetry.RecordError(span, err)
		return result, fmt.Errorf("failed to find releasable orders: %w", err)
	}
	result.Scanned = len(due)

	for _, o := range due {
		if err := s.releaseOrder(ctx, o.ID, delay, now); err != nil {
			result.Failed++
			s.logger.Error("Failed to release order earnings",
				zap.String("order_id", o.ID.String()),
				zap.String("order_number", o.OrderNumber),
				zap.Error(err))
			continue
		}
		result.Released++
	}

	telemetry.SetAttributes(span,
		"orders_scanned", result.Scanned,
		"orders_released", result.Released,
		"orders_failed", result.Failed,
	)
	s.metrics.RecordEarningsReleased(ctx, result.Released)
	return result, nil
}

func (s *EarningsReleaseService) releaseOrder(ctx context.Context, orderID uuid.UUID, delay time.Duration, now time.Time) error {
	return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		o, err := repos.OrderRepo().FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		// another run got here first
		if !o.IsEarningsReleasable(now, delay) {
			return nil
		}

		ledger := walletapp.NewLedgerFromRepos(repos)
		for _, st := range sortedSettlements(o) {
			if !st.Net.IsPositive() {
				continue
			}
			id := o.ID
			ok, err := ledger.ReleasePending(ctx, st.SellerID, st.Net, &id)
			if err != nil {
				return err
			}
			if !ok {
				return shared.ErrInvariantViolation.WithMessage(
					fmt.Sprintf("Pending balance of seller %s does not cover %s", st.SellerID, st.Net))
			}
		}

		if err := o.MarkEarningsReleased(now); err != nil {
			return err
		}
		return repos.OrderRepo().Update(ctx, o)
	})
}
