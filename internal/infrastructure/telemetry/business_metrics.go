package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BusinessMetrics tracks checkout, ledger and outbox activity.
// All Record methods are safe to call on a nil receiver.
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	ordersPlaced      *Counter
	orderAmountCents  *Counter
	checkoutFailures  *Counter
	checkoutDuration  *Histogram
	withdrawals       *Counter
	earningsReleased  *Counter
	ordersCancelled   *Counter
	outboxBacklog     *Gauge
	ledgerDivergences *Counter

	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	outboxProvider OutboxMetricsProvider
}

// OutboxMetricsProvider reports the outbox backlog for periodic collection
type OutboxMetricsProvider interface {
	// CountByStatus returns the number of outbox rows per status
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter          metric.Meter
	Logger         *zap.Logger
	OutboxProvider OutboxMetricsProvider
}

// WithdrawalResult labels withdrawal outcomes
type WithdrawalResult string

const (
	WithdrawalSucceeded         WithdrawalResult = "succeeded"
	WithdrawalInsufficientFunds WithdrawalResult = "insufficient_funds"
)

// NewBusinessMetrics registers the business instruments on cfg.Meter
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		meter:          cfg.Meter,
		logger:         logger,
		stopChan:       make(chan struct{}),
		outboxProvider: cfg.OutboxProvider,
	}

	counters := []struct {
		target     **Counter
		name, desc string
		unit       string
	}{
		{&bm.ordersPlaced, "marketplace_orders_placed_total", "Orders created from carts", "{orders}"},
		{&bm.orderAmountCents, "marketplace_order_amount_total", "Order total amount in cents", "{cents}"},
		{&bm.checkoutFailures, "marketplace_checkout_failures_total", "Checkouts that did not produce an order", "{checkouts}"},
		{&bm.withdrawals, "marketplace_withdrawals_total", "Seller withdrawal attempts", "{withdrawals}"},
		{&bm.earningsReleased, "marketplace_earnings_released_total", "Seller settlements moved from pending to available", "{settlements}"},
		{&bm.ordersCancelled, "marketplace_orders_cancelled_total", "Orders cancelled", "{orders}"},
		{&bm.ledgerDivergences, "marketplace_ledger_divergences_total", "Wallets whose cached balances differ from the ledger", "{wallets}"},
	}
	for _, c := range counters {
		counter, err := NewCounter(cfg.Meter, c.name, c.desc, c.unit)
		if err != nil {
			return nil, err
		}
		*c.target = counter
	}

	var err error
	bm.checkoutDuration, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "marketplace_checkout_duration_seconds",
		Description: "Duration of the checkout transaction",
		Unit:        "s",
		Boundaries:  CheckoutDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	bm.outboxBacklog, err = NewGauge(cfg.Meter, "marketplace_outbox_entries", "Outbox rows by status", "{entries}")
	if err != nil {
		return nil, err
	}

	return bm, nil
}

// RecordOrderPlaced counts a created order and its total
func (bm *BusinessMetrics) RecordOrderPlaced(ctx context.Context, total decimal.Decimal, elapsed time.Duration) {
	if bm == nil {
		return
	}
	bm.ordersPlaced.Inc(ctx)
	bm.orderAmountCents.Add(ctx, total.Shift(2).IntPart())
	bm.checkoutDuration.RecordDuration(ctx, elapsed)
}

// RecordCheckoutFailure counts a failed checkout by error code
func (bm *BusinessMetrics) RecordCheckoutFailure(ctx context.Context, reason string) {
	if bm == nil {
		return
	}
	bm.checkoutFailures.Inc(ctx, AttrFailureReason.String(reason))
}

// RecordOrderCancelled counts a cancellation
func (bm *BusinessMetrics) RecordOrderCancelled(ctx context.Context) {
	if bm == nil {
		return
	}
	bm.ordersCancelled.Inc(ctx)
}

// RecordWithdrawal counts a withdrawal attempt by outcome
func (bm *BusinessMetrics) RecordWithdrawal(ctx context.Context, result WithdrawalResult) {
	if bm == nil {
		return
	}
	bm.withdrawals.Inc(ctx, AttrWithdrawalResult.String(string(result)))
}

// RecordEarningsReleased counts released seller settlements
func (bm *BusinessMetrics) RecordEarningsReleased(ctx context.Context, settlements int) {
	if bm == nil || settlements == 0 {
		return
	}
	bm.earningsReleased.Add(ctx, int64(settlements))
}

// RecordLedgerDivergence counts a wallet that failed verification
func (bm *BusinessMetrics) RecordLedgerDivergence(ctx context.Context) {
	if bm == nil {
		return
	}
	bm.ledgerDivergences.Inc(ctx)
}

// StartPeriodicCollection samples the outbox backlog every interval until
// Stop is called or ctx ends. Only the first call starts a collector.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	bm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = time.Minute
		}
		go bm.runPeriodicCollection(ctx, interval)
	})
}

func (bm *BusinessMetrics) runPeriodicCollection(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	bm.collectOutboxMetrics(ctx)
	for {
		select {
		case <-bm.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			bm.collectOutboxMetrics(ctx)
		}
	}
}

func (bm *BusinessMetrics) collectOutboxMetrics(ctx context.Context) {
	if bm.outboxProvider == nil {
		return
	}
	counts, err := bm.outboxProvider.CountByStatus(ctx)
	if err != nil {
		bm.logger.Warn("Failed to collect outbox metrics", zap.Error(err))
		return
	}
	for status, n := range counts {
		bm.outboxBacklog.Record(ctx, n, AttrOutboxStatus.String(status))
	}
}

// Stop stops the periodic collection. It is idempotent.
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
	})
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewBusinessMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
