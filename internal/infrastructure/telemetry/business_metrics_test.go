package telemetry_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/marketplace/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"
)

func newTestBusinessMetrics(t *testing.T, provider telemetry.OutboxMetricsProvider) *telemetry.BusinessMetrics {
	t.Helper()
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:          noop.NewMeterProvider().Meter("test"),
		Logger:         zap.NewNop(),
		OutboxProvider: provider,
	})
	require.NoError(t, err)
	return bm
}

func TestNewBusinessMetrics_NilMeter(t *testing.T) {
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{})
	assert.Nil(t, bm)
	assert.ErrorIs(t, err, telemetry.ErrMeterNil)
	assert.Equal(t, "NewBusinessMetrics: meter cannot be nil", err.Error())
}

func TestBusinessMetrics_Record(t *testing.T) {
	bm := newTestBusinessMetrics(t, nil)
	ctx := context.Background()

	assert.NotPanics(t, func() {
		bm.RecordOrderPlaced(ctx, decimal.RequireFromString("500.00"), 40*time.Millisecond)
		bm.RecordCheckoutFailure(ctx, "STOCK_RACE_LOST")
		bm.RecordOrderCancelled(ctx)
		bm.RecordWithdrawal(ctx, telemetry.WithdrawalSucceeded)
		bm.RecordEarningsReleased(ctx, 2)
		bm.RecordLedgerDivergence(ctx)
	})
}

func TestBusinessMetrics_NilReceiver(t *testing.T) {
	var bm *telemetry.BusinessMetrics
	assert.NotPanics(t, func() {
		bm.RecordOrderPlaced(context.Background(), decimal.NewFromInt(1), time.Second)
		bm.RecordWithdrawal(context.Background(), telemetry.WithdrawalInsufficientFunds)
	})
}

type countingOutboxProvider struct {
	calls atomic.Int32
	err   error
}

func (p *countingOutboxProvider) CountByStatus(context.Context) (map[string]int64, error) {
	p.calls.Add(1)
	return map[string]int64{"PENDING": 3}, p.err
}

func TestBusinessMetrics_PeriodicCollection(t *testing.T) {
	provider := &countingOutboxProvider{}
	bm := newTestBusinessMetrics(t, provider)

	bm.StartPeriodicCollection(context.Background(), 10*time.Millisecond)
	bm.StartPeriodicCollection(context.Background(), 10*time.Millisecond)

	assert.Eventually(t, func() bool { return provider.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	bm.Stop()
	bm.Stop()
}

func TestBusinessMetrics_PeriodicCollection_ProviderError(t *testing.T) {
	provider := &countingOutboxProvider{err: errors.New("db down")}
	bm := newTestBusinessMetrics(t, provider)

	ctx, cancel := context.WithCancel(context.Background())
	bm.StartPeriodicCollection(ctx, 10*time.Millisecond)
	assert.Eventually(t, func() bool { return provider.calls.Load() >= 1 }, time.Second, 5*time.Millisecond)
	cancel()
}
