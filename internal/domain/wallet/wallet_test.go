package wallet

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func m(s string) valueobject.Money { return valueobject.MustMoney(s) }

func sampleEarnings() Earnings {
	return Earnings{
		OrderID:        uuid.New(),
		Sale:           m("500.00"),
		Commission:     m("50.00"),
		MarketplaceFee: m("4.45"),
		WithholdingTax: m("5.00"),
		Shipping:       m("10.00"),
	}
}

// assertLedgerMatches checks the cached balances against every row booked so far
func assertLedgerMatches(t *testing.T, w *SellerWallet, rows []Transaction) {
	t.Helper()
	require.NoError(t, VerifyLedger(w, SumLedger(rows)))
}

func TestCreditPendingEarnings(t *testing.T) {
	w := NewSellerWallet(uuid.New())
	e := sampleEarnings()

	rows, err := w.CreditPendingEarnings(e, time.Now())
	require.NoError(t, err)

	require.Len(t, rows, 5)
	assert.Equal(t, TypeSale, rows[0].Type)
	assert.Equal(t, DirectionCredit, rows[0].Direction)
	for _, r := range rows {
		assert.Equal(t, BalancePending, r.BalanceType)
		assert.True(t, r.Amount.IsPositive())
		assert.Equal(t, e.OrderID, *r.OrderID)
	}
	assert.Equal(t, []TransactionType{TypeSale, TypeCommission, TypeMarketplaceFee, TypeWithholdingTax, TypeShipping},
		[]TransactionType{rows[0].Type, rows[1].Type, rows[2].Type, rows[3].Type, rows[4].Type})

	assert.Equal(t, "430.55", w.PendingBalance.String())
	assert.Equal(t, "430.55", e.Net().String())
	assert.True(t, w.Balance.IsZero())
	assert.Equal(t, "500.00", w.TotalEarned.String())
	assert.Equal(t, "50.00", w.TotalCommission.String())
	assert.Equal(t, "430.55", rows[4].BalanceAfter.String())
	assertLedgerMatches(t, w, rows)
}

func TestCreditPendingEarnings_SkipsZeroDeductions(t *testing.T) {
	w := NewSellerWallet(uuid.New())
	rows, err := w.CreditPendingEarnings(Earnings{OrderID: uuid.New(), Sale: m("100.00"), Commission: m("10.00")}, time.Now())
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, TypeCommission, rows[1].Type)
	assert.Equal(t, "90.00", w.PendingBalance.String())
}

func TestCreditPendingEarnings_Rejects(t *testing.T) {
	w := NewSellerWallet(uuid.New())

	_, err := w.CreditPendingEarnings(Earnings{Sale: m("0")}, time.Now())
	assert.Error(t, err)

	_, err = w.CreditPendingEarnings(Earnings{Sale: m("10"), Commission: m("-1")}, time.Now())
	assert.Error(t, err)

	_, err = w.CreditPendingEarnings(Earnings{Sale: m("10"), Shipping: m("25")}, time.Now())
	assert.Error(t, err)
	assert.True(t, w.PendingBalance.IsZero())
}

func TestReleasePending(t *testing.T) {
	w := NewSellerWallet(uuid.New())
	ledger, err := w.CreditPendingEarnings(Earnings{OrderID: uuid.New(), Sale: m("100.00")}, time.Now())
	require.NoError(t, err)

	t.Run("more than pending is refused without mutation", func(t *testing.T) {
		_, err := w.ReleasePending(m("100.01"), nil, time.Now())
		assert.True(t, errors.Is(err, shared.ErrInsufficientBalance))
		assert.Equal(t, "100.00", w.PendingBalance.String())
		assert.True(t, w.Balance.IsZero())
	})

	t.Run("moves the amount between buckets", func(t *testing.T) {
		rows, err := w.ReleasePending(m("60.00"), nil, time.Now())
		require.NoError(t, err)
		ledger = append(ledger, rows...)

		assert.Equal(t, "40.00", w.PendingBalance.String())
		assert.Equal(t, "60.00", w.Balance.String())
		assertLedgerMatches(t, w, ledger)
	})
}

func TestWithdraw_Boundary(t *testing.T) {
	setup := func(t *testing.T) (*SellerWallet, []Transaction) {
		w := NewSellerWallet(uuid.New())
		rows, err := w.CreditPendingEarnings(Earnings{OrderID: uuid.New(), Sale: m("100.00")}, time.Now())
		require.NoError(t, err)
		released, err := w.ReleasePending(m("100.00"), nil, time.Now())
		require.NoError(t, err)
		return w, append(rows, released...)
	}

	t.Run("exact balance succeeds", func(t *testing.T) {
		w, ledger := setup(t)
		row, err := w.Withdraw(m("100.00"), "", time.Now())
		require.NoError(t, err)

		assert.Equal(t, "0.00", w.Balance.String())
		assert.Equal(t, "100.00", w.WithdrawnBalance.String())
		assert.Equal(t, TypeWithdrawal, row.Type)
		assert.Equal(t, BalanceAvailable, row.BalanceType)
		assert.Equal(t, "Withdrawal", row.Description)
		assertLedgerMatches(t, w, append(ledger, row))
	})

	t.Run("one cent over fails without mutation", func(t *testing.T) {
		w, _ := setup(t)
		_, err := w.Withdraw(m("100.01"), "", time.Now())

		assert.True(t, errors.Is(err, shared.ErrInsufficientBalance))
		assert.Equal(t, "100.00", w.Balance.String())
		assert.True(t, w.WithdrawnBalance.IsZero())
	})

	t.Run("non-positive amount is invalid", func(t *testing.T) {
		w, _ := setup(t)
		_, err := w.Withdraw(m("0"), "", time.Now())
		assert.Error(t, err)
	})
}

func TestReverseEarnings(t *testing.T) {
	t.Run("debits the net from pending", func(t *testing.T) {
		w := NewSellerWallet(uuid.New())
		e := sampleEarnings()
		ledger, err := w.CreditPendingEarnings(e, time.Now())
		require.NoError(t, err)

		rows, err := w.ReverseEarnings(e, time.Now())
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, TypeCancellation, rows[0].Type)
		assert.Equal(t, "430.55", rows[0].Amount.String())

		assert.True(t, w.PendingBalance.IsZero())
		assert.True(t, w.TotalEarned.IsZero())
		assert.True(t, w.TotalCommission.IsZero())
		assertLedgerMatches(t, w, append(ledger, rows...))
	})

	t.Run("refuses when earnings were already released", func(t *testing.T) {
		w := NewSellerWallet(uuid.New())
		e := sampleEarnings()
		_, err := w.CreditPendingEarnings(e, time.Now())
		require.NoError(t, err)
		_, err = w.ReleasePending(w.PendingBalance, nil, time.Now())
		require.NoError(t, err)

		_, err = w.ReverseEarnings(e, time.Now())
		assert.True(t, errors.Is(err, shared.ErrInvalidState))
		assert.True(t, w.PendingBalance.IsZero())
	})
}

func TestVerifyLedger_DetectsDivergence(t *testing.T) {
	w := NewSellerWallet(uuid.New())
	rows, err := w.CreditPendingEarnings(Earnings{OrderID: uuid.New(), Sale: m("10.00")}, time.Now())
	require.NoError(t, err)

	w.PendingBalance = m("11.00")
	err = VerifyLedger(w, SumLedger(rows))

	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrInvariantViolation))
	var de *shared.DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "10.00", de.Details["pending_ledger"])
}

func TestTransaction_SignedAmount(t *testing.T) {
	credit := Transaction{Direction: DirectionCredit, Amount: m("5")}
	debit := Transaction{Direction: DirectionDebit, Amount: m("5")}

	assert.Equal(t, "5.00", credit.SignedAmount().String())
	assert.Equal(t, "-5.00", debit.SignedAmount().String())
	assert.True(t, credit.IsCredit())
	assert.False(t, debit.IsCredit())
}
