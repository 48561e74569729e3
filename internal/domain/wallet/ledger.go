package wallet

import (
	"fmt"

	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/domain/shared/valueobject"
)

// LedgerTotals is the signed sum of a wallet's ledger rows per bucket
type LedgerTotals struct {
	Pending   valueobject.Money
	Available valueobject.Money
}

// SumLedger folds ledger rows into per-bucket totals
func SumLedger(rows []Transaction) LedgerTotals {
	totals := LedgerTotals{Pending: valueobject.Zero(), Available: valueobject.Zero()}
	for _, r := range rows {
		switch r.BalanceType {
		case BalancePending:
			totals.Pending = totals.Pending.Add(r.SignedAmount())
		case BalanceAvailable:
			totals.Available = totals.Available.Add(r.SignedAmount())
		}
	}
	return totals
}

// VerifyLedger checks the cached wallet balances against the ledger totals
// and the non-negativity of every bucket. Divergence is reported as
// shared.ErrInvariantViolation and must never be repaired silently.
func VerifyLedger(w *SellerWallet, totals LedgerTotals) error {
	problems := map[string]any{}
	if !w.PendingBalance.Equals(totals.Pending) {
		problems["pending_balance"] = w.PendingBalance.String()
		problems["pending_ledger"] = totals.Pending.String()
	}
	if !w.Balance.Equals(totals.Available) {
		problems["balance"] = w.Balance.String()
		problems["available_ledger"] = totals.Available.String()
	}
	if w.Balance.IsNegative() || w.PendingBalance.IsNegative() {
		problems["negative_balance"] = true
	}
	if len(problems) == 0 {
		return nil
	}
	problems["seller_id"] = w.SellerID.String()
	return shared.ErrInvariantViolation.
		WithMessage(fmt.Sprintf("Wallet of seller %s diverges from its ledger", w.SellerID)).
		WithDetails(problems)
}
