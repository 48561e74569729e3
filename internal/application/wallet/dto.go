package wallet

import (
	"time"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/shared/valueobject"
	"github.com/marketplace/backend/internal/domain/wallet"
)

// WalletResponse is the seller-facing view of a wallet
type WalletResponse struct {
	SellerID         uuid.UUID         `json:"seller_id"`
	Balance          valueobject.Money `json:"balance"`
	PendingBalance   valueobject.Money `json:"pending_balance"`
	WithdrawnBalance valueobject.Money `json:"withdrawn_balance"`
	TotalEarned      valueobject.Money `json:"total_earned"`
	TotalCommission  valueobject.Money `json:"total_commission"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// TransactionResponse is one ledger row
type TransactionResponse struct {
	ID            uuid.UUID         `json:"id"`
	OrderID       *uuid.UUID        `json:"order_id,omitempty"`
	Type          string            `json:"type"`
	Direction     string            `json:"direction"`
	BalanceType   string            `json:"balance_type"`
	Amount        valueobject.Money `json:"amount"`
	BalanceBefore valueobject.Money `json:"balance_before"`
	BalanceAfter  valueobject.Money `json:"balance_after"`
	Description   string            `json:"description"`
	CreatedAt     time.Time         `json:"created_at"`
}

// WithdrawalRequest asks to pay out part of the available balance
type WithdrawalRequest struct {
	Amount      valueobject.Money
	Description string
}

// VerificationResponse reports a wallet that matches its ledger
type VerificationResponse struct {
	SellerID        uuid.UUID         `json:"seller_id"`
	Balance         valueobject.Money `json:"balance"`
	PendingBalance  valueobject.Money `json:"pending_balance"`
	LedgerAvailable valueobject.Money `json:"ledger_available"`
	LedgerPending   valueobject.Money `json:"ledger_pending"`
	Consistent      bool              `json:"consistent"`
}

// ToWalletResponse converts a wallet to its response
func ToWalletResponse(w *wallet.SellerWallet) WalletResponse {
	return WalletResponse{
		SellerID:         w.SellerID,
		Balance:          w.Balance,
		PendingBalance:   w.PendingBalance,
		WithdrawnBalance: w.WithdrawnBalance,
		TotalEarned:      w.TotalEarned,
		TotalCommission:  w.TotalCommission,
		UpdatedAt:        w.UpdatedAt,
	}
}

// ToTransactionResponses converts ledger rows to responses
func ToTransactionResponses(rows []wallet.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, len(rows))
	for i, r := range rows {
		out[i] = TransactionResponse{
			ID:            r.ID,
			OrderID:       r.OrderID,
			Type:          string(r.Type),
			Direction:     string(r.Direction),
			BalanceType:   string(r.BalanceType),
			Amount:        r.Amount,
			BalanceBefore: r.BalanceBefore,
			BalanceAfter:  r.BalanceAfter,
			Description:   r.Description,
			CreatedAt:     r.CreatedAt,
		}
	}
	return out
}
