package wallet

import (
	"time"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/shared/valueobject"
)

// TransactionType names why a ledger row exists
type TransactionType string

const (
	TypeSale           TransactionType = "sale"
	TypeCommission     TransactionType = "commission"
	TypeMarketplaceFee TransactionType = "marketplace_fee"
	TypeWithholdingTax TransactionType = "withholding_tax"
	TypeShipping       TransactionType = "shipping"
	TypeRelease        TransactionType = "release"
	TypeWithdrawal     TransactionType = "withdrawal"
	TypeCancellation   TransactionType = "cancellation"
)

// IsValid checks if the type is known
func (t TransactionType) IsValid() bool {
	switch t {
	case TypeSale, TypeCommission, TypeMarketplaceFee, TypeWithholdingTax,
		TypeShipping, TypeRelease, TypeWithdrawal, TypeCancellation:
		return true
	}
	return false
}

// Direction is the sign of a ledger row
type Direction string

const (
	DirectionCredit Direction = "credit"
	DirectionDebit  Direction = "debit"
)

// BalanceType is the bucket a ledger row moves
type BalanceType string

const (
	BalancePending   BalanceType = "pending"
	BalanceAvailable BalanceType = "available"
)

// Transaction is an append-only ledger row. Amount is always positive;
// Direction carries the sign. BalanceBefore and BalanceAfter describe the
// bucket named by BalanceType.
type Transaction struct {
	ID            uuid.UUID
	WalletID      uuid.UUID
	SellerID      uuid.UUID
	OrderID       *uuid.UUID
	Type          TransactionType
	Direction     Direction
	BalanceType   BalanceType
	Amount        valueobject.Money
	BalanceBefore valueobject.Money
	BalanceAfter  valueobject.Money
	Description   string
	CreatedAt     time.Time
}

// SignedAmount returns Amount for credits and -Amount for debits
func (t Transaction) SignedAmount() valueobject.Money {
	if t.Direction == DirectionDebit {
		return t.Amount.Negate()
	}
	return t.Amount
}

// IsCredit returns true for credit rows
func (t Transaction) IsCredit() bool {
	return t.Direction == DirectionCredit
}
