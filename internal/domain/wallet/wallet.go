package wallet

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/domain/shared/valueobject"
)

// SellerWallet is the cached state of a seller's ledger.
// Balance is withdrawable, PendingBalance is not yet. Every mutation
// returns the ledger rows that justify it; the caller persists both in the
// same transaction.
type SellerWallet struct {
	shared.BaseAggregateRoot
	SellerID         uuid.UUID
	Balance          valueobject.Money
	PendingBalance   valueobject.Money
	WithdrawnBalance valueobject.Money
	TotalEarned      valueobject.Money
	TotalCommission  valueobject.Money
}

// NewSellerWallet creates a zero-balance wallet
func NewSellerWallet(sellerID uuid.UUID) *SellerWallet {
	return &SellerWallet{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SellerID:          sellerID,
		Balance:           valueobject.Zero(),
		PendingBalance:    valueobject.Zero(),
		WithdrawnBalance:  valueobject.Zero(),
		TotalEarned:       valueobject.Zero(),
		TotalCommission:   valueobject.Zero(),
	}
}

// Earnings is one seller's share of one order
type Earnings struct {
	OrderID        uuid.UUID
	Sale           valueobject.Money
	Commission     valueobject.Money
	MarketplaceFee valueobject.Money
	WithholdingTax valueobject.Money
	Shipping       valueobject.Money
}

// Deductions sums everything withheld from the sale
func (e Earnings) Deductions() valueobject.Money {
	return valueobject.Sum(e.Commission, e.MarketplaceFee, e.WithholdingTax, e.Shipping)
}

// Net is what the seller is owed
func (e Earnings) Net() valueobject.Money {
	return e.Sale.Sub(e.Deductions())
}

func (e Earnings) validate() error {
	for _, m := range []valueobject.Money{e.Sale, e.Commission, e.MarketplaceFee, e.WithholdingTax, e.Shipping} {
		if m.IsNegative() {
			return shared.NewDomainError("INVALID_AMOUNT", "Earnings amounts cannot be negative")
		}
	}
	if !e.Sale.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Sale amount must be positive")
	}
	return nil
}

// CreditPendingEarnings books the earnings of an order into the pending
// bucket: a sale credit followed by one debit per non-zero deduction.
func (w *SellerWallet) CreditPendingEarnings(e Earnings, now time.Time) ([]Transaction, error) {
	if err := e.validate(); err != nil {
		return nil, err
	}
	if w.PendingBalance.Add(e.Net()).IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT",
			fmt.Sprintf("Deductions %s exceed sale %s", e.Deductions(), e.Sale))
	}

	orderID := e.OrderID
	rows := make([]Transaction, 0, 5)
	rows = append(rows, w.book(TypeSale, DirectionCredit, BalancePending, e.Sale, &orderID, "Order sale", now))

	deductions := []struct {
		t      TransactionType
		amount valueobject.Money
		desc   string
	}{
		{TypeCommission, e.Commission, "Marketplace commission"},
		{TypeMarketplaceFee, e.MarketplaceFee, "Marketplace service fee"},
		{TypeWithholdingTax, e.WithholdingTax, "Withholding tax"},
		{TypeShipping, e.Shipping, "Shipping cost share"},
	}
	for _, d := range deductions {
		if d.amount.IsPositive() {
			rows = append(rows, w.book(d.t, DirectionDebit, BalancePending, d.amount, &orderID, d.desc, now))
		}
	}

	w.TotalEarned = w.TotalEarned.Add(e.Sale)
	w.TotalCommission = w.TotalCommission.Add(e.Commission)
	w.UpdatedAt = now
	return rows, nil
}

// ReleasePending moves amount from pending to available.
// It returns shared.ErrInsufficientBalance, without mutating, when amount
// exceeds the pending balance.
func (w *SellerWallet) ReleasePending(amount valueobject.Money, orderID *uuid.UUID, now time.Time) ([]Transaction, error) {
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Release amount must be positive")
	}
	if amount.GreaterThan(w.PendingBalance) {
		return nil, shared.ErrInsufficientBalance.WithMessage(
			fmt.Sprintf("Cannot release %s, pending balance is %s", amount, w.PendingBalance))
	}

	rows := []Transaction{
		w.book(TypeRelease, DirectionDebit, BalancePending, amount, orderID, "Released to available balance", now),
		w.book(TypeRelease, DirectionCredit, BalanceAvailable, amount, orderID, "Released from pending balance", now),
	}
	w.UpdatedAt = now
	return rows, nil
}

// Withdraw pays amount out of the available balance.
// It returns shared.ErrInsufficientBalance, without mutating, when amount
// exceeds the balance.
func (w *SellerWallet) Withdraw(amount valueobject.Money, description string, now time.Time) (Transaction, error) {
	if !amount.IsPositive() {
		return Transaction{}, shared.NewDomainError("INVALID_AMOUNT", "Withdrawal amount must be positive")
	}
	if amount.GreaterThan(w.Balance) {
		return Transaction{}, shared.ErrInsufficientBalance.WithMessage(
			fmt.Sprintf("Cannot withdraw %s, balance is %s", amount, w.Balance))
	}
	if description == "" {
		description = "Withdrawal"
	}

	row := w.book(TypeWithdrawal, DirectionDebit, BalanceAvailable, amount, nil, description, now)
	w.WithdrawnBalance = w.WithdrawnBalance.Add(amount)
	w.UpdatedAt = now
	return row, nil
}

// ReverseEarnings takes back the pending earnings of a cancelled order with
// a single cancellation debit of the net amount. It fails with
// shared.ErrInvalidState when the earnings are no longer pending.
func (w *SellerWallet) ReverseEarnings(e Earnings, now time.Time) ([]Transaction, error) {
	if err := e.validate(); err != nil {
		return nil, err
	}
	net := e.Net()
	if net.GreaterThan(w.PendingBalance) {
		return nil, shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Pending balance %s does not cover the %s to reverse", w.PendingBalance, net))
	}

	var rows []Transaction
	orderID := e.OrderID
	if net.IsPositive() {
		rows = append(rows, w.book(TypeCancellation, DirectionDebit, BalancePending, net, &orderID, "Order cancelled", now))
	}
	w.TotalEarned = w.TotalEarned.Sub(e.Sale)
	w.TotalCommission = w.TotalCommission.Sub(e.Commission)
	w.UpdatedAt = now
	return rows, nil
}

// book applies one row to the matching bucket and returns it
func (w *SellerWallet) book(t TransactionType, dir Direction, bucket BalanceType, amount valueobject.Money, orderID *uuid.UUID, desc string, now time.Time) Transaction {
	target := &w.PendingBalance
	if bucket == BalanceAvailable {
		target = &w.Balance
	}

	before := *target
	signed := amount
	if dir == DirectionDebit {
		signed = amount.Negate()
	}
	*target = before.Add(signed)

	return Transaction{
		ID:            uuid.New(),
		WalletID:      w.ID,
		SellerID:      w.SellerID,
		OrderID:       orderID,
		Type:          t,
		Direction:     dir,
		BalanceType:   bucket,
		Amount:        amount,
		BalanceBefore: before,
		BalanceAfter:  *target,
		Description:   desc,
		CreatedAt:     now,
	}
}
