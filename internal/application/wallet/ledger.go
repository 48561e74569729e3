package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/domain/shared/valueobject"
	"github.com/marketplace/backend/internal/domain/wallet"
)

// Ledger applies wallet mutations through repositories that are already
// bound to a transaction. Every operation locks the wallet row first, so
// concurrent credits, releases and withdrawals of one seller serialize.
// Callers own the transaction: the order flow builds a Ledger from its own
// transactional repositories so ledger rows commit with the order.
type Ledger struct {
	wallets wallet.Repository
	entries wallet.TransactionRepository
	now     func() time.Time
}

// NewLedger creates a Ledger over transaction-bound repositories
func NewLedger(wallets wallet.Repository, entries wallet.TransactionRepository) *Ledger {
	return &Ledger{wallets: wallets, entries: entries, now: time.Now}
}

// NewLedgerFromRepos creates a Ledger from a transaction scope's repositories
func NewLedgerFromRepos(repos TransactionalRepositories) *Ledger {
	return NewLedger(repos.WalletRepo(), repos.WalletTransactionRepo())
}

// LockOrCreate returns the seller's wallet locked for update, creating a
// zero-balance wallet when the seller has none
func (l *Ledger) LockOrCreate(ctx context.Context, sellerID uuid.UUID) (*wallet.SellerWallet, error) {
	w, err := l.wallets.FindBySellerForUpdate(ctx, sellerID)
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("failed to lock wallet: %w", err)
	}

	w = wallet.NewSellerWallet(sellerID)
	if err := l.wallets.Create(ctx, w); err != nil {
		if !errors.Is(err, shared.ErrAlreadyExists) {
			return nil, fmt.Errorf("failed to create wallet: %w", err)
		}
		// another transaction created it first
		return l.wallets.FindBySellerForUpdate(ctx, sellerID)
	}
	return w, nil
}

// CreditPendingEarnings books one seller's earnings of one order
func (l *Ledger) CreditPendingEarnings(ctx context.Context, sellerID uuid.UUID, e wallet.Earnings) (*wallet.SellerWallet, error) {
	w, err := l.LockOrCreate(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	rows, err := w.CreditPendingEarnings(e, l.now())
	if err != nil {
		return nil, err
	}
	if err := l.persist(ctx, w, rows); err != nil {
		return nil, err
	}
	return w, nil
}

// ReleasePending moves amount from pending to available. It reports false,
// without writing anything, when the pending balance does not cover amount.
func (l *Ledger) ReleasePending(ctx context.Context, sellerID uuid.UUID, amount valueobject.Money, orderID *uuid.UUID) (bool, error) {
	w, err := l.wallets.FindBySellerForUpdate(ctx, sellerID)
	if errors.Is(err, shared.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to lock wallet: %w", err)
	}

	rows, err := w.ReleasePending(amount, orderID, l.now())
	if errors.Is(err, shared.ErrInsufficientBalance) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, l.persist(ctx, w, rows)
}

// Withdraw pays amount out of the available balance. It reports false,
// without writing anything, when the balance does not cover amount.
func (l *Ledger) Withdraw(ctx context.Context, sellerID uuid.UUID, amount valueobject.Money, description string) (bool, error) {
	w, err := l.wallets.FindBySellerForUpdate(ctx, sellerID)
	if errors.Is(err, shared.ErrNotFound) {
		if !amount.IsPositive() {
			return false, shared.NewDomainError("INVALID_AMOUNT", "Withdrawal amount must be positive")
		}
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to lock wallet: %w", err)
	}

	row, err := w.Withdraw(amount, description, l.now())
	if errors.Is(err, shared.ErrInsufficientBalance) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, l.persist(ctx, w, []wallet.Transaction{row})
}

// ReverseEarnings takes back the still-pending earnings of a cancelled order
func (l *Ledger) ReverseEarnings(ctx context.Context, sellerID uuid.UUID, e wallet.Earnings) error {
	w, err := l.wallets.FindBySellerForUpdate(ctx, sellerID)
	if err != nil {
		return fmt.Errorf("failed to lock wallet: %w", err)
	}
	rows, err := w.ReverseEarnings(e, l.now())
	if err != nil {
		return err
	}
	return l.persist(ctx, w, rows)
}

func (l *Ledger) persist(ctx context.Context, w *wallet.SellerWallet, rows []wallet.Transaction) error {
	if err := l.wallets.Update(ctx, w); err != nil {
		return fmt.Errorf("failed to update wallet: %w", err)
	}
	if len(rows) == 0 {
		return nil
	}
	if err := l.entries.Append(ctx, rows...); err != nil {
		return fmt.Errorf("failed to append ledger rows: %w", err)
	}
	return nil
}
