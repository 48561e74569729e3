package wallet

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists seller wallets
type Repository interface {
	// FindBySeller returns shared.ErrNotFound when the seller has no wallet yet
	FindBySeller(ctx context.Context, sellerID uuid.UUID) (*SellerWallet, error)
	// FindBySellerForUpdate locks the wallet row for the rest of the transaction
	FindBySellerForUpdate(ctx context.Context, sellerID uuid.UUID) (*SellerWallet, error)
	// Create inserts a new wallet. Losing a creation race yields shared.ErrAlreadyExists.
	Create(ctx context.Context, w *SellerWallet) error
	// Update writes the cached balances, checking the version for optimistic concurrency
	Update(ctx context.Context, w *SellerWallet) error
}

// TransactionRepository is the append-only ledger store
type TransactionRepository interface {
	Append(ctx context.Context, rows ...Transaction) error
	// ListBySeller returns the newest rows first
	ListBySeller(ctx context.Context, sellerID uuid.UUID, limit int) ([]Transaction, error)
	// Totals returns the signed per-bucket sums of a wallet's rows
	Totals(ctx context.Context, walletID uuid.UUID) (LedgerTotals, error)
}
