package wallet

import (
	"context"

	"github.com/marketplace/backend/internal/domain/wallet"
)

// TransactionScope runs ledger work inside one database transaction.
// If fn returns an error the transaction is rolled back.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes the wallet repositories bound to the
// current transaction. The wallet row and its ledger rows always commit together.
type TransactionalRepositories interface {
	WalletRepo() wallet.Repository
	WalletTransactionRepo() wallet.TransactionRepository
}

// NoOpTransactionScope runs fn directly against the given repositories.
// It is meant for tests and for stores without transactions.
type NoOpTransactionScope struct {
	walletRepo      wallet.Repository
	transactionRepo wallet.TransactionRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(walletRepo wallet.Repository, transactionRepo wallet.TransactionRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{walletRepo: walletRepo, transactionRepo: transactionRepo}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// WalletRepo returns the wallet repository.
func (s *NoOpTransactionScope) WalletRepo() wallet.Repository {
	return s.walletRepo
}

// WalletTransactionRepo returns the ledger repository.
func (s *NoOpTransactionScope) WalletTransactionRepo() wallet.TransactionRepository {
	return s.transactionRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
