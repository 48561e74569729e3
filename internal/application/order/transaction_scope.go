package order

import (
	"context"

	walletapp "github.com/marketplace/backend/internal/application/wallet"
	"github.com/marketplace/backend/internal/domain/cart"
	"github.com/marketplace/backend/internal/domain/catalog"
	"github.com/marketplace/backend/internal/domain/order"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/domain/wallet"
)

// TransactionScope runs checkout and cancellation work inside one database
// transaction. If fn returns an error every write made through repos is
// rolled back.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories are the repositories bound to the current
// transaction. The wallet part lets the order flow drive the ledger
// without opening a second transaction.
type TransactionalRepositories interface {
	walletapp.TransactionalRepositories
	OfferRepo() catalog.OfferRepository
	CategoryRepo() catalog.CategoryRepository
	CartRepo() cart.Repository
	OrderRepo() order.Repository
	EventSaver() shared.OutboxEventSaver
}

// Repositories groups the repositories handed to NoOpTransactionScope
type Repositories struct {
	Offers             catalog.OfferRepository
	Categories         catalog.CategoryRepository
	Carts              cart.Repository
	Orders             order.Repository
	Wallets            wallet.Repository
	WalletTransactions wallet.TransactionRepository
	Events             shared.OutboxEventSaver
}

// NoOpTransactionScope runs fn directly against the given repositories.
// It is used by unit tests.
type NoOpTransactionScope struct {
	repos Repositories
}

// NewNoOpTransactionScope creates a NoOpTransactionScope
func NewNoOpTransactionScope(repos Repositories) *NoOpTransactionScope {
	return &NoOpTransactionScope{repos: repos}
}

// Execute runs the function without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

func (s *NoOpTransactionScope) OfferRepo() catalog.OfferRepository       { return s.repos.Offers }
func (s *NoOpTransactionScope) CategoryRepo() catalog.CategoryRepository { return s.repos.Categories }
func (s *NoOpTransactionScope) CartRepo() cart.Repository                { return s.repos.Carts }
func (s *NoOpTransactionScope) OrderRepo() order.Repository              { return s.repos.Orders }
func (s *NoOpTransactionScope) WalletRepo() wallet.Repository            { return s.repos.Wallets }
func (s *NoOpTransactionScope) EventSaver() shared.OutboxEventSaver      { return s.repos.Events }

func (s *NoOpTransactionScope) WalletTransactionRepo() wallet.TransactionRepository {
	return s.repos.WalletTransactions
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
