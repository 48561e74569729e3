package persistence

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	apporder "github.com/marketplace/backend/internal/application/order"
	appwallet "github.com/marketplace/backend/internal/application/wallet"
	"github.com/marketplace/backend/internal/domain/cart"
	"github.com/marketplace/backend/internal/domain/catalog"
	"github.com/marketplace/backend/internal/domain/order"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/domain/wallet"
	"gorm.io/gorm"
)

// SQLSTATE codes raised when a row lock cannot be taken in time or the
// transaction loses a serialization race.
const (
	pgLockNotAvailable       = "55P03"
	pgSerializationFailure   = "40001"
	pgDeadlockDetected       = "40P01"
	pgQueryCanceledByTimeout = "57014"
)

// TxEventSaverFactory binds an outbox saver to a transaction
type TxEventSaverFactory interface {
	ForTx(tx *gorm.DB) shared.OutboxEventSaver
}

// GormTransactionScope implements the checkout TransactionScope using GORM transactions.
// Lock timeouts, deadlocks and serialization failures surface as
// shared.ErrStockRaceLost so callers can retry.
type GormTransactionScope struct {
	db     *gorm.DB
	events TxEventSaverFactory
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB, events TxEventSaverFactory) *GormTransactionScope {
	return &GormTransactionScope{db: db, events: events}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos apporder.TransactionalRepositories) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx, events: s.events})
	})
	return mapLockError(err)
}

// GormWalletTransactionScope implements the wallet TransactionScope using GORM transactions.
type GormWalletTransactionScope struct {
	db *gorm.DB
}

// NewGormWalletTransactionScope creates a new GormWalletTransactionScope.
func NewGormWalletTransactionScope(db *gorm.DB) *GormWalletTransactionScope {
	return &GormWalletTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
func (s *GormWalletTransactionScope) Execute(ctx context.Context, fn func(repos appwallet.TransactionalRepositories) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
	return mapLockError(err)
}

func mapLockError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgLockNotAvailable, pgSerializationFailure, pgDeadlockDetected, pgQueryCanceledByTimeout:
			return shared.ErrStockRaceLost.Wrap(err)
		}
	}
	return err
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx     *gorm.DB
	events TxEventSaverFactory
}

// OfferRepo returns the offer repository scoped to the current transaction.
func (r *gormTransactionalRepositories) OfferRepo() catalog.OfferRepository {
	return NewGormOfferRepository(r.tx)
}

// CategoryRepo returns the category repository scoped to the current transaction.
func (r *gormTransactionalRepositories) CategoryRepo() catalog.CategoryRepository {
	return NewGormCategoryRepository(r.tx)
}

// CartRepo returns the cart repository scoped to the current transaction.
func (r *gormTransactionalRepositories) CartRepo() cart.Repository {
	return NewGormCartRepository(r.tx)
}

// OrderRepo returns the order repository scoped to the current transaction.
func (r *gormTransactionalRepositories) OrderRepo() order.Repository {
	return NewGormOrderRepository(r.tx)
}

// WalletRepo returns the wallet repository scoped to the current transaction.
func (r *gormTransactionalRepositories) WalletRepo() wallet.Repository {
	return NewGormWalletRepository(r.tx)
}

// WalletTransactionRepo returns the ledger repository scoped to the current transaction.
func (r *gormTransactionalRepositories) WalletTransactionRepo() wallet.TransactionRepository {
	return NewGormWalletTransactionRepository(r.tx)
}

// EventSaver returns the outbox saver scoped to the current transaction.
func (r *gormTransactionalRepositories) EventSaver() shared.OutboxEventSaver {
	if r.events == nil {
		return discardEvents{}
	}
	return r.events.ForTx(r.tx)
}

type discardEvents struct{}

func (discardEvents) SaveEvents(context.Context, ...shared.DomainEvent) error { return nil }

// Ensure GormTransactionScope implements the checkout TransactionScope
var _ apporder.TransactionScope = (*GormTransactionScope)(nil)

// Ensure GormWalletTransactionScope implements the wallet TransactionScope
var _ appwallet.TransactionScope = (*GormWalletTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements both repository sets
var (
	_ apporder.TransactionalRepositories  = (*gormTransactionalRepositories)(nil)
	_ appwallet.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
)
