package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/domain/shared/valueobject"
	"github.com/marketplace/backend/internal/domain/wallet"
	"github.com/marketplace/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormWalletRepository implements wallet.Repository using GORM
type GormWalletRepository struct {
	db *gorm.DB
}

// NewGormWalletRepository creates a new GormWalletRepository
func NewGormWalletRepository(db *gorm.DB) *GormWalletRepository {
	return &GormWalletRepository{db: db}
}

func (r *GormWalletRepository) find(query *gorm.DB, sellerID uuid.UUID) (*wallet.SellerWallet, error) {
	var model models.SellerWalletModel
	if err := query.Where("seller_id = ?", sellerID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySeller finds the wallet of a seller
func (r *GormWalletRepository) FindBySeller(ctx context.Context, sellerID uuid.UUID) (*wallet.SellerWallet, error) {
	return r.find(r.db.WithContext(ctx), sellerID)
}

// FindBySellerForUpdate finds the wallet of a seller and locks its row
func (r *GormWalletRepository) FindBySellerForUpdate(ctx context.Context, sellerID uuid.UUID) (*wallet.SellerWallet, error) {
	return r.find(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), sellerID)
}

// Create inserts a wallet with ON CONFLICT DO NOTHING so a lost creation
// race does not abort the surrounding transaction.
func (r *GormWalletRepository) Create(ctx context.Context, w *wallet.SellerWallet) error {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "seller_id"}},
			DoNothing: true,
		}).
		Create(models.SellerWalletModelFromDomain(w))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrAlreadyExists.WithMessage("Seller already has a wallet")
	}
	return nil
}

// Update writes the cached balances with an optimistic version check
func (r *GormWalletRepository) Update(ctx context.Context, w *wallet.SellerWallet) error {
	result := r.db.WithContext(ctx).
		Model(&models.SellerWalletModel{}).
		Where("id = ? AND version = ?", w.ID, w.Version).
		Updates(map[string]any{
			"balance":           w.Balance.Amount(),
			"pending_balance":   w.PendingBalance.Amount(),
			"withdrawn_balance": w.WithdrawnBalance.Amount(),
			"total_earned":      w.TotalEarned.Amount(),
			"total_commission":  w.TotalCommission.Amount(),
			"version":           w.Version + 1,
			"updated_at":        w.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict.WithMessage("Wallet was modified by another transaction")
	}
	w.Version++
	return nil
}

var _ wallet.Repository = (*GormWalletRepository)(nil)

// GormWalletTransactionRepository implements wallet.TransactionRepository using GORM.
// Rows are only ever inserted.
type GormWalletTransactionRepository struct {
	db *gorm.DB
}

// NewGormWalletTransactionRepository creates a new GormWalletTransactionRepository
func NewGormWalletTransactionRepository(db *gorm.DB) *GormWalletTransactionRepository {
	return &GormWalletTransactionRepository{db: db}
}

// Append inserts ledger rows
func (r *GormWalletTransactionRepository) Append(ctx context.Context, rows ...wallet.Transaction) error {
	if len(rows) == 0 {
		return nil
	}
	batch := make([]models.WalletTransactionModel, len(rows))
	for i, row := range rows {
		batch[i] = models.WalletTransactionModelFromDomain(row)
	}
	return r.db.WithContext(ctx).Create(&batch).Error
}

// ListBySeller returns the newest ledger rows of a seller
func (r *GormWalletTransactionRepository) ListBySeller(ctx context.Context, sellerID uuid.UUID, limit int) ([]wallet.Transaction, error) {
	var rows []models.WalletTransactionModel
	if err := r.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]wallet.Transaction, len(rows))
	for i := range rows {
		result[i] = rows[i].ToDomain()
	}
	return result, nil
}

type ledgerTotalsRow struct {
	Pending   decimal.Decimal
	Available decimal.Decimal
}

// Totals sums the signed ledger rows of a wallet per bucket
func (r *GormWalletTransactionRepository) Totals(ctx context.Context, walletID uuid.UUID) (wallet.LedgerTotals, error) {
	var row ledgerTotalsRow
	err := r.db.WithContext(ctx).
		Model(&models.WalletTransactionModel{}).
		Select(`
			COALESCE(SUM(CASE WHEN balance_type = 'pending' AND direction = 'credit' THEN amount
			                  WHEN balance_type = 'pending' AND direction = 'debit' THEN -amount
			                  ELSE 0 END), 0) AS pending,
			COALESCE(SUM(CASE WHEN balance_type = 'available' AND direction = 'credit' THEN amount
			                  WHEN balance_type = 'available' AND direction = 'debit' THEN -amount
			                  ELSE 0 END), 0) AS available`).
		Where("wallet_id = ?", walletID).
		Scan(&row).Error
	if err != nil {
		return wallet.LedgerTotals{}, err
	}
	return wallet.LedgerTotals{
		Pending:   valueobject.NewMoney(row.Pending),
		Available: valueobject.NewMoney(row.Available),
	}, nil
}

var _ wallet.TransactionRepository = (*GormWalletTransactionRepository)(nil)
