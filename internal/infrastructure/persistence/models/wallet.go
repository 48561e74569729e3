package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/shared/valueobject"
	"github.com/marketplace/backend/internal/domain/wallet"
	"github.com/shopspring/decimal"
)

// SellerWalletModel is the persistence model for the SellerWallet aggregate root.
type SellerWalletModel struct {
	AggregateModel
	SellerID         uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	Balance          decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	PendingBalance   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	WithdrawnBalance decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TotalEarned      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TotalCommission  decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
}

// TableName returns the table name for GORM
func (SellerWalletModel) TableName() string {
	return "seller_wallets"
}

// ToDomain converts the persistence model to a domain SellerWallet aggregate.
func (m *SellerWalletModel) ToDomain() *wallet.SellerWallet {
	w := &wallet.SellerWallet{
		SellerID:         m.SellerID,
		Balance:          valueobject.NewMoney(m.Balance),
		PendingBalance:   valueobject.NewMoney(m.PendingBalance),
		WithdrawnBalance: valueobject.NewMoney(m.WithdrawnBalance),
		TotalEarned:      valueobject.NewMoney(m.TotalEarned),
		TotalCommission:  valueobject.NewMoney(m.TotalCommission),
	}
	m.PopulateAggregateRoot(&w.BaseAggregateRoot)
	return w
}

// FromDomain populates the persistence model from a domain SellerWallet aggregate.
func (m *SellerWalletModel) FromDomain(w *wallet.SellerWallet) {
	m.FromDomainAggregateRoot(w.BaseAggregateRoot)
	m.SellerID = w.SellerID
	m.Balance = w.Balance.Amount()
	m.PendingBalance = w.PendingBalance.Amount()
	m.WithdrawnBalance = w.WithdrawnBalance.Amount()
	m.TotalEarned = w.TotalEarned.Amount()
	m.TotalCommission = w.TotalCommission.Amount()
}

// SellerWalletModelFromDomain creates a new persistence model from a domain SellerWallet.
func SellerWalletModelFromDomain(w *wallet.SellerWallet) *SellerWalletModel {
	m := &SellerWalletModel{}
	m.FromDomain(w)
	return m
}

// WalletTransactionModel is the persistence model for one append-only ledger row.
type WalletTransactionModel struct {
	ID            uuid.UUID              `gorm:"type:uuid;primary_key"`
	WalletID      uuid.UUID              `gorm:"type:uuid;not null;index:idx_wallet_tx_wallet_created,priority:1"`
	SellerID      uuid.UUID              `gorm:"type:uuid;not null;index"`
	OrderID       *uuid.UUID             `gorm:"type:uuid;index"`
	Type          wallet.TransactionType `gorm:"type:varchar(30);not null"`
	Direction     wallet.Direction       `gorm:"type:varchar(10);not null"`
	BalanceType   wallet.BalanceType     `gorm:"type:varchar(10);not null"`
	Amount        decimal.Decimal        `gorm:"type:decimal(18,2);not null"`
	BalanceBefore decimal.Decimal        `gorm:"type:decimal(18,2);not null"`
	BalanceAfter  decimal.Decimal        `gorm:"type:decimal(18,2);not null"`
	Description   string                 `gorm:"type:varchar(500)"`
	CreatedAt     time.Time              `gorm:"not null;index:idx_wallet_tx_wallet_created,priority:2"`
}

// TableName returns the table name for GORM
func (WalletTransactionModel) TableName() string {
	return "wallet_transactions"
}

// ToDomain converts the persistence model to a domain ledger row.
func (m *WalletTransactionModel) ToDomain() wallet.Transaction {
	return wallet.Transaction{
		ID:            m.ID,
		WalletID:      m.WalletID,
		SellerID:      m.SellerID,
		OrderID:       m.OrderID,
		Type:          m.Type,
		Direction:     m.Direction,
		BalanceType:   m.BalanceType,
		Amount:        valueobject.NewMoney(m.Amount),
		BalanceBefore: valueobject.NewMoney(m.BalanceBefore),
		BalanceAfter:  valueobject.NewMoney(m.BalanceAfter),
		Description:   m.Description,
		CreatedAt:     m.CreatedAt,
	}
}

// WalletTransactionModelFromDomain creates a persistence model from a domain ledger row.
func WalletTransactionModelFromDomain(t wallet.Transaction) WalletTransactionModel {
	return WalletTransactionModel{
		ID:            t.ID,
		WalletID:      t.WalletID,
		SellerID:      t.SellerID,
		OrderID:       t.OrderID,
		Type:          t.Type,
		Direction:     t.Direction,
		BalanceType:   t.BalanceType,
		Amount:        t.Amount.Amount(),
		BalanceBefore: t.BalanceBefore.Amount(),
		BalanceAfter:  t.BalanceAfter.Amount(),
		Description:   t.Description,
		CreatedAt:     t.CreatedAt,
	}
}
