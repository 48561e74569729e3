package wallet

import (
	"context"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/wallet"
	"github.com/stretchr/testify/mock"
)

// MockWalletRepository is a mock implementation of wallet.Repository
type MockWalletRepository struct {
	mock.Mock
}

func (m *MockWalletRepository) FindBySeller(ctx context.Context, sellerID uuid.UUID) (*wallet.SellerWallet, error) {
	args := m.Called(ctx, sellerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.SellerWallet), args.Error(1)
}

func (m *MockWalletRepository) FindBySellerForUpdate(ctx context.Context, sellerID uuid.UUID) (*wallet.SellerWallet, error) {
	args := m.Called(ctx, sellerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.SellerWallet), args.Error(1)
}

func (m *MockWalletRepository) Create(ctx context.Context, w *wallet.SellerWallet) error {
	args := m.Called(ctx, w)
	return args.Error(0)
}

func (m *MockWalletRepository) Update(ctx context.Context, w *wallet.SellerWallet) error {
	args := m.Called(ctx, w)
	return args.Error(0)
}

// MockTransactionRepository is a mock implementation of wallet.TransactionRepository
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Append(ctx context.Context, rows ...wallet.Transaction) error {
	args := m.Called(ctx, rows)
	return args.Error(0)
}

func (m *MockTransactionRepository) ListBySeller(ctx context.Context, sellerID uuid.UUID, limit int) ([]wallet.Transaction, error) {
	args := m.Called(ctx, sellerID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]wallet.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) Totals(ctx context.Context, walletID uuid.UUID) (wallet.LedgerTotals, error) {
	args := m.Called(ctx, walletID)
	return args.Get(0).(wallet.LedgerTotals), args.Error(1)
}
