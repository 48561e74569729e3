package handler

import (
	"context"

	"github.com/google/uuid"
	appcart "github.com/marketplace/backend/internal/application/cart"
	apporder "github.com/marketplace/backend/internal/application/order"
	appshipping "github.com/marketplace/backend/internal/application/shipping"
	appwallet "github.com/marketplace/backend/internal/application/wallet"
	"github.com/marketplace/backend/internal/domain/settings"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) AddItem(ctx context.Context, req appcart.AddItemRequest) (*appcart.ItemResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appcart.ItemResponse), args.Error(1)
}

func (m *MockCartService) UpdateQuantity(ctx context.Context, req appcart.UpdateQuantityRequest) (*appcart.UpdateResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appcart.UpdateResponse), args.Error(1)
}

func (m *MockCartService) Validate(ctx context.Context, userID uuid.UUID) (*appcart.ValidationResponse, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appcart.ValidationResponse), args.Error(1)
}

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) CreateFromCart(ctx context.Context, req apporder.CheckoutRequest) (*apporder.OrderResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apporder.OrderResponse), args.Error(1)
}

func (m *MockOrderService) GetOrder(ctx context.Context, id uuid.UUID, viewer *uuid.UUID) (*apporder.OrderResponse, error) {
	args := m.Called(ctx, id, viewer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apporder.OrderResponse), args.Error(1)
}

func (m *MockOrderService) ListOrders(ctx context.Context, req apporder.ListRequest) (*apporder.OrderListResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apporder.OrderListResponse), args.Error(1)
}

func (m *MockOrderService) CancelOrder(ctx context.Context, req apporder.CancelRequest) (*apporder.OrderResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apporder.OrderResponse), args.Error(1)
}

func (m *MockOrderService) UpdateStatus(ctx context.Context, req apporder.StatusUpdateRequest) (*apporder.OrderResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apporder.OrderResponse), args.Error(1)
}

type MockWalletService struct {
	mock.Mock
}

func (m *MockWalletService) GetOrCreateWallet(ctx context.Context, sellerID uuid.UUID) (*appwallet.WalletResponse, error) {
	args := m.Called(ctx, sellerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appwallet.WalletResponse), args.Error(1)
}

func (m *MockWalletService) GetTransactions(ctx context.Context, sellerID uuid.UUID, limit int) ([]appwallet.TransactionResponse, error) {
	args := m.Called(ctx, sellerID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]appwallet.TransactionResponse), args.Error(1)
}

func (m *MockWalletService) ProcessWithdrawal(ctx context.Context, sellerID uuid.UUID, req appwallet.WithdrawalRequest) (bool, error) {
	args := m.Called(ctx, sellerID, req)
	return args.Bool(0), args.Error(1)
}

func (m *MockWalletService) VerifyWallet(ctx context.Context, sellerID uuid.UUID) (*appwallet.VerificationResponse, error) {
	args := m.Called(ctx, sellerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appwallet.VerificationResponse), args.Error(1)
}

type MockShippingService struct {
	mock.Mock
}

func (m *MockShippingService) Quote(ctx context.Context, req appshipping.QuoteRequest) (*appshipping.QuoteResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appshipping.QuoteResponse), args.Error(1)
}

func (m *MockShippingService) Options(ctx context.Context, desi decimal.Decimal) ([]appshipping.QuoteResponse, error) {
	args := m.Called(ctx, desi)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]appshipping.QuoteResponse), args.Error(1)
}

func (m *MockShippingService) FreeShipping(ctx context.Context, req appshipping.FreeShippingRequest) (*appshipping.FreeShippingResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appshipping.FreeShippingResponse), args.Error(1)
}

type MockSettingsService struct {
	mock.Mock
}

func (m *MockSettingsService) Current(ctx context.Context) (settings.Marketplace, error) {
	args := m.Called(ctx)
	return args.Get(0).(settings.Marketplace), args.Error(1)
}

func (m *MockSettingsService) Update(ctx context.Context, s settings.Marketplace) (settings.Marketplace, error) {
	args := m.Called(ctx, s)
	return args.Get(0).(settings.Marketplace), args.Error(1)
}
