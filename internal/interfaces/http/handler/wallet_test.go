package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	appwallet "github.com/marketplace/backend/internal/application/wallet"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/domain/shared/valueobject"
	"github.com/marketplace/backend/internal/interfaces/http/dto"
	"github.com/marketplace/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func setupWalletRouter(p *middleware.Principal) (*gin.Engine, *MockWalletService) {
	svc := new(MockWalletService)
	h := NewWalletHandler(svc)
	r := newTestRouter(p)
	r.GET("/wallet", h.Get)
	r.GET("/wallet/transactions", h.Transactions)
	r.POST("/wallet/withdrawals", h.Withdraw)
	r.GET("/wallet/verify", h.Verify)
	return r, svc
}

func TestWalletHandler_Get(t *testing.T) {
	p := seller()
	r, svc := setupWalletRouter(p)
	svc.On("GetOrCreateWallet", mock.Anything, p.UserID).Return(&appwallet.WalletResponse{
		SellerID: p.UserID,
		Balance:  valueobject.MustMoney("150.25"),
	}, nil)

	w := doRequest(r, http.MethodGet, "/wallet", "")

	assert.Equal(t, http.StatusOK, w.Code)
	var resp appwallet.WalletResponse
	decodeData(t, w, &resp)
	assert.Equal(t, "150.25", resp.Balance.String())
}

func TestWalletHandler_Transactions(t *testing.T) {
	p := seller()

	t.Run("limit is forwarded", func(t *testing.T) {
		r, svc := setupWalletRouter(p)
		svc.On("GetTransactions", mock.Anything, p.UserID, 10).Return([]appwallet.TransactionResponse{}, nil)

		w := doRequest(r, http.MethodGet, "/wallet/transactions?limit=10", "")
		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("default limit", func(t *testing.T) {
		r, svc := setupWalletRouter(p)
		svc.On("GetTransactions", mock.Anything, p.UserID, 0).Return([]appwallet.TransactionResponse{}, nil)

		w := doRequest(r, http.MethodGet, "/wallet/transactions", "")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("bad limit", func(t *testing.T) {
		r, _ := setupWalletRouter(p)
		assert.Equal(t, http.StatusBadRequest, doRequest(r, http.MethodGet, "/wallet/transactions?limit=ten", "").Code)
		assert.Equal(t, http.StatusBadRequest, doRequest(r, http.MethodGet, "/wallet/transactions?limit=-1", "").Code)
	})
}

func TestWalletHandler_Withdraw(t *testing.T) {
	p := seller()
	amountIs := func(s string) any {
		return mock.MatchedBy(func(req appwallet.WithdrawalRequest) bool {
			return req.Amount.Equals(valueobject.MustMoney(s))
		})
	}

	t.Run("accepted", func(t *testing.T) {
		r, svc := setupWalletRouter(p)
		svc.On("ProcessWithdrawal", mock.Anything, p.UserID, amountIs("40.50")).Return(true, nil)
		svc.On("GetOrCreateWallet", mock.Anything, p.UserID).Return(&appwallet.WalletResponse{
			SellerID: p.UserID,
			Balance:  valueobject.MustMoney("59.50"),
		}, nil)

		w := doRequest(r, http.MethodPost, "/wallet/withdrawals", `{"amount":"40.50","description":"weekly payout"}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		var resp WithdrawalResponse
		decodeData(t, w, &resp)
		assert.True(t, resp.Withdrawn)
		assert.Equal(t, "59.50", resp.Wallet.Balance.String())
		svc.AssertExpectations(t)
	})

	t.Run("insufficient balance", func(t *testing.T) {
		r, svc := setupWalletRouter(p)
		svc.On("ProcessWithdrawal", mock.Anything, p.UserID, amountIs("1000")).Return(false, nil)

		w := doRequest(r, http.MethodPost, "/wallet/withdrawals", `{"amount":"1000"}`)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, dto.ErrCodeInsufficientBalance, decode(t, w).Error.Code)
		svc.AssertNotCalled(t, "GetOrCreateWallet", mock.Anything, mock.Anything)
	})

	for _, body := range []string{`{"amount":"10.001"}`, `{"amount":"-5"}`, `{"amount":"0"}`, `{}`, `{"amount":"ten"}`} {
		t.Run("rejects "+body, func(t *testing.T) {
			r, svc := setupWalletRouter(p)
			w := doRequest(r, http.MethodPost, "/wallet/withdrawals", body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			svc.AssertNotCalled(t, "ProcessWithdrawal", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestWalletHandler_Verify(t *testing.T) {
	p := seller()

	t.Run("consistent", func(t *testing.T) {
		r, svc := setupWalletRouter(p)
		svc.On("VerifyWallet", mock.Anything, p.UserID).Return(&appwallet.VerificationResponse{SellerID: p.UserID, Consistent: true}, nil)

		w := doRequest(r, http.MethodGet, "/wallet/verify", "")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("divergence does not leak balances", func(t *testing.T) {
		r, svc := setupWalletRouter(p)
		svc.On("VerifyWallet", mock.Anything, p.UserID).Return(nil, shared.ErrInvariantViolation.WithDetails(map[string]any{
			"cached_balance": "12.00",
			"ledger_balance": "10.00",
		}))

		w := doRequest(r, http.MethodGet, "/wallet/verify", "")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, dto.ErrCodeInvariantViolation, decode(t, w).Error.Code)
		assert.NotContains(t, w.Body.String(), "12.00")
	})
}
