package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appwallet "github.com/marketplace/backend/internal/application/wallet"
	"github.com/marketplace/backend/internal/domain/shared/valueobject"
	"github.com/marketplace/backend/internal/interfaces/http/dto"
)

// WalletService is the seller ledger surface the handler needs
type WalletService interface {
	GetOrCreateWallet(ctx context.Context, sellerID uuid.UUID) (*appwallet.WalletResponse, error)
	GetTransactions(ctx context.Context, sellerID uuid.UUID, limit int) ([]appwallet.TransactionResponse, error)
	ProcessWithdrawal(ctx context.Context, sellerID uuid.UUID, req appwallet.WithdrawalRequest) (bool, error)
	VerifyWallet(ctx context.Context, sellerID uuid.UUID) (*appwallet.VerificationResponse, error)
}

// WalletHandler exposes the authenticated seller's wallet
type WalletHandler struct {
	BaseHandler
	wallets WalletService
}

// NewWalletHandler creates a new WalletHandler
func NewWalletHandler(wallets WalletService) *WalletHandler {
	return &WalletHandler{wallets: wallets}
}

// WithdrawalRequest is the body of POST /wallet/withdrawals
type WithdrawalRequest struct {
	Amount      string `json:"amount" binding:"required,decimal2"`
	Description string `json:"description" binding:"omitempty,max=255"`
}

// WithdrawalResponse reports an accepted withdrawal with the wallet after it
type WithdrawalResponse struct {
	Withdrawn bool                     `json:"withdrawn"`
	Wallet    appwallet.WalletResponse `json:"wallet"`
}

// Get godoc
// @ID           getWallet
// @Summary      Get the seller's wallet
// @Description  Creates an empty wallet on first access.
// @Tags         wallet
// @Produce      json
// @Success      200 {object} dto.Response{data=appwallet.WalletResponse}
// @Security     BearerAuth
// @Router       /wallet [get]
func (h *WalletHandler) Get(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	w, err := h.wallets.GetOrCreateWallet(c.Request.Context(), p.UserID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, w)
}

// Transactions godoc
// @ID           listWalletTransactions
// @Summary      List ledger rows, newest first
// @Tags         wallet
// @Produce      json
// @Param        limit query int false "Maximum rows" minimum(1) maximum(200)
// @Success      200 {object} dto.Response{data=[]appwallet.TransactionResponse}
// @Failure      400 {object} dto.Response
// @Security     BearerAuth
// @Router       /wallet/transactions [get]
func (h *WalletHandler) Transactions(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	limit, ok := h.queryInt(c, "limit", 0)
	if !ok {
		return
	}
	if limit < 0 {
		h.BadRequest(c, "limit", "Must not be negative")
		return
	}
	rows, err := h.wallets.GetTransactions(c.Request.Context(), p.UserID, limit)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, rows)
}

// Withdraw godoc
// @ID           createWithdrawal
// @Summary      Withdraw from the available balance
// @Description  Pending earnings cannot be withdrawn. Amount is a decimal string with at most two fraction digits.
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Param        request body WithdrawalRequest true "Amount to withdraw"
// @Success      201 {object} dto.Response{data=WithdrawalResponse}
// @Failure      400 {object} dto.Response
// @Failure      422 {object} dto.Response "ERR_INSUFFICIENT_BALANCE"
// @Security     BearerAuth
// @Router       /wallet/withdrawals [post]
func (h *WalletHandler) Withdraw(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req WithdrawalRequest
	if !h.bindJSON(c, &req) {
		return
	}
	amount, err := valueobject.NewMoneyFromString(req.Amount)
	if err != nil {
		h.BadRequest(c, "amount", "Must be a positive amount with at most two decimals")
		return
	}

	ctx := c.Request.Context()
	withdrawn, err := h.wallets.ProcessWithdrawal(ctx, p.UserID, appwallet.WithdrawalRequest{
		Amount:      amount,
		Description: req.Description,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	if !withdrawn {
		h.ErrorWithCode(c, dto.ErrCodeInsufficientBalance)
		return
	}
	w, err := h.wallets.GetOrCreateWallet(ctx, p.UserID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, WithdrawalResponse{Withdrawn: true, Wallet: *w})
}

// Verify godoc
// @ID           verifyWallet
// @Summary      Check the wallet against its ledger
// @Description  A divergence is reported as ERR_INVARIANT_VIOLATION and never repaired automatically.
// @Tags         wallet
// @Produce      json
// @Success      200 {object} dto.Response{data=appwallet.VerificationResponse}
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Security     BearerAuth
// @Router       /wallet/verify [get]
func (h *WalletHandler) Verify(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	resp, err := h.wallets.VerifyWallet(c.Request.Context(), p.UserID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, resp)
}
