package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/domain/shared/valueobject"
	"github.com/marketplace/backend/internal/domain/wallet"
	"github.com/marketplace/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

const (
	defaultTransactionLimit = 50
	maxTransactionLimit     = 200
)

// LedgerService is the seller settlement ledger. Each call runs in its own
// transaction; the order flow uses Ledger directly inside its checkout
// transaction instead.
type LedgerService struct {
	scope   TransactionScope
	wallets wallet.Repository
	entries wallet.TransactionRepository
	logger  *zap.Logger
	metrics *telemetry.BusinessMetrics
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(
	scope TransactionScope,
	wallets wallet.Repository,
	entries wallet.TransactionRepository,
	logger *zap.Logger,
) *LedgerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerService{
		scope:   scope,
		wallets: wallets,
		entries: entries,
		logger:  logger,
	}
}

// SetBusinessMetrics sets the business metrics recorder
func (s *LedgerService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.metrics = bm
}

// GetOrCreateWallet returns the seller's wallet, creating an empty one on first access
func (s *LedgerService) GetOrCreateWallet(ctx context.Context, sellerID uuid.UUID) (*WalletResponse, error) {
	w, err := s.wallets.FindBySeller(ctx, sellerID)
	if err == nil {
		resp := ToWalletResponse(w)
		return &resp, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		w, err = NewLedgerFromRepos(repos).LockOrCreate(ctx, sellerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	resp := ToWalletResponse(w)
	return &resp, nil
}

// CreditPendingEarnings books an order's earnings into the seller's pending balance
func (s *LedgerService) CreditPendingEarnings(ctx context.Context, sellerID uuid.UUID, e wallet.Earnings) (*WalletResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "wallet", "credit_pending_earnings")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrSellerID, sellerID.String(),
		telemetry.SpanAttrOrderID, e.OrderID.String(),
		telemetry.SpanAttrAmount, e.Sale.String(),
	)

	var result *WalletResponse
	var operationErr error
	telemetry.WithProfilingLabels(ctx, telemetry.WalletOperationLabels(telemetry.OperationCreditEarnings), func(c context.Context) {
		operationErr = s.scope.Execute(c, func(repos TransactionalRepositories) error {
			w, err := NewLedgerFromRepos(repos).CreditPendingEarnings(c, sellerID, e)
			if err != nil {
				return err
			}
			resp := ToWalletResponse(w)
			result = &resp
			return nil
		})
	})
	if operationErr != nil {
		telemetry.RecordError(span, operationErr)
		return nil, operationErr
	}

	telemetry.AddEvent(span, "earnings_credited", "net", e.Net().String())
	return result, nil
}

// ReleasePendingToAvailable moves amount from pending to the withdrawable
// balance. It returns false when the pending balance does not cover amount.
func (s *LedgerService) ReleasePendingToAvailable(ctx context.Context, sellerID uuid.UUID, amount valueobject.Money, orderID *uuid.UUID) (bool, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "wallet", "release_pending")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrSellerID, sellerID.String(),
		telemetry.SpanAttrAmount, amount.String(),
	)

	var released bool
	var operationErr error
	telemetry.WithProfilingLabels(ctx, telemetry.WalletOperationLabels(telemetry.OperationReleaseFunds), func(c context.Context) {
		operationErr = s.scope.Execute(c, func(repos TransactionalRepositories) error {
			ok, err := NewLedgerFromRepos(repos).ReleasePending(c, sellerID, amount, orderID)
			released = ok
			return err
		})
	})
	if operationErr != nil {
		telemetry.RecordError(span, operationErr)
		return false, operationErr
	}

	telemetry.SetAttribute(span, "released", released)
	return released, nil
}

// ProcessWithdrawal pays out part of the available balance. It returns
// false, and changes nothing, when the balance does not cover the amount.
func (s *LedgerService) ProcessWithdrawal(ctx context.Context, sellerID uuid.UUID, req WithdrawalRequest) (bool, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "wallet", "process_withdrawal")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrSellerID, sellerID.String(),
		telemetry.SpanAttrAmount, req.Amount.String(),
	)

	if !req.Amount.IsPositive() {
		err := shared.NewDomainError("INVALID_AMOUNT", "Withdrawal amount must be positive")
		telemetry.RecordError(span, err)
		return false, err
	}

	var withdrawn bool
	var operationErr error
	telemetry.WithProfilingLabels(ctx, telemetry.WalletOperationLabels(telemetry.OperationWithdraw), func(c context.Context) {
		operationErr = s.scope.Execute(c, func(repos TransactionalRepositories) error {
			ok, err := NewLedgerFromRepos(repos).Withdraw(c, sellerID, req.Amount, req.Description)
			withdrawn = ok
			return err
		})
	})
	if operationErr != nil {
		telemetry.RecordError(span, operationErr)
		return false, operationErr
	}

	if withdrawn {
		s.metrics.RecordWithdrawal(ctx, telemetry.WithdrawalSucceeded)
	} else {
		s.metrics.RecordWithdrawal(ctx, telemetry.WithdrawalInsufficientFunds)
		s.logger.Info("Withdrawal rejected for insufficient balance",
			zap.String("seller_id", sellerID.String()),
			zap.String("amount", req.Amount.String()))
	}
	return withdrawn, nil
}

// GetTransactions returns the newest ledger rows of a seller
func (s *LedgerService) GetTransactions(ctx context.Context, sellerID uuid.UUID, limit int) ([]TransactionResponse, error) {
	if limit <= 0 {
		limit = defaultTransactionLimit
	}
	if limit > maxTransactionLimit {
		limit = maxTransactionLimit
	}
	rows, err := s.entries.ListBySeller(ctx, sellerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list wallet transactions: %w", err)
	}
	return ToTransactionResponses(rows), nil
}

// VerifyWallet compares the cached balances with the ledger totals.
// A divergence is logged, counted and returned; it is never repaired here.
func (s *LedgerService) VerifyWallet(ctx context.Context, sellerID uuid.UUID) (*VerificationResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "wallet", "verify_ledger")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrSellerID, sellerID.String())

	w, err := s.wallets.FindBySeller(ctx, sellerID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	totals, err := s.entries.Totals(ctx, w.ID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to sum ledger: %w", err)
	}

	if err := wallet.VerifyLedger(w, totals); err != nil {
		var de *shared.DomainError
		fields := []zap.Field{zap.String("seller_id", sellerID.String())}
		if errors.As(err, &de) {
			fields = append(fields, zap.Any("details", de.Details))
		}
		s.logger.Error("Wallet diverges from its ledger", fields...)
		s.metrics.RecordLedgerDivergence(ctx)
		telemetry.RecordError(span, err)
		return nil, err
	}

	return &VerificationResponse{
		SellerID:        w.SellerID,
		Balance:         w.Balance,
		PendingBalance:  w.PendingBalance,
		LedgerAvailable: totals.Available,
		LedgerPending:   totals.Pending,
		Consistent:      true,
	}, nil
}
