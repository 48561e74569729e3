package order

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	walletapp "github.com/marketplace/backend/internal/application/wallet"
	"github.com/marketplace/backend/internal/domain/order"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// CancelOrder cancels a pending or confirmed order. The stock of every line
// goes back to its offer and the sellers' pending credits are reversed, in
// the same transaction that flips the status.
func (s *Service) CancelOrder(ctx context.Context, req CancelRequest) (*OrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "cancel_order")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrOrderID, req.OrderID.String())

	var result *order.Order
	var operationErr error
	telemetry.WithProfilingLabels(ctx, telemetry.CheckoutOperationLabels(telemetry.OperationCancelOrder), func(c context.Context) {
		operationErr = s.scope.Execute(c, func(repos TransactionalRepositories) error {
			o, err := s.cancelInTx(c, repos, req)
			result = o
			return err
		})
	})
	if operationErr != nil {
		telemetry.RecordError(span, operationErr)
		return nil, operationErr
	}

	s.metrics.RecordOrderCancelled(ctx)
	s.logger.Info("Order cancelled",
		zap.String("order_id", result.ID.String()),
		zap.String("order_number", result.OrderNumber),
		zap.String("reason", req.Reason))

	resp := ToOrderResponse(result)
	return &resp, nil
}

func (s *Service) cancelInTx(ctx context.Context, repos TransactionalRepositories, req CancelRequest) (*order.Order, error) {
	o, err := repos.OrderRepo().FindByIDForUpdate(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	if req.BuyerID != nil && o.BuyerID != *req.BuyerID {
		return nil, shared.ErrNotFound.WithMessage("Order not found")
	}
	if err := o.Cancel(req.Reason); err != nil {
		return nil, err
	}

	if err := s.restoreStock(ctx, repos, o); err != nil {
		return nil, err
	}

	ledger := walletapp.NewLedgerFromRepos(repos)
	for _, st := range sortedSettlements(o) {
		if err := ledger.ReverseEarnings(ctx, st.SellerID, earningsOf(o.ID, st)); err != nil {
			return nil, fmt.Errorf("failed to reverse earnings of seller %s: %w", st.SellerID, err)
		}
	}

	if err := repos.OrderRepo().Update(ctx, o); err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}
	if err := repos.EventSaver().SaveEvents(ctx, o.GetDomainEvents()...); err != nil {
		return nil, fmt.Errorf("failed to save order events: %w", err)
	}
	o.ClearDomainEvents()
	return o, nil
}

// restoreStock locks the order's offers in ascending id order and puts the
// ordered quantities back, including on offers deleted since the order was
// placed.
func (s *Service) restoreStock(ctx context.Context, repos TransactionalRepositories, o *order.Order) error {
	ids := make([]uuid.UUID, 0, len(o.Items))
	for _, it := range o.Items {
		ids = append(ids, it.OfferID)
	}
	offers, err := repos.OfferRepo().FindByIDsForUpdate(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to lock offers: %w", err)
	}
	byID := make(map[uuid.UUID]int, len(offers))
	for i, of := range offers {
		byID[of.ID] = i
	}

	for _, it := range o.Items {
		pos, ok := byID[it.OfferID]
		if !ok {
			s.logger.Error("Offer row missing, stock not restored",
				zap.String("order_id", o.ID.String()),
				zap.String("offer_id", it.OfferID.String()),
				zap.Int("quantity", it.Quantity))
			continue
		}
		offer := offers[pos]
		if err := offer.RestoreStock(it.Quantity); err != nil {
			return err
		}
		if err := repos.OfferRepo().UpdateStock(ctx, offer); err != nil {
			return fmt.Errorf("failed to restore stock: %w", err)
		}
	}
	return nil
}

// UpdateStatus moves an order and/or its payment status forward.
// Cancellation goes through CancelOrder so stock and earnings are unwound.
func (s *Service) UpdateStatus(ctx context.Context, req StatusUpdateRequest) (*OrderResponse, error) {
	if req.Status == nil && req.PaymentStatus == nil {
		return nil, shared.ErrInvalidInput.WithMessage("Nothing to update")
	}
	if req.Status != nil && *req.Status == order.StatusCancelled {
		return s.CancelOrder(ctx, CancelRequest{OrderID: req.OrderID})
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "order", "update_status")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrOrderID, req.OrderID.String())

	var result *order.Order
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		o, err := repos.OrderRepo().FindByIDForUpdate(ctx, req.OrderID)
		if err != nil {
			return err
		}
		if req.Status != nil {
			if err := s.applyStatus(o, *req.Status); err != nil {
				return err
			}
		}
		if req.PaymentStatus != nil {
			if err := applyPaymentStatus(o, *req.PaymentStatus); err != nil {
				return err
			}
		}
		if err := repos.OrderRepo().Update(ctx, o); err != nil {
			return fmt.Errorf("failed to update order: %w", err)
		}
		result = o
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttribute(span, telemetry.SpanAttrOrderStatus, string(result.Status))
	resp := ToOrderResponse(result)
	return &resp, nil
}

func (s *Service) applyStatus(o *order.Order, target order.Status) error {
	switch target {
	case order.StatusConfirmed:
		return o.Confirm()
	case order.StatusProcessing:
		return o.StartProcessing()
	case order.StatusShipped:
		return o.Ship()
	case order.StatusDelivered:
		return o.Deliver(s.now())
	}
	return invalidStatus(string(target))
}

func applyPaymentStatus(o *order.Order, target order.PaymentStatus) error {
	switch target {
	case order.PaymentPaid:
		return o.MarkPaid()
	case order.PaymentFailed:
		return o.MarkPaymentFailed()
	case order.PaymentRefunded:
		return o.MarkRefunded()
	}
	return invalidStatus(string(target))
}

func invalidStatus(v string) error {
	return shared.ErrInvalidInput.WithMessage(fmt.Sprintf("Unsupported status %q", v))
}
