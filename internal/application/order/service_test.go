package order

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/cart"
	"github.com/marketplace/backend/internal/domain/catalog"
	"github.com/marketplace/backend/internal/domain/order"
	"github.com/marketplace/backend/internal/domain/settings"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/domain/shared/valueobject"
	"github.com/marketplace/backend/internal/domain/shipping"
	"github.com/marketplace/backend/internal/domain/wallet"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func money(s string) valueobject.Money { return valueobject.MustMoney(s) }

type fixture struct {
	offers     *memOffers
	categories *memCategories
	carts      *memCarts
	orders     *memOrders
	wallets    *memWallets
	ledger     *memLedger
	events     *memEvents
	cfg        settings.Marketplace
	quoter     staticQuoter
	scope      *NoOpTransactionScope
	svc        *Service
	buyerID    uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	aras, err := shipping.NewRate("aras", d("0"), d("100"), money("10.00"))
	require.NoError(t, err)

	f := &fixture{
		offers:     newMemOffers(),
		categories: &memCategories{byID: map[uuid.UUID]*catalog.Category{}},
		carts:      &memCarts{byID: map[uuid.UUID]*cart.Cart{}},
		orders:     &memOrders{byID: map[uuid.UUID]*order.Order{}},
		wallets:    &memWallets{bySeller: map[uuid.UUID]*wallet.SellerWallet{}},
		ledger:     &memLedger{},
		events:     &memEvents{},
		cfg: settings.Marketplace{
			MarketplaceFeeRate:      d("0.89"),
			WithholdingTaxRate:      d("1.00"),
			OrderNumberPrefix:       "MKT",
			DefaultShippingProvider: "aras",
			EarningsReleaseDays:     7,
		},
		quoter:  staticQuoter{rates: []shipping.Rate{*aras}},
		buyerID: uuid.New(),
	}
	f.scope = NewNoOpTransactionScope(Repositories{
		Offers:             f.offers,
		Categories:         f.categories,
		Carts:              f.carts,
		Orders:             f.orders,
		Wallets:            f.wallets,
		WalletTransactions: f.ledger,
		Events:             f.events,
	})
	f.rebuild()
	return f
}

// rebuild recreates the service after the fixture's settings or rates changed
func (f *fixture) rebuild() {
	f.svc = NewService(f.scope, f.orders, staticSettings{cfg: f.cfg}, f.quoter,
		NewNumberGenerator(&counterSequence{}), zap.NewNop())
}

func (f *fixture) category(t *testing.T, commission string) *catalog.Category {
	t.Helper()
	c, err := catalog.NewCategory("Electronics", d(commission), d("20"), d("1"))
	require.NoError(t, err)
	f.categories.byID[c.ID] = c
	return c
}

func (f *fixture) offer(t *testing.T, sellerID uuid.UUID, cat *catalog.Category, price string, stock int) *catalog.Offer {
	t.Helper()
	o, err := catalog.NewOffer(sellerID, uuid.New(), cat.ID, "Offer", money(price), stock, d("1"))
	require.NoError(t, err)
	f.offers.byID[o.ID] = o
	return o
}

func (f *fixture) cart(t *testing.T, lines map[*catalog.Offer]int) *cart.Cart {
	t.Helper()
	c, err := cart.NewCart(f.buyerID)
	require.NoError(t, err)
	for offer, qty := range lines {
		_, err := c.AddItem(offer, qty, time.Now())
		require.NoError(t, err)
	}
	f.carts.byID[c.ID] = c
	return c
}

func (f *fixture) checkout(t *testing.T) *OrderResponse {
	t.Helper()
	resp, err := f.svc.CreateFromCart(context.Background(), CheckoutRequest{
		BuyerID:         f.buyerID,
		ShippingAddress: "Moda Cd. 12, Istanbul",
	})
	require.NoError(t, err)
	return resp
}

func TestCreateFromCart_EndToEnd(t *testing.T) {
	f := newFixture(t)
	sellerID := uuid.New()
	offer := f.offer(t, sellerID, f.category(t, "10"), "100.00", 50)
	c := f.cart(t, map[*catalog.Offer]int{offer: 5})

	resp := f.checkout(t)

	require.Len(t, resp.Items, 1)
	item := resp.Items[0]
	assert.Equal(t, "500.00", item.TotalPrice.String())
	assert.Equal(t, "50.00", item.CommissionAmount.String())
	assert.Equal(t, "4.45", item.MarketplaceFee.String())
	assert.Equal(t, "5.00", item.WithholdingTax.String())
	assert.Equal(t, "0.00", item.ShippingCostShare.String())
	assert.Equal(t, "440.55", item.NetSellerAmount.String())
	assert.True(t, item.CommissionRate.Equal(d("10")))

	assert.Equal(t, "500.00", resp.Subtotal.String())
	assert.Equal(t, "10.00", resp.ShippingCost.String())
	assert.Equal(t, "510.00", resp.TotalAmount.String())
	assert.Equal(t, "50.00", resp.TotalCommission.String())
	assert.Equal(t, "aras", resp.ShippingProvider)
	assert.Equal(t, string(order.StatusPending), resp.Status)
	assert.True(t, order.ValidOrderNumber(resp.OrderNumber))
	assert.Equal(t, "MKT", resp.OrderNumber[:3])

	assert.Equal(t, 45, offer.Stock)
	assert.Equal(t, cart.StatusConverted, c.Status)
	assert.Equal(t, []string{order.EventTypePlaced}, f.events.types())

	w := f.wallets.bySeller[sellerID]
	require.NotNil(t, w)
	assert.Equal(t, "440.55", w.PendingBalance.String())
	assert.True(t, w.Balance.IsZero())
	assert.Equal(t, "500.00", w.TotalEarned.String())
	assert.Len(t, f.ledger.rows, 4, "sale, commission, fee and tax; the buyer pays the carrier")
	assert.NoError(t, wallet.VerifyLedger(w, wallet.SumLedger(f.ledger.rows)))
}

func TestCreateFromCart_MultipleSellers(t *testing.T) {
	f := newFixture(t)
	f.quoter.rates[0].Price = money("30.00")
	f.quoter.rules = []shipping.FreeShippingRule{{MinOrderAmount: money("300.00"), Active: true}}
	f.rebuild()

	sellerA, sellerB := uuid.New(), uuid.New()
	cat := f.category(t, "10")
	offerA := f.offer(t, sellerA, cat, "100.00", 10)
	offerB := f.offer(t, sellerB, cat, "50.00", 10)
	f.cart(t, map[*catalog.Offer]int{offerA: 2, offerB: 2})

	resp := f.checkout(t)

	require.Len(t, resp.Items, 2)
	shares := valueobject.Zero()
	for _, it := range resp.Items {
		shares = shares.Add(it.ShippingCostShare)
		w := f.wallets.bySeller[it.SellerID]
		require.NotNil(t, w)
		assert.Equal(t, it.NetSellerAmount.String(), w.PendingBalance.String())
		assert.NoError(t, wallet.VerifyLedger(w, sumFor(f.ledger.rows, w.ID)))
	}
	assert.Equal(t, "30.00", shares.String(), "shipping shares add up to the quote")
	assert.Equal(t, "300.00", resp.TotalAmount.String())
}

func sumFor(rows []wallet.Transaction, walletID uuid.UUID) wallet.LedgerTotals {
	var mine []wallet.Transaction
	for _, r := range rows {
		if r.WalletID == walletID {
			mine = append(mine, r)
		}
	}
	return wallet.SumLedger(mine)
}

func TestCreateFromCart_FreeShipping(t *testing.T) {
	tests := []struct {
		name         string
		qty          int
		shippingCost string
		total        string
		sellerShare  string
	}{
		{"below threshold", 4, "10.00", "410.00", "0.00"},
		{"at threshold", 5, "0.00", "500.00", "10.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.quoter.rules = []shipping.FreeShippingRule{{MinOrderAmount: money("500.00"), Active: true}}
			f.rebuild()
			offer := f.offer(t, uuid.New(), f.category(t, "10"), "100.00", 50)
			f.cart(t, map[*catalog.Offer]int{offer: tt.qty})

			resp := f.checkout(t)

			assert.Equal(t, tt.shippingCost, resp.ShippingCost.String())
			assert.Equal(t, tt.total, resp.TotalAmount.String())
			assert.Equal(t, tt.sellerShare, resp.Items[0].ShippingCostShare.String())
		})
	}
}

func TestCreateFromCart_CheapItemExpensiveCarrier(t *testing.T) {
	tests := []struct {
		name    string
		rules   []shipping.FreeShippingRule
		total   string
		pending string
	}{
		{"buyer pays the carrier", nil, "15.00", "4.41"},
		{"free shipping", []shipping.FreeShippingRule{{MinOrderAmount: money("1.00"), Active: true}}, "5.00", "0.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.quoter.rules = tt.rules
			f.rebuild()
			sellerID := uuid.New()
			offer := f.offer(t, sellerID, f.category(t, "10"), "5.00", 3)
			f.cart(t, map[*catalog.Offer]int{offer: 1})

			resp := f.checkout(t)

			assert.Equal(t, tt.total, resp.TotalAmount.String())
			w := f.wallets.bySeller[sellerID]
			require.NotNil(t, w)
			assert.Equal(t, tt.pending, w.PendingBalance.String())
			assert.NoError(t, wallet.VerifyLedger(w, wallet.SumLedger(f.ledger.rows)))
			assert.Equal(t, 2, offer.Stock)
		})
	}
}

func TestCreateFromCart_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("no active cart", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.CreateFromCart(ctx, CheckoutRequest{BuyerID: f.buyerID})
		assert.ErrorIs(t, err, shared.ErrEmptyCart)
	})

	t.Run("empty cart", func(t *testing.T) {
		f := newFixture(t)
		f.cart(t, nil)
		_, err := f.svc.CreateFromCart(ctx, CheckoutRequest{BuyerID: f.buyerID})
		assert.ErrorIs(t, err, shared.ErrEmptyCart)
	})

	t.Run("price changed since the item was added", func(t *testing.T) {
		f := newFixture(t)
		offer := f.offer(t, uuid.New(), f.category(t, "10"), "100.00", 50)
		c := f.cart(t, map[*catalog.Offer]int{offer: 1})
		offer.Price = money("120.00")

		_, err := f.svc.CreateFromCart(ctx, CheckoutRequest{BuyerID: f.buyerID})

		assert.ErrorIs(t, err, shared.ErrValidationFailed)
		assert.Equal(t, 50, offer.Stock)
		assert.True(t, c.IsActive())
		assert.Empty(t, f.orders.byID)
	})

	t.Run("offer deactivated", func(t *testing.T) {
		f := newFixture(t)
		offer := f.offer(t, uuid.New(), f.category(t, "10"), "100.00", 50)
		f.cart(t, map[*catalog.Offer]int{offer: 1})
		require.NoError(t, offer.Deactivate())

		_, err := f.svc.CreateFromCart(ctx, CheckoutRequest{BuyerID: f.buyerID})
		assert.ErrorIs(t, err, shared.ErrValidationFailed)
	})

	t.Run("stock cut before checkout", func(t *testing.T) {
		f := newFixture(t)
		offer := f.offer(t, uuid.New(), f.category(t, "10"), "100.00", 10)
		f.cart(t, map[*catalog.Offer]int{offer: 8})
		offer.Stock = 3

		_, err := f.svc.CreateFromCart(ctx, CheckoutRequest{BuyerID: f.buyerID})

		require.ErrorIs(t, err, shared.ErrValidationFailed)
		assert.NotErrorIs(t, err, shared.ErrStockRaceLost)
		assert.False(t, shared.IsRetryable(err))

		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		issues, ok := de.Details["issues"].([]cart.Issue)
		require.True(t, ok)
		require.Len(t, issues, 1)
		assert.Equal(t, cart.IssueStock, issues[0].Type)
		assert.Equal(t, 3, issues[0].AvailableStock)
		assert.Empty(t, f.offers.locked, "a stale cart never takes row locks")
		assert.Equal(t, 3, offer.Stock)
	})

	t.Run("stock taken by another checkout", func(t *testing.T) {
		f := newFixture(t)
		offer := f.offer(t, uuid.New(), f.category(t, "10"), "100.00", 5)
		f.cart(t, map[*catalog.Offer]int{offer: 3})
		f.offers.beforeLock = func() { offer.Stock = 2 }

		_, err := f.svc.CreateFromCart(ctx, CheckoutRequest{BuyerID: f.buyerID})

		assert.ErrorIs(t, err, shared.ErrStockRaceLost)
		assert.True(t, shared.IsRetryable(err))
		assert.Equal(t, 2, offer.Stock)
		assert.Empty(t, f.wallets.bySeller)
	})

	t.Run("no shipping rate covers the parcel", func(t *testing.T) {
		f := newFixture(t)
		f.quoter.rates = nil
		f.rebuild()
		offer := f.offer(t, uuid.New(), f.category(t, "10"), "100.00", 5)
		f.cart(t, map[*catalog.Offer]int{offer: 1})

		_, err := f.svc.CreateFromCart(ctx, CheckoutRequest{BuyerID: f.buyerID})

		assert.ErrorIs(t, err, shipping.ErrNoRate)
		assert.Equal(t, 5, offer.Stock)
	})
}

func TestCreateFromCart_Idempotency(t *testing.T) {
	ctx := context.Background()

	t.Run("first request stores the order id", func(t *testing.T) {
		f := newFixture(t)
		store := new(MockIdempotencyStore)
		f.svc.SetIdempotencyStore(store, shared.DefaultIdempotencyConfig())
		offer := f.offer(t, uuid.New(), f.category(t, "10"), "100.00", 5)
		f.cart(t, map[*catalog.Offer]int{offer: 1})

		store.On("Reserve", mock.Anything, mock.Anything, mock.Anything).Return(true, "", nil)
		store.On("Complete", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

		resp, err := f.svc.CreateFromCart(ctx, CheckoutRequest{BuyerID: f.buyerID, IdempotencyKey: "k-1"})

		require.NoError(t, err)
		store.AssertCalled(t, "Complete", mock.Anything, "checkout:"+f.buyerID.String()+":k-1", resp.ID.String(), mock.Anything)
	})

	t.Run("replay returns the stored order", func(t *testing.T) {
		f := newFixture(t)
		offer := f.offer(t, uuid.New(), f.category(t, "10"), "100.00", 5)
		f.cart(t, map[*catalog.Offer]int{offer: 1})
		first := f.checkout(t)

		store := new(MockIdempotencyStore)
		f.svc.SetIdempotencyStore(store, shared.DefaultIdempotencyConfig())
		store.On("Reserve", mock.Anything, mock.Anything, mock.Anything).Return(false, first.ID.String(), nil)

		resp, err := f.svc.CreateFromCart(ctx, CheckoutRequest{BuyerID: f.buyerID, IdempotencyKey: "k-1"})

		require.NoError(t, err)
		assert.Equal(t, first.ID, resp.ID)
		assert.Len(t, f.orders.byID, 1)
		assert.Equal(t, 4, offer.Stock)
	})

	t.Run("request still in flight", func(t *testing.T) {
		f := newFixture(t)
		store := new(MockIdempotencyStore)
		f.svc.SetIdempotencyStore(store, shared.DefaultIdempotencyConfig())
		store.On("Reserve", mock.Anything, mock.Anything, mock.Anything).Return(false, "", nil)

		_, err := f.svc.CreateFromCart(ctx, CheckoutRequest{BuyerID: f.buyerID, IdempotencyKey: "k-1"})

		assert.ErrorIs(t, err, shared.ErrRequestInProgress)
	})

	t.Run("failed checkout releases the key", func(t *testing.T) {
		f := newFixture(t)
		store := new(MockIdempotencyStore)
		f.svc.SetIdempotencyStore(store, shared.DefaultIdempotencyConfig())
		store.On("Reserve", mock.Anything, mock.Anything, mock.Anything).Return(true, "", nil)
		store.On("Release", mock.Anything, mock.Anything).Return(nil)

		_, err := f.svc.CreateFromCart(ctx, CheckoutRequest{BuyerID: f.buyerID, IdempotencyKey: "k-1"})

		assert.ErrorIs(t, err, shared.ErrEmptyCart)
		store.AssertCalled(t, "Release", mock.Anything, mock.Anything)
		store.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestCancelOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("restores stock and reverses pending earnings", func(t *testing.T) {
		f := newFixture(t)
		sellerID := uuid.New()
		offer := f.offer(t, sellerID, f.category(t, "10"), "100.00", 5)
		f.cart(t, map[*catalog.Offer]int{offer: 5})
		placed := f.checkout(t)
		require.Equal(t, catalog.OfferStatusSoldOut, offer.Status)

		resp, err := f.svc.CancelOrder(ctx, CancelRequest{OrderID: placed.ID, BuyerID: &f.buyerID, Reason: "changed my mind"})

		require.NoError(t, err)
		assert.Equal(t, string(order.StatusCancelled), resp.Status)
		assert.Equal(t, "changed my mind", resp.CancelReason)
		assert.Equal(t, 5, offer.Stock)
		assert.Equal(t, catalog.OfferStatusActive, offer.Status)

		w := f.wallets.bySeller[sellerID]
		assert.True(t, w.PendingBalance.IsZero())
		assert.True(t, w.TotalEarned.IsZero())
		assert.NoError(t, wallet.VerifyLedger(w, wallet.SumLedger(f.ledger.rows)))
		last := f.ledger.rows[len(f.ledger.rows)-1]
		assert.Equal(t, wallet.TypeCancellation, last.Type)
		assert.Equal(t, []string{order.EventTypePlaced, order.EventTypeCancelled}, f.events.types())
	})

	t.Run("stock returns to an offer deleted after the sale", func(t *testing.T) {
		f := newFixture(t)
		offer := f.offer(t, uuid.New(), f.category(t, "10"), "100.00", 5)
		f.cart(t, map[*catalog.Offer]int{offer: 2})
		placed := f.checkout(t)
		offer.Delete()

		_, err := f.svc.CancelOrder(ctx, CancelRequest{OrderID: placed.ID, BuyerID: &f.buyerID})

		require.NoError(t, err)
		assert.Equal(t, 5, offer.Stock)
		assert.Equal(t, catalog.OfferStatusDeleted, offer.Status)
	})

	t.Run("second cancel is refused", func(t *testing.T) {
		f := newFixture(t)
		offer := f.offer(t, uuid.New(), f.category(t, "10"), "100.00", 5)
		f.cart(t, map[*catalog.Offer]int{offer: 1})
		placed := f.checkout(t)
		_, err := f.svc.CancelOrder(ctx, CancelRequest{OrderID: placed.ID})
		require.NoError(t, err)

		_, err = f.svc.CancelOrder(ctx, CancelRequest{OrderID: placed.ID})

		assert.ErrorIs(t, err, shared.ErrNotCancellable)
		assert.Equal(t, 5, offer.Stock)
	})

	t.Run("shipped order cannot be cancelled", func(t *testing.T) {
		f := newFixture(t)
		offer := f.offer(t, uuid.New(), f.category(t, "10"), "100.00", 5)
		f.cart(t, map[*catalog.Offer]int{offer: 1})
		placed := f.checkout(t)
		for _, st := range []order.Status{order.StatusConfirmed, order.StatusProcessing, order.StatusShipped} {
			st := st
			_, err := f.svc.UpdateStatus(ctx, StatusUpdateRequest{OrderID: placed.ID, Status: &st})
			require.NoError(t, err)
		}

		_, err := f.svc.CancelOrder(ctx, CancelRequest{OrderID: placed.ID})

		assert.ErrorIs(t, err, shared.ErrNotCancellable)
		assert.Equal(t, 4, offer.Stock)
	})

	t.Run("other buyers cannot see the order", func(t *testing.T) {
		f := newFixture(t)
		offer := f.offer(t, uuid.New(), f.category(t, "10"), "100.00", 5)
		f.cart(t, map[*catalog.Offer]int{offer: 1})
		placed := f.checkout(t)
		stranger := uuid.New()

		_, err := f.svc.CancelOrder(ctx, CancelRequest{OrderID: placed.ID, BuyerID: &stranger})

		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	offer := f.offer(t, uuid.New(), f.category(t, "10"), "100.00", 5)
	f.cart(t, map[*catalog.Offer]int{offer: 1})
	placed := f.checkout(t)

	shipped := order.StatusShipped
	_, err := f.svc.UpdateStatus(ctx, StatusUpdateRequest{OrderID: placed.ID, Status: &shipped})
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	confirmed := order.StatusConfirmed
	paid := order.PaymentPaid
	resp, err := f.svc.UpdateStatus(ctx, StatusUpdateRequest{OrderID: placed.ID, Status: &confirmed, PaymentStatus: &paid})
	require.NoError(t, err)
	assert.Equal(t, string(order.StatusConfirmed), resp.Status)
	assert.Equal(t, string(order.PaymentPaid), resp.PaymentStatus)

	_, err = f.svc.UpdateStatus(ctx, StatusUpdateRequest{OrderID: placed.ID})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestGetAndListOrders(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	offer := f.offer(t, uuid.New(), f.category(t, "10"), "100.00", 5)
	f.cart(t, map[*catalog.Offer]int{offer: 1})
	placed := f.checkout(t)

	got, err := f.svc.GetOrder(ctx, placed.ID, &f.buyerID)
	require.NoError(t, err)
	assert.Equal(t, placed.OrderNumber, got.OrderNumber)

	stranger := uuid.New()
	_, err = f.svc.GetOrder(ctx, placed.ID, &stranger)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	page, err := f.svc.ListOrders(ctx, ListRequest{BuyerID: &f.buyerID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, placed.ID, page.Items[0].ID)

	page, err = f.svc.ListOrders(ctx, ListRequest{BuyerID: &stranger})
	require.NoError(t, err)
	assert.Zero(t, page.Total)
}

func TestEarningsReleaseService_ReleaseDue(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	sellerID := uuid.New()
	offer := f.offer(t, sellerID, f.category(t, "10"), "100.00", 50)
	f.cart(t, map[*catalog.Offer]int{offer: 5})
	placed := f.checkout(t)

	release := NewEarningsReleaseService(f.scope, f.orders, staticSettings{cfg: f.cfg}, zap.NewNop())
	now := time.Now()
	release.now = func() time.Time { return now }

	o := f.orders.byID[placed.ID]
	o.Status = order.StatusDelivered
	recent := now.Add(-2 * 24 * time.Hour)
	o.DeliveredAt = &recent

	result, err := release.ReleaseDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, ReleaseResult{}, result, "not due before the release delay")

	old := now.Add(-8 * 24 * time.Hour)
	o.DeliveredAt = &old

	result, err = release.ReleaseDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, ReleaseResult{Scanned: 1, Released: 1}, result)

	w := f.wallets.bySeller[sellerID]
	assert.Equal(t, "440.55", w.Balance.String())
	assert.True(t, w.PendingBalance.IsZero())
	assert.NotNil(t, o.EarningsReleasedAt)
	assert.NoError(t, wallet.VerifyLedger(w, wallet.SumLedger(f.ledger.rows)))

	result, err = release.ReleaseDue(ctx)
	require.NoError(t, err)
	assert.Zero(t, result.Scanned)
}
