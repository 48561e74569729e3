package order

import (
	"bytes"
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/cart"
	"github.com/marketplace/backend/internal/domain/catalog"
	"github.com/marketplace/backend/internal/domain/order"
	"github.com/marketplace/backend/internal/domain/settings"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/domain/shipping"
	"github.com/marketplace/backend/internal/domain/wallet"
	"github.com/stretchr/testify/mock"
)

// In-memory repositories. They hand out the stored pointers, so there is no
// rollback; transactional behaviour is covered by the integration tests.

type memOffers struct {
	byID   map[uuid.UUID]*catalog.Offer
	locked [][]uuid.UUID
	// beforeLock runs as a competing checkout would between the unlocked
	// read and the row lock
	beforeLock func()
}

func newMemOffers(offers ...*catalog.Offer) *memOffers {
	r := &memOffers{byID: map[uuid.UUID]*catalog.Offer{}}
	for _, o := range offers {
		r.byID[o.ID] = o
	}
	return r
}

func (r *memOffers) FindByID(_ context.Context, id uuid.UUID) (*catalog.Offer, error) {
	if o, ok := r.byID[id]; ok && o.Status != catalog.OfferStatusDeleted {
		return o, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memOffers) FindByIDs(_ context.Context, ids []uuid.UUID) ([]*catalog.Offer, error) {
	var out []*catalog.Offer
	for _, id := range ids {
		if o, ok := r.byID[id]; ok && o.Status != catalog.OfferStatusDeleted {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *memOffers) FindByIDsForUpdate(_ context.Context, ids []uuid.UUID) ([]*catalog.Offer, error) {
	if r.beforeLock != nil {
		r.beforeLock()
		r.beforeLock = nil
	}
	var out []*catalog.Offer
	for _, id := range ids {
		if o, ok := r.byID[id]; ok {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return bytes.Compare(out[i].ID[:], out[j].ID[:]) < 0 })
	r.locked = append(r.locked, ids)
	return out, nil
}

func (r *memOffers) Save(_ context.Context, o *catalog.Offer) error {
	r.byID[o.ID] = o
	return nil
}

func (r *memOffers) UpdateStock(_ context.Context, o *catalog.Offer) error {
	r.byID[o.ID] = o
	return nil
}

type memCategories struct {
	byID map[uuid.UUID]*catalog.Category
}

func (r *memCategories) FindByID(_ context.Context, id uuid.UUID) (*catalog.Category, error) {
	if c, ok := r.byID[id]; ok {
		return c, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memCategories) FindByIDs(_ context.Context, ids []uuid.UUID) ([]*catalog.Category, error) {
	var out []*catalog.Category
	for _, id := range ids {
		if c, ok := r.byID[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memCategories) Save(_ context.Context, c *catalog.Category) error {
	r.byID[c.ID] = c
	return nil
}

type memCarts struct {
	byID  map[uuid.UUID]*cart.Cart
	saves int
}

func (r *memCarts) FindByID(_ context.Context, id uuid.UUID) (*cart.Cart, error) {
	if c, ok := r.byID[id]; ok {
		return c, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memCarts) FindActiveByUser(_ context.Context, userID uuid.UUID) (*cart.Cart, error) {
	for _, c := range r.byID {
		if c.UserID == userID && c.IsActive() {
			return c, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memCarts) Save(_ context.Context, c *cart.Cart) error {
	r.byID[c.ID] = c
	r.saves++
	return nil
}

type memOrders struct {
	byID map[uuid.UUID]*order.Order
}

func (r *memOrders) FindByID(_ context.Context, id uuid.UUID) (*order.Order, error) {
	if o, ok := r.byID[id]; ok {
		return o, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memOrders) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	return r.FindByID(ctx, id)
}

func (r *memOrders) FindByNumber(_ context.Context, number string) (*order.Order, error) {
	for _, o := range r.byID {
		if o.OrderNumber == number {
			return o, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memOrders) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	_, err := r.FindByNumber(ctx, number)
	return err == nil, nil
}

func (r *memOrders) CountCreatedOn(_ context.Context, _ time.Time) (int64, error) {
	return int64(len(r.byID)), nil
}

func (r *memOrders) List(_ context.Context, f order.Filter) (shared.Paginated[order.Order], error) {
	var items []order.Order
	for _, o := range r.byID {
		if f.BuyerID != nil && o.BuyerID != *f.BuyerID {
			continue
		}
		items = append(items, *o)
	}
	return shared.NewPaginated(items, int64(len(items)), f.Page, f.PageSize), nil
}

func (r *memOrders) FindReleasable(_ context.Context, deliveredBefore time.Time, limit int) ([]*order.Order, error) {
	var out []*order.Order
	for _, o := range r.byID {
		if o.Status == order.StatusDelivered && o.EarningsReleasedAt == nil &&
			o.DeliveredAt != nil && !o.DeliveredAt.After(deliveredBefore) {
			out = append(out, o)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memOrders) Create(_ context.Context, o *order.Order) error {
	r.byID[o.ID] = o
	return nil
}

func (r *memOrders) Update(_ context.Context, o *order.Order) error {
	r.byID[o.ID] = o
	return nil
}

type memWallets struct {
	bySeller map[uuid.UUID]*wallet.SellerWallet
}

func (r *memWallets) FindBySeller(_ context.Context, sellerID uuid.UUID) (*wallet.SellerWallet, error) {
	if w, ok := r.bySeller[sellerID]; ok {
		return w, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memWallets) FindBySellerForUpdate(ctx context.Context, sellerID uuid.UUID) (*wallet.SellerWallet, error) {
	return r.FindBySeller(ctx, sellerID)
}

func (r *memWallets) Create(_ context.Context, w *wallet.SellerWallet) error {
	if _, ok := r.bySeller[w.SellerID]; ok {
		return shared.ErrAlreadyExists
	}
	r.bySeller[w.SellerID] = w
	return nil
}

func (r *memWallets) Update(_ context.Context, w *wallet.SellerWallet) error {
	r.bySeller[w.SellerID] = w
	return nil
}

type memLedger struct {
	rows []wallet.Transaction
}

func (r *memLedger) Append(_ context.Context, rows ...wallet.Transaction) error {
	r.rows = append(r.rows, rows...)
	return nil
}

func (r *memLedger) ListBySeller(_ context.Context, sellerID uuid.UUID, limit int) ([]wallet.Transaction, error) {
	var out []wallet.Transaction
	for i := len(r.rows) - 1; i >= 0 && len(out) < limit; i-- {
		if r.rows[i].SellerID == sellerID {
			out = append(out, r.rows[i])
		}
	}
	return out, nil
}

func (r *memLedger) Totals(_ context.Context, walletID uuid.UUID) (wallet.LedgerTotals, error) {
	var mine []wallet.Transaction
	for _, row := range r.rows {
		if row.WalletID == walletID {
			mine = append(mine, row)
		}
	}
	return wallet.SumLedger(mine), nil
}

type memEvents struct {
	events []shared.DomainEvent
}

func (r *memEvents) SaveEvents(_ context.Context, events ...shared.DomainEvent) error {
	r.events = append(r.events, events...)
	return nil
}

func (r *memEvents) types() []string {
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.EventType()
	}
	return out
}

type staticSettings struct {
	cfg settings.Marketplace
}

func (s staticSettings) Current(context.Context) (settings.Marketplace, error) {
	return s.cfg, nil
}

type staticQuoter struct {
	rates []shipping.Rate
	rules []shipping.FreeShippingRule
}

func (q staticQuoter) Resolver(_ context.Context, defaultProvider string) (*shipping.Resolver, error) {
	return shipping.NewResolver(q.rates, q.rules, defaultProvider), nil
}

type counterSequence struct {
	n int
}

func (s *counterSequence) Next(context.Context, time.Time) (int, error) {
	s.n++
	return s.n, nil
}

// MockIdempotencyStore is a mock implementation of shared.IdempotencyStore
type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) Reserve(ctx context.Context, key string, ttl time.Duration) (bool, string, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.String(1), args.Error(2)
}

func (m *MockIdempotencyStore) Complete(ctx context.Context, key, result string, ttl time.Duration) error {
	args := m.Called(ctx, key, result, ttl)
	return args.Error(0)
}

func (m *MockIdempotencyStore) Release(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// MockNumberExistence is a mock implementation of NumberExistence
type MockNumberExistence struct {
	mock.Mock
}

func (m *MockNumberExistence) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	args := m.Called(ctx, number)
	return args.Bool(0), args.Error(1)
}
