package persistence

import (
	"context"
	"time"

	"github.com/marketplace/backend/internal/domain/order"
)

// DBSequence derives the daily order sequence from the number of
// orders already placed that day. It is the fallback when Redis is not
// configured; concurrent checkouts may draw the same value and rely on the
// random suffix and the collision retry to stay unique.
type DBSequence struct {
	orders order.Repository
}

// NewDBSequence creates a DBSequence
func NewDBSequence(orders order.Repository) *DBSequence {
	return &DBSequence{orders: orders}
}

// Next returns the 1-based sequence value for day
func (s *DBSequence) Next(ctx context.Context, day time.Time) (int, error) {
	count, err := s.orders.CountCreatedOn(ctx, day)
	if err != nil {
		return 0, err
	}
	return int(count) + 1, nil
}
