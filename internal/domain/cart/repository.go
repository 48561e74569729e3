package cart

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists carts together with their lines
type Repository interface {
	// FindByID returns shared.ErrNotFound when the cart does not exist
	FindByID(ctx context.Context, id uuid.UUID) (*Cart, error)
	// FindActiveByUser returns shared.ErrNotFound when the user has no active cart
	FindActiveByUser(ctx context.Context, userID uuid.UUID) (*Cart, error)
	// Save writes the cart and reconciles its lines (insert, update, delete)
	Save(ctx context.Context, c *Cart) error
}
