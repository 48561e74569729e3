package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/shared"
)

// Filter narrows order listings
type Filter struct {
	BuyerID  *uuid.UUID
	SellerID *uuid.UUID
	Status   *Status
	Page     int
	PageSize int
	// SortBy is a column name; unknown columns fall back to created_at
	SortBy    string
	SortOrder string
}

// Repository persists orders together with their items
type Repository interface {
	// FindByID returns shared.ErrNotFound when the order does not exist
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	// FindByIDForUpdate locks the order row for the rest of the transaction
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Order, error)
	FindByNumber(ctx context.Context, number string) (*Order, error)
	ExistsByNumber(ctx context.Context, number string) (bool, error)
	// CountCreatedOn counts orders whose number carries the given day
	CountCreatedOn(ctx context.Context, day time.Time) (int64, error)
	List(ctx context.Context, filter Filter) (shared.Paginated[Order], error)
	// FindReleasable returns delivered orders older than deliveredBefore whose
	// earnings have not been released yet
	FindReleasable(ctx context.Context, deliveredBefore time.Time, limit int) ([]*Order, error)
	// Create inserts the order and its items
	Create(ctx context.Context, o *Order) error
	// Update writes the mutable order fields
	Update(ctx context.Context, o *Order) error
}
