package catalog

import (
	"context"

	"github.com/google/uuid"
)

// OfferRepository persists offers. Deleted offers are never returned.
type OfferRepository interface {
	// FindByID returns shared.ErrNotFound when the offer is missing or deleted
	FindByID(ctx context.Context, id uuid.UUID) (*Offer, error)
	// FindByIDs returns the offers that exist; missing ids are simply absent
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*Offer, error)
	// FindByIDsForUpdate locks the rows until the surrounding transaction
	// ends, in ascending id order. Unlike FindByIDs it returns deleted offers.
	FindByIDsForUpdate(ctx context.Context, ids []uuid.UUID) ([]*Offer, error)
	// Save inserts or updates the whole offer
	Save(ctx context.Context, offer *Offer) error
	// UpdateStock writes only stock and status
	UpdateStock(ctx context.Context, offer *Offer) error
}

// CategoryRepository reads category rates
type CategoryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Category, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*Category, error)
	Save(ctx context.Context, category *Category) error
}
