package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/domain/catalog"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOfferRepository implements catalog.OfferRepository using GORM.
// Deleted offers are invisible to every query.
type GormOfferRepository struct {
	db *gorm.DB
}

// NewGormOfferRepository creates a new GormOfferRepository
func NewGormOfferRepository(db *gorm.DB) *GormOfferRepository {
	return &GormOfferRepository{db: db}
}

func (r *GormOfferRepository) visible(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.OfferModel{}).Where("status <> ?", catalog.OfferStatusDeleted)
}

// FindByID finds an offer by its ID
func (r *GormOfferRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Offer, error) {
	var model models.OfferModel
	if err := r.visible(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs finds the visible offers with the given IDs
func (r *GormOfferRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*catalog.Offer, error) {
	return r.findByIDs(r.visible(ctx), ids)
}

// FindByIDsForUpdate locks the offer rows with SELECT ... FOR UPDATE.
// Ordering by id makes concurrent checkouts acquire locks in the same order.
// Deleted offers are included so a cancellation can still return their stock.
func (r *GormOfferRepository) FindByIDsForUpdate(ctx context.Context, ids []uuid.UUID) ([]*catalog.Offer, error) {
	query := r.db.WithContext(ctx).Model(&models.OfferModel{}).Clauses(clause.Locking{Strength: "UPDATE"})
	return r.findByIDs(query, ids)
}

func (r *GormOfferRepository) findByIDs(query *gorm.DB, ids []uuid.UUID) ([]*catalog.Offer, error) {
	if len(ids) == 0 {
		return []*catalog.Offer{}, nil
	}
	var rows []models.OfferModel
	if err := query.Where("id IN ?", ids).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	offers := make([]*catalog.Offer, len(rows))
	for i := range rows {
		offers[i] = rows[i].ToDomain()
	}
	return offers, nil
}

// Save creates or updates the whole offer
func (r *GormOfferRepository) Save(ctx context.Context, offer *catalog.Offer) error {
	return r.db.WithContext(ctx).Save(models.OfferModelFromDomain(offer)).Error
}

// UpdateStock writes stock and status only. Callers hold the row lock from
// FindByIDsForUpdate, which may be on a deleted offer.
func (r *GormOfferRepository) UpdateStock(ctx context.Context, offer *catalog.Offer) error {
	result := r.db.WithContext(ctx).
		Model(&models.OfferModel{}).
		Where("id = ?", offer.ID).
		Updates(map[string]any{
			"stock":      offer.Stock,
			"status":     offer.Status,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ catalog.OfferRepository = (*GormOfferRepository)(nil)
