package persistence

import (
	"context"
	"time"

	"github.com/marketplace/backend/internal/domain/shipping"
	"github.com/marketplace/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormShippingRateRepository implements shipping.RateRepository using GORM
type GormShippingRateRepository struct {
	db *gorm.DB
}

// NewGormShippingRateRepository creates a new GormShippingRateRepository
func NewGormShippingRateRepository(db *gorm.DB) *GormShippingRateRepository {
	return &GormShippingRateRepository{db: db}
}

// FindActiveRates returns active tiers in insertion order
func (r *GormShippingRateRepository) FindActiveRates(ctx context.Context) ([]shipping.Rate, error) {
	var rows []models.ShippingRateModel
	if err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("position ASC, created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	rates := make([]shipping.Rate, len(rows))
	for i := range rows {
		rates[i] = rows[i].ToDomain()
	}
	return rates, nil
}

// FindActiveRules returns active free-shipping rules
func (r *GormShippingRateRepository) FindActiveRules(ctx context.Context) ([]shipping.FreeShippingRule, error) {
	var rows []models.FreeShippingRuleModel
	if err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	rules := make([]shipping.FreeShippingRule, len(rows))
	for i := range rows {
		rules[i] = rows[i].ToDomain()
	}
	return rules, nil
}

// SaveRate creates or updates a tier. A new tier is appended after the
// existing ones.
func (r *GormShippingRateRepository) SaveRate(ctx context.Context, rate *shipping.Rate) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if rate.Position == 0 {
			var last int
			if err := tx.Model(&models.ShippingRateModel{}).
				Select("COALESCE(MAX(position), 0)").
				Scan(&last).Error; err != nil {
				return err
			}
			rate.Position = last + 1
		}

		model := &models.ShippingRateModel{}
		model.FromDomain(rate)
		now := time.Now()
		model.CreatedAt = now
		model.UpdatedAt = now
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"provider", "min_desi", "max_desi", "price", "region_prices", "active", "position", "updated_at"}),
		}).Create(model).Error
	})
}

// SaveRule creates or updates a free-shipping rule
func (r *GormShippingRateRepository) SaveRule(ctx context.Context, rule *shipping.FreeShippingRule) error {
	model := &models.FreeShippingRuleModel{}
	model.FromDomain(rule)
	now := time.Now()
	model.CreatedAt = now
	model.UpdatedAt = now
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"provider", "min_order_amount", "max_desi", "active", "updated_at"}),
	}).Create(model).Error
}

var _ shipping.RateRepository = (*GormShippingRateRepository)(nil)
