package persistence

import (
	"context"
	"time"

	"github.com/marketplace/backend/internal/domain/settings"
	"github.com/marketplace/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSettingsRepository implements settings.Repository using GORM
type GormSettingsRepository struct {
	db *gorm.DB
}

// NewGormSettingsRepository creates a new GormSettingsRepository
func NewGormSettingsRepository(db *gorm.DB) *GormSettingsRepository {
	return &GormSettingsRepository{db: db}
}

// FindAll returns every stored settings row
func (r *GormSettingsRepository) FindAll(ctx context.Context) ([]settings.Entry, error) {
	var rows []models.MarketplaceSettingModel
	if err := r.db.WithContext(ctx).Order("key ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	entries := make([]settings.Entry, len(rows))
	for i := range rows {
		entries[i] = rows[i].ToDomain()
	}
	return entries, nil
}

// Upsert writes the entries, replacing existing values by key
func (r *GormSettingsRepository) Upsert(ctx context.Context, entries []settings.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	now := time.Now()
	rows := make([]models.MarketplaceSettingModel, len(entries))
	for i, e := range entries {
		rows[i] = models.MarketplaceSettingModelFromDomain(e, now)
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "value_type", "updated_at"}),
	}).Create(&rows).Error
}

var _ settings.Repository = (*GormSettingsRepository)(nil)
