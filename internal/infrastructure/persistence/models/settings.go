package models

import (
	"time"

	"github.com/marketplace/backend/internal/domain/settings"
)

// MarketplaceSettingModel is one key-value row of marketplace settings.
type MarketplaceSettingModel struct {
	Key       string             `gorm:"type:varchar(100);primaryKey"`
	Value     string             `gorm:"type:text;not null"`
	ValueType settings.ValueType `gorm:"column:value_type;type:varchar(20);not null;default:'string'"`
	UpdatedAt time.Time          `gorm:"not null"`
}

// TableName returns the table name for GORM
func (MarketplaceSettingModel) TableName() string {
	return "marketplace_settings"
}

// ToDomain converts the persistence model to a settings entry.
func (m *MarketplaceSettingModel) ToDomain() settings.Entry {
	return settings.Entry{Key: m.Key, Value: m.Value, Type: m.ValueType}
}

// MarketplaceSettingModelFromDomain creates a persistence model from a settings entry.
func MarketplaceSettingModelFromDomain(e settings.Entry, now time.Time) MarketplaceSettingModel {
	return MarketplaceSettingModel{Key: e.Key, Value: e.Value, ValueType: e.Type, UpdatedAt: now}
}
