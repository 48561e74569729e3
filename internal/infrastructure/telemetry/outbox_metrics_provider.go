package telemetry

import (
	"context"

	"gorm.io/gorm"
)

// GormOutboxMetricsProvider counts outbox rows with a grouped query
type GormOutboxMetricsProvider struct {
	db *gorm.DB
}

// NewGormOutboxMetricsProvider creates a provider reading outbox_events
func NewGormOutboxMetricsProvider(db *gorm.DB) *GormOutboxMetricsProvider {
	return &GormOutboxMetricsProvider{db: db}
}

// CountByStatus returns the number of outbox rows per status
func (p *GormOutboxMetricsProvider) CountByStatus(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := p.db.WithContext(ctx).
		Table("outbox_events").
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}
