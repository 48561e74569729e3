package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/marketplace/backend/internal/domain/settings"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	// CacheKey is where the parsed snapshot is cached
	CacheKey        = "settings:marketplace"
	defaultCacheTTL = 5 * time.Minute
)

// SnapshotCache stores serialized settings snapshots
type SnapshotCache interface {
	// Get reports found=false on a miss
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// CachedProvider serves the marketplace settings snapshot. Concurrent loads
// on a cache miss collapse into one database read. A nil cache disables
// caching.
type CachedProvider struct {
	repo     settings.Repository
	cache    SnapshotCache
	defaults settings.Marketplace
	ttl      time.Duration
	group    singleflight.Group
	logger   *zap.Logger
}

// NewCachedProvider creates a CachedProvider. Missing rows fall back to defaults.
func NewCachedProvider(
	repo settings.Repository,
	cache SnapshotCache,
	defaults settings.Marketplace,
	ttl time.Duration,
	logger *zap.Logger,
) *CachedProvider {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedProvider{
		repo:     repo,
		cache:    cache,
		defaults: defaults,
		ttl:      ttl,
		logger:   logger,
	}
}

// Current returns the settings snapshot
func (p *CachedProvider) Current(ctx context.Context) (settings.Marketplace, error) {
	if p.cache != nil {
		raw, found, err := p.cache.Get(ctx, CacheKey)
		switch {
		case err != nil:
			p.logger.Warn("Settings cache read failed", zap.Error(err))
		case found:
			var m settings.Marketplace
			if err := json.Unmarshal(raw, &m); err == nil {
				return m, nil
			}
			p.logger.Warn("Discarding undecodable settings snapshot")
		}
	}

	v, err, _ := p.group.Do(CacheKey, func() (any, error) {
		return p.load(ctx)
	})
	if err != nil {
		return settings.Marketplace{}, err
	}
	return v.(settings.Marketplace), nil
}

func (p *CachedProvider) load(ctx context.Context) (settings.Marketplace, error) {
	entries, err := p.repo.FindAll(ctx)
	if err != nil {
		return settings.Marketplace{}, fmt.Errorf("failed to load settings: %w", err)
	}
	m, err := settings.Parse(entries, p.defaults)
	if err != nil {
		return settings.Marketplace{}, err
	}
	if err := m.Validate(); err != nil {
		return settings.Marketplace{}, err
	}

	if p.cache != nil {
		raw, err := json.Marshal(m)
		if err == nil {
			err = p.cache.Set(ctx, CacheKey, raw, p.ttl)
		}
		if err != nil {
			p.logger.Warn("Settings cache write failed", zap.Error(err))
		}
	}
	return m, nil
}

// Update validates and stores new settings, then drops the cached snapshot
func (p *CachedProvider) Update(ctx context.Context, m settings.Marketplace) (settings.Marketplace, error) {
	m.MarketplaceFeeRate = m.MarketplaceFeeRate.Round(2)
	m.WithholdingTaxRate = m.WithholdingTaxRate.Round(2)
	if err := m.Validate(); err != nil {
		return settings.Marketplace{}, err
	}
	if err := p.repo.Upsert(ctx, m.Entries()); err != nil {
		return settings.Marketplace{}, fmt.Errorf("failed to store settings: %w", err)
	}
	if err := p.Invalidate(ctx); err != nil {
		p.logger.Warn("Settings cache invalidation failed", zap.Error(err))
	}
	p.logger.Info("Marketplace settings updated",
		zap.String("marketplace_fee_rate", m.MarketplaceFeeRate.String()),
		zap.String("withholding_tax_rate", m.WithholdingTaxRate.String()),
		zap.String("order_number_prefix", m.OrderNumberPrefix))
	return m, nil
}

// Invalidate drops the cached snapshot
func (p *CachedProvider) Invalidate(ctx context.Context) error {
	if p.cache == nil {
		return nil
	}
	return p.cache.Delete(ctx, CacheKey)
}

var _ settings.Provider = (*CachedProvider)(nil)
