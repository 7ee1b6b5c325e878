package moderation

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"time"

	"github.com/ahmetcoskunkizilkaya/community-backend/internal/cachestore"
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/community-backend/internal/metrics"
)

const (
	siteScaleCacheName = "site_scale"
	siteScaleCacheKey  = "current"
)

type cachedScale struct {
	Scale         float64   `json:"scale"`
	ReportsPerDay float64   `json:"reports_per_day"`
	ComputedAt    time.Time `json:"computed_at"`
}

// SiteScaleEstimator measures platform-wide report volume against a baseline.
// Busy periods raise the auto-hide threshold, quiet periods lower it.
type SiteScaleEstimator struct {
	cfg     config.SiteScaleConfig
	caps    Capabilities
	reports ReportStore
	cache   cachestore.CacheStore
	now     func() time.Time
	logger  *slog.Logger
}

func NewSiteScaleEstimator(cfg config.SiteScaleConfig, caps Capabilities, reports ReportStore, cache cachestore.CacheStore, now func() time.Time, logger *slog.Logger) *SiteScaleEstimator {
	return &SiteScaleEstimator{
		cfg:     cfg,
		caps:    caps,
		reports: reports,
		cache:   cache,
		now:     now,
		logger:  logger,
	}
}

// Scale returns the current site scale, recomputing it when the cached value
// is older than the TTL or forceRefresh is set. It never fails; storage
// problems yield the neutral scale 1.0.
func (s *SiteScaleEstimator) Scale(ctx context.Context, forceRefresh bool) float64 {
	if !s.caps.Supports(database.TableReports) {
		return 1.0
	}

	if s.cache != nil {
		if forceRefresh {
			if err := s.cache.Purge(ctx, siteScaleCacheName, siteScaleCacheKey); err != nil {
				s.logger.Warn("site scale cache purge failed", "error", err)
			}
		} else if v, ok := s.cached(ctx); ok {
			return v
		}
	}

	entry, err := s.compute(ctx)
	if err != nil {
		s.logger.Warn("site scale computation failed", "error", err)
		return 1.0
	}
	metrics.SiteScaleRefreshes.Inc()
	metrics.SiteScale.Set(entry.Scale)

	if s.cache != nil {
		b, _ := json.Marshal(entry)
		if err := s.cache.Set(ctx, siteScaleCacheName, siteScaleCacheKey, string(b)); err != nil {
			s.logger.Warn("site scale cache write failed", "error", err)
		}
	}
	return entry.Scale
}

func (s *SiteScaleEstimator) cached(ctx context.Context) (float64, bool) {
	raw, err := s.cache.Get(ctx, siteScaleCacheName, siteScaleCacheKey)
	if err != nil {
		s.logger.Warn("site scale cache read failed", "error", err)
		return 0, false
	}
	if raw == "" {
		return 0, false
	}
	var entry cachedScale
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return 0, false
	}
	if s.now().Sub(entry.ComputedAt) >= s.cfg.CacheTTL() {
		return 0, false
	}
	return entry.Scale, true
}

func (s *SiteScaleEstimator) compute(ctx context.Context) (cachedScale, error) {
	now := s.now()
	days := s.cfg.WindowDays
	if days <= 0 {
		days = 1
	}
	count, err := s.reports.CountSince(ctx, now.AddDate(0, 0, -days))
	if err != nil {
		return cachedScale{}, err
	}

	perDay := float64(count) / float64(days)
	base := math.Max(1.0, s.cfg.BaseReportsPerDay)
	delta := (perDay - base) / base
	scale := round6(clamp(1+delta*s.cfg.Sensitivity, s.cfg.MinScale, s.cfg.MaxScale))
	return cachedScale{Scale: scale, ReportsPerDay: perDay, ComputedAt: now}, nil
}
