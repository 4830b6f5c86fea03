package services

import (
	"context"
	"internship-portal/cache"
	"internship-portal/models"
	"log/slog"
	"time"
)

const (
	dashboardCacheKey = "analytics:dashboard"
	dashboardCacheTTL = 5 * time.Minute
	dashboardMonths   = 12
)

// AnalyticsService computes the admin dashboard, cached when Redis is available
type AnalyticsService struct {
	repo   AnalyticsRepository
	cache  cache.Cache
	logger *slog.Logger
}

func NewAnalyticsService(repo AnalyticsRepository, c cache.Cache, logger *slog.Logger) *AnalyticsService {
	if c == nil {
		c = cache.Noop{}
	}
	return &AnalyticsService{repo: repo, cache: c, logger: logger}
}

func (as *AnalyticsService) Dashboard(ctx context.Context) (*models.Dashboard, error) {
	var cached models.Dashboard
	found, err := as.cache.GetJSON(ctx, dashboardCacheKey, &cached)
	if err != nil {
		as.logger.Warn("dashboard cache read failed", "error", err)
	}
	if found {
		return &cached, nil
	}

	dash, err := as.repo.DashboardStats(dashboardMonths)
	if err != nil {
		return nil, err
	}

	if err := as.cache.SetJSON(ctx, dashboardCacheKey, dash, dashboardCacheTTL); err != nil {
		as.logger.Warn("dashboard cache write failed", "error", err)
	}
	return dash, nil
}

// Invalidate drops the cached dashboard
func (as *AnalyticsService) Invalidate(ctx context.Context) {
	if err := as.cache.Delete(ctx, dashboardCacheKey); err != nil {
		as.logger.Warn("dashboard cache invalidation failed", "error", err)
	}
}
