package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/libvisit-api/internal/models"
	"github.com/noah-isme/libvisit-api/pkg/cache"
	"github.com/noah-isme/libvisit-api/pkg/clock"
	appErrors "github.com/noah-isme/libvisit-api/pkg/errors"
)

const analyticsCacheNamespace = "analytics"

// AnalyticsService fetches a date range from the store and aggregates it, with an optional cache.
type AnalyticsService struct {
	store    VisitorStore
	calendar *clock.Calendar
	cache    *CacheService
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewAnalyticsService constructs an analytics service. cacheSvc may be nil.
func NewAnalyticsService(store VisitorStore, calendar *clock.Calendar, cacheSvc *CacheService, cacheTTL time.Duration, logger *zap.Logger) *AnalyticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsService{store: store, calendar: calendar, cache: cacheSvc, cacheTTL: cacheTTL, logger: logger}
}

// Range returns analytics for [start, end]; empty bounds default to today. The boolean reports a cache hit.
func (s *AnalyticsService) Range(ctx context.Context, start, end string) (*models.VisitorAnalytics, bool, error) {
	r, err := resolveRange(s.calendar, start, end)
	if err != nil {
		return nil, false, err
	}

	key := cache.Key(analyticsCacheNamespace, r.Start, r.End)
	var cached models.VisitorAnalytics
	if s.cache.Get(ctx, key, &cached) {
		return &cached, true, nil
	}

	records, err := s.store.ListByDateRange(ctx, r.Start, r.End)
	if err != nil {
		return nil, false, appErrors.Persistence(err, "failed to load visitors for analytics")
	}

	result := AggregateVisitors(records, r)
	s.cache.Set(ctx, key, result, s.cacheTTL)
	s.logger.Debug("analytics computed",
		zap.String("start", r.Start),
		zap.String("end", r.End),
		zap.Int("records", len(records)),
	)
	return &result, false, nil
}

// Visitors returns the raw records behind a range, for dashboards that list them alongside the charts.
func (s *AnalyticsService) Visitors(ctx context.Context, r models.DateRange) ([]models.Visitor, error) {
	records, err := s.store.ListByDateRange(ctx, r.Start, r.End)
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to load visitors for analytics")
	}
	return records, nil
}
