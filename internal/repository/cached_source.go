package repository

import (
	"context"
	"errors"
	"time"

	"RiskRegime/internal/domain/models"
	domrepo "RiskRegime/internal/domain/repository"
	"RiskRegime/pkg/cache"
	"RiskRegime/pkg/logger"
)

var _ domrepo.TimeSeriesSource = (*CachedSource)(nil)

// CachedSource memoizes another source's successful fetches for ttl.
type CachedSource struct {
	next  domrepo.TimeSeriesSource
	cache cache.Service
	ttl   time.Duration
	l     *logger.Logger
}

// NewCachedSource wraps next with c.
func NewCachedSource(next domrepo.TimeSeriesSource, c cache.Service, ttl time.Duration, l *logger.Logger) *CachedSource {
	return &CachedSource{next: next, cache: c, ttl: ttl, l: l.Component("cached_source")}
}

func (s *CachedSource) Name() string { return s.next.Name() + "+cache" }

func (s *CachedSource) Fetch(ctx context.Context, symbol, period string, interval domrepo.Interval) ([]models.RawBar, error) {
	key := cache.Key("bars", s.next.Name(), symbol, period, interval)

	var bars []models.RawBar
	err := cache.GetJSON(ctx, s.cache, key, &bars)
	switch {
	case err == nil:
		return bars, nil
	case !errors.Is(err, cache.ErrCacheMiss):
		s.l.Warn("bar cache read failed", logger.String("key", key), logger.Error(err))
	}

	bars, err = s.next.Fetch(ctx, symbol, period, interval)
	if err != nil {
		return nil, err
	}
	if err := cache.SetJSON(ctx, s.cache, key, bars, s.ttl); err != nil {
		s.l.Warn("bar cache write failed", logger.String("key", key), logger.Error(err))
	}
	return bars, nil
}
