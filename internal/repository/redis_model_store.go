package repository

import (
	"context"
	"errors"
	"fmt"

	"RiskRegime/internal/domain/models"
	domrepo "RiskRegime/internal/domain/repository"
	"RiskRegime/pkg/cache"
	"RiskRegime/pkg/logger"
)

var _ domrepo.ModelStore = (*RedisModelStore)(nil)

// RedisModelStore keeps models in a cache backend without expiry, so replicas
// can share one trained model.
type RedisModelStore struct {
	c cache.Service
	l *logger.Logger
}

// NewRedisModelStore creates a store over c, typically a cache.RedisCache.
func NewRedisModelStore(c cache.Service, l *logger.Logger) *RedisModelStore {
	return &RedisModelStore{c: c, l: l.Component("redis_model_store")}
}

func modelCacheKey(key string) string { return cache.Key("model", key) }

func (s *RedisModelStore) Save(ctx context.Context, m *models.TrainedModel, key string) error {
	if err := ValidateModelKey(key); err != nil {
		return err
	}
	if err := cache.SetJSON(ctx, s.c, modelCacheKey(key), m, 0); err != nil {
		return fmt.Errorf("save model: %w", err)
	}
	s.l.Info("model saved", logger.String("key", key), logger.String("model_id", m.ID))
	return nil
}

func (s *RedisModelStore) Load(ctx context.Context, key string) (*models.TrainedModel, error) {
	var m models.TrainedModel
	err := cache.GetJSON(ctx, s.c, modelCacheKey(key), &m)
	if errors.Is(err, cache.ErrCacheMiss) {
		return nil, fmt.Errorf("model %q: %w", key, models.ErrModelNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	return &m, nil
}

func (s *RedisModelStore) Close() error { return s.c.Close() }
