package repository

import (
	"context"
	"time"

	"RiskRegime/internal/domain/models"
)

// TimeSeriesSource supplies raw daily bars for a symbol. Implementations return
// models.ErrNoDataFound (wrapped) for unknown or delisted symbols.
type TimeSeriesSource interface {
	Fetch(ctx context.Context, symbol string, period string, interval Interval) ([]models.RawBar, error)
	Name() string
}

// ModelStore persists trained models. Load returns models.ErrModelNotFound (wrapped) for unknown keys.
type ModelStore interface {
	Save(ctx context.Context, m *models.TrainedModel, key string) error
	Load(ctx context.Context, key string) (*models.TrainedModel, error)
	Close() error
}

// ModelTrainedEvent announces a freshly persisted model.
type ModelTrainedEvent struct {
	ModelID   string                  `json:"model_id"`
	Key       string                  `json:"key"`
	Contract  models.FeatureContract  `json:"contract"`
	Symbols   []string                `json:"symbols"`
	Skipped   []string                `json:"skipped,omitempty"`
	Rows      int                     `json:"rows"`
	Report    models.EvaluationReport `json:"report"`
	TrainedAt time.Time               `json:"trained_at"`
}

// EventPublisher fans pipeline outcomes out to downstream consumers.
type EventPublisher interface {
	PublishAssessment(ctx context.Context, r *models.AnalysisResult) error
	PublishModelTrained(ctx context.Context, e ModelTrainedEvent) error
	Close() error
}

type Metrics interface {
	RecordPrediction(symbol string, label models.RiskLabel)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
	RecordTrainingRows(rows int)
}
