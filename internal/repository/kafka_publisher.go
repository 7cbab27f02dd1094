package repository

import (
	"context"
	"time"

	"RiskRegime/internal/domain/models"
	domrepo "RiskRegime/internal/domain/repository"
	pkgkafka "RiskRegime/pkg/kafka"
)

var _ domrepo.EventPublisher = (*KafkaPublisher)(nil)

// Event types carried in the event_type header.
const (
	EventRiskAssessed = "risk.assessed"
	EventModelTrained = "model.trained"
)

// Publisher is the producer surface KafkaPublisher needs.
type Publisher interface {
	Publish(ctx context.Context, topic string, messages ...pkgkafka.Message) error
	Close() error
}

// KafkaPublisher writes pipeline events to one topic. Assessments are keyed by
// symbol, training events by model key.
type KafkaPublisher struct {
	p     Publisher
	topic string
}

// NewKafkaPublisher creates a publisher over p.
func NewKafkaPublisher(p Publisher, topic string) *KafkaPublisher {
	return &KafkaPublisher{p: p, topic: topic}
}

type assessmentEvent struct {
	Type        string              `json:"type"`
	PublishedAt time.Time           `json:"published_at"`
	Assessment  models.AnalysisView `json:"assessment"`
}

type modelTrainedEvent struct {
	Type        string                    `json:"type"`
	PublishedAt time.Time                 `json:"published_at"`
	Model       domrepo.ModelTrainedEvent `json:"model"`
}

func (k *KafkaPublisher) PublishAssessment(ctx context.Context, r *models.AnalysisResult) error {
	return k.p.Publish(ctx, k.topic, pkgkafka.Message{
		Key:     []byte(r.Symbol),
		Value:   assessmentEvent{Type: EventRiskAssessed, PublishedAt: time.Now().UTC(), Assessment: r.View()},
		Headers: map[string]string{"event_type": EventRiskAssessed},
	})
}

func (k *KafkaPublisher) PublishModelTrained(ctx context.Context, e domrepo.ModelTrainedEvent) error {
	return k.p.Publish(ctx, k.topic, pkgkafka.Message{
		Key:     []byte(e.Key),
		Value:   modelTrainedEvent{Type: EventModelTrained, PublishedAt: time.Now().UTC(), Model: e},
		Headers: map[string]string{"event_type": EventModelTrained},
	})
}

func (k *KafkaPublisher) Close() error { return k.p.Close() }

// NoopPublisher drops every event.
type NoopPublisher struct{}

func (NoopPublisher) PublishAssessment(context.Context, *models.AnalysisResult) error { return nil }
func (NoopPublisher) PublishModelTrained(context.Context, domrepo.ModelTrainedEvent) error {
	return nil
}
func (NoopPublisher) Close() error { return nil }
