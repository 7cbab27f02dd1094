package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"RiskRegime/internal/domain/models"
	drepo "RiskRegime/internal/domain/repository"
	"RiskRegime/internal/repository"
)

var testEnd = time.Date(2024, 6, 28, 0, 0, 0, 0, time.UTC)

// fakeSource serves synthetic bars; symbols listed in errs fail instead.
type fakeSource struct {
	bars int
	errs map[string]error
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) Fetch(ctx context.Context, symbol, _ string, _ drepo.Interval) ([]models.RawBar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := f.errs[symbol]; ok {
		return nil, err
	}
	n := f.bars
	if n == 0 {
		n = 300
	}
	return repository.SyntheticBars(symbol, n, testEnd), nil
}

type memStore struct {
	mu     sync.Mutex
	models map[string]*models.TrainedModel
}

func newMemStore() *memStore { return &memStore{models: map[string]*models.TrainedModel{}} }

func (s *memStore) Save(_ context.Context, m *models.TrainedModel, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.models[key] = m
	return nil
}

func (s *memStore) Load(_ context.Context, key string) (*models.TrainedModel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.models[key]
	if !ok {
		return nil, models.ErrModelNotFound
	}
	return m, nil
}

func (s *memStore) Close() error { return nil }

type recordingPublisher struct {
	mu          sync.Mutex
	assessments []*models.AnalysisResult
	trained     []drepo.ModelTrainedEvent
	err         error
}

func (p *recordingPublisher) PublishAssessment(_ context.Context, r *models.AnalysisResult) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.assessments = append(p.assessments, r)
	return p.err
}

func (p *recordingPublisher) PublishModelTrained(_ context.Context, e drepo.ModelTrainedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.trained = append(p.trained, e)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

type fakeMetrics struct {
	mu          sync.Mutex
	predictions map[models.RiskLabel]int
	errs        map[string]int
	rows        int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{predictions: map[models.RiskLabel]int{}, errs: map[string]int{}}
}

func (m *fakeMetrics) RecordPrediction(_ string, label models.RiskLabel) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.predictions[label]++
}

func (m *fakeMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[kind]++
}

func (m *fakeMetrics) RecordLatency(string, float64) {}

func (m *fakeMetrics) RecordTrainingRows(rows int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = rows
}

var errUpstream = errors.New("upstream returned 500: secret-token=abc")
