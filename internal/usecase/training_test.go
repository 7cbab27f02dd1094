package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RiskRegime/internal/domain/models"
	"RiskRegime/internal/repository"
	"RiskRegime/internal/services/features"
	"RiskRegime/internal/services/labeling"
	"RiskRegime/pkg/logger"
)

func testTrainingConfig() TrainingConfig {
	return TrainingConfig{Seed: 42, Trees: 15, TestFraction: 0.2, Concurrency: 2}
}

func newOrchestrator(src *fakeSource, cfg TrainingConfig) (*TrainingOrchestrator, *memStore, *recordingPublisher, *fakeMetrics) {
	store := newMemStore()
	pub := &recordingPublisher{}
	m := newFakeMetrics()
	return NewTrainingOrchestrator(src, store, pub, m, cfg, logger.Nop()), store, pub, m
}

func TestTrainUsesGlobalThresholds(t *testing.T) {
	o, store, pub, m := newOrchestrator(&fakeSource{}, testTrainingConfig())

	res, err := o.Train(context.Background(), models.TrainRequest{
		Symbols: []string{"aapl", "MSFT"}, Period: "2y", ModelKey: "risk_model",
	})
	require.NoError(t, err)

	var combined []models.FeatureRow
	for _, sym := range []string{"AAPL", "MSFT"} {
		s, err := features.Preprocess(sym, repository.SyntheticBars(sym, 300, testEnd))
		require.NoError(t, err)
		rows, err := features.NewEngine().Compute(s)
		require.NoError(t, err)
		combined = append(combined, rows...)
	}
	_, want, err := labeling.NewLabeler().Label(combined)
	require.NoError(t, err)

	assert.Equal(t, want, res.Thresholds)
	assert.Equal(t, []string{"AAPL", "MSFT"}, res.Symbols)
	assert.Empty(t, res.Skipped)
	assert.Equal(t, len(combined), res.Report.TrainSize+res.Report.TestSize)
	assert.Equal(t, res.Report.TrainSize, res.Model.Rows)
	assert.True(t, res.Model.Contract.Equal(models.RiskFeaturesV1))

	saved, err := store.Load(context.Background(), "risk_model")
	require.NoError(t, err)
	assert.Same(t, res.Model, saved)

	require.Len(t, pub.trained, 1)
	assert.Equal(t, res.Model.ID, pub.trained[0].ModelID)
	assert.Equal(t, res.Model.Rows, m.rows)
}

func TestTrainIsDeterministic(t *testing.T) {
	req := models.TrainRequest{Symbols: []string{"AAPL", "MSFT"}, Period: "2y", ModelKey: "k"}
	a, _, _, _ := newOrchestrator(&fakeSource{}, testTrainingConfig())
	b, _, _, _ := newOrchestrator(&fakeSource{}, testTrainingConfig())

	ra, err := a.Train(context.Background(), req)
	require.NoError(t, err)
	rb, err := b.Train(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, ra.Model.Trees, rb.Model.Trees)
	assert.Equal(t, ra.Report, rb.Report)
}

func TestTrainSkipsFailingSymbols(t *testing.T) {
	src := &fakeSource{errs: map[string]error{"BAD": models.ErrNoDataFound}}
	o, store, _, _ := newOrchestrator(src, testTrainingConfig())

	res, err := o.Train(context.Background(), models.TrainRequest{
		Symbols: []string{"MSFT", "BAD", "AAPL"}, ModelKey: "risk_model",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"MSFT", "AAPL"}, res.Symbols)
	assert.Equal(t, []string{"BAD"}, res.Skipped)
	assert.Equal(t, []string{"MSFT", "AAPL"}, res.Model.Symbols)
	assert.Len(t, store.models, 1)
}

func TestTrainStrictSymbols(t *testing.T) {
	cfg := testTrainingConfig()
	cfg.StrictSymbols = true
	src := &fakeSource{errs: map[string]error{"BAD": models.ErrNoDataFound}}
	o, store, pub, m := newOrchestrator(src, cfg)

	_, err := o.Train(context.Background(), models.TrainRequest{
		Symbols: []string{"AAPL", "BAD"}, ModelKey: "risk_model",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrInsufficientSymbolData)
	assert.True(t, IsSymbolDataError(err))
	assert.Empty(t, store.models)
	assert.Empty(t, pub.trained)
	assert.Equal(t, 1, m.errs["train"])
}

func TestTrainFailsWhenEverySymbolIsSkipped(t *testing.T) {
	src := &fakeSource{bars: 120}
	o, store, _, _ := newOrchestrator(src, testTrainingConfig())

	_, err := o.Train(context.Background(), models.TrainRequest{Symbols: []string{"AAPL", "MSFT"}})
	assert.ErrorIs(t, err, models.ErrInsufficientSymbolData)
	assert.Empty(t, store.models)
}

func TestTrainRejectsEmptySymbolList(t *testing.T) {
	o, _, _, _ := newOrchestrator(&fakeSource{}, testTrainingConfig())
	_, err := o.Train(context.Background(), models.TrainRequest{Symbols: []string{" ", ""}})
	assert.ErrorIs(t, err, models.ErrInsufficientSymbolData)
}

func TestNormalizeSymbols(t *testing.T) {
	assert.Equal(t, []string{"AAPL", "MSFT"}, normalizeSymbols([]string{" aapl", "MSFT", "AAPL", ""}))
}

func TestTrainPassesMinSamplesToForest(t *testing.T) {
	cfg := testTrainingConfig()
	cfg.MinSamplesLeaf = 100000
	o, _, _, _ := newOrchestrator(&fakeSource{}, cfg)

	res, err := o.Train(context.Background(), models.TrainRequest{Symbols: []string{"AAPL"}, ModelKey: "k"})
	require.NoError(t, err)
	for _, tree := range res.Model.Trees {
		assert.Len(t, tree.Nodes, 1)
	}
}
