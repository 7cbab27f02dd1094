package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"RiskRegime/internal/domain/models"
	drepo "RiskRegime/internal/domain/repository"
	"RiskRegime/internal/services/classifier"
	"RiskRegime/internal/services/features"
	"RiskRegime/internal/services/labeling"
	"RiskRegime/pkg/logger"
)

// TrainingConfig holds the knobs of one training run that are not part of the request.
type TrainingConfig struct {
	Seed            int64
	Trees           int
	MaxDepth        int
	MinSamplesSplit int
	MinSamplesLeaf  int
	TestFraction    float64
	StrictSymbols   bool
	Concurrency     int
}

// TrainResult is the outcome of a successful run.
type TrainResult struct {
	Model      *models.TrainedModel
	Report     models.EvaluationReport
	Thresholds models.Thresholds
	Symbols    []string
	Skipped    []string
}

// TrainingOrchestrator builds a labeled dataset across symbols, fits the forest and
// persists it.
type TrainingOrchestrator struct {
	source  drepo.TimeSeriesSource
	store   drepo.ModelStore
	pub     drepo.EventPublisher
	metrics drepo.Metrics
	engine  *features.Engine
	labeler *labeling.Labeler
	cfg     TrainingConfig
	l       *logger.Logger
}

// NewTrainingOrchestrator creates an orchestrator.
func NewTrainingOrchestrator(
	source drepo.TimeSeriesSource,
	store drepo.ModelStore,
	pub drepo.EventPublisher,
	metrics drepo.Metrics,
	cfg TrainingConfig,
	l *logger.Logger,
) *TrainingOrchestrator {
	if cfg.TestFraction <= 0 || cfg.TestFraction >= 1 {
		cfg.TestFraction = 0.2
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	return &TrainingOrchestrator{
		source:  source,
		store:   store,
		pub:     pub,
		metrics: metrics,
		engine:  features.NewEngine(),
		labeler: labeling.NewLabeler(),
		cfg:     cfg,
		l:       l.Component("training"),
	}
}

type symbolRows struct {
	rows []models.FeatureRow
	err  error
}

// Train runs one training pass. Nothing is saved unless every step succeeds.
func (o *TrainingOrchestrator) Train(ctx context.Context, req models.TrainRequest) (*TrainResult, error) {
	start := time.Now()
	if req.Period == "" {
		req.Period = "2y"
	}
	if req.ModelKey == "" {
		req.ModelKey = "risk_model"
	}
	symbols := normalizeSymbols(req.Symbols)
	if len(symbols) == 0 {
		return nil, fmt.Errorf("train: no symbols: %w", models.ErrInsufficientSymbolData)
	}

	o.l.Info("training started",
		logger.Strings("symbols", symbols),
		logger.String("period", req.Period),
		logger.String("model_key", req.ModelKey),
	)

	res, err := o.train(ctx, req, symbols)
	if err != nil {
		o.metrics.RecordError("train")
		o.l.Error("training failed", logger.String("model_key", req.ModelKey), logger.Error(err))
		return nil, err
	}

	o.metrics.RecordTrainingRows(res.Model.Rows)
	o.metrics.RecordLatency("train", time.Since(start).Seconds())
	o.l.Info("training finished",
		logger.String("model_id", res.Model.ID),
		logger.Int("rows", res.Model.Rows),
		logger.Float64("accuracy", res.Report.Accuracy),
		logger.Float64("q33", res.Thresholds.Q33),
		logger.Float64("q66", res.Thresholds.Q66),
		logger.Strings("skipped", res.Skipped),
		logger.Duration("duration_ms", time.Since(start)),
	)
	o.l.Info("evaluation report\n" + res.Report.String())

	event := drepo.ModelTrainedEvent{
		ModelID:   res.Model.ID,
		Key:       req.ModelKey,
		Contract:  res.Model.Contract,
		Symbols:   res.Symbols,
		Skipped:   res.Skipped,
		Rows:      res.Model.Rows,
		Report:    res.Report,
		TrainedAt: res.Model.TrainedAt,
	}
	if err := o.pub.PublishModelTrained(ctx, event); err != nil {
		o.metrics.RecordError("publish_model_trained")
		o.l.Warn("publish model.trained failed", logger.String("model_id", res.Model.ID), logger.Error(err))
	}
	return res, nil
}

func (o *TrainingOrchestrator) train(ctx context.Context, req models.TrainRequest, symbols []string) (*TrainResult, error) {
	perSymbol := o.collect(ctx, symbols, req.Period)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		all     []models.FeatureRow
		used    []string
		skipped []string
	)
	for i, sym := range symbols {
		r := perSymbol[i]
		if r.err != nil {
			if o.cfg.StrictSymbols {
				return nil, fmt.Errorf("%s: %v: %w", sym, r.err, models.ErrInsufficientSymbolData)
			}
			o.l.Warn("skipping symbol", logger.String("symbol", sym), logger.Error(r.err))
			skipped = append(skipped, sym)
			continue
		}
		all = append(all, r.rows...)
		used = append(used, sym)
	}
	if len(used) == 0 {
		return nil, fmt.Errorf("all %d symbols skipped: %w", len(symbols), models.ErrInsufficientSymbolData)
	}

	labeled, th, err := o.labeler.Label(all)
	if err != nil {
		return nil, fmt.Errorf("label: %w", err)
	}
	rows := make([]models.FeatureRow, len(labeled))
	y := make([]models.RiskLabel, len(labeled))
	for i, lr := range labeled {
		rows[i] = lr.FeatureRow
		y[i] = lr.Risk
	}
	X, err := models.RiskFeaturesV1.Matrix(rows)
	if err != nil {
		return nil, err
	}

	trainIdx, testIdx := classifier.StratifiedSplit(y, o.cfg.TestFraction, o.cfg.Seed)
	opts := []classifier.Option{
		classifier.WithSeed(o.cfg.Seed),
		classifier.WithMaxDepth(o.cfg.MaxDepth),
		classifier.WithMinSamplesSplit(o.cfg.MinSamplesSplit),
		classifier.WithMinSamplesLeaf(o.cfg.MinSamplesLeaf),
	}
	if o.cfg.Trees > 0 {
		opts = append(opts, classifier.WithTrees(o.cfg.Trees))
	}
	trained, err := classifier.NewForest(models.RiskFeaturesV1, opts...).
		Fit(classifier.Take(X, trainIdx), classifier.Take(y, trainIdx))
	if err != nil {
		return nil, fmt.Errorf("fit: %w", err)
	}
	trained.Symbols = used

	m, err := classifier.NewModel(trained, models.RiskFeaturesV1)
	if err != nil {
		return nil, err
	}
	report, err := classifier.Evaluate(m, classifier.Take(X, testIdx), classifier.Take(y, testIdx))
	if err != nil {
		return nil, fmt.Errorf("evaluate: %w", err)
	}
	report.TrainSize = len(trainIdx)

	if err := o.store.Save(ctx, trained, req.ModelKey); err != nil {
		return nil, fmt.Errorf("save model: %w", err)
	}

	return &TrainResult{
		Model:      trained,
		Report:     report,
		Thresholds: th,
		Symbols:    used,
		Skipped:    skipped,
	}, nil
}

// collect fetches and featurizes every symbol with bounded concurrency. Results keep
// the request order. Per-symbol failures are returned in place, not as a group error.
func (o *TrainingOrchestrator) collect(ctx context.Context, symbols []string, period string) []symbolRows {
	out := make([]symbolRows, len(symbols))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.Concurrency)
	for i, sym := range symbols {
		i, sym := i, sym
		g.Go(func() error {
			rows, err := o.symbolFeatures(gctx, sym, period)
			out[i] = symbolRows{rows: rows, err: err}
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (o *TrainingOrchestrator) symbolFeatures(ctx context.Context, symbol, period string) ([]models.FeatureRow, error) {
	raw, err := o.source.Fetch(ctx, symbol, period, drepo.Interval1d)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	series, err := features.Preprocess(symbol, raw)
	if err != nil {
		return nil, fmt.Errorf("preprocess: %w", err)
	}
	rows, err := o.engine.Compute(series)
	if err != nil {
		return nil, fmt.Errorf("features: %w", err)
	}
	return rows, nil
}

func normalizeSymbols(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// IsSymbolDataError reports whether err is a per-symbol data failure rather than
// an infrastructure one.
func IsSymbolDataError(err error) bool {
	return errors.Is(err, models.ErrInsufficientSymbolData)
}
