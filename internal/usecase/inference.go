package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"RiskRegime/internal/domain/models"
	drepo "RiskRegime/internal/domain/repository"
	"RiskRegime/internal/services/classifier"
	"RiskRegime/internal/services/features"
	"RiskRegime/pkg/logger"
)

// DefaultAnalysisPeriod is the lookback fetched for one assessment.
const DefaultAnalysisPeriod = "1y"

// Analysis error codes.
const (
	CodeInvalidSymbol       = "invalid_symbol"
	CodeNoData              = "no_data"
	CodeInsufficientHistory = "insufficient_history"
	CodeModelUnavailable    = "model_unavailable"
	CodeInternal            = "internal"
)

var symbolPattern = regexp.MustCompile(`^[A-Z0-9^][A-Z0-9.=^-]{0,15}$`)

// AnalysisError is the only error Analyze returns. Its message is safe to show to
// callers; the underlying cause is reachable through errors.Is/As.
type AnalysisError struct {
	Symbol string
	Code   string
	cause  error
}

func (e *AnalysisError) Error() string {
	switch e.Code {
	case CodeInvalidSymbol:
		return "invalid symbol"
	case CodeNoData:
		return fmt.Sprintf("no market data for %s", e.Symbol)
	case CodeInsufficientHistory:
		return fmt.Sprintf("not enough price history for %s", e.Symbol)
	case CodeModelUnavailable:
		return "risk model is not available"
	default:
		return "analysis failed"
	}
}

func (e *AnalysisError) Unwrap() error { return e.cause }

// classify maps a pipeline error to a public code.
func classify(err error) string {
	switch {
	case errors.Is(err, models.ErrNoDataFound):
		return CodeNoData
	case errors.Is(err, models.ErrInsufficientHistory), errors.Is(err, models.ErrEmptySeries):
		return CodeInsufficientHistory
	case errors.Is(err, models.ErrModelUnavailable):
		return CodeModelUnavailable
	default:
		return CodeInternal
	}
}

// InferenceService scores a symbol's current risk regime with a trained model.
type InferenceService struct {
	source  drepo.TimeSeriesSource
	engine  *features.Engine
	model   *classifier.Model
	pub     drepo.EventPublisher
	metrics drepo.Metrics
	l       *logger.Logger
	period  string
}

// InferenceOption configures InferenceService.
type InferenceOption func(*InferenceService)

// WithAnalysisPeriod sets the lookback Analyze fetches.
func WithAnalysisPeriod(period string) InferenceOption {
	return func(s *InferenceService) {
		if period != "" {
			s.period = period
		}
	}
}

// NewInferenceService creates the service. A nil trained model is accepted and
// makes every Analyze call fail with model_unavailable; a model whose contract
// differs from the compiled one is rejected here.
func NewInferenceService(
	source drepo.TimeSeriesSource,
	trained *models.TrainedModel,
	pub drepo.EventPublisher,
	metrics drepo.Metrics,
	l *logger.Logger,
	opts ...InferenceOption,
) (*InferenceService, error) {
	s := &InferenceService{
		source:  source,
		engine:  features.NewEngine(),
		pub:     pub,
		metrics: metrics,
		l:       l.Component("inference"),
		period:  DefaultAnalysisPeriod,
	}
	for _, opt := range opts {
		opt(s)
	}
	if trained != nil {
		m, err := classifier.NewModel(trained, models.RiskFeaturesV1)
		if err != nil {
			return nil, err
		}
		s.model = m
		s.l.Info("model ready", logger.String("model_id", trained.ID), logger.String("contract", trained.Contract.String()))
	}
	return s, nil
}

// Ready reports whether a model is loaded.
func (s *InferenceService) Ready() bool { return s.model != nil }

// Analyze assesses symbol over the default lookback.
func (s *InferenceService) Analyze(ctx context.Context, symbol string) (*models.AnalysisResult, error) {
	return s.AnalyzePeriod(ctx, symbol, s.period)
}

// AnalyzePeriod assesses symbol over the given lookback. The period only changes how
// much history is fetched; the prediction always uses the latest complete row.
func (s *InferenceService) AnalyzePeriod(ctx context.Context, symbol, period string) (*models.AnalysisResult, error) {
	start := time.Now()
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if period == "" {
		period = s.period
	}

	res, err := s.analyze(ctx, symbol, period)
	if err != nil {
		code := CodeInvalidSymbol
		if !errors.Is(err, errInvalidSymbol) {
			code = classify(err)
		}
		s.metrics.RecordError("analyze_" + code)
		s.l.Error("analysis failed",
			logger.String("symbol", symbol),
			logger.String("period", period),
			logger.String("code", code),
			logger.Error(err),
		)
		return nil, &AnalysisError{Symbol: symbol, Code: code, cause: err}
	}

	s.metrics.RecordPrediction(symbol, res.RiskLevel)
	s.metrics.RecordLatency("analyze", time.Since(start).Seconds())
	s.l.Info("analysis done",
		logger.String("symbol", symbol),
		logger.String("risk_level", string(res.RiskLevel)),
		logger.Float64("confidence", res.Confidence),
		logger.Duration("duration_ms", time.Since(start)),
	)

	if err := s.pub.PublishAssessment(ctx, res); err != nil {
		s.metrics.RecordError("publish_assessment")
		s.l.Warn("publish assessment failed", logger.String("symbol", symbol), logger.Error(err))
	}
	return res, nil
}

var errInvalidSymbol = errors.New("invalid symbol")

func (s *InferenceService) analyze(ctx context.Context, symbol, period string) (*models.AnalysisResult, error) {
	if !symbolPattern.MatchString(symbol) {
		return nil, fmt.Errorf("%q: %w", symbol, errInvalidSymbol)
	}
	if s.model == nil {
		return nil, models.ErrModelUnavailable
	}

	raw, err := s.source.Fetch(ctx, symbol, period, drepo.Interval1d)
	if err != nil {
		return nil, fmt.Errorf("fetch %s from %s: %w", symbol, s.source.Name(), err)
	}
	series, err := features.Preprocess(symbol, raw)
	if err != nil {
		return nil, fmt.Errorf("preprocess %s: %w", symbol, err)
	}
	rows, err := s.engine.Compute(series)
	if err != nil {
		return nil, fmt.Errorf("features %s: %w", symbol, err)
	}

	last := rows[len(rows)-1]
	label, confidence, err := s.model.PredictRow(last)
	if err != nil {
		return nil, fmt.Errorf("predict %s: %w", symbol, err)
	}

	tail := rows
	if len(tail) > models.HistoryLength {
		tail = tail[len(tail)-models.HistoryLength:]
	}
	history := make([]models.PricePoint, len(tail))
	for i, r := range tail {
		history[i] = models.PricePoint{Date: r.Time, Price: r.Close}
	}

	return &models.AnalysisResult{
		Symbol:       series.Symbol,
		RiskLevel:    label,
		Confidence:   confidence,
		CurrentPrice: last.Close,
		Volatility:   last.Volatility,
		DailyReturn:  last.DailyReturn,
		AsOf:         last.Time,
		History:      history,
		ModelID:      s.model.Trained().ID,
	}, nil
}
