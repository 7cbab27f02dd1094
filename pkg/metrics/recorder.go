package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"RiskRegime/internal/domain/models"
)

// Recorder implements repository.Metrics using Prometheus.
type Recorder struct {
	predictions  *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec
	latency      *prometheus.HistogramVec
	trainingRows prometheus.Gauge
}

// New registers the recorder's collectors on reg.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		predictions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "riskregime_predictions_total",
				Help: "Risk predictions served, by label",
			},
			[]string{"label"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "riskregime_errors_total",
				Help: "Errors by kind",
			},
			[]string{"kind"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "riskregime_operation_duration_seconds",
				Help:    "Duration of pipeline operations in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 300},
			},
			[]string{"operation"},
		),
		trainingRows: f.NewGauge(prometheus.GaugeOpts{
			Name: "riskregime_training_rows",
			Help: "Rows used by the last successful training run",
		}),
	}
}

// RecordPrediction counts one served prediction. The symbol is not a label to keep cardinality bounded.
func (r *Recorder) RecordPrediction(_ string, label models.RiskLabel) {
	r.predictions.WithLabelValues(string(label)).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// RecordTrainingRows sets the training batch size gauge.
func (r *Recorder) RecordTrainingRows(rows int) {
	r.trainingRows.Set(float64(rows))
}
