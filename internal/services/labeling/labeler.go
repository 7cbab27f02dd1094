package labeling

import (
	"fmt"
	"math"
	"sort"

	"RiskRegime/internal/domain/models"
)

// MinDistinct is the fewest distinct volatility values that give three non-empty bands.
const MinDistinct = 3

// Labeler assigns batch-relative risk labels from the volatility column.
type Labeler struct{}

// NewLabeler creates a Labeler.
func NewLabeler() *Labeler { return &Labeler{} }

// Label computes the 33rd and 66th percentiles of volatility over the whole batch and
// labels each row: above q66 is High, above q33 is Medium, everything else Low.
func (l *Labeler) Label(rows []models.FeatureRow) ([]models.LabeledRow, models.Thresholds, error) {
	vols := make([]float64, len(rows))
	for i, r := range rows {
		vols[i] = r.Volatility
	}
	if n := distinct(vols); n < MinDistinct {
		return nil, models.Thresholds{}, fmt.Errorf("label %d rows, %d distinct volatility values: %w",
			len(rows), n, models.ErrDegenerateBatch)
	}

	sorted := append([]float64(nil), vols...)
	sort.Float64s(sorted)
	th := models.Thresholds{
		Q33: Quantile(sorted, 0.33),
		Q66: Quantile(sorted, 0.66),
	}

	out := make([]models.LabeledRow, len(rows))
	for i, r := range rows {
		out[i] = models.LabeledRow{FeatureRow: r, Risk: Classify(r.Volatility, th)}
	}
	return out, th, nil
}

// Classify maps one volatility value onto the thresholds.
func Classify(v float64, th models.Thresholds) models.RiskLabel {
	switch {
	case v > th.Q66:
		return models.RiskHigh
	case v > th.Q33:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

// Quantile returns the p-quantile of ascending-sorted xs using linear interpolation
// between closest ranks, h = (n-1)p.
func Quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	h := float64(n-1) * p
	lo := int(math.Floor(h))
	if lo >= n-1 {
		return sorted[n-1]
	}
	frac := h - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

func distinct(xs []float64) int {
	seen := make(map[float64]struct{}, len(xs))
	for _, x := range xs {
		seen[x] = struct{}{}
	}
	return len(seen)
}
