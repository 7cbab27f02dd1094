package labeling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RiskRegime/internal/domain/models"
)

func rowsWithVol(vols ...float64) []models.FeatureRow {
	rows := make([]models.FeatureRow, len(vols))
	for i, v := range vols {
		rows[i] = models.FeatureRow{Volatility: v}
	}
	return rows
}

func TestLabelOneToNine(t *testing.T) {
	labeled, th, err := NewLabeler().Label(rowsWithVol(1, 2, 3, 4, 5, 6, 7, 8, 9))
	require.NoError(t, err)
	assert.InDelta(t, 3.64, th.Q33, 1e-9)
	assert.InDelta(t, 6.28, th.Q66, 1e-9)

	want := []models.RiskLabel{
		models.RiskLow, models.RiskLow, models.RiskLow,
		models.RiskMedium, models.RiskMedium, models.RiskMedium,
		models.RiskHigh, models.RiskHigh, models.RiskHigh,
	}
	got := make([]models.RiskLabel, len(labeled))
	for i, r := range labeled {
		got[i] = r.Risk
	}
	assert.Equal(t, want, got)
}

func TestLabelIsOrderIndependent(t *testing.T) {
	labeled, th, err := NewLabeler().Label(rowsWithVol(9, 1, 5, 3, 7, 2, 8, 4, 6))
	require.NoError(t, err)
	assert.InDelta(t, 3.64, th.Q33, 1e-9)
	assert.Equal(t, models.RiskHigh, labeled[0].Risk)
	assert.Equal(t, models.RiskLow, labeled[1].Risk)
	assert.Equal(t, models.RiskMedium, labeled[2].Risk)
}

func TestLabelBoundaries(t *testing.T) {
	th := models.Thresholds{Q33: 1, Q66: 2}
	assert.Equal(t, models.RiskLow, Classify(1, th))
	assert.Equal(t, models.RiskMedium, Classify(2, th))
	assert.Equal(t, models.RiskHigh, Classify(2.0001, th))
}

func TestLabelDegenerateBatch(t *testing.T) {
	cases := [][]float64{
		nil,
		{0.2, 0.2, 0.2, 0.2},
		{0.1, 0.2, 0.1, 0.2},
	}
	for _, vols := range cases {
		_, _, err := NewLabeler().Label(rowsWithVol(vols...))
		assert.ErrorIs(t, err, models.ErrDegenerateBatch)
	}
}

func TestQuantile(t *testing.T) {
	xs := []float64{1, 2, 3, 4}
	assert.Equal(t, 1.0, Quantile(xs, 0))
	assert.Equal(t, 4.0, Quantile(xs, 1))
	assert.InDelta(t, 2.5, Quantile(xs, 0.5), 1e-12)
	assert.Equal(t, 7.0, Quantile([]float64{7}, 0.66))
}
