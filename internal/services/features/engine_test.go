package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RiskRegime/internal/domain/models"
)

func TestEngineInsufficientHistory(t *testing.T) {
	e := NewEngine()
	for _, n := range []int{0, 1, 50, MinHistory - 1} {
		s := &models.Series{Symbol: "X"}
		if n > 0 {
			s = syntheticSeries(n, 1)
		}
		_, err := e.Compute(s)
		assert.ErrorIs(t, err, models.ErrInsufficientHistory, "n=%d", n)
	}
}

func TestEngineFirstRowNeedsFullHistory(t *testing.T) {
	s := syntheticSeries(MinHistory, 1)
	rows, err := NewEngine().Compute(s)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, s.Bars[MinHistory-1].Time, rows[0].Time)

	s = syntheticSeries(300, 1)
	rows, err = NewEngine().Compute(s)
	require.NoError(t, err)
	assert.Len(t, rows, 300-MinHistory+1)
	assert.Equal(t, s.Bars[len(s.Bars)-1].Time, rows[len(rows)-1].Time)
}

func TestEngineDeterministic(t *testing.T) {
	s := syntheticSeries(400, 7)
	a, err := NewEngine().Compute(s)
	require.NoError(t, err)
	b, err := NewEngine().Compute(syntheticSeries(400, 7))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestEngineReturnRoundTrip(t *testing.T) {
	s := syntheticSeries(260, 3)
	rows, err := NewEngine().Compute(s)
	require.NoError(t, err)

	idx := make(map[int64]int, s.Len())
	for i, b := range s.Bars {
		idx[b.Time.Unix()] = i
	}
	for _, r := range rows {
		i := idx[r.Time.Unix()]
		require.Greater(t, i, 0)
		prev := s.Bars[i-1].Close
		assert.InDelta(t, r.Close, prev*(1+r.DailyReturn), 1e-9)
	}
}

func TestEngineRowsAreComplete(t *testing.T) {
	rows, err := NewEngine().Compute(syntheticSeries(300, 11))
	require.NoError(t, err)
	for _, r := range rows {
		assert.True(t, complete(r))
		assert.Greater(t, r.Volatility, 0.0)
		assert.GreaterOrEqual(t, r.RSI, 0.0)
		assert.LessOrEqual(t, r.RSI, 100.0)
		assert.GreaterOrEqual(t, r.BBUpper, r.BBMiddle)
		assert.LessOrEqual(t, r.BBLower, r.BBMiddle)
	}
}
