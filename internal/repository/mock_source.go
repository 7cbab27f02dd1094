package repository

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand"
	"strings"
	"time"

	"RiskRegime/internal/domain/models"
	domrepo "RiskRegime/internal/domain/repository"
	"RiskRegime/pkg/util"
)

var _ domrepo.TimeSeriesSource = (*MockSource)(nil)

// MockSource generates deterministic weekday bars for offline runs. Each symbol gets
// its own seeded random walk: an uptrend for the first half and a downtrend after,
// with volatility regimes that rotate every 60 bars.
type MockSource struct {
	// Bars fixes the bar count. Zero derives it from the period.
	Bars int
	// End is the last generated date. Zero means today.
	End time.Time
}

func (m *MockSource) Name() string { return "mock" }

func (m *MockSource) Fetch(_ context.Context, symbol, period string, _ domrepo.Interval) ([]models.RawBar, error) {
	n := m.Bars
	end := m.End
	if end.IsZero() {
		end = time.Now().UTC()
	}
	if n <= 0 {
		from, err := util.PeriodStart(period, end)
		if err != nil {
			return nil, err
		}
		n = int(end.Sub(from).Hours() / 24 * 5 / 7)
	}
	return SyntheticBars(symbol, n, end), nil
}

// SyntheticBars returns n weekday bars ending at end.
func SyntheticBars(symbol string, n int, end time.Time) []models.RawBar {
	h := fnv.New64a()
	_, _ = h.Write([]byte(strings.ToUpper(symbol)))
	rng := rand.New(rand.NewSource(int64(h.Sum64() >> 1)))

	dates := make([]time.Time, n)
	d := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	for i := n - 1; i >= 0; i-- {
		for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			d = d.AddDate(0, 0, -1)
		}
		dates[i] = d
		d = d.AddDate(0, 0, -1)
	}

	out := make([]models.RawBar, n)
	price := 50 + 100*rng.Float64()
	for i := 0; i < n; i++ {
		drift := 0.0015
		if i >= n/2 {
			drift = -0.0015
		}
		scale := 0.004 + 0.008*float64((i/60)%3)
		if i > 0 {
			price *= math.Exp(drift + scale*rng.NormFloat64())
		}
		spread := price * scale
		out[i] = models.RawBar{
			Time:   dates[i],
			Open:   models.Float(price - spread/2),
			High:   models.Float(price + spread),
			Low:    models.Float(price - spread),
			Close:  models.Float(price),
			Volume: models.Float(float64(1_000_000 + rng.Intn(500_000))),
		}
	}
	return out
}
