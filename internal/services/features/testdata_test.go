package features

import (
	"math"
	"math/rand"
	"time"

	"RiskRegime/internal/domain/models"
)

var baseDate = time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)

// syntheticRaw builds n daily bars that rise for the first half and fall for the
// second, with a volatility regime that changes every 60 days.
func syntheticRaw(n int, seed int64) []models.RawBar {
	rng := rand.New(rand.NewSource(seed))
	out := make([]models.RawBar, 0, n)
	price := 100.0
	for i := 0; i < n; i++ {
		drift := 0.002
		if i >= n/2 {
			drift = -0.002
		}
		scale := 0.005 + 0.01*float64((i/60)%3)
		if i > 0 {
			price *= math.Exp(drift + scale*rng.NormFloat64())
		}
		out = append(out, models.RawBar{
			Time:   baseDate.AddDate(0, 0, i),
			Open:   models.Float(price * 0.999),
			High:   models.Float(price * 1.01),
			Low:    models.Float(price * 0.99),
			Close:  models.Float(price),
			Volume: models.Float(1e6 + float64(i)),
		})
	}
	return out
}

func syntheticSeries(n int, seed int64) *models.Series {
	s, err := Preprocess("TEST", syntheticRaw(n, seed))
	if err != nil {
		panic(err)
	}
	return s
}
