package features

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"RiskRegime/internal/domain/models"
)

// Preprocess turns provider bars into a clean Series: bars with a missing or
// non-finite field are dropped, timestamps become UTC dates, the result is sorted
// ascending and duplicate dates keep the last bar the provider reported.
func Preprocess(symbol string, raw []models.RawBar) (*models.Series, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	byDate := make(map[time.Time]models.Bar, len(raw))
	for _, rb := range raw {
		bar, ok := cleanBar(rb)
		if !ok {
			continue
		}
		byDate[bar.Time] = bar
	}
	if len(byDate) == 0 {
		return nil, fmt.Errorf("preprocess %s: %w", symbol, models.ErrEmptySeries)
	}

	bars := make([]models.Bar, 0, len(byDate))
	for _, b := range byDate {
		bars = append(bars, b)
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })

	return &models.Series{Symbol: symbol, Bars: bars}, nil
}

func cleanBar(rb models.RawBar) (models.Bar, bool) {
	if rb.Time.IsZero() {
		return models.Bar{}, false
	}
	vals := [5]*float64{rb.Open, rb.High, rb.Low, rb.Close, rb.Volume}
	for _, v := range vals {
		if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
			return models.Bar{}, false
		}
	}
	return models.Bar{
		Time:   TradingDate(rb.Time),
		Open:   *rb.Open,
		High:   *rb.High,
		Low:    *rb.Low,
		Close:  *rb.Close,
		Volume: *rb.Volume,
	}, true
}

// TradingDate truncates t to its UTC calendar date.
func TradingDate(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
