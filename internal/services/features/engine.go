package features

import (
	"fmt"

	"RiskRegime/internal/domain/models"
)

// Indicator windows. They are fixed so training and serving always agree.
const (
	TradingDaysPerYear = 252
	VolatilityWindow   = 21
	FastMAWindow       = 50
	SlowMAWindow       = 200
	RSIPeriod          = 14
	MACDFast           = 12
	MACDSlow           = 26
	MACDSignal         = 9
	BollingerWindow    = 20
	BollingerK         = 2.0

	// MinHistory is the shortest series that yields at least one complete row.
	MinHistory = SlowMAWindow
)

// Engine computes FeatureRows from a cleaned series.
type Engine struct{}

// NewEngine creates an Engine.
func NewEngine() *Engine { return &Engine{} }

// Compute returns one row per bar that has full trailing history for every
// indicator, in ascending time order. The input is not modified.
func (e *Engine) Compute(s *models.Series) ([]models.FeatureRow, error) {
	if s.Len() < MinHistory {
		return nil, fmt.Errorf("features %s: %d bars, need %d: %w",
			symbolOf(s), s.Len(), MinHistory, models.ErrInsufficientHistory)
	}

	closes := s.Closes()
	returns := SimpleReturns(closes)
	vol := AnnualizedVolatility(returns, VolatilityWindow, TradingDaysPerYear)
	ma50 := RollingMean(closes, FastMAWindow)
	ma200 := RollingMean(closes, SlowMAWindow)
	rsi := WilderRSI(closes, RSIPeriod)
	macd, _ := MACD(closes, MACDFast, MACDSlow, MACDSignal)
	bbUpper, bbMiddle, bbLower := Bollinger(closes, BollingerWindow, BollingerK)

	rows := make([]models.FeatureRow, 0, len(closes)-MinHistory+1)
	for i, bar := range s.Bars {
		row := models.FeatureRow{
			Time:        bar.Time,
			Close:       bar.Close,
			DailyReturn: returns[i],
			Volatility:  vol[i],
			MA50:        ma50[i],
			MA200:       ma200[i],
			RSI:         rsi[i],
			MACD:        macd[i],
			BBUpper:     bbUpper[i],
			BBMiddle:    bbMiddle[i],
			BBLower:     bbLower[i],
		}
		if complete(row) {
			rows = append(rows, row)
		}
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("features %s: no complete rows: %w", symbolOf(s), models.ErrInsufficientHistory)
	}
	return rows, nil
}

func complete(r models.FeatureRow) bool {
	for _, v := range []float64{r.DailyReturn, r.Volatility, r.MA50, r.MA200, r.RSI, r.MACD, r.BBUpper, r.BBMiddle, r.BBLower} {
		if !defined(v) {
			return false
		}
	}
	return true
}

func symbolOf(s *models.Series) string {
	if s == nil {
		return ""
	}
	return s.Symbol
}
