package models

import "time"

// RawBar is a daily OHLCV observation as reported by a market-data provider.
// A nil field means the provider had no value for it.
type RawBar struct {
	Time   time.Time
	Open   *float64
	High   *float64
	Low    *float64
	Close  *float64
	Volume *float64
}

// Bar is a cleaned daily OHLCV observation. Time is the trading date at UTC midnight.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Series is a gap-free, strictly ascending sequence of bars for one symbol.
type Series struct {
	Symbol string
	Bars   []Bar
}

// Len returns the number of bars.
func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Bars)
}

// Closes returns the close column.
func (s *Series) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}

// Float returns a pointer to v. Providers and tests use it to build RawBar values.
func Float(v float64) *float64 { return &v }
