package models

import (
	"fmt"
	"time"
)

// FeatureRow holds the engineered indicators for one bar. Every field is defined;
// rows without full trailing history are never produced.
type FeatureRow struct {
	Time        time.Time `json:"time"`
	Close       float64   `json:"close"`
	DailyReturn float64   `json:"daily_return"`
	Volatility  float64   `json:"volatility"`
	MA50        float64   `json:"ma50"`
	MA200       float64   `json:"ma200"`
	RSI         float64   `json:"rsi"`
	MACD        float64   `json:"macd"`
	BBUpper     float64   `json:"bb_upper"`
	BBMiddle    float64   `json:"bb_middle"`
	BBLower     float64   `json:"bb_lower"`
}

// LabeledRow is a FeatureRow with its training-time risk label.
type LabeledRow struct {
	FeatureRow
	Risk RiskLabel `json:"risk"`
}

// Thresholds are the batch-relative volatility cut points. They only live for one training run.
type Thresholds struct {
	Q33 float64 `json:"q33"`
	Q66 float64 `json:"q66"`
}

// Feature names understood by FeatureContract.
const (
	FeatureDailyReturn = "daily_return"
	FeatureVolatility  = "volatility"
	FeatureMA50        = "ma50"
	FeatureMA200       = "ma200"
	FeatureRSI         = "rsi"
	FeatureMACD        = "macd"
	FeatureBBUpper     = "bb_upper"
	FeatureBBMiddle    = "bb_middle"
	FeatureBBLower     = "bb_lower"
)

// FeatureContract is the ordered list of features a classifier consumes.
// Training and serving must use an identical contract.
type FeatureContract struct {
	Version int      `json:"version"`
	Names   []string `json:"names"`
}

// RiskFeaturesV1 is the classifier input: RSI, MACD and Bollinger bands are computed
// by the engine but deliberately left out, as in the reference model.
var RiskFeaturesV1 = FeatureContract{
	Version: 1,
	Names:   []string{FeatureDailyReturn, FeatureVolatility, FeatureMA50, FeatureMA200},
}

// Width returns the number of features.
func (c FeatureContract) Width() int { return len(c.Names) }

// Equal reports whether both contracts have the same version and the same names in the same order.
func (c FeatureContract) Equal(o FeatureContract) bool {
	if c.Version != o.Version || len(c.Names) != len(o.Names) {
		return false
	}
	for i := range c.Names {
		if c.Names[i] != o.Names[i] {
			return false
		}
	}
	return true
}

// String renders the contract as "v1[daily_return,volatility,...]".
func (c FeatureContract) String() string {
	return fmt.Sprintf("v%d%v", c.Version, c.Names)
}

// Vector projects a row onto the contract order.
func (c FeatureContract) Vector(r FeatureRow) ([]float64, error) {
	out := make([]float64, 0, len(c.Names))
	for _, n := range c.Names {
		v, ok := r.Value(n)
		if !ok {
			return nil, fmt.Errorf("%w: unknown feature %q", ErrShapeMismatch, n)
		}
		out = append(out, v)
	}
	return out, nil
}

// Matrix projects rows onto the contract order.
func (c FeatureContract) Matrix(rows []FeatureRow) ([][]float64, error) {
	out := make([][]float64, 0, len(rows))
	for _, r := range rows {
		v, err := c.Vector(r)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Value returns a feature by name.
func (r FeatureRow) Value(name string) (float64, bool) {
	switch name {
	case FeatureDailyReturn:
		return r.DailyReturn, true
	case FeatureVolatility:
		return r.Volatility, true
	case FeatureMA50:
		return r.MA50, true
	case FeatureMA200:
		return r.MA200, true
	case FeatureRSI:
		return r.RSI, true
	case FeatureMACD:
		return r.MACD, true
	case FeatureBBUpper:
		return r.BBUpper, true
	case FeatureBBMiddle:
		return r.BBMiddle, true
	case FeatureBBLower:
		return r.BBLower, true
	default:
		return 0, false
	}
}
