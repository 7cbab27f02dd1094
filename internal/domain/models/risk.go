package models

import (
	"fmt"
	"time"
)

// RiskLabel is a discrete risk regime.
type RiskLabel string

const (
	RiskLow    RiskLabel = "Low"
	RiskMedium RiskLabel = "Medium"
	RiskHigh   RiskLabel = "High"
)

// RiskClasses lists labels from lowest to highest risk. Class indices follow this order.
var RiskClasses = []RiskLabel{RiskLow, RiskMedium, RiskHigh}

// Index returns the position of l in RiskClasses, or -1.
func (l RiskLabel) Index() int {
	for i, c := range RiskClasses {
		if c == l {
			return i
		}
	}
	return -1
}

// Valid reports whether l is a known label.
func (l RiskLabel) Valid() bool { return l.Index() >= 0 }

// ParseRiskLabel converts a string into a RiskLabel.
func ParseRiskLabel(s string) (RiskLabel, error) {
	l := RiskLabel(s)
	if !l.Valid() {
		return "", fmt.Errorf("unknown risk label %q", s)
	}
	return l, nil
}

// PricePoint is one charting sample.
type PricePoint struct {
	Date  time.Time
	Price float64
}

// AnalysisResult is the output of one inference run.
type AnalysisResult struct {
	Symbol       string
	RiskLevel    RiskLabel
	Confidence   float64
	CurrentPrice float64
	Volatility   float64
	DailyReturn  float64
	AsOf         time.Time
	History      []PricePoint // chronological, at most HistoryLength entries
	ModelID      string
}

// HistoryLength caps AnalysisResult.History.
const HistoryLength = 30

// TreeNode is one node of a fitted decision tree. Leaves have Feature == -1.
type TreeNode struct {
	Feature   int     `json:"f"`
	Threshold float64 `json:"t,omitempty"`
	Left      int     `json:"l,omitempty"`
	Right     int     `json:"r,omitempty"`
	Class     int     `json:"c,omitempty"`
}

// Leaf reports whether the node is terminal.
func (n TreeNode) Leaf() bool { return n.Feature < 0 }

// DecisionTree is a flattened binary tree; Nodes[0] is the root.
type DecisionTree struct {
	Nodes []TreeNode `json:"nodes"`
}

// TrainedModel is the persisted classifier together with its feature contract.
// It is never mutated after training or loading.
type TrainedModel struct {
	ID        string          `json:"id"`
	Contract  FeatureContract `json:"contract"`
	Classes   []RiskLabel     `json:"classes"`
	Trees     []DecisionTree  `json:"trees"`
	Seed      int64           `json:"seed"`
	TrainedAt time.Time       `json:"trained_at"`
	Symbols   []string        `json:"symbols"`
	Rows      int             `json:"rows"`
}

// DateLayout is the wire format for dates.
const DateLayout = "2006-01-02"

// PricePointView is the wire form of PricePoint.
type PricePointView struct {
	Date  string  `json:"date"`
	Price float64 `json:"price"`
}

// AnalysisView is the wire form of AnalysisResult.
type AnalysisView struct {
	Symbol       string           `json:"symbol"`
	RiskLevel    RiskLabel        `json:"risk_level"`
	Confidence   float64          `json:"confidence"`
	CurrentPrice float64          `json:"current_price"`
	Volatility   float64          `json:"volatility"`
	DailyReturn  float64          `json:"daily_return"`
	AsOf         string           `json:"as_of"`
	History      []PricePointView `json:"history"`
	ModelID      string           `json:"model_id,omitempty"`
}

// View converts the result to its wire form.
func (r *AnalysisResult) View() AnalysisView {
	v := AnalysisView{
		Symbol:       r.Symbol,
		RiskLevel:    r.RiskLevel,
		Confidence:   r.Confidence,
		CurrentPrice: r.CurrentPrice,
		Volatility:   r.Volatility,
		DailyReturn:  r.DailyReturn,
		AsOf:         r.AsOf.Format(DateLayout),
		History:      make([]PricePointView, len(r.History)),
		ModelID:      r.ModelID,
	}
	for i, p := range r.History {
		v.History[i] = PricePointView{Date: p.Date.Format(DateLayout), Price: p.Price}
	}
	return v
}
