package models

import (
	"fmt"
	"strings"
)

// ClassMetrics holds per-class evaluation scores.
type ClassMetrics struct {
	Label     RiskLabel `json:"label"`
	Precision float64   `json:"precision"`
	Recall    float64   `json:"recall"`
	F1        float64   `json:"f1"`
	Support   int       `json:"support"`
}

// EvaluationReport summarizes classifier quality on the held-out split.
type EvaluationReport struct {
	Classes   []ClassMetrics `json:"classes"`
	Accuracy  float64        `json:"accuracy"`
	MacroAvg  ClassMetrics   `json:"macro_avg"`
	Weighted  ClassMetrics   `json:"weighted_avg"`
	TrainSize int            `json:"train_size"`
	TestSize  int            `json:"test_size"`
}

// String renders the report in the familiar classification-report layout.
func (r EvaluationReport) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%14s %10s %10s %10s %10s\n\n", "", "precision", "recall", "f1-score", "support")
	for _, c := range r.Classes {
		fmt.Fprintf(&b, "%14s %10.2f %10.2f %10.2f %10d\n", c.Label, c.Precision, c.Recall, c.F1, c.Support)
	}
	fmt.Fprintf(&b, "\n%14s %10s %10s %10.2f %10d\n", "accuracy", "", "", r.Accuracy, r.TestSize)
	fmt.Fprintf(&b, "%14s %10.2f %10.2f %10.2f %10d\n", "macro avg", r.MacroAvg.Precision, r.MacroAvg.Recall, r.MacroAvg.F1, r.TestSize)
	fmt.Fprintf(&b, "%14s %10.2f %10.2f %10.2f %10d\n", "weighted avg", r.Weighted.Precision, r.Weighted.Recall, r.Weighted.F1, r.TestSize)
	return b.String()
}
