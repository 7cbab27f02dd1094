package classifier

import (
	"fmt"

	"RiskRegime/internal/domain/models"
)

// Evaluate scores the model on a labeled hold-out set. Classes absent from both the
// truth and the predictions are omitted. Undefined ratios count as zero.
func Evaluate(m *Model, X [][]float64, y []models.RiskLabel) (models.EvaluationReport, error) {
	if len(X) != len(y) {
		return models.EvaluationReport{}, fmt.Errorf("evaluate: %d rows but %d labels: %w",
			len(X), len(y), models.ErrShapeMismatch)
	}
	pred := make([]models.RiskLabel, len(X))
	for i, x := range X {
		p, err := m.Predict(x)
		if err != nil {
			return models.EvaluationReport{}, err
		}
		pred[i] = p
	}
	return Score(y, pred), nil
}

// Score builds a report from true and predicted labels.
func Score(truth, pred []models.RiskLabel) models.EvaluationReport {
	type tally struct{ tp, fp, fn, support int }
	counts := make(map[models.RiskLabel]*tally, len(models.RiskClasses))
	for _, c := range models.RiskClasses {
		counts[c] = &tally{}
	}
	correct := 0
	for i := range truth {
		t, p := truth[i], pred[i]
		if ct, ok := counts[t]; ok {
			ct.support++
		}
		if t == p {
			correct++
			if ct, ok := counts[t]; ok {
				ct.tp++
			}
			continue
		}
		if ct, ok := counts[t]; ok {
			ct.fn++
		}
		if cp, ok := counts[p]; ok {
			cp.fp++
		}
	}

	var r models.EvaluationReport
	r.TestSize = len(truth)
	if len(truth) > 0 {
		r.Accuracy = float64(correct) / float64(len(truth))
	}
	for _, c := range models.RiskClasses {
		t := counts[c]
		if t.support == 0 && t.fp == 0 {
			continue
		}
		cm := models.ClassMetrics{
			Label:     c,
			Precision: ratio(t.tp, t.tp+t.fp),
			Recall:    ratio(t.tp, t.tp+t.fn),
			Support:   t.support,
		}
		if cm.Precision+cm.Recall > 0 {
			cm.F1 = 2 * cm.Precision * cm.Recall / (cm.Precision + cm.Recall)
		}
		r.Classes = append(r.Classes, cm)
	}

	if n := len(r.Classes); n > 0 {
		for _, cm := range r.Classes {
			r.MacroAvg.Precision += cm.Precision / float64(n)
			r.MacroAvg.Recall += cm.Recall / float64(n)
			r.MacroAvg.F1 += cm.F1 / float64(n)
			if r.TestSize > 0 {
				w := float64(cm.Support) / float64(r.TestSize)
				r.Weighted.Precision += cm.Precision * w
				r.Weighted.Recall += cm.Recall * w
				r.Weighted.F1 += cm.F1 * w
			}
		}
	}
	r.MacroAvg.Support = r.TestSize
	r.Weighted.Support = r.TestSize
	return r
}

func ratio(a, b int) float64 {
	if b == 0 {
		return 0
	}
	return float64(a) / float64(b)
}
