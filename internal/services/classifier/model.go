package classifier

import (
	"fmt"
	"math"

	"RiskRegime/internal/domain/models"
	"RiskRegime/internal/domain/service"
)

var _ service.RiskPredictor = (*Model)(nil)

// Model scores feature vectors with a trained forest. It is safe for concurrent use.
type Model struct {
	trained *models.TrainedModel
}

// NewModel wraps a trained or loaded forest. The model's contract must equal the
// contract this binary computes features for.
func NewModel(m *models.TrainedModel, compiled models.FeatureContract) (*Model, error) {
	if m == nil {
		return nil, models.ErrModelUnavailable
	}
	if !m.Contract.Equal(compiled) {
		return nil, fmt.Errorf("model %s uses contract %s, binary computes %s: %w",
			m.ID, m.Contract, compiled, models.ErrShapeMismatch)
	}
	if len(m.Trees) == 0 {
		return nil, fmt.Errorf("model %s has no trees", m.ID)
	}
	if len(m.Classes) == 0 {
		return nil, fmt.Errorf("model %s has no classes", m.ID)
	}
	for _, c := range m.Classes {
		if _, err := models.ParseRiskLabel(string(c)); err != nil {
			return nil, fmt.Errorf("model %s: %w", m.ID, err)
		}
	}
	for _, t := range m.Trees {
		if err := checkTree(t, m.Contract.Width(), len(m.Classes)); err != nil {
			return nil, fmt.Errorf("model %s: %w", m.ID, err)
		}
	}
	return &Model{trained: m}, nil
}

// Trained returns the underlying model.
func (m *Model) Trained() *models.TrainedModel { return m.trained }

// Contract returns the feature order the model expects.
func (m *Model) Contract() models.FeatureContract { return m.trained.Contract }

// PredictProba returns the fraction of trees voting for each class, in Classes order.
func (m *Model) PredictProba(x []float64) ([]float64, error) {
	if len(x) != m.trained.Contract.Width() {
		return nil, fmt.Errorf("predict: got %d features, contract %s wants %d: %w",
			len(x), m.trained.Contract, m.trained.Contract.Width(), models.ErrShapeMismatch)
	}
	for _, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("predict: non-finite feature")
		}
	}
	votes := make([]float64, len(m.trained.Classes))
	for _, t := range m.trained.Trees {
		votes[walk(t, x)]++
	}
	n := float64(len(m.trained.Trees))
	for i := range votes {
		votes[i] /= n
	}
	return votes, nil
}

// Predict returns the majority vote. Ties go to the lower-risk class.
func (m *Model) Predict(x []float64) (models.RiskLabel, error) {
	label, _, err := m.PredictWithConfidence(x)
	return label, err
}

// PredictWithConfidence returns the majority label and its vote fraction.
func (m *Model) PredictWithConfidence(x []float64) (models.RiskLabel, float64, error) {
	proba, err := m.PredictProba(x)
	if err != nil {
		return "", 0, err
	}
	best := 0
	for c := 1; c < len(proba); c++ {
		if proba[c] > proba[best] {
			best = c
		}
	}
	return m.trained.Classes[best], proba[best], nil
}

// PredictNamed checks that names match the contract exactly, order included, before predicting.
func (m *Model) PredictNamed(names []string, x []float64) (models.RiskLabel, float64, error) {
	got := models.FeatureContract{Version: m.trained.Contract.Version, Names: names}
	if !got.Equal(m.trained.Contract) {
		return "", 0, fmt.Errorf("predict: features %v, contract %s: %w", names, m.trained.Contract, models.ErrShapeMismatch)
	}
	return m.PredictWithConfidence(x)
}

// PredictRow projects a feature row onto the contract and predicts.
func (m *Model) PredictRow(r models.FeatureRow) (models.RiskLabel, float64, error) {
	x, err := m.trained.Contract.Vector(r)
	if err != nil {
		return "", 0, err
	}
	return m.PredictWithConfidence(x)
}

func checkTree(t models.DecisionTree, width, classes int) error {
	if len(t.Nodes) == 0 {
		return fmt.Errorf("empty tree")
	}
	for i, n := range t.Nodes {
		if n.Leaf() {
			if n.Class < 0 || n.Class >= classes {
				return fmt.Errorf("node %d: class %d out of range", i, n.Class)
			}
			continue
		}
		if n.Feature >= width {
			return fmt.Errorf("node %d: feature %d out of range: %w", i, n.Feature, models.ErrShapeMismatch)
		}
		if n.Left <= i || n.Right <= i || n.Left >= len(t.Nodes) || n.Right >= len(t.Nodes) {
			return fmt.Errorf("node %d: bad children", i)
		}
	}
	return nil
}
