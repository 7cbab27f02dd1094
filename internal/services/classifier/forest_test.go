package classifier

import (
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RiskRegime/internal/domain/models"
)

// separable returns rows whose label depends only on the volatility column.
func separable(n int, seed int64) ([][]float64, []models.RiskLabel) {
	rng := rand.New(rand.NewSource(seed))
	X := make([][]float64, n)
	y := make([]models.RiskLabel, n)
	for i := range X {
		vol := rng.Float64()
		X[i] = []float64{rng.NormFloat64() * 0.01, vol, 100 + rng.Float64(), 95 + rng.Float64()}
		switch {
		case vol > 0.66:
			y[i] = models.RiskHigh
		case vol > 0.33:
			y[i] = models.RiskMedium
		default:
			y[i] = models.RiskLow
		}
	}
	return X, y
}

func TestForestLearnsSeparableData(t *testing.T) {
	X, y := separable(400, 1)
	trained, err := NewForest(models.RiskFeaturesV1, WithTrees(25)).Fit(X, y)
	require.NoError(t, err)
	assert.Len(t, trained.Trees, 25)
	assert.Equal(t, models.RiskClasses, trained.Classes)
	assert.Equal(t, 400, trained.Rows)

	m, err := NewModel(trained, models.RiskFeaturesV1)
	require.NoError(t, err)

	got, err := m.Predict([]float64{0, 0.9, 100, 95})
	require.NoError(t, err)
	assert.Equal(t, models.RiskHigh, got)
	got, err = m.Predict([]float64{0, 0.1, 100, 95})
	require.NoError(t, err)
	assert.Equal(t, models.RiskLow, got)

	proba, err := m.PredictProba([]float64{0, 0.5, 100, 95})
	require.NoError(t, err)
	sum := 0.0
	for _, p := range proba {
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestForestDeterministicAcrossWorkers(t *testing.T) {
	X, y := separable(200, 2)
	a, err := NewForest(models.RiskFeaturesV1, WithTrees(10), WithWorkers(1)).Fit(X, y)
	require.NoError(t, err)
	b, err := NewForest(models.RiskFeaturesV1, WithTrees(10), WithWorkers(8)).Fit(X, y)
	require.NoError(t, err)
	assert.Equal(t, a.Trees, b.Trees)

	c, err := NewForest(models.RiskFeaturesV1, WithTrees(10), WithSeed(7)).Fit(X, y)
	require.NoError(t, err)
	assert.NotEqual(t, a.Trees, c.Trees)
}

func TestForestMaxDepth(t *testing.T) {
	X, y := separable(200, 3)
	trained, err := NewForest(models.RiskFeaturesV1, WithTrees(5), WithMaxDepth(1)).Fit(X, y)
	require.NoError(t, err)
	for _, tree := range trained.Trees {
		assert.LessOrEqual(t, len(tree.Nodes), 3)
	}
}

func TestForestFitShapeMismatch(t *testing.T) {
	f := NewForest(models.RiskFeaturesV1, WithTrees(3))

	_, err := f.Fit([][]float64{{1, 2, 3}}, []models.RiskLabel{models.RiskLow})
	assert.ErrorIs(t, err, models.ErrShapeMismatch)

	_, err = f.Fit([][]float64{{1, 2, 3, 4}}, nil)
	assert.ErrorIs(t, err, models.ErrShapeMismatch)

	_, err = f.Fit(nil, nil)
	assert.ErrorIs(t, err, models.ErrShapeMismatch)
}

func TestModelShapeMismatch(t *testing.T) {
	X, y := separable(50, 4)
	trained, err := NewForest(models.RiskFeaturesV1, WithTrees(3)).Fit(X, y)
	require.NoError(t, err)
	m, err := NewModel(trained, models.RiskFeaturesV1)
	require.NoError(t, err)

	_, err = m.Predict([]float64{1, 2, 3})
	assert.ErrorIs(t, err, models.ErrShapeMismatch)
	_, err = m.Predict([]float64{1, 2, 3, 4, 5})
	assert.ErrorIs(t, err, models.ErrShapeMismatch)

	swapped := []string{models.FeatureVolatility, models.FeatureDailyReturn, models.FeatureMA50, models.FeatureMA200}
	_, _, err = m.PredictNamed(swapped, []float64{1, 2, 3, 4})
	assert.ErrorIs(t, err, models.ErrShapeMismatch)

	_, _, err = m.PredictNamed(models.RiskFeaturesV1.Names, []float64{0, 0.2, 100, 95})
	assert.NoError(t, err)

	other := models.FeatureContract{Version: 2, Names: models.RiskFeaturesV1.Names}
	_, err = NewModel(trained, other)
	assert.ErrorIs(t, err, models.ErrShapeMismatch)

	_, err = NewModel(nil, models.RiskFeaturesV1)
	assert.ErrorIs(t, err, models.ErrModelUnavailable)
}

func TestModelTieGoesToLowerRisk(t *testing.T) {
	leaf := func(c int) models.DecisionTree {
		return models.DecisionTree{Nodes: []models.TreeNode{{Feature: -1, Class: c}}}
	}
	trained := &models.TrainedModel{
		ID:       "tie",
		Contract: models.RiskFeaturesV1,
		Classes:  models.RiskClasses,
		Trees:    []models.DecisionTree{leaf(2), leaf(0), leaf(2), leaf(0)},
	}
	m, err := NewModel(trained, models.RiskFeaturesV1)
	require.NoError(t, err)

	label, conf, err := m.PredictWithConfidence([]float64{0, 0, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, models.RiskLow, label)
	assert.InDelta(t, 0.5, conf, 1e-12)
}

func TestModelSurvivesJSON(t *testing.T) {
	X, y := separable(120, 5)
	trained, err := NewForest(models.RiskFeaturesV1, WithTrees(8)).Fit(X, y)
	require.NoError(t, err)

	raw, err := json.Marshal(trained)
	require.NoError(t, err)
	var loaded models.TrainedModel
	require.NoError(t, json.Unmarshal(raw, &loaded))

	a, err := NewModel(trained, models.RiskFeaturesV1)
	require.NoError(t, err)
	b, err := NewModel(&loaded, models.RiskFeaturesV1)
	require.NoError(t, err)
	for _, x := range X {
		pa, err := a.PredictProba(x)
		require.NoError(t, err)
		pb, err := b.PredictProba(x)
		require.NoError(t, err)
		assert.Equal(t, pa, pb)
	}
}

// leafOf returns the node index x lands in.
func leafOf(t models.DecisionTree, x []float64) int {
	i := 0
	for !t.Nodes[i].Leaf() {
		if x[t.Nodes[i].Feature] <= t.Nodes[i].Threshold {
			i = t.Nodes[i].Left
		} else {
			i = t.Nodes[i].Right
		}
	}
	return i
}

func TestGrowTreeRespectsMinLeaf(t *testing.T) {
	X, labels := separable(200, 5)
	y := make([]int, len(labels))
	sample := make([]int, len(labels))
	for i, l := range labels {
		y[i] = l.Index()
		sample[i] = i
	}

	for _, minLeaf := range []int{1, 10, 40} {
		p := treeParams{maxFeatures: 4, minSplit: 2, minLeaf: minLeaf, nClasses: len(models.RiskClasses)}
		tree := growTree(X, y, sample, p, rand.New(rand.NewSource(1)))

		hits := make(map[int]int)
		for _, x := range X {
			hits[leafOf(tree, x)]++
		}
		for leaf, n := range hits {
			assert.GreaterOrEqual(t, n, minLeaf, "minLeaf=%d leaf=%d", minLeaf, leaf)
		}
		if minLeaf > 1 {
			assert.Greater(t, len(tree.Nodes), 1, "minLeaf=%d should still split", minLeaf)
		}
	}
}

func TestForestMinSamplesStopSplitting(t *testing.T) {
	X, y := separable(200, 6)

	byLeaf, err := NewForest(models.RiskFeaturesV1, WithTrees(5), WithMinSamplesLeaf(150)).Fit(X, y)
	require.NoError(t, err)
	bySplit, err := NewForest(models.RiskFeaturesV1, WithTrees(5), WithMinSamplesSplit(500)).Fit(X, y)
	require.NoError(t, err)
	for i := range byLeaf.Trees {
		assert.Len(t, byLeaf.Trees[i].Nodes, 1)
		assert.Len(t, bySplit.Trees[i].Nodes, 1)
	}

	deep, err := NewForest(models.RiskFeaturesV1, WithTrees(5)).Fit(X, y)
	require.NoError(t, err)
	shallow, err := NewForest(models.RiskFeaturesV1, WithTrees(5), WithMinSamplesLeaf(20)).Fit(X, y)
	require.NoError(t, err)
	assert.Less(t, nodeCount(shallow), nodeCount(deep))
}

func nodeCount(m *models.TrainedModel) int {
	n := 0
	for _, tree := range m.Trees {
		n += len(tree.Nodes)
	}
	return n
}

func TestModelRejectsUnknownClass(t *testing.T) {
	X, y := separable(50, 7)
	trained, err := NewForest(models.RiskFeaturesV1, WithTrees(3)).Fit(X, y)
	require.NoError(t, err)
	trained.Classes = []models.RiskLabel{models.RiskLow, "Extreme", models.RiskHigh}

	_, err = NewModel(trained, models.RiskFeaturesV1)
	assert.ErrorContains(t, err, `unknown risk label "Extreme"`)
}
