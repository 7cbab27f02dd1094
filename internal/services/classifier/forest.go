package classifier

import (
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"RiskRegime/internal/domain/models"
	"RiskRegime/internal/domain/service"
)

var _ service.RiskClassifier = (*Forest)(nil)

// Forest trains a random forest of CART trees over a fixed feature contract.
type Forest struct {
	contract models.FeatureContract
	trees    int
	seed     int64
	maxDepth int
	minSplit int
	minLeaf  int
	workers  int
	now      func() time.Time
}

// NewForest creates a forest trainer for the given contract.
func NewForest(contract models.FeatureContract, opts ...Option) *Forest {
	f := &Forest{
		contract: contract,
		trees:    DefaultTrees,
		seed:     DefaultSeed,
		minSplit: DefaultMinSplit,
		minLeaf:  DefaultMinLeaf,
		workers:  runtime.GOMAXPROCS(0),
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fit grows the ensemble. Each tree draws a bootstrap sample and considers
// ceil(sqrt(d)) features per split. Tree seeds are drawn up front from the forest
// seed, so the result does not depend on how many workers grow trees.
func (f *Forest) Fit(X [][]float64, y []models.RiskLabel) (*models.TrainedModel, error) {
	if len(X) == 0 {
		return nil, fmt.Errorf("fit: empty training set: %w", models.ErrShapeMismatch)
	}
	if len(X) != len(y) {
		return nil, fmt.Errorf("fit: %d rows but %d labels: %w", len(X), len(y), models.ErrShapeMismatch)
	}
	width := f.contract.Width()
	for i, row := range X {
		if len(row) != width {
			return nil, fmt.Errorf("fit: row %d has %d features, contract %s wants %d: %w",
				i, len(row), f.contract, width, models.ErrShapeMismatch)
		}
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("fit: row %d has a non-finite feature", i)
			}
		}
	}
	classes := make([]int, len(y))
	for i, l := range y {
		c := l.Index()
		if c < 0 {
			return nil, fmt.Errorf("fit: row %d has unknown label %q", i, l)
		}
		classes[i] = c
	}

	params := treeParams{
		maxFeatures: int(math.Ceil(math.Sqrt(float64(width)))),
		maxDepth:    f.maxDepth,
		minSplit:    f.minSplit,
		minLeaf:     f.minLeaf,
		nClasses:    len(models.RiskClasses),
	}

	master := rand.New(rand.NewSource(f.seed))
	seeds := make([]int64, f.trees)
	for i := range seeds {
		seeds[i] = master.Int63()
	}

	trees := make([]models.DecisionTree, f.trees)
	g := new(errgroup.Group)
	g.SetLimit(f.workers)
	for i := range trees {
		i := i
		g.Go(func() error {
			rng := rand.New(rand.NewSource(seeds[i]))
			sample := make([]int, len(X))
			for j := range sample {
				sample[j] = rng.Intn(len(X))
			}
			trees[i] = growTree(X, classes, sample, params, rng)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	trainedAt := f.now()
	return &models.TrainedModel{
		ID:        fmt.Sprintf("rf-%s-%d", trainedAt.Format("20060102T150405Z"), f.seed),
		Contract:  cloneContract(f.contract),
		Classes:   append([]models.RiskLabel(nil), models.RiskClasses...),
		Trees:     trees,
		Seed:      f.seed,
		TrainedAt: trainedAt,
		Rows:      len(X),
	}, nil
}

func cloneContract(c models.FeatureContract) models.FeatureContract {
	return models.FeatureContract{Version: c.Version, Names: append([]string(nil), c.Names...)}
}
