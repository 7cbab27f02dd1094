package classifier

import (
	"math/rand"
	"sort"

	"RiskRegime/internal/domain/models"
)

type treeParams struct {
	maxFeatures int
	maxDepth    int
	minSplit    int
	minLeaf     int
	nClasses    int
}

// grower builds one CART tree over a bootstrap sample.
type grower struct {
	X     [][]float64
	y     []int
	p     treeParams
	rng   *rand.Rand
	nodes []models.TreeNode
}

func growTree(X [][]float64, y []int, sample []int, p treeParams, rng *rand.Rand) models.DecisionTree {
	g := &grower{X: X, y: y, p: p, rng: rng}
	g.build(sample, 0)
	return models.DecisionTree{Nodes: g.nodes}
}

func (g *grower) build(idx []int, depth int) int {
	counts := g.classCounts(idx)
	id := len(g.nodes)
	g.nodes = append(g.nodes, models.TreeNode{Feature: -1, Class: majority(counts)})

	if gini(counts, len(idx)) == 0 || len(idx) < g.p.minSplit || (g.p.maxDepth > 0 && depth >= g.p.maxDepth) {
		return id
	}
	feature, threshold, ok := g.bestSplit(idx, counts)
	if !ok {
		return id
	}

	var left, right []int
	for _, i := range idx {
		if g.X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	l := g.build(left, depth+1)
	r := g.build(right, depth+1)
	g.nodes[id] = models.TreeNode{Feature: feature, Threshold: threshold, Left: l, Right: r}
	return id
}

// bestSplit scans a random subset of features for the split with the lowest weighted
// Gini impurity. If none of the sampled features can be split it keeps drawing.
func (g *grower) bestSplit(idx []int, parent []int) (int, float64, bool) {
	d := len(g.X[idx[0]])
	order := g.rng.Perm(d)

	bestFeature, bestThreshold := -1, 0.0
	bestScore := 2.0
	sorted := make([]int, len(idx))
	for k, f := range order {
		if k >= g.p.maxFeatures && bestFeature >= 0 {
			break
		}
		copy(sorted, idx)
		sort.SliceStable(sorted, func(a, b int) bool { return g.X[sorted[a]][f] < g.X[sorted[b]][f] })

		left := make([]int, g.p.nClasses)
		right := append([]int(nil), parent...)
		n := len(sorted)
		for i := 0; i < n-1; i++ {
			c := g.y[sorted[i]]
			left[c]++
			right[c]--
			nl := i + 1
			nr := n - nl
			lo, hi := g.X[sorted[i]][f], g.X[sorted[i+1]][f]
			if lo == hi || nl < g.p.minLeaf || nr < g.p.minLeaf {
				continue
			}
			score := (float64(nl)*gini(left, nl) + float64(nr)*gini(right, nr)) / float64(n)
			if score < bestScore {
				bestScore = score
				bestFeature = f
				bestThreshold = lo + (hi-lo)/2
			}
		}
	}
	return bestFeature, bestThreshold, bestFeature >= 0
}

func (g *grower) classCounts(idx []int) []int {
	counts := make([]int, g.p.nClasses)
	for _, i := range idx {
		counts[g.y[i]]++
	}
	return counts
}

func gini(counts []int, n int) float64 {
	if n == 0 {
		return 0
	}
	sum := 0.0
	for _, c := range counts {
		p := float64(c) / float64(n)
		sum += p * p
	}
	return 1 - sum
}

// majority returns the most frequent class; ties resolve to the lower index.
func majority(counts []int) int {
	best := 0
	for c := 1; c < len(counts); c++ {
		if counts[c] > counts[best] {
			best = c
		}
	}
	return best
}

func walk(t models.DecisionTree, x []float64) int {
	i := 0
	for {
		n := t.Nodes[i]
		if n.Leaf() {
			return n.Class
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}
