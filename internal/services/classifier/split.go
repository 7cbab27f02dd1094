package classifier

import (
	"math"
	"math/rand"
	"sort"

	"RiskRegime/internal/domain/models"
)

// StratifiedSplit partitions row indices into train and test sets, keeping each
// label's share roughly equal in both. Every class with at least two rows
// contributes to both sides. Indices are returned in ascending order.
func StratifiedSplit(y []models.RiskLabel, testFraction float64, seed int64) (train, test []int) {
	byClass := make(map[models.RiskLabel][]int)
	var labels []models.RiskLabel
	for i, l := range y {
		if _, ok := byClass[l]; !ok {
			labels = append(labels, l)
		}
		byClass[l] = append(byClass[l], i)
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i].Index() < labels[j].Index() })

	rng := rand.New(rand.NewSource(seed))
	for _, l := range labels {
		idx := byClass[l]
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })

		k := int(math.Round(testFraction * float64(len(idx))))
		if len(idx) > 1 {
			if k == 0 && testFraction > 0 {
				k = 1
			}
			if k >= len(idx) {
				k = len(idx) - 1
			}
		} else {
			k = 0
		}
		test = append(test, idx[:k]...)
		train = append(train, idx[k:]...)
	}
	sort.Ints(train)
	sort.Ints(test)
	return train, test
}

// Take selects rows by index.
func Take[T any](xs []T, idx []int) []T {
	out := make([]T, len(idx))
	for i, j := range idx {
		out[i] = xs[j]
	}
	return out
}
