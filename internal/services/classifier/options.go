package classifier

// Defaults for the forest.
const (
	DefaultTrees           = 100
	DefaultSeed      int64 = 42
	DefaultMinSplit        = 2
	DefaultMinLeaf         = 1
)

// Option configures a Forest.
type Option func(*Forest)

// WithTrees sets the ensemble size.
func WithTrees(n int) Option {
	return func(f *Forest) {
		if n > 0 {
			f.trees = n
		}
	}
}

// WithSeed sets the random seed used for bootstraps and feature sampling.
func WithSeed(seed int64) Option {
	return func(f *Forest) { f.seed = seed }
}

// WithMaxDepth limits tree depth. Zero means unlimited.
func WithMaxDepth(d int) Option {
	return func(f *Forest) {
		if d >= 0 {
			f.maxDepth = d
		}
	}
}

// WithMinSamplesSplit sets the smallest node that may be split.
func WithMinSamplesSplit(n int) Option {
	return func(f *Forest) {
		if n >= 2 {
			f.minSplit = n
		}
	}
}

// WithMinSamplesLeaf sets the smallest allowed leaf.
func WithMinSamplesLeaf(n int) Option {
	return func(f *Forest) {
		if n >= 1 {
			f.minLeaf = n
		}
	}
}

// WithWorkers bounds how many trees are grown concurrently.
func WithWorkers(n int) Option {
	return func(f *Forest) {
		if n > 0 {
			f.workers = n
		}
	}
}
