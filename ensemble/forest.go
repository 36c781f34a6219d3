package ensemble

import (
	"math"
	"math/rand"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/factoryml/trainer/core/model"
	"github.com/factoryml/trainer/pkg/errors"
)

// RandomForestClassifier bags decision trees over bootstrap samples and
// predicts by averaging tree probabilities. Trees train concurrently, one
// goroutine per tree, each with its own seeded RNG.
type RandomForestClassifier struct {
	model.BaseEstimator

	// NEstimators is the number of trees.
	NEstimators int
	// MaxDepth limits tree depth; 0 means no limit.
	MaxDepth int
	// MinSamplesSplit is the minimum sample count to attempt a split.
	MinSamplesSplit int
	// MaxFeatures is the feature-subsample size per split; 0 means
	// sqrt(n_features).
	MaxFeatures int
	// Bootstrap toggles sampling rows with replacement per tree.
	Bootstrap bool
	// RandomState seeds the per-tree RNGs.
	RandomState int64

	// Trees holds the fitted ensemble.
	Trees []*DecisionTreeClassifier
	// ClassLabels holds the class labels in proba column order.
	ClassLabels []int
	// NFeatures is the training feature width.
	NFeatures int
}

// ForestOption configures a RandomForestClassifier.
type ForestOption func(*RandomForestClassifier)

// WithNEstimators sets the number of trees.
func WithNEstimators(n int) ForestOption {
	return func(f *RandomForestClassifier) { f.NEstimators = n }
}

// WithForestMaxDepth sets the per-tree depth limit.
func WithForestMaxDepth(d int) ForestOption {
	return func(f *RandomForestClassifier) { f.MaxDepth = d }
}

// WithForestMaxFeatures sets the feature-subsample size per split.
func WithForestMaxFeatures(k int) ForestOption {
	return func(f *RandomForestClassifier) { f.MaxFeatures = k }
}

// WithBootstrap toggles bootstrap sampling.
func WithBootstrap(b bool) ForestOption {
	return func(f *RandomForestClassifier) { f.Bootstrap = b }
}

// WithRandomState seeds the ensemble for reproducible training.
func WithRandomState(seed int64) ForestOption {
	return func(f *RandomForestClassifier) { f.RandomState = seed }
}

// NewRandomForestClassifier returns a forest with defaults matching the
// common scikit-learn configuration.
func NewRandomForestClassifier(opts ...ForestOption) *RandomForestClassifier {
	f := &RandomForestClassifier{
		NEstimators:     100,
		MinSamplesSplit: 2,
		Bootstrap:       true,
		RandomState:     42,
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Fit trains the ensemble.
func (f *RandomForestClassifier) Fit(X mat.Matrix, y []int) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.Wrap(errors.ErrEmptyData, "RandomForestClassifier.Fit")
	}
	if len(y) != r {
		return errors.NewDimensionError("RandomForestClassifier.Fit", r, len(y), 0)
	}
	if f.NEstimators < 1 {
		return errors.NewValueError("RandomForestClassifier.Fit", "n_estimators must be >= 1")
	}

	f.NFeatures = c
	f.ClassLabels = uniqueLabels(y)

	maxFeatures := f.MaxFeatures
	if maxFeatures <= 0 {
		maxFeatures = int(math.Sqrt(float64(c)))
		if maxFeatures < 1 {
			maxFeatures = 1
		}
	}

	f.Trees = make([]*DecisionTreeClassifier, f.NEstimators)
	var wg sync.WaitGroup
	errCh := make(chan error, f.NEstimators)

	for i := 0; i < f.NEstimators; i++ {
		wg.Add(1)
		go func(treeIdx int) {
			defer wg.Done()

			// A fresh source per tree keeps training reproducible and
			// avoids lock contention on a shared RNG.
			rng := rand.New(rand.NewSource(f.RandomState + int64(treeIdx)))

			idx := make([]int, r)
			for j := 0; j < r; j++ {
				if f.Bootstrap {
					idx[j] = rng.Intn(r)
				} else {
					idx[j] = j
				}
			}

			tree := NewDecisionTreeClassifier(
				WithMaxDepth(f.MaxDepth),
				WithMinSamplesSplit(f.MinSamplesSplit),
				WithMaxFeatures(maxFeatures),
				WithTreeRandomState(f.RandomState+int64(treeIdx)),
			)
			if err := tree.FitIndices(X, y, idx, f.ClassLabels); err != nil {
				errCh <- err
				return
			}
			f.Trees[treeIdx] = tree
		}(i)
	}
	wg.Wait()
	close(errCh)

	for err := range errCh {
		if err != nil {
			return err
		}
	}

	f.SetFitted()
	return nil
}

// Predict returns the highest-probability class per row.
func (f *RandomForestClassifier) Predict(X mat.Matrix) ([]int, error) {
	proba, err := f.PredictProba(X)
	if err != nil {
		return nil, err
	}
	return argmaxLabels(proba, f.ClassLabels), nil
}

// PredictProba averages the per-tree class distributions.
func (f *RandomForestClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if !f.IsFitted() {
		return nil, errors.NewNotFittedError("RandomForestClassifier", "PredictProba")
	}
	r, c := X.Dims()
	if c != f.NFeatures {
		return nil, errors.NewDimensionError("RandomForestClassifier.PredictProba", f.NFeatures, c, 1)
	}

	sum := mat.NewDense(r, len(f.ClassLabels), nil)
	for _, tree := range f.Trees {
		proba, err := tree.PredictProba(X)
		if err != nil {
			return nil, err
		}
		sum.Add(sum, proba)
	}
	sum.Scale(1/float64(len(f.Trees)), sum)
	return sum, nil
}

// Classes returns the class labels in proba column order.
func (f *RandomForestClassifier) Classes() []int {
	return f.ClassLabels
}

// FeatureImportances averages the per-tree impurity-decrease importances.
func (f *RandomForestClassifier) FeatureImportances() ([]float64, error) {
	if !f.IsFitted() {
		return nil, errors.NewNotFittedError("RandomForestClassifier", "FeatureImportances")
	}
	out := make([]float64, f.NFeatures)
	for _, tree := range f.Trees {
		imp, err := tree.FeatureImportances()
		if err != nil {
			return nil, err
		}
		for j, v := range imp {
			out[j] += v
		}
	}
	for j := range out {
		out[j] /= float64(len(f.Trees))
	}
	return out, nil
}
