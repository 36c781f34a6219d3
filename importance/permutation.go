// Package importance measures how much each feature contributes to a
// fitted classifier's accuracy, by permutation: shuffle one feature
// column, re-score, and report the accuracy drop. A feature the model
// ignores scores near zero.
package importance

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/factoryml/trainer/core/model"
	"github.com/factoryml/trainer/metrics"
	"github.com/factoryml/trainer/pkg/errors"
)

// Option configures a permutation run.
type Option func(*config)

type config struct {
	repeats int
	seed    int64
}

// WithRepeats sets how many shuffles are averaged per feature.
func WithRepeats(n int) Option {
	return func(c *config) { c.repeats = n }
}

// WithSeed seeds the shuffle RNG for reproducible scores.
func WithSeed(seed int64) Option {
	return func(c *config) { c.seed = seed }
}

// Permutation returns one importance score per feature column of X: the
// mean accuracy drop over repeated shuffles of that column. Scores can be
// slightly negative for irrelevant features; that is noise, not signal.
func Permutation(clf model.Classifier, X *mat.Dense, y []int, options ...Option) ([]float64, error) {
	cfg := &config{repeats: 5, seed: 42}
	for _, opt := range options {
		opt(cfg)
	}
	if cfg.repeats < 1 {
		return nil, errors.NewValueError("importance.Permutation", "repeats must be >= 1")
	}

	rows, cols := X.Dims()
	if rows == 0 || cols == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "importance.Permutation")
	}
	if len(y) != rows {
		return nil, errors.NewDimensionError("importance.Permutation", rows, len(y), 0)
	}

	baselinePred, err := clf.Predict(X)
	if err != nil {
		return nil, err
	}
	baseline, err := metrics.Accuracy(y, baselinePred)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(cfg.seed))
	shuffled := mat.DenseCopyOf(X)
	column := make([]float64, rows)

	scores := make([]float64, cols)
	for j := 0; j < cols; j++ {
		drop := 0.0
		for rep := 0; rep < cfg.repeats; rep++ {
			mat.Col(column, j, X)
			rng.Shuffle(rows, func(a, b int) {
				column[a], column[b] = column[b], column[a]
			})
			shuffled.SetCol(j, column)

			pred, err := clf.Predict(shuffled)
			if err != nil {
				return nil, err
			}
			acc, err := metrics.Accuracy(y, pred)
			if err != nil {
				return nil, err
			}
			drop += baseline - acc
		}
		// Restore the column before moving on.
		mat.Col(column, j, X)
		shuffled.SetCol(j, column)

		scores[j] = drop / float64(cfg.repeats)
	}
	return scores, nil
}
