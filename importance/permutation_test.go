package importance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/factoryml/trainer/pkg/errors"
)

// thresholdClassifier predicts on the first feature only, so permutation
// importance has a known ground truth: feature 0 matters, the rest do not.
type thresholdClassifier struct{}

func (c *thresholdClassifier) Fit(X mat.Matrix, y []int) error { return nil }

func (c *thresholdClassifier) Predict(X mat.Matrix) ([]int, error) {
	r, _ := X.Dims()
	pred := make([]int, r)
	for i := 0; i < r; i++ {
		if X.At(i, 0) > 0.5 {
			pred[i] = 1
		}
	}
	return pred, nil
}

func (c *thresholdClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	pred, _ := c.Predict(X)
	proba := mat.NewDense(len(pred), 2, nil)
	for i, p := range pred {
		proba.Set(i, p, 1)
	}
	return proba, nil
}

func (c *thresholdClassifier) Classes() []int { return []int{0, 1} }

func permutationTestData(n int) (*mat.Dense, []int) {
	X := mat.NewDense(n, 2, nil)
	y := make([]int, n)
	for i := 0; i < n; i++ {
		x0 := float64(i) / float64(n)
		X.Set(i, 0, x0)
		X.Set(i, 1, float64(i%5))
		if x0 > 0.5 {
			y[i] = 1
		}
	}
	return X, y
}

func TestPermutationRanksInformativeFeature(t *testing.T) {
	X, y := permutationTestData(100)

	scores, err := Permutation(&thresholdClassifier{}, X, y, WithSeed(7))
	require.NoError(t, err)
	require.Len(t, scores, 2)

	// Shuffling the decision feature destroys accuracy; shuffling the
	// ignored feature changes nothing.
	assert.Greater(t, scores[0], 0.2)
	assert.InDelta(t, 0.0, scores[1], 1e-12)
}

func TestPermutationReproducible(t *testing.T) {
	X, y := permutationTestData(60)

	first, err := Permutation(&thresholdClassifier{}, X, y, WithSeed(3), WithRepeats(4))
	require.NoError(t, err)
	second, err := Permutation(&thresholdClassifier{}, X, y, WithSeed(3), WithRepeats(4))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestPermutationLeavesInputIntact(t *testing.T) {
	X, y := permutationTestData(40)
	original := mat.DenseCopyOf(X)

	_, err := Permutation(&thresholdClassifier{}, X, y, WithSeed(1))
	require.NoError(t, err)
	assert.True(t, mat.Equal(original, X), "input matrix must not be mutated")
}

func TestPermutationErrors(t *testing.T) {
	X, y := permutationTestData(10)

	_, err := Permutation(&thresholdClassifier{}, X, y[:4])
	var dimErr *errors.DimensionError
	assert.True(t, errors.As(err, &dimErr))

	_, err = Permutation(&thresholdClassifier{}, mat.NewDense(1, 1, nil), nil)
	assert.Error(t, err)

	_, err = Permutation(&thresholdClassifier{}, X, y, WithRepeats(0))
	var valErr *errors.ValueError
	assert.True(t, errors.As(err, &valErr))
}
