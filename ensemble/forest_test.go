package ensemble

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	trainererrors "github.com/factoryml/trainer/pkg/errors"
)

// separableData builds a two-feature problem where class is decided by the
// first feature alone.
func separableData(n int) (*mat.Dense, []int) {
	X := mat.NewDense(n, 2, nil)
	y := make([]int, n)
	for i := 0; i < n; i++ {
		x0 := float64(i) / float64(n)
		X.Set(i, 0, x0)
		X.Set(i, 1, float64(i%7)) // uninformative
		if x0 > 0.5 {
			y[i] = 1
		}
	}
	return X, y
}

func TestRandomForestFitPredict(t *testing.T) {
	X, y := separableData(100)

	clf := NewRandomForestClassifier(WithNEstimators(25), WithRandomState(1))
	require.NoError(t, clf.Fit(X, y))
	assert.True(t, clf.IsFitted())
	assert.Equal(t, []int{0, 1}, clf.Classes())

	pred, err := clf.Predict(X)
	require.NoError(t, err)

	correct := 0
	for i := range pred {
		if pred[i] == y[i] {
			correct++
		}
	}
	// A separable problem on its own training data should be near-perfect.
	assert.GreaterOrEqual(t, correct, 95)
}

func TestRandomForestPredictProbaShape(t *testing.T) {
	X, y := separableData(60)

	clf := NewRandomForestClassifier(WithNEstimators(10), WithRandomState(3))
	require.NoError(t, clf.Fit(X, y))

	proba, err := clf.PredictProba(X)
	require.NoError(t, err)

	r, c := proba.Dims()
	assert.Equal(t, 60, r)
	assert.Equal(t, 2, c)
	for i := 0; i < r; i++ {
		sum := proba.At(i, 0) + proba.At(i, 1)
		assert.InDelta(t, 1.0, sum, 1e-9, "row %d probabilities must sum to 1", i)
	}
}

func TestRandomForestReproducible(t *testing.T) {
	X, y := separableData(80)

	clf1 := NewRandomForestClassifier(WithNEstimators(15), WithRandomState(9))
	clf2 := NewRandomForestClassifier(WithNEstimators(15), WithRandomState(9))
	require.NoError(t, clf1.Fit(X, y))
	require.NoError(t, clf2.Fit(X, y))

	pred1, err := clf1.Predict(X)
	require.NoError(t, err)
	pred2, err := clf2.Predict(X)
	require.NoError(t, err)
	assert.Equal(t, pred1, pred2)
}

func TestRandomForestFeatureImportances(t *testing.T) {
	X, y := separableData(100)

	clf := NewRandomForestClassifier(WithNEstimators(20), WithRandomState(5), WithForestMaxFeatures(2))
	require.NoError(t, clf.Fit(X, y))

	imp, err := clf.FeatureImportances()
	require.NoError(t, err)
	require.Len(t, imp, 2)

	// The informative feature dominates.
	assert.Greater(t, imp[0], imp[1])

	sum := imp[0] + imp[1]
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestRandomForestNotFitted(t *testing.T) {
	clf := NewRandomForestClassifier()
	_, err := clf.Predict(mat.NewDense(1, 2, nil))
	var notFitted *trainererrors.NotFittedError
	assert.True(t, trainererrors.As(err, &notFitted))
}

func TestRandomForestDimensionChecks(t *testing.T) {
	X, y := separableData(40)

	clf := NewRandomForestClassifier(WithNEstimators(5), WithRandomState(2))
	require.NoError(t, clf.Fit(X, y))

	_, err := clf.Predict(mat.NewDense(3, 5, nil))
	var dimErr *trainererrors.DimensionError
	assert.True(t, trainererrors.As(err, &dimErr))

	err = clf.Fit(X, y[:10])
	assert.True(t, trainererrors.As(err, &dimErr))
}

func TestDecisionTreeMulticlass(t *testing.T) {
	X := mat.NewDense(90, 1, nil)
	y := make([]int, 90)
	for i := 0; i < 90; i++ {
		X.Set(i, 0, float64(i))
		y[i] = i / 30 // three bands: 0, 1, 2
	}

	tree := NewDecisionTreeClassifier()
	require.NoError(t, tree.Fit(X, y))
	assert.Equal(t, []int{0, 1, 2}, tree.Classes())

	pred, err := tree.Predict(X)
	require.NoError(t, err)
	assert.Equal(t, y, pred)
}

func TestDecisionTreeMaxDepth(t *testing.T) {
	X, y := separableData(64)

	tree := NewDecisionTreeClassifier(WithMaxDepth(1))
	require.NoError(t, tree.Fit(X, y))

	// A depth-1 stump has exactly one split.
	require.NotNil(t, tree.Root)
	assert.False(t, tree.Root.Leaf)
	assert.True(t, tree.Root.Left.Leaf)
	assert.True(t, tree.Root.Right.Leaf)
}

func TestGini(t *testing.T) {
	assert.Equal(t, 0.0, gini([]int{10, 0}, 10))
	assert.InDelta(t, 0.5, gini([]int{5, 5}, 10), 1e-12)
	assert.True(t, math.Abs(gini([]int{1, 1, 1}, 3)-2.0/3.0) < 1e-12)
}
