package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/factoryml/trainer/dataset"
	"github.com/factoryml/trainer/ensemble"
	"github.com/factoryml/trainer/pkg/errors"
	"github.com/factoryml/trainer/preprocessing"
)

func fittedPipeline(t *testing.T) (*preprocessing.ColumnTransformer, *ensemble.RandomForestClassifier) {
	t.Helper()

	ds, err := dataset.New(
		[]string{"temperature", "pressure", "product_type"},
		map[string][]string{
			"temperature":  {"20", "22", "24", "26", "28", "30"},
			"pressure":     {"1.0", "1.1", "1.2", "1.3", "1.4", "1.5"},
			"product_type": {"A", "B", "A", "B", "A", "B"},
		},
	)
	require.NoError(t, err)

	tr := preprocessing.NewColumnTransformerFromColumns(
		[]string{"temperature", "pressure"},
		[]string{"product_type"},
	)
	X, err := tr.FitTransform(ds)
	require.NoError(t, err)

	clf := ensemble.NewRandomForestClassifier(
		ensemble.WithNEstimators(3),
		ensemble.WithRandomState(1),
	)
	require.NoError(t, clf.Fit(X, []int{0, 0, 0, 1, 1, 1}))
	return tr, clf
}

func TestConvertWritesDocument(t *testing.T) {
	tr, clf := fittedPipeline(t)
	dir := filepath.Join(t.TempDir(), "models")

	path, err := Convert(tr, clf, dir, "model")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "model.json"), path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc Document
	require.NoError(t, json.Unmarshal(raw, &doc))

	assert.Equal(t, FormatName, doc.Format)
	assert.Equal(t, FormatVersion, doc.Version)

	// 2 scaled numeric features + 2 one-hot indicator columns.
	require.Len(t, doc.Inputs, 1)
	assert.Equal(t, "float_input", doc.Inputs[0].Name)
	assert.Equal(t, "float32", doc.Inputs[0].DType)
	assert.Equal(t, []int{-1, 4}, doc.Inputs[0].Shape)

	assert.Equal(t, []string{"temperature", "pressure"}, doc.Numeric.Columns)
	require.Len(t, doc.Categorical, 1)
	assert.Equal(t, "product_type", doc.Categorical[0].Column)
	assert.Equal(t, []string{"A", "B"}, doc.Categorical[0].Categories)

	assert.Equal(t, "random_forest", doc.Classifier.Type)
	assert.Equal(t, []int{0, 1}, doc.Classifier.Classes)
	assert.Len(t, doc.Classifier.Trees, 3)

	assert.Equal(t,
		[]string{"temperature", "pressure", "product_type=A", "product_type=B"},
		doc.FeatureNames)
}

func TestConvertUnfittedTransform(t *testing.T) {
	tr := preprocessing.NewColumnTransformerFromColumns([]string{"temperature"}, nil)
	clf := ensemble.NewRandomForestClassifier()

	_, err := Convert(tr, clf, t.TempDir(), "model")
	var convErr *errors.ConversionError
	require.True(t, errors.As(err, &convErr))
	assert.Equal(t, "preprocessor", convErr.Stage)
}

func TestConvertUnfittedClassifier(t *testing.T) {
	tr, _ := fittedPipeline(t)
	clf := ensemble.NewRandomForestClassifier()

	_, err := Convert(tr, clf, t.TempDir(), "model")
	var convErr *errors.ConversionError
	require.True(t, errors.As(err, &convErr))
	assert.Equal(t, "classifier", convErr.Stage)
}

func TestConvertUnsupportedClassifier(t *testing.T) {
	tr, _ := fittedPipeline(t)

	_, err := Convert(tr, &stubClassifier{}, t.TempDir(), "model")
	var convErr *errors.ConversionError
	require.True(t, errors.As(err, &convErr))
	assert.Contains(t, convErr.Reason, "unsupported classifier type")
}

type stubClassifier struct{}

func (s *stubClassifier) Fit(X mat.Matrix, y []int) error { return nil }

func (s *stubClassifier) Predict(X mat.Matrix) ([]int, error) { return nil, nil }

func (s *stubClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) { return nil, nil }

func (s *stubClassifier) Classes() []int { return nil }
