package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/factoryml/trainer/pkg/errors"
)

func TestAccuracy(t *testing.T) {
	yTrue := []int{0, 1, 1, 0, 1}
	yPred := []int{0, 1, 0, 0, 1}

	got, err := Accuracy(yTrue, yPred)
	require.NoError(t, err)
	assert.InDelta(t, 0.8, got, 1e-12)
}

func TestAccuracyPerfect(t *testing.T) {
	y := []int{2, 0, 1, 1}
	got, err := Accuracy(y, y)
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)
}

func TestPrecisionRecallF1Binary(t *testing.T) {
	// Class 1: tp=2, fp=0, fn=1. Class 0: tp=2, fp=1, fn=0.
	yTrue := []int{0, 1, 1, 0, 1}
	yPred := []int{0, 1, 0, 0, 1}

	precision, err := Precision(yTrue, yPred)
	require.NoError(t, err)
	// 2/5 * (2/3) + 3/5 * 1 = 13/15
	assert.InDelta(t, 13.0/15.0, precision, 1e-12)

	recall, err := Recall(yTrue, yPred)
	require.NoError(t, err)
	// 3/5 * (2/3) + 2/5 * 1 = 0.8
	assert.InDelta(t, 0.8, recall, 1e-12)

	f1, err := F1(yTrue, yPred)
	require.NoError(t, err)
	// class 1: 2*2/(4+0+1)=0.8, class 0: 2*2/(4+1+0)=0.8
	assert.InDelta(t, 0.8, f1, 1e-12)
}

func TestClassificationReport(t *testing.T) {
	yTrue := []int{0, 1, 1, 0, 1}
	yPred := []int{0, 1, 0, 0, 1}

	report, err := ClassificationReport(yTrue, yPred)
	require.NoError(t, err)
	assert.InDelta(t, 0.8, report.Accuracy, 1e-12)
	assert.InDelta(t, 13.0/15.0, report.Precision, 1e-12)
	assert.InDelta(t, 0.8, report.Recall, 1e-12)
	assert.InDelta(t, 0.8, report.F1, 1e-12)
}

func TestMetricsLengthMismatch(t *testing.T) {
	yTrue := []int{0, 1, 1, 0, 1}
	yPred := []int{0, 1, 0, 0}

	_, err := Accuracy(yTrue, yPred)
	var dimErr *errors.DimensionError
	require.True(t, errors.As(err, &dimErr))
	assert.Equal(t, 5, dimErr.Expected)
	assert.Equal(t, 4, dimErr.Got)

	_, err = ClassificationReport(yTrue, yPred)
	assert.True(t, errors.As(err, &dimErr))
}

func TestMetricsEmptyInput(t *testing.T) {
	_, err := Accuracy(nil, nil)
	assert.True(t, errors.Is(err, errors.ErrEmptyData))

	_, err = ClassificationReport([]int{}, []int{})
	assert.True(t, errors.Is(err, errors.ErrEmptyData))
}

func TestMetricsUnpredictedClass(t *testing.T) {
	// Class 2 never predicted: its precision contribution is zero, not NaN.
	yTrue := []int{0, 1, 2, 2}
	yPred := []int{0, 1, 0, 1}

	precision, err := Precision(yTrue, yPred)
	require.NoError(t, err)
	assert.False(t, precision != precision, "precision must not be NaN")
	// class 0: support 1, p=1/2; class 1: support 1, p=1/2; class 2: 0.
	assert.InDelta(t, 0.25, precision, 1e-12)
}
