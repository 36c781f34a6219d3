package dataset

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numberedDataset(t *testing.T, n int) *Dataset {
	t.Helper()
	col := make([]string, n)
	for i := range col {
		col[i] = strconv.Itoa(i)
	}
	ds, err := New([]string{"id"}, map[string][]string{"id": col})
	require.NoError(t, err)
	return ds
}

func TestTrainTestSplit(t *testing.T) {
	ds := numberedDataset(t, 100)

	train, test, err := TrainTestSplit(ds, 0.2, 42)
	require.NoError(t, err)
	assert.Equal(t, 80, train.NumRows())
	assert.Equal(t, 20, test.NumRows())

	// No row appears in both halves.
	seen := make(map[string]bool)
	for _, half := range []*Dataset{train, test} {
		col, err := half.Column("id")
		require.NoError(t, err)
		for _, v := range col {
			assert.False(t, seen[v], "row %s appears twice", v)
			seen[v] = true
		}
	}
	assert.Len(t, seen, 100)
}

func TestTrainTestSplitDeterministic(t *testing.T) {
	ds := numberedDataset(t, 50)

	train1, _, err := TrainTestSplit(ds, 0.3, 7)
	require.NoError(t, err)
	train2, _, err := TrainTestSplit(ds, 0.3, 7)
	require.NoError(t, err)

	col1, _ := train1.Column("id")
	col2, _ := train2.Column("id")
	assert.Equal(t, col1, col2)
}

func TestTrainTestSplitInvalidSize(t *testing.T) {
	ds := numberedDataset(t, 10)

	for _, size := range []float64{0, 1, -0.1, 1.5} {
		_, _, err := TrainTestSplit(ds, size, 1)
		assert.Error(t, err, "test_size %v", size)
	}
}

func TestTrainTestSplitTooFewRows(t *testing.T) {
	ds := numberedDataset(t, 1)
	_, _, err := TrainTestSplit(ds, 0.5, 1)
	assert.Error(t, err)
}
