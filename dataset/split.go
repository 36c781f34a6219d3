package dataset

import (
	"math/rand"

	"github.com/factoryml/trainer/pkg/errors"
)

// TrainTestSplit shuffles the rows with the given seed and splits them
// into a training set and an evaluation set. testSize is the evaluation
// fraction and must lie in (0, 1).
func TrainTestSplit(ds *Dataset, testSize float64, seed int64) (train, test *Dataset, err error) {
	if testSize <= 0 || testSize >= 1 {
		return nil, nil, errors.NewValueError("TrainTestSplit", "test_size must be in (0, 1)")
	}
	n := ds.NumRows()
	if n < 2 {
		return nil, nil, errors.NewValueError("TrainTestSplit", "need at least 2 rows to split")
	}

	indices := rand.New(rand.NewSource(seed)).Perm(n)
	nTest := int(float64(n) * testSize)
	if nTest < 1 {
		nTest = 1
	}
	if nTest >= n {
		nTest = n - 1
	}

	test, err = ds.TakeRows(indices[:nTest])
	if err != nil {
		return nil, nil, err
	}
	train, err = ds.TakeRows(indices[nTest:])
	if err != nil {
		return nil, nil, err
	}
	return train, test, nil
}
