package preprocessing

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/factoryml/trainer/core/model"
	"github.com/factoryml/trainer/pkg/errors"
)

// OneHotEncoder expands a single categorical column into one indicator
// column per category observed during Fit. The category order is the
// first-seen order over the training data and is frozen once fitted, so
// the indicator layout is identical at training and inference time.
type OneHotEncoder struct {
	model.BaseEstimator

	// Categories holds the observed categories in first-seen order.
	Categories []string

	index map[string]int
}

// NewOneHotEncoder creates an unfitted OneHotEncoder.
func NewOneHotEncoder() *OneHotEncoder {
	return &OneHotEncoder{}
}

// Fit learns the category set from the training column.
func (e *OneHotEncoder) Fit(values []string) error {
	if len(values) == 0 {
		return errors.Wrap(errors.ErrEmptyData, "OneHotEncoder.Fit")
	}

	e.Categories = nil
	e.index = make(map[string]int)
	for _, v := range values {
		if _, ok := e.index[v]; !ok {
			e.index[v] = len(e.Categories)
			e.Categories = append(e.Categories, v)
		}
	}

	e.SetFitted()
	return nil
}

// Transform encodes the column into an indicator matrix with one column
// per learned category. A category never seen during Fit is an error; a
// silent all-zeros row would corrupt predictions without any signal.
func (e *OneHotEncoder) Transform(values []string) (mat.Matrix, error) {
	if !e.IsFitted() {
		return nil, errors.NewNotFittedError("OneHotEncoder", "Transform")
	}
	e.ensureIndex()

	result := mat.NewDense(len(values), len(e.Categories), nil)
	for i, v := range values {
		j, ok := e.index[v]
		if !ok {
			return nil, errors.NewValueError("OneHotEncoder.Transform",
				fmt.Sprintf("unknown category %q not seen during fit", v))
		}
		result.Set(i, j, 1)
	}
	return result, nil
}

// FitTransform fits on the column and returns it encoded.
func (e *OneHotEncoder) FitTransform(values []string) (mat.Matrix, error) {
	if err := e.Fit(values); err != nil {
		return nil, err
	}
	return e.Transform(values)
}

// ensureIndex rebuilds the category lookup after gob decoding, which only
// restores the exported Categories slice.
func (e *OneHotEncoder) ensureIndex() {
	if e.index != nil {
		return
	}
	e.index = make(map[string]int, len(e.Categories))
	for j, c := range e.Categories {
		e.index[c] = j
	}
}

// String returns a short description of the encoder.
func (e *OneHotEncoder) String() string {
	if !e.IsFitted() {
		return "OneHotEncoder()"
	}
	return fmt.Sprintf("OneHotEncoder(n_categories=%d)", len(e.Categories))
}
