package preprocessing

import (
	"gonum.org/v1/gonum/mat"

	"github.com/factoryml/trainer/core/model"
	"github.com/factoryml/trainer/dataset"
	"github.com/factoryml/trainer/pkg/errors"
)

// ColumnTransformer maps raw dataset columns to one numeric feature
// matrix: NUMERIC schema columns are standardized and come first in
// schema order, then each CATEGORY column expands to its indicator block.
// The column split is decided once at construction; the learned feature
// layout is frozen at Fit and reproduced exactly by every Transform.
type ColumnTransformer struct {
	model.BaseEstimator

	// NumericCols and CategoricalCols hold the schema column split, in
	// schema order.
	NumericCols     []string
	CategoricalCols []string

	// Scaler standardizes the numeric block.
	Scaler *StandardScaler

	// Encoders holds one encoder per categorical column, aligned with
	// CategoricalCols.
	Encoders []*OneHotEncoder

	featureNames []string
}

// NewColumnTransformer builds a transformer from the schema's column
// split.
func NewColumnTransformer(schema *dataset.Schema) *ColumnTransformer {
	return NewColumnTransformerFromColumns(schema.NumericColumns(), schema.CategoricalColumns())
}

// NewColumnTransformerFromColumns builds a transformer from explicit
// column lists, as when the split comes from configuration instead of a
// schema file.
func NewColumnTransformerFromColumns(numeric, categorical []string) *ColumnTransformer {
	return &ColumnTransformer{
		NumericCols:     numeric,
		CategoricalCols: categorical,
		Scaler:          NewStandardScaler(),
	}
}

// Fit learns scaling statistics for the numeric columns and category sets
// for the categorical columns.
func (t *ColumnTransformer) Fit(ds *dataset.Dataset) error {
	if ds.NumRows() == 0 {
		return errors.Wrap(errors.ErrEmptyData, "ColumnTransformer.Fit")
	}
	if len(t.NumericCols) == 0 && len(t.CategoricalCols) == 0 {
		return errors.NewValueError("ColumnTransformer.Fit", "schema declares no feature columns")
	}

	if len(t.NumericCols) > 0 {
		numeric, err := t.numericMatrix(ds)
		if err != nil {
			return err
		}
		if err := t.Scaler.Fit(numeric); err != nil {
			return err
		}
	}

	t.Encoders = make([]*OneHotEncoder, len(t.CategoricalCols))
	for i, name := range t.CategoricalCols {
		values, err := ds.Column(name)
		if err != nil {
			return err
		}
		enc := NewOneHotEncoder()
		if err := enc.Fit(values); err != nil {
			return errors.Wrapf(err, "fitting encoder for column %s", name)
		}
		t.Encoders[i] = enc
	}

	t.SetFitted()
	return nil
}

// Transform applies the learned transform and returns the feature matrix.
func (t *ColumnTransformer) Transform(ds *dataset.Dataset) (*mat.Dense, error) {
	if !t.IsFitted() {
		return nil, errors.NewNotFittedError("ColumnTransformer", "Transform")
	}

	blocks := make([]mat.Matrix, 0, 1+len(t.CategoricalCols))

	if len(t.NumericCols) > 0 {
		numeric, err := t.numericMatrix(ds)
		if err != nil {
			return nil, err
		}
		scaled, err := t.Scaler.Transform(numeric)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, scaled)
	}

	for i, name := range t.CategoricalCols {
		values, err := ds.Column(name)
		if err != nil {
			return nil, err
		}
		encoded, err := t.Encoders[i].Transform(values)
		if err != nil {
			return nil, errors.Wrapf(err, "encoding column %s", name)
		}
		blocks = append(blocks, encoded)
	}

	return hstack(ds.NumRows(), blocks), nil
}

// FitTransform fits on the dataset and returns it transformed.
func (t *ColumnTransformer) FitTransform(ds *dataset.Dataset) (*mat.Dense, error) {
	if err := t.Fit(ds); err != nil {
		return nil, err
	}
	return t.Transform(ds)
}

// FeatureCount returns the output feature width of the fitted transform.
func (t *ColumnTransformer) FeatureCount() (int, error) {
	if !t.IsFitted() {
		return 0, errors.NewNotFittedError("ColumnTransformer", "FeatureCount")
	}
	count := len(t.NumericCols)
	for _, enc := range t.Encoders {
		count += len(enc.Categories)
	}
	return count, nil
}

// FeatureNames returns the output feature names in matrix column order:
// numeric column names, then "column=category" per indicator column.
func (t *ColumnTransformer) FeatureNames() ([]string, error) {
	if !t.IsFitted() {
		return nil, errors.NewNotFittedError("ColumnTransformer", "FeatureNames")
	}
	if t.featureNames == nil {
		names := make([]string, 0, len(t.NumericCols))
		names = append(names, t.NumericCols...)
		for i, col := range t.CategoricalCols {
			for _, cat := range t.Encoders[i].Categories {
				names = append(names, col+"="+cat)
			}
		}
		t.featureNames = names
	}
	return t.featureNames, nil
}

// numericMatrix assembles the raw numeric block in schema order.
func (t *ColumnTransformer) numericMatrix(ds *dataset.Dataset) (*mat.Dense, error) {
	rows := ds.NumRows()
	result := mat.NewDense(rows, len(t.NumericCols), nil)
	for j, name := range t.NumericCols {
		values, err := ds.Float64Column(name)
		if err != nil {
			return nil, err
		}
		for i, v := range values {
			result.Set(i, j, v)
		}
	}
	return result, nil
}

// hstack concatenates blocks side by side into one dense matrix.
func hstack(rows int, blocks []mat.Matrix) *mat.Dense {
	width := 0
	for _, b := range blocks {
		_, c := b.Dims()
		width += c
	}
	result := mat.NewDense(rows, width, nil)
	offset := 0
	for _, b := range blocks {
		r, c := b.Dims()
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				result.Set(i, offset+j, b.At(i, j))
			}
		}
		offset += c
	}
	return result
}
