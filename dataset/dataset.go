package dataset

import (
	"strconv"
	"strings"

	"github.com/factoryml/trainer/pkg/errors"
)

// Dataset is a column-major table of string cells with a fixed column
// order. An empty cell is a null. Datasets are built by the loader,
// consumed by preprocessing and analysis, and never persisted.
type Dataset struct {
	columns []string
	data    map[string][]string
	rows    int
}

// New builds a dataset from an ordered header and column-major data. Every
// column must have the same length.
func New(columns []string, data map[string][]string) (*Dataset, error) {
	rows := -1
	for _, name := range columns {
		col, ok := data[name]
		if !ok {
			return nil, errors.NewValueError("dataset.New", "no data for column "+name)
		}
		if rows == -1 {
			rows = len(col)
		} else if len(col) != rows {
			return nil, errors.NewDimensionError("dataset.New", rows, len(col), 0)
		}
	}
	if rows == -1 {
		rows = 0
	}
	return &Dataset{columns: columns, data: data, rows: rows}, nil
}

// Columns returns the column names in table order.
func (d *Dataset) Columns() []string {
	return d.columns
}

// NumRows returns the number of observations.
func (d *Dataset) NumRows() int {
	return d.rows
}

// HasColumn reports whether the named column exists.
func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.data[name]
	return ok
}

// Column returns the raw cells of the named column.
func (d *Dataset) Column(name string) ([]string, error) {
	col, ok := d.data[name]
	if !ok {
		return nil, errors.NewValueError("Dataset.Column", "no such column: "+name)
	}
	return col, nil
}

// Float64Column parses the named column as float64 values. A null or
// non-numeric cell is an error; validation guarantees required numeric
// columns never hit it.
func (d *Dataset) Float64Column(name string) ([]float64, error) {
	col, err := d.Column(name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(col))
	for i, cell := range col {
		v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
		if err != nil {
			return nil, errors.NewValueError("Dataset.Float64Column",
				"column "+name+" row "+strconv.Itoa(i)+": cannot parse "+strconv.Quote(cell)+" as a number")
		}
		out[i] = v
	}
	return out, nil
}

// IntColumn parses the named column as integer class labels.
func (d *Dataset) IntColumn(name string) ([]int, error) {
	col, err := d.Column(name)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(col))
	for i, cell := range col {
		v, err := strconv.Atoi(strings.TrimSpace(cell))
		if err != nil {
			return nil, errors.NewValueError("Dataset.IntColumn",
				"column "+name+" row "+strconv.Itoa(i)+": cannot parse "+strconv.Quote(cell)+" as a label")
		}
		out[i] = v
	}
	return out, nil
}

// NullCount returns the number of null cells in the named column.
func (d *Dataset) NullCount(name string) (int, error) {
	col, err := d.Column(name)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, cell := range col {
		if IsNull(cell) {
			count++
		}
	}
	return count, nil
}

// Select returns a new dataset restricted to the named columns, in the
// given order. The underlying column slices are shared, not copied.
func (d *Dataset) Select(names []string) (*Dataset, error) {
	data := make(map[string][]string, len(names))
	for _, name := range names {
		col, err := d.Column(name)
		if err != nil {
			return nil, err
		}
		data[name] = col
	}
	out := append([]string(nil), names...)
	return &Dataset{columns: out, data: data, rows: d.rows}, nil
}

// TakeRows returns a new dataset containing the given row indices, in
// order. Used by the train/test split.
func (d *Dataset) TakeRows(indices []int) (*Dataset, error) {
	data := make(map[string][]string, len(d.columns))
	for _, name := range d.columns {
		src := d.data[name]
		col := make([]string, len(indices))
		for i, idx := range indices {
			if idx < 0 || idx >= d.rows {
				return nil, errors.NewValueError("Dataset.TakeRows", "row index out of range: "+strconv.Itoa(idx))
			}
			col[i] = src[idx]
		}
		data[name] = col
	}
	cols := append([]string(nil), d.columns...)
	return &Dataset{columns: cols, data: data, rows: len(indices)}, nil
}

// IsNull reports whether a cell is treated as missing. CSV and Excel
// readers surface missing values as empty cells; "NaN" covers exports from
// pandas-style tooling.
func IsNull(cell string) bool {
	trimmed := strings.TrimSpace(cell)
	return trimmed == "" || strings.EqualFold(trimmed, "nan")
}
