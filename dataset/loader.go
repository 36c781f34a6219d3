package dataset

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/factoryml/trainer/pkg/errors"
)

// Loader reads a tabular file and validates it against a schema before
// anything downstream sees it.
type Loader struct {
	schema *Schema
}

// NewLoader creates a loader bound to a schema.
func NewLoader(schema *Schema) *Loader {
	return &Loader{schema: schema}
}

// Load reads the file at path, routing on the extension (CSV or Excel),
// and validates the result. The returned dataset satisfies every schema
// constraint: all declared columns present, required columns null-free.
func (l *Loader) Load(path string) (*Dataset, error) {
	ext := strings.ToLower(filepath.Ext(path))

	var (
		ds  *Dataset
		err error
	)
	switch ext {
	case ".csv":
		ds, err = ReadCSV(path)
	case ".xls", ".xlsx", ".xlsm":
		ds, err = ReadExcel(path)
	default:
		return nil, errors.NewUnsupportedFormatError(path, ext)
	}
	if err != nil {
		return nil, err
	}

	if err := l.Validate(ds); err != nil {
		return nil, err
	}
	return ds, nil
}

// Validate checks the dataset against the schema, column by column in
// schema order, and fails on the first violation found. Fail-fast keeps
// the diagnostic focused on the first broken column; callers wanting the
// full list re-run after fixing each one.
func (l *Loader) Validate(ds *Dataset) error {
	for _, col := range l.schema.Columns {
		if !ds.HasColumn(col.Name) {
			return errors.NewSchemaViolationError(col.Name,
				"required column is missing (present: "+strings.Join(ds.Columns(), ", ")+")", 0, ds.NumRows())
		}
		if col.Required {
			nulls, err := ds.NullCount(col.Name)
			if err != nil {
				return err
			}
			if nulls > 0 {
				return errors.NewSchemaViolationError(col.Name, "required column contains null values", nulls, ds.NumRows())
			}
		}
	}
	return nil
}

// ReadCSV reads a CSV file with a header row into a dataset.
func ReadCSV(path string) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open data file %s", path)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse CSV file %s", path)
	}
	return fromRecords(path, records)
}

// ReadExcel reads the first sheet of an Excel workbook into a dataset.
func ReadExcel(path string) (*Dataset, error) {
	book, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open Excel file %s", path)
	}
	defer book.Close()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.NewValueError("ReadExcel", "workbook has no sheets: "+path)
	}
	records, err := book.GetRows(sheets[0])
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read sheet %s of %s", sheets[0], path)
	}
	return fromRecords(path, records)
}

func fromRecords(path string, records [][]string) (*Dataset, error) {
	if len(records) == 0 {
		return nil, errors.Wrapf(errors.ErrEmptyData, "data file %s has no header row", path)
	}
	header := records[0]
	rows := records[1:]

	data := make(map[string][]string, len(header))
	for j, name := range header {
		col := make([]string, len(rows))
		for i, row := range rows {
			// Excel rows may be ragged; short rows read as nulls.
			if j < len(row) {
				col[i] = row[j]
			}
		}
		data[name] = col
	}
	return New(header, data)
}
