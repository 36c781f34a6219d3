// Package dataset loads tabular sensor/production data from CSV or Excel
// files and validates it against a declarative column schema. The same
// schema drives feature-type routing in the preprocessing step.
package dataset

import (
	"encoding/json"
	"os"

	"github.com/factoryml/trainer/pkg/errors"
)

// ColumnType classifies a schema column for feature routing.
type ColumnType string

const (
	// Numeric columns are standardized during preprocessing.
	Numeric ColumnType = "NUMERIC"
	// Category columns are one-hot encoded during preprocessing.
	Category ColumnType = "CATEGORY"
)

// Column is one entry in the schema: a named, typed column that may be
// marked required (present and free of nulls after validation).
type Column struct {
	Name     string     `json:"name"`
	Type     ColumnType `json:"type"`
	Required bool       `json:"required"`
}

// Schema is the ordered list of column specifications shared by the loader
// and the preprocessor. It is loaded once at pipeline start and never
// mutated afterwards.
type Schema struct {
	Columns []Column `json:"columns"`
}

// LoadSchema reads and parses a schema JSON file.
func LoadSchema(path string) (*Schema, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read schema file %s", path)
	}

	var schema Schema
	if err := json.Unmarshal(raw, &schema); err != nil {
		return nil, errors.NewInvalidConfigError(path, "", "malformed schema JSON: "+err.Error())
	}
	if err := schema.Check(); err != nil {
		return nil, err
	}
	return &schema, nil
}

// Check verifies the schema itself is well formed: at least one column,
// no duplicate names, and a known type on every column.
func (s *Schema) Check() error {
	if len(s.Columns) == 0 {
		return errors.NewValueError("Schema.Check", "schema declares no columns")
	}
	seen := make(map[string]bool, len(s.Columns))
	for _, col := range s.Columns {
		if col.Name == "" {
			return errors.NewValueError("Schema.Check", "schema column with empty name")
		}
		if seen[col.Name] {
			return errors.NewValueError("Schema.Check", "duplicate schema column: "+col.Name)
		}
		seen[col.Name] = true
		if col.Type != Numeric && col.Type != Category {
			return errors.NewValueError("Schema.Check", "unknown column type "+string(col.Type)+" for column "+col.Name)
		}
	}
	return nil
}

// NumericColumns returns the names of NUMERIC columns in schema order.
func (s *Schema) NumericColumns() []string {
	return s.columnsOfType(Numeric)
}

// CategoricalColumns returns the names of CATEGORY columns in schema order.
func (s *Schema) CategoricalColumns() []string {
	return s.columnsOfType(Category)
}

func (s *Schema) columnsOfType(t ColumnType) []string {
	var names []string
	for _, col := range s.Columns {
		if col.Type == t {
			names = append(names, col.Name)
		}
	}
	return names
}
