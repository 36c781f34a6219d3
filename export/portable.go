// Package export re-expresses a trained pipeline as a portable JSON model
// document consumed by the separate inference service. The document
// declares a single float input tensor of shape [-1, n_features] and
// carries the fitted transform parameters and the forest structure.
//
// The input width always comes from the fitted transform's FeatureCount
// accessor. There is no default-width fallback: a transform that cannot
// report its width is a conversion error, never a silently wrong tensor
// shape.
package export

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/factoryml/trainer/core/model"
	"github.com/factoryml/trainer/ensemble"
	"github.com/factoryml/trainer/pkg/errors"
	"github.com/factoryml/trainer/preprocessing"
)

// FormatName identifies the portable document format.
const FormatName = "factoryml-portable"

// FormatVersion is bumped on breaking document changes.
const FormatVersion = 1

// TensorSpec declares one model input or output tensor. A -1 dimension is
// dynamic (the batch axis).
type TensorSpec struct {
	Name  string `json:"name"`
	DType string `json:"dtype"`
	Shape []int  `json:"shape"`
}

// NumericSpec carries the fitted standardization parameters.
type NumericSpec struct {
	Columns []string  `json:"columns"`
	Mean    []float64 `json:"mean"`
	Scale   []float64 `json:"scale"`
}

// CategorySpec carries one column's learned one-hot category order.
type CategorySpec struct {
	Column     string   `json:"column"`
	Categories []string `json:"categories"`
}

// ForestSpec carries the fitted forest.
type ForestSpec struct {
	Type    string               `json:"type"`
	Classes []int                `json:"classes"`
	Trees   []*ensemble.TreeNode `json:"trees"`
}

// Document is the root of the portable model file.
type Document struct {
	Format       string         `json:"format"`
	Version      int            `json:"version"`
	Inputs       []TensorSpec   `json:"inputs"`
	Outputs      []TensorSpec   `json:"outputs"`
	Numeric      NumericSpec    `json:"numeric"`
	Categorical  []CategorySpec `json:"categorical"`
	Classifier   ForestSpec     `json:"classifier"`
	FeatureNames []string       `json:"feature_names"`
}

// Convert writes the portable model document for a fitted transform and
// classifier into outputDir (created if absent) and returns the file path.
func Convert(transform *preprocessing.ColumnTransformer, clf model.Classifier, outputDir, modelName string) (string, error) {
	nFeatures, err := transform.FeatureCount()
	if err != nil {
		return "", errors.NewConversionError("preprocessor", "cannot determine the input feature count: "+err.Error())
	}
	featureNames, err := transform.FeatureNames()
	if err != nil {
		return "", errors.NewConversionError("preprocessor", err.Error())
	}

	forest, ok := clf.(*ensemble.RandomForestClassifier)
	if !ok {
		return "", errors.NewConversionError("classifier", "unsupported classifier type; only RandomForestClassifier translates to the portable format")
	}
	if !forest.IsFitted() {
		return "", errors.NewConversionError("classifier", "classifier is not fitted")
	}

	doc := Document{
		Format:  FormatName,
		Version: FormatVersion,
		Inputs: []TensorSpec{
			{Name: "float_input", DType: "float32", Shape: []int{-1, nFeatures}},
		},
		Outputs: []TensorSpec{
			{Name: "label", DType: "int64", Shape: []int{-1}},
			{Name: "probabilities", DType: "float32", Shape: []int{-1, len(forest.Classes())}},
		},
		Numeric: NumericSpec{
			Columns: transform.NumericCols,
			Mean:    transform.Scaler.Mean,
			Scale:   transform.Scaler.Scale,
		},
		Classifier: ForestSpec{
			Type:    "random_forest",
			Classes: forest.Classes(),
			Trees:   forestRoots(forest),
		},
		FeatureNames: featureNames,
	}
	for i, column := range transform.CategoricalCols {
		doc.Categorical = append(doc.Categorical, CategorySpec{
			Column:     column,
			Categories: transform.Encoders[i].Categories,
		})
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", errors.Wrapf(err, "failed to create output directory %s", outputDir)
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return "", errors.NewConversionError("document", err.Error())
	}
	path := filepath.Join(outputDir, modelName+".json")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", errors.Wrapf(err, "failed to write portable model %s", path)
	}
	return path, nil
}

func forestRoots(forest *ensemble.RandomForestClassifier) []*ensemble.TreeNode {
	roots := make([]*ensemble.TreeNode, len(forest.Trees))
	for i, tree := range forest.Trees {
		roots[i] = tree.Root
	}
	return roots
}
