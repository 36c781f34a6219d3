package model

import (
	"gonum.org/v1/gonum/mat"
)

// Transformer is the interface for feature transforms.
type Transformer interface {
	// Fit learns the transform parameters from training data.
	Fit(X mat.Matrix) error

	// Transform applies the learned transform.
	Transform(X mat.Matrix) (mat.Matrix, error)

	// FitTransform runs Fit and Transform in one step.
	FitTransform(X mat.Matrix) (mat.Matrix, error)
}

// FeatureCounter exposes the output feature width of a fitted transform.
// The portable-format exporter depends on this accessor being present, so
// the exported tensor shape can never fall back to a guessed width.
type FeatureCounter interface {
	// FeatureCount returns the number of output features after fitting.
	// It returns an error when called before Fit.
	FeatureCount() (int, error)
}

// Classifier is the interface for classification models.
type Classifier interface {
	// Fit trains the classifier on a feature matrix and a label vector.
	Fit(X mat.Matrix, y []int) error

	// Predict returns one class label per input row.
	Predict(X mat.Matrix) ([]int, error)

	// PredictProba returns per-class probability estimates, one row per
	// input row, columns ordered as Classes.
	PredictProba(X mat.Matrix) (mat.Matrix, error)

	// Classes returns the unique class labels seen during fitting.
	Classes() []int
}

// Persistable is the interface for components that can be saved to and
// loaded from disk.
type Persistable interface {
	Save(path string) error
	Load(path string) error
}
