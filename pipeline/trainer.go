package pipeline

import (
	"os"
	"path/filepath"

	"github.com/factoryml/trainer/core/model"
	"github.com/factoryml/trainer/dataset"
	"github.com/factoryml/trainer/ensemble"
	"github.com/factoryml/trainer/pkg/errors"
	"github.com/factoryml/trainer/preprocessing"
)

// Pipeline is the composed, persistable unit: the fitted column transform
// and the classifier trained on its output. It is written to disk as one
// artifact so training and inference can never disagree on the feature
// layout.
type Pipeline struct {
	Transform  *preprocessing.ColumnTransformer
	Classifier *ensemble.RandomForestClassifier
}

// Predict transforms raw rows and returns one class label per row.
func (p *Pipeline) Predict(ds *dataset.Dataset) ([]int, error) {
	X, err := p.Transform.Transform(ds)
	if err != nil {
		return nil, err
	}
	return p.Classifier.Predict(X)
}

// FeatureCount returns the feature width of the fitted transform.
func (p *Pipeline) FeatureCount() (int, error) {
	return p.Transform.FeatureCount()
}

// LoadPipeline reads a persisted pipeline back from disk.
func LoadPipeline(path string) (*Pipeline, error) {
	var p Pipeline
	if err := model.LoadModel(&p, path); err != nil {
		return nil, err
	}
	return &p, nil
}

// Trainer drives the four training phases: load, preprocess, train, save.
// Phases must run in order; TrainModel before PreprocessData is an error,
// and nothing is written to disk unless the whole pipeline fitted.
type Trainer struct {
	config *Config

	pipeline *Pipeline
	fitted   bool
}

// NewTrainer creates a trainer after checking the training configuration.
func NewTrainer(config *Config) (*Trainer, error) {
	if err := config.CheckTraining(); err != nil {
		return nil, err
	}
	return &Trainer{config: config}, nil
}

// LoadData reads the raw training CSV. Schema validation is the driver's
// concern; the trainer only requires the file to exist and parse.
func (t *Trainer) LoadData(dataPath string) (*dataset.Dataset, error) {
	if _, err := os.Stat(dataPath); err != nil {
		return nil, errors.Wrapf(err, "training data not found: %s", dataPath)
	}
	return dataset.ReadCSV(dataPath)
}

// PreprocessData builds the unfitted pipeline from the configured column
// split and extracts the feature table and target labels.
func (t *Trainer) PreprocessData(ds *dataset.Dataset) (*dataset.Dataset, []int, error) {
	training := t.config.Training

	t.pipeline = &Pipeline{
		Transform: preprocessing.NewColumnTransformerFromColumns(
			training.NumericalFeatures, training.CategoricalFeatures),
		Classifier: ensemble.NewRandomForestClassifier(),
	}
	t.fitted = false

	features, err := ds.Select(t.config.FeatureColumns())
	if err != nil {
		return nil, nil, err
	}
	y, err := ds.IntColumn(training.Target)
	if err != nil {
		return nil, nil, err
	}
	return features, y, nil
}

// TrainModel fits the transform and the classifier. It requires
// PreprocessData to have initialized the pipeline first.
func (t *Trainer) TrainModel(features *dataset.Dataset, y []int) error {
	if t.pipeline == nil {
		return errors.NewPipelineNotInitializedError("TrainModel", "PreprocessData")
	}

	X, err := t.pipeline.Transform.FitTransform(features)
	if err != nil {
		return err
	}
	if err := t.pipeline.Classifier.Fit(X, y); err != nil {
		return err
	}

	t.fitted = true
	return nil
}

// SaveModel persists the fitted pipeline. Persistence is all-or-nothing:
// either the complete pipeline lands at modelPath or nothing does.
func (t *Trainer) SaveModel(modelPath string) error {
	if !t.fitted {
		return errors.NewNotFittedError("Pipeline", "SaveModel")
	}
	if dir := filepath.Dir(modelPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "failed to create model directory %s", dir)
		}
	}
	return model.SaveModel(t.pipeline, modelPath)
}

// Pipeline returns the composed pipeline, or nil before PreprocessData.
func (t *Trainer) Pipeline() *Pipeline {
	return t.pipeline
}

// Run executes the full training sequence and persists the model.
func (t *Trainer) Run(dataPath, modelPath string) error {
	ds, err := t.LoadData(dataPath)
	if err != nil {
		return err
	}
	features, y, err := t.PreprocessData(ds)
	if err != nil {
		return err
	}
	if err := t.TrainModel(features, y); err != nil {
		return err
	}
	return t.SaveModel(modelPath)
}
