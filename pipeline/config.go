// Package pipeline sequences the training run: load and validate data,
// fit the preprocessing transform, train the classifier, persist the
// composed pipeline, export the portable model and, on request, emit the
// analysis reports.
package pipeline

import (
	"io/fs"

	koanfjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/factoryml/trainer/pkg/errors"
)

// DefaultTestSize is the evaluation split fraction used when the config
// leaves test_size unset.
const DefaultTestSize = 0.2

// TrainingConfig is the training section of the configuration file.
type TrainingConfig struct {
	NumericalFeatures   []string `koanf:"numerical_features"`
	CategoricalFeatures []string `koanf:"categorical_features"`
	Target              string   `koanf:"target"`
	TestSize            float64  `koanf:"test_size"`
}

// Config is the parsed configuration file. LoadConfig only parses; key
// requirements are enforced by NewTrainer so a partial config can still be
// inspected.
type Config struct {
	Training TrainingConfig `koanf:"training"`
}

// LoadConfig reads and parses a JSON configuration file.
func LoadConfig(path string) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), koanfjson.Parser()); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrapf(err, "config file not found: %s", path)
		}
		return nil, errors.NewInvalidConfigError(path, "", err.Error())
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.NewInvalidConfigError(path, "", err.Error())
	}
	return &cfg, nil
}

// CheckTraining verifies the keys the trainer requires. Feature lists and
// target come verbatim from here; nothing is inferred from the data.
func (c *Config) CheckTraining() error {
	if c.Training.NumericalFeatures == nil {
		return errors.NewInvalidConfigError("", "training.numerical_features", "key is missing")
	}
	if c.Training.CategoricalFeatures == nil {
		return errors.NewInvalidConfigError("", "training.categorical_features", "key is missing")
	}
	if len(c.Training.NumericalFeatures) == 0 && len(c.Training.CategoricalFeatures) == 0 {
		return errors.NewInvalidConfigError("", "training",
			"at least one of numerical_features and categorical_features must list a column")
	}
	if c.Training.Target == "" {
		return errors.NewInvalidConfigError("", "training.target", "target column is required")
	}
	if c.Training.TestSize < 0 || c.Training.TestSize >= 1 {
		return errors.NewInvalidConfigError("", "training.test_size", "test_size must be in [0, 1)")
	}
	return nil
}

// FeatureColumns returns the configured feature columns, numeric first.
func (c *Config) FeatureColumns() []string {
	out := make([]string, 0, len(c.Training.NumericalFeatures)+len(c.Training.CategoricalFeatures))
	out = append(out, c.Training.NumericalFeatures...)
	out = append(out, c.Training.CategoricalFeatures...)
	return out
}

// EffectiveTestSize returns test_size or the default when unset.
func (c *Config) EffectiveTestSize() float64 {
	if c.Training.TestSize == 0 {
		return DefaultTestSize
	}
	return c.Training.TestSize
}
