package pipeline

import (
	"log/slog"
	"path/filepath"
	"time"

	"github.com/factoryml/trainer/dataset"
	"github.com/factoryml/trainer/drift"
	"github.com/factoryml/trainer/export"
	"github.com/factoryml/trainer/importance"
	"github.com/factoryml/trainer/metrics"
	"github.com/factoryml/trainer/pkg/log"
	"github.com/factoryml/trainer/report"
)

const (
	// ModelFileName is the native serialized pipeline artifact.
	ModelFileName = "model.gob"
	// PortableModelName is the portable model file name without extension.
	PortableModelName = "model"
)

// RunOptions carries everything one pipeline run needs. The logger is
// passed in explicitly so library code stays free of ambient logging
// state; a nil Logger falls back to slog.Default().
type RunOptions struct {
	DataPath   string
	OutputDir  string
	ConfigPath string
	SchemaPath string
	Report     bool
	Seed       int64
	Logger     *slog.Logger
}

// Run executes the whole pipeline: config and schema loading, validated
// data load, preprocessing, training, persistence, portable export and,
// when requested, the three analysis reports. Control flow is strictly
// linear; the first failing step aborts the run.
func Run(opts RunOptions) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()

	cfg, err := LoadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}
	schema, err := dataset.LoadSchema(opts.SchemaPath)
	if err != nil {
		return err
	}

	ds, err := dataset.NewLoader(schema).Load(opts.DataPath)
	if err != nil {
		return err
	}
	logger.Info("data loaded",
		log.ComponentKey, "loader",
		log.PathKey, opts.DataPath,
		log.RowsKey, ds.NumRows(),
	)

	trainer, err := NewTrainer(cfg)
	if err != nil {
		return err
	}

	// The evaluation split exists only to feed the analyzers; without
	// --report every row goes into training.
	trainDS := ds
	var evalDS *dataset.Dataset
	if opts.Report {
		trainDS, evalDS, err = dataset.TrainTestSplit(ds, cfg.EffectiveTestSize(), opts.Seed)
		if err != nil {
			return err
		}
	}

	features, y, err := trainer.PreprocessData(trainDS)
	if err != nil {
		return err
	}
	if err := trainer.TrainModel(features, y); err != nil {
		return err
	}
	nFeatures, err := trainer.Pipeline().FeatureCount()
	if err != nil {
		return err
	}
	logger.Info("model trained",
		log.ComponentKey, "trainer",
		log.RowsKey, trainDS.NumRows(),
		log.FeaturesKey, nFeatures,
	)

	modelPath := filepath.Join(opts.OutputDir, ModelFileName)
	if err := trainer.SaveModel(modelPath); err != nil {
		return err
	}
	portablePath, err := export.Convert(
		trainer.Pipeline().Transform, trainer.Pipeline().Classifier,
		opts.OutputDir, PortableModelName)
	if err != nil {
		return err
	}
	logger.Info("model persisted",
		log.ComponentKey, "export",
		log.PathKey, modelPath,
		"portable_path", portablePath,
	)

	if opts.Report {
		if err := writeReports(cfg, trainer.Pipeline(), features, evalDS, opts, logger); err != nil {
			return err
		}
	}

	logger.Info("pipeline completed",
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

// writeReports evaluates the trained pipeline on the held-out split and
// emits the metrics, importance and drift artifacts.
func writeReports(cfg *Config, p *Pipeline, trainFeatures, evalDS *dataset.Dataset, opts RunOptions, logger *slog.Logger) error {
	evalFeatures, err := evalDS.Select(cfg.FeatureColumns())
	if err != nil {
		return err
	}
	yEval, err := evalDS.IntColumn(cfg.Training.Target)
	if err != nil {
		return err
	}

	predictions, err := p.Predict(evalFeatures)
	if err != nil {
		return err
	}
	rep, err := metrics.ClassificationReport(yEval, predictions)
	if err != nil {
		return err
	}

	XEval, err := p.Transform.Transform(evalFeatures)
	if err != nil {
		return err
	}
	importances, err := importance.Permutation(p.Classifier, XEval, yEval, importance.WithSeed(opts.Seed))
	if err != nil {
		return err
	}
	featureNames, err := p.Transform.FeatureNames()
	if err != nil {
		return err
	}

	// Drift compares the training split (reference) against the held-out
	// split (current) over the raw feature columns.
	driftScores, err := drift.NewDetector().Detect(trainFeatures, evalFeatures)
	if err != nil {
		return err
	}

	generator := report.NewGenerator(opts.OutputDir)
	if err := generator.SaveReport(rep, importances, featureNames, driftScores); err != nil {
		return err
	}
	logger.Info("reports written",
		log.ComponentKey, "report",
		log.PathKey, opts.OutputDir,
		"accuracy", rep.Accuracy,
	)
	return nil
}
