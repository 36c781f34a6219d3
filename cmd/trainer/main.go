// Command trainer runs the offline training pipeline for factory
// production prediction models.
//
//	trainer --data data/input/training_data.csv \
//	        --output models/current \
//	        --config config/model_config.json \
//	        --report
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/factoryml/trainer/pipeline"
	"github.com/factoryml/trainer/pkg/errors"
	"github.com/factoryml/trainer/pkg/log"
)

// DefaultSchemaPath is used when --schema is not given.
const DefaultSchemaPath = "config/schema.json"

func newRootCmd() *cobra.Command {
	var (
		dataPath   string
		outputDir  string
		configPath string
		schemaPath string
		genReport  bool
		seed       int64
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:           "trainer",
		Short:         "Train a machine learning model for factory production prediction",
		Long:          "Loads tabular sensor data, validates it against a schema, trains a\nrandom-forest pipeline, persists it, exports a portable model and\noptionally writes analysis reports.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			log.SetupLogger(logLevel)
			logger := slog.Default()
			errors.SetWarningHandler(func(w error) {
				logger.Warn(w.Error())
			})

			return pipeline.Run(pipeline.RunOptions{
				DataPath:   dataPath,
				OutputDir:  outputDir,
				ConfigPath: configPath,
				SchemaPath: schemaPath,
				Report:     genReport,
				Seed:       seed,
				Logger:     logger,
			})
		},
	}

	cmd.Flags().StringVar(&dataPath, "data", "", "path to the input data file (CSV/Excel)")
	cmd.Flags().StringVar(&outputDir, "output", "", "directory for the trained model and reports")
	cmd.Flags().StringVar(&configPath, "config", "", "path to the configuration file (JSON)")
	cmd.Flags().StringVar(&schemaPath, "schema", DefaultSchemaPath, "path to the schema file (JSON)")
	cmd.Flags().BoolVar(&genReport, "report", false, "generate analysis reports (metrics, importance, drift)")
	cmd.Flags().Int64Var(&seed, "seed", 42, "random seed for the train/test split and analyzers")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	for _, flag := range []string{"data", "output", "config"} {
		if err := cmd.MarkFlagRequired(flag); err != nil {
			panic(err)
		}
	}
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		// Every pipeline failure funnels through here: one structured
		// diagnostic, non-zero exit, no partial continuation.
		slog.Error("training pipeline failed", log.ErrAttrKey, err)
		os.Exit(1)
	}
}
