// Package trainer is an offline machine-learning pipeline for factory
// sensor and production data.
//
// The pipeline loads a tabular data file, validates it against a
// declarative column schema, standardizes numeric and one-hot encodes
// categorical features, trains a random-forest classifier, persists the
// composed pipeline, exports a portable inference model and optionally
// writes metrics, feature-importance and drift reports.
//
// The cmd/trainer command drives everything:
//
//	trainer --data data/input/training_data.csv \
//	        --output models/current \
//	        --config config/model_config.json \
//	        --schema config/schema.json \
//	        --report
//
// Library packages:
//
//   - dataset: schema, loading, validation, train/test split
//   - preprocessing: StandardScaler, OneHotEncoder, ColumnTransformer
//   - ensemble: decision tree and random forest classifiers
//   - metrics: classification metrics with weighted averaging
//   - drift: per-column drift scoring between two datasets
//   - importance: permutation feature importance
//   - report: JSON/HTML report artifacts
//   - export: portable model document for the inference service
//   - pipeline: configuration, the trainer phases and the run driver
package trainer
