package log

// Standard attribute keys used by the pipeline driver. Keeping the keys in
// one place makes the run logs filterable by stage and shape.
const (
	// ComponentKey identifies the pipeline component emitting the record.
	// Examples: "loader", "preprocessor", "trainer", "export", "report"
	ComponentKey = "pipeline.component"

	// OperationKey names the operation being performed.
	// Examples: "load", "fit", "transform", "train", "convert"
	OperationKey = "pipeline.operation"

	// RowsKey carries the number of rows in the dataset being processed.
	RowsKey = "data.rows"

	// FeaturesKey carries the feature width after preprocessing.
	FeaturesKey = "data.features"

	// PathKey carries the file path an operation reads or writes.
	PathKey = "io.path"

	// DurationMsKey carries elapsed wall time in milliseconds.
	DurationMsKey = "duration.ms"
)
