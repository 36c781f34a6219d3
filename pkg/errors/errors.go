// Package errors provides the error taxonomy and warning hooks shared by
// every stage of the training pipeline. Error types carry structured fields
// and stack traces (via cockroachdb/errors) so the CLI layer can log a
// single diagnostic with full context.
package errors

import (
	"fmt"
	"log"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	Global warning handling
//
// ===========================================================================

var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		log.Printf("trainer-warning: %v\n", w)
	}
)

// SetWarningHandler overrides the process-wide warning handler. The CLI
// installs a structured-log handler here; library code only calls Warn.
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// Warn emits a non-fatal warning through the installed handler.
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	Structured error types
//
// ===========================================================================

// NotFittedError reports Transform or Predict being called on an estimator
// before Fit has completed.
type NotFittedError struct {
	EstimatorName string
	Method        string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("trainer: %s: this estimator is not fitted yet. Call Fit() before using %s()", e.EstimatorName, e.Method)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("estimator", e.EstimatorName).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

// NewNotFittedError creates a NotFittedError with a stack trace attached.
func NewNotFittedError(estimatorName, method string) error {
	err := &NotFittedError{EstimatorName: estimatorName, Method: method}
	return errors.WithStack(err)
}

// PipelineNotInitializedError reports a pipeline phase invoked out of its
// required order (for example TrainModel before PreprocessData).
type PipelineNotInitializedError struct {
	Phase    string
	Requires string
}

func (e *PipelineNotInitializedError) Error() string {
	return fmt.Sprintf("trainer: %s: pipeline is not initialized. Run %s first", e.Phase, e.Requires)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *PipelineNotInitializedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("phase", e.Phase).
		Str("requires", e.Requires).
		Str("type", "PipelineNotInitializedError")
}

// NewPipelineNotInitializedError creates a PipelineNotInitializedError with a
// stack trace attached.
func NewPipelineNotInitializedError(phase, requires string) error {
	err := &PipelineNotInitializedError{Phase: phase, Requires: requires}
	return errors.WithStack(err)
}

// SchemaViolationError reports data that does not satisfy the declared
// schema: a declared column is absent, or a required column contains nulls.
type SchemaViolationError struct {
	Column    string
	Reason    string
	NullCount int
	RowCount  int
}

func (e *SchemaViolationError) Error() string {
	if e.NullCount > 0 {
		return fmt.Sprintf("trainer: schema violation on column %q: %s (%d/%d null values)", e.Column, e.Reason, e.NullCount, e.RowCount)
	}
	return fmt.Sprintf("trainer: schema violation on column %q: %s", e.Column, e.Reason)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *SchemaViolationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("column", e.Column).
		Str("reason", e.Reason).
		Int("null_count", e.NullCount).
		Int("row_count", e.RowCount).
		Str("type", "SchemaViolationError")
}

// NewSchemaViolationError creates a SchemaViolationError with a stack trace
// attached.
func NewSchemaViolationError(column, reason string, nullCount, rowCount int) error {
	err := &SchemaViolationError{Column: column, Reason: reason, NullCount: nullCount, RowCount: rowCount}
	return errors.WithStack(err)
}

// UnsupportedFormatError reports a data file whose extension is neither CSV
// nor Excel.
type UnsupportedFormatError struct {
	Path      string
	Extension string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("trainer: unsupported file format %q for %s. Supply a CSV or Excel file", e.Extension, e.Path)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *UnsupportedFormatError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("path", e.Path).
		Str("extension", e.Extension).
		Str("type", "UnsupportedFormatError")
}

// NewUnsupportedFormatError creates an UnsupportedFormatError with a stack
// trace attached.
func NewUnsupportedFormatError(path, extension string) error {
	err := &UnsupportedFormatError{Path: path, Extension: extension}
	return errors.WithStack(err)
}

// InvalidConfigError reports a malformed configuration file or a training
// section missing a required key.
type InvalidConfigError struct {
	Path   string
	Key    string
	Reason string
}

func (e *InvalidConfigError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("trainer: invalid config %s: missing or invalid key %q: %s", e.Path, e.Key, e.Reason)
	}
	return fmt.Sprintf("trainer: invalid config %s: %s", e.Path, e.Reason)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *InvalidConfigError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("path", e.Path).
		Str("key", e.Key).
		Str("reason", e.Reason).
		Str("type", "InvalidConfigError")
}

// NewInvalidConfigError creates an InvalidConfigError with a stack trace
// attached.
func NewInvalidConfigError(path, key, reason string) error {
	err := &InvalidConfigError{Path: path, Key: key, Reason: reason}
	return errors.WithStack(err)
}

// DimensionError reports an input whose dimensions do not match what the
// operation expects (mismatched label arrays, wrong feature width).
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows, 1 for columns/features
}

func (e *DimensionError) Error() string {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	return fmt.Sprintf("trainer: %s: dimension mismatch on axis %d (%s). Expected %d, got %d", e.Op, e.Axis, axisName, e.Expected, e.Got)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("type", "DimensionError")
}

// NewDimensionError creates a DimensionError with a stack trace attached.
func NewDimensionError(op string, expected, got, axis int) error {
	err := &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
	return errors.WithStack(err)
}

// ConversionError reports a failure translating the trained pipeline into
// the portable inference format.
type ConversionError struct {
	Stage  string
	Reason string
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("trainer: cannot convert %s to the portable format: %s", e.Stage, e.Reason)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *ConversionError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("stage", e.Stage).
		Str("reason", e.Reason).
		Str("type", "ConversionError")
}

// NewConversionError creates a ConversionError with a stack trace attached.
func NewConversionError(stage, reason string) error {
	err := &ConversionError{Stage: stage, Reason: reason}
	return errors.WithStack(err)
}

// ValueError reports an argument whose value is out of range or otherwise
// unusable for the operation.
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("trainer: %s: %s", e.Op, e.Message)
}

// NewValueError creates a ValueError with a stack trace attached.
func NewValueError(op, message string) error {
	err := &ValueError{Op: op, Message: message}
	return errors.WithStack(err)
}

// ===========================================================================
//
//	Warnings
//
// ===========================================================================

// DriftConventionWarning flags the drift score convention once per run: the
// detector reports mutual information, a symmetric association statistic,
// with higher values presented as more drift. This is an approximation, not
// a divergence measure.
type DriftConventionWarning struct {
	Detector string
}

func (w *DriftConventionWarning) Error() string {
	return fmt.Sprintf("%s reports mutual information as a drift proxy; higher means more drift by convention, not by a divergence measure", w.Detector)
}

// NewDriftConventionWarning creates a DriftConventionWarning.
func NewDriftConventionWarning(detector string) *DriftConventionWarning {
	return &DriftConventionWarning{Detector: detector}
}

// ===========================================================================
//
//	cockroachdb/errors wrappers
//
// ===========================================================================

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap wraps an error with a message.
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New creates a new error with a stack trace.
func New(message string) error {
	return errors.New(message)
}

// Newf creates a new formatted error with a stack trace.
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack annotates err with a stack trace.
func WithStack(err error) error {
	return errors.WithStack(err)
}

// ===========================================================================
//
//	Common error variables
//
// ===========================================================================

var (
	// ErrEmptyData is returned when an operation receives an empty dataset
	// or matrix.
	ErrEmptyData = New("empty data")
)
