package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/factoryml/trainer/metrics"
	"github.com/factoryml/trainer/pkg/errors"
)

func TestSaveReportWritesAllArtifacts(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")

	rep := metrics.Report{Accuracy: 0.8, Precision: 0.9, Recall: 0.7, F1: 0.78}
	gen := NewGenerator(dir)
	err := gen.SaveReport(
		rep,
		[]float64{0.4, 0.1},
		[]string{"temperature", "pressure"},
		map[string]float64{"temperature": 0.02, "pressure": 0.01},
	)
	require.NoError(t, err)

	for _, name := range []string{MetricsFile, ImportanceFile, DriftFile} {
		_, statErr := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, statErr, "missing artifact %s", name)
	}
}

func TestWriteMetricsContent(t *testing.T) {
	dir := t.TempDir()

	rep := metrics.Report{Accuracy: 0.8, Precision: 0.9, Recall: 0.7, F1: 0.78}
	require.NoError(t, NewGenerator(dir).WriteMetrics(rep))

	raw, err := os.ReadFile(filepath.Join(dir, MetricsFile))
	require.NoError(t, err)

	var decoded map[string]float64
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, 0.8, decoded["accuracy"])
	assert.Equal(t, 0.9, decoded["precision"])
	assert.Equal(t, 0.7, decoded["recall"])
	assert.Equal(t, 0.78, decoded["f1_score"])
}

func TestWriteImportanceOrdering(t *testing.T) {
	dir := t.TempDir()

	err := NewGenerator(dir).WriteImportance(
		[]float64{0.1, 0.5, 0.3},
		[]string{"pressure", "temperature", "speed"},
	)
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(dir, ImportanceFile))
	require.NoError(t, err)
	html := string(raw)

	// Rows appear in descending score order.
	assert.Less(t, strings.Index(html, "temperature"), strings.Index(html, "speed"))
	assert.Less(t, strings.Index(html, "speed"), strings.Index(html, "pressure"))
}

func TestWriteImportanceLengthMismatch(t *testing.T) {
	err := NewGenerator(t.TempDir()).WriteImportance([]float64{0.1}, []string{"a", "b"})
	var dimErr *errors.DimensionError
	assert.True(t, errors.As(err, &dimErr))
}

func TestWriteDriftDetection(t *testing.T) {
	dir := t.TempDir()

	gen := NewGenerator(dir, WithDriftThreshold(0.1))
	require.NoError(t, gen.WriteDrift(map[string]float64{"temperature": 0.25, "pressure": 0.01}))

	raw, err := os.ReadFile(filepath.Join(dir, DriftFile))
	require.NoError(t, err)
	html := string(raw)
	assert.Contains(t, html, "Drift detected: yes")
	assert.Contains(t, html, "0.2500")
}

func TestWriteDriftBelowThreshold(t *testing.T) {
	dir := t.TempDir()

	gen := NewGenerator(dir, WithDriftThreshold(0.1))
	require.NoError(t, gen.WriteDrift(map[string]float64{"temperature": 0.05}))

	raw, err := os.ReadFile(filepath.Join(dir, DriftFile))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Drift detected: no")
}

func TestGeneratorCreatesOutputDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")

	require.NoError(t, NewGenerator(dir).WriteMetrics(metrics.Report{}))
	_, err := os.Stat(filepath.Join(dir, MetricsFile))
	assert.NoError(t, err)
}
