// Package report writes the post-training analysis artifacts: evaluation
// metrics as JSON, the feature-importance table and the drift summary as
// small HTML documents. Reports are diagnostic output for humans and
// dashboards, not part of the trained-model contract, so writing is not
// transactional across the three files: a failure on the second file
// leaves the first on disk.
package report

import (
	"encoding/json"
	"html/template"
	"os"
	"path/filepath"
	"sort"

	"github.com/factoryml/trainer/metrics"
	"github.com/factoryml/trainer/pkg/errors"
)

const (
	// MetricsFile is the metrics artifact name.
	MetricsFile = "metrics.json"
	// ImportanceFile is the feature-importance artifact name.
	ImportanceFile = "shap_summary.html"
	// DriftFile is the drift artifact name.
	DriftFile = "drift_report.html"
)

var importanceTmpl = template.Must(template.New("importance").Parse(`<html><head><title>Feature Importance</title></head><body>
<h1>Feature Importance Report</h1>
<table border="1"><tr><th>Feature</th><th>Importance</th></tr>
{{range .}}<tr><td>{{.Name}}</td><td>{{printf "%.4f" .Score}}</td></tr>
{{end}}</table></body></html>
`))

var driftTmpl = template.Must(template.New("drift").Parse(`<html><head><title>Drift Report</title></head><body>
<h1>Data Drift Report</h1>
<p>Drift detected: {{if .Detected}}yes{{else}}no{{end}}</p>
<p>Max score: {{printf "%.4f" .MaxScore}} (threshold {{printf "%.4f" .Threshold}})</p>
<table border="1"><tr><th>Column</th><th>Score</th></tr>
{{range .Rows}}<tr><td>{{.Name}}</td><td>{{printf "%.4f" .Score}}</td></tr>
{{end}}</table>
<p>Scores are mutual-information drift proxies; higher means more drift by convention.</p>
</body></html>
`))

// Generator writes report artifacts into one output directory, creating it
// on first use.
type Generator struct {
	outputDir      string
	driftThreshold float64
}

// Option configures a Generator.
type Option func(*Generator)

// WithDriftThreshold sets the score above which the drift report flags
// drift as detected.
func WithDriftThreshold(threshold float64) Option {
	return func(g *Generator) { g.driftThreshold = threshold }
}

// NewGenerator creates a generator targeting outputDir.
func NewGenerator(outputDir string, options ...Option) *Generator {
	g := &Generator{outputDir: outputDir, driftThreshold: 0.1}
	for _, opt := range options {
		opt(g)
	}
	return g
}

// SaveReport writes all three artifacts: metrics, importance table, drift
// summary.
func (g *Generator) SaveReport(rep metrics.Report, importances []float64, featureNames []string, driftScores map[string]float64) error {
	if err := g.WriteMetrics(rep); err != nil {
		return err
	}
	if err := g.WriteImportance(importances, featureNames); err != nil {
		return err
	}
	return g.WriteDrift(driftScores)
}

// WriteMetrics writes the evaluation metrics as indented JSON.
func (g *Generator) WriteMetrics(rep metrics.Report) error {
	if err := g.ensureDir(); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(rep, "", "    ")
	if err != nil {
		return errors.Wrap(err, "failed to encode metrics report")
	}
	path := filepath.Join(g.outputDir, MetricsFile)
	if err := os.WriteFile(path, append(raw, '\n'), 0o644); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}

type scoredName struct {
	Name  string
	Score float64
}

// WriteImportance writes the per-feature importance table, ordered by
// descending score.
func (g *Generator) WriteImportance(importances []float64, featureNames []string) error {
	if len(importances) != len(featureNames) {
		return errors.NewDimensionError("Generator.WriteImportance", len(featureNames), len(importances), 1)
	}
	if err := g.ensureDir(); err != nil {
		return err
	}

	rows := make([]scoredName, len(importances))
	for i := range importances {
		rows[i] = scoredName{Name: featureNames[i], Score: importances[i]}
	}
	sort.SliceStable(rows, func(a, b int) bool { return rows[a].Score > rows[b].Score })

	return g.render(ImportanceFile, importanceTmpl, rows)
}

// WriteDrift writes the per-column drift summary, ordered by column name.
func (g *Generator) WriteDrift(scores map[string]float64) error {
	if err := g.ensureDir(); err != nil {
		return err
	}

	names := make([]string, 0, len(scores))
	for name := range scores {
		names = append(names, name)
	}
	sort.Strings(names)

	data := struct {
		Detected  bool
		MaxScore  float64
		Threshold float64
		Rows      []scoredName
	}{Threshold: g.driftThreshold}
	for _, name := range names {
		score := scores[name]
		data.Rows = append(data.Rows, scoredName{Name: name, Score: score})
		if score > data.MaxScore {
			data.MaxScore = score
		}
	}
	data.Detected = data.MaxScore > g.driftThreshold

	return g.render(DriftFile, driftTmpl, data)
}

func (g *Generator) render(name string, tmpl *template.Template, data interface{}) error {
	path := filepath.Join(g.outputDir, name)
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}
	if err := tmpl.Execute(file, data); err != nil {
		file.Close()
		return errors.Wrapf(err, "failed to render %s", path)
	}
	return errors.Wrapf(file.Close(), "failed to close %s", path)
}

func (g *Generator) ensureDir() error {
	if err := os.MkdirAll(g.outputDir, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create report directory %s", g.outputDir)
	}
	return nil
}
