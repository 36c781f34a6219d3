// Package drift scores distribution change between a reference dataset
// (typically the training data) and a current dataset, one score per
// shared column.
//
// The score is the mutual information between a column's binned value and
// which dataset the value came from. Identical distributions score 0;
// higher scores are reported as more drift. Mutual information is a
// symmetric association statistic, not a divergence measure, so this is a
// drift proxy kept for compatibility with the established reporting
// convention; the detector raises a warning to that effect once per run.
package drift

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/factoryml/trainer/dataset"
	"github.com/factoryml/trainer/pkg/errors"
)

// Detector scores per-column drift between two datasets.
type Detector struct {
	bins int

	warnOnce sync.Once
}

// Option configures a Detector.
type Option func(*Detector)

// WithBins sets the number of equal-width bins used for numeric columns.
func WithBins(n int) Option {
	return func(d *Detector) {
		d.bins = n
	}
}

// NewDetector creates a Detector. Numeric columns are discretized into 10
// equal-width bins by default.
func NewDetector(options ...Option) *Detector {
	d := &Detector{bins: 10}
	for _, opt := range options {
		opt(d)
	}
	return d
}

// Detect scores every column present in both datasets, in reference column
// order. Scores are not normalized and are not comparable across columns
// of different cardinality.
func (d *Detector) Detect(reference, current *dataset.Dataset) (map[string]float64, error) {
	if reference.NumRows() == 0 || current.NumRows() == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "Detector.Detect")
	}

	d.warnOnce.Do(func() {
		errors.Warn(errors.NewDriftConventionWarning("drift.Detector"))
	})

	scores := make(map[string]float64)
	for _, column := range reference.Columns() {
		if !current.HasColumn(column) {
			continue
		}
		refValues, err := reference.Column(column)
		if err != nil {
			return nil, err
		}
		curValues, err := current.Column(column)
		if err != nil {
			return nil, err
		}
		scores[column] = d.columnScore(refValues, curValues)
	}
	return scores, nil
}

// columnScore computes I(bin; origin) over the pooled values, where origin
// marks which dataset a value came from.
func (d *Detector) columnScore(ref, cur []string) float64 {
	pooledBins := d.discretize(ref, cur)
	nBins := 0
	for _, b := range pooledBins {
		if b >= nBins {
			nBins = b + 1
		}
	}
	if nBins == 0 {
		return 0
	}

	// Joint counts over (bin, origin).
	joint := make([]float64, nBins*2)
	total := 0.0
	for i, b := range pooledBins {
		if b < 0 {
			continue
		}
		origin := 0
		if i >= len(ref) {
			origin = 1
		}
		joint[b*2+origin]++
		total++
	}
	if total == 0 {
		return 0
	}

	binDist := make([]float64, nBins)
	originDist := make([]float64, 2)
	for b := 0; b < nBins; b++ {
		for o := 0; o < 2; o++ {
			p := joint[b*2+o] / total
			joint[b*2+o] = p
			binDist[b] += p
			originDist[o] += p
		}
	}

	// I(bin; origin) = H(bin) + H(origin) - H(bin, origin)
	mi := stat.Entropy(binDist) + stat.Entropy(originDist) - stat.Entropy(joint)
	if mi < 0 || math.IsNaN(mi) {
		// Floating error can push an independent joint slightly negative.
		return 0
	}
	return mi
}

// discretize assigns a bin index to every pooled cell (reference cells
// first, then current). Null cells get bin -1 and are excluded. A column
// whose non-null cells all parse as numbers is binned equal-width over the
// pooled range; anything else bins by exact category.
func (d *Detector) discretize(ref, cur []string) []int {
	pooled := make([]string, 0, len(ref)+len(cur))
	pooled = append(pooled, ref...)
	pooled = append(pooled, cur...)

	numeric := make([]float64, len(pooled))
	isNumeric := true
	for i, cell := range pooled {
		if dataset.IsNull(cell) {
			numeric[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
		if err != nil {
			isNumeric = false
			break
		}
		numeric[i] = v
	}

	bins := make([]int, len(pooled))

	if isNumeric {
		min, max := math.Inf(1), math.Inf(-1)
		for _, v := range numeric {
			if math.IsNaN(v) {
				continue
			}
			min = math.Min(min, v)
			max = math.Max(max, v)
		}
		width := (max - min) / float64(d.bins)
		for i, v := range numeric {
			switch {
			case math.IsNaN(v):
				bins[i] = -1
			case width == 0:
				bins[i] = 0
			default:
				b := int((v - min) / width)
				if b >= d.bins {
					b = d.bins - 1
				}
				bins[i] = b
			}
		}
		return bins
	}

	categories := make(map[string]int)
	var order []string
	for _, cell := range pooled {
		if dataset.IsNull(cell) {
			continue
		}
		if _, ok := categories[cell]; !ok {
			categories[cell] = 0
			order = append(order, cell)
		}
	}
	sort.Strings(order)
	for i, c := range order {
		categories[c] = i
	}
	for i, cell := range pooled {
		if dataset.IsNull(cell) {
			bins[i] = -1
			continue
		}
		bins[i] = categories[cell]
	}
	return bins
}
