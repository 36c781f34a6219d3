// Package ensemble implements the classifier used by the training
// pipeline: a CART decision tree and a bagged random forest over gonum
// matrices.
package ensemble

import (
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/factoryml/trainer/core/model"
	"github.com/factoryml/trainer/pkg/errors"
)

// DecisionTreeClassifier is a CART-style classifier splitting on gini
// impurity. All learned fields are exported so a fitted tree survives gob
// round trips inside the persisted pipeline.
type DecisionTreeClassifier struct {
	model.BaseEstimator

	// MaxDepth limits tree depth; 0 means no limit.
	MaxDepth int
	// MinSamplesSplit is the minimum sample count to attempt a split.
	MinSamplesSplit int
	// MinSamplesLeaf is the minimum sample count required in each child.
	MinSamplesLeaf int
	// MaxFeatures is the number of features sampled per split; 0 uses all.
	MaxFeatures int
	// MinImpurityDecrease is the smallest impurity gain accepted.
	MinImpurityDecrease float64
	// RandomState seeds feature subsampling.
	RandomState int64

	// Root is the fitted tree.
	Root *TreeNode
	// ClassLabels holds the class labels, aligned with proba columns.
	ClassLabels []int
	// NFeatures is the training feature width.
	NFeatures int
	// Importances accumulates normalized impurity decrease per feature.
	Importances []float64
}

// TreeNode is one node of a fitted tree.
type TreeNode struct {
	Leaf      bool
	Feature   int
	Threshold float64 // x <= Threshold goes left
	Left      *TreeNode
	Right     *TreeNode
	Probas    []float64 // class distribution, aligned with ClassLabels
	Pred      int       // index into ClassLabels
}

// TreeOption configures a DecisionTreeClassifier.
type TreeOption func(*DecisionTreeClassifier)

// WithMaxDepth sets the depth limit (0 = unlimited).
func WithMaxDepth(d int) TreeOption {
	return func(t *DecisionTreeClassifier) { t.MaxDepth = d }
}

// WithMinSamplesSplit sets the minimum samples to attempt a split.
func WithMinSamplesSplit(n int) TreeOption {
	return func(t *DecisionTreeClassifier) { t.MinSamplesSplit = n }
}

// WithMinSamplesLeaf sets the minimum samples per leaf.
func WithMinSamplesLeaf(n int) TreeOption {
	return func(t *DecisionTreeClassifier) { t.MinSamplesLeaf = n }
}

// WithMaxFeatures sets the number of features sampled per split.
func WithMaxFeatures(k int) TreeOption {
	return func(t *DecisionTreeClassifier) { t.MaxFeatures = k }
}

// WithTreeRandomState seeds the feature subsampling RNG.
func WithTreeRandomState(seed int64) TreeOption {
	return func(t *DecisionTreeClassifier) { t.RandomState = seed }
}

// NewDecisionTreeClassifier returns a tree with CART defaults.
func NewDecisionTreeClassifier(opts ...TreeOption) *DecisionTreeClassifier {
	t := &DecisionTreeClassifier{
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Fit trains the tree on all rows of X.
func (t *DecisionTreeClassifier) Fit(X mat.Matrix, y []int) error {
	r, _ := X.Dims()
	idx := make([]int, r)
	for i := range idx {
		idx[i] = i
	}
	return t.FitIndices(X, y, idx, nil)
}

// FitIndices trains the tree on the given row indices. classLabels fixes
// the proba column order across an ensemble; nil derives it from y.
func (t *DecisionTreeClassifier) FitIndices(X mat.Matrix, y []int, idx []int, classLabels []int) error {
	r, c := X.Dims()
	if r == 0 || c == 0 || len(idx) == 0 {
		return errors.Wrap(errors.ErrEmptyData, "DecisionTreeClassifier.Fit")
	}
	if len(y) != r {
		return errors.NewDimensionError("DecisionTreeClassifier.Fit", r, len(y), 0)
	}

	if classLabels == nil {
		classLabels = uniqueLabels(y)
	}
	t.ClassLabels = classLabels
	t.NFeatures = c
	t.Importances = make([]float64, c)

	classOf := make([]int, r)
	for i, label := range y {
		pos, ok := indexOf(classLabels, label)
		if !ok {
			return errors.NewValueError("DecisionTreeClassifier.Fit", "label outside the declared class set")
		}
		classOf[i] = pos
	}

	rng := rand.New(rand.NewSource(t.RandomState))
	builder := &treeBuilder{
		tree:    t,
		X:       X,
		classOf: classOf,
		nTotal:  len(idx),
		rng:     rng,
	}
	t.Root = builder.build(idx, 0)

	// Normalize accumulated impurity decreases to sum to one.
	total := 0.0
	for _, v := range t.Importances {
		total += v
	}
	if total > 0 {
		for j := range t.Importances {
			t.Importances[j] /= total
		}
	}

	t.SetFitted()
	return nil
}

// Predict returns the majority class per row.
func (t *DecisionTreeClassifier) Predict(X mat.Matrix) ([]int, error) {
	proba, err := t.PredictProba(X)
	if err != nil {
		return nil, err
	}
	return argmaxLabels(proba, t.ClassLabels), nil
}

// PredictProba returns the leaf class distribution per row.
func (t *DecisionTreeClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if !t.IsFitted() {
		return nil, errors.NewNotFittedError("DecisionTreeClassifier", "PredictProba")
	}
	r, c := X.Dims()
	if c != t.NFeatures {
		return nil, errors.NewDimensionError("DecisionTreeClassifier.PredictProba", t.NFeatures, c, 1)
	}

	result := mat.NewDense(r, len(t.ClassLabels), nil)
	for i := 0; i < r; i++ {
		node := t.Root
		for !node.Leaf {
			if X.At(i, node.Feature) <= node.Threshold {
				node = node.Left
			} else {
				node = node.Right
			}
		}
		for j, p := range node.Probas {
			result.Set(i, j, p)
		}
	}
	return result, nil
}

// Classes returns the class labels in proba column order.
func (t *DecisionTreeClassifier) Classes() []int {
	return t.ClassLabels
}

// FeatureImportances returns the normalized impurity-decrease importances.
func (t *DecisionTreeClassifier) FeatureImportances() ([]float64, error) {
	if !t.IsFitted() {
		return nil, errors.NewNotFittedError("DecisionTreeClassifier", "FeatureImportances")
	}
	return t.Importances, nil
}

// treeBuilder carries the shared state of one Fit call.
type treeBuilder struct {
	tree    *DecisionTreeClassifier
	X       mat.Matrix
	classOf []int
	nTotal  int
	rng     *rand.Rand
}

func (b *treeBuilder) build(idx []int, depth int) *TreeNode {
	counts := b.classCounts(idx)
	impurity := gini(counts, len(idx))

	if impurity == 0 ||
		len(idx) < b.tree.MinSamplesSplit ||
		(b.tree.MaxDepth > 0 && depth >= b.tree.MaxDepth) {
		return b.leaf(counts, len(idx))
	}

	feature, threshold, decrease, leftIdx, rightIdx := b.bestSplit(idx, impurity)
	if feature < 0 || decrease <= b.tree.MinImpurityDecrease {
		return b.leaf(counts, len(idx))
	}

	b.tree.Importances[feature] += float64(len(idx)) / float64(b.nTotal) * decrease

	return &TreeNode{
		Feature:   feature,
		Threshold: threshold,
		Left:      b.build(leftIdx, depth+1),
		Right:     b.build(rightIdx, depth+1),
	}
}

func (b *treeBuilder) leaf(counts []int, n int) *TreeNode {
	probas := make([]float64, len(counts))
	pred := 0
	for j, c := range counts {
		probas[j] = float64(c) / float64(n)
		if c > counts[pred] {
			pred = j
		}
	}
	return &TreeNode{Leaf: true, Probas: probas, Pred: pred}
}

func (b *treeBuilder) classCounts(idx []int) []int {
	counts := make([]int, len(b.tree.ClassLabels))
	for _, i := range idx {
		counts[b.classOf[i]]++
	}
	return counts
}

// bestSplit scans candidate features for the split with the largest
// weighted gini decrease. Returns feature -1 when no valid split exists.
func (b *treeBuilder) bestSplit(idx []int, parentImpurity float64) (feature int, threshold, decrease float64, leftIdx, rightIdx []int) {
	feature = -1

	candidates := b.candidateFeatures()
	n := len(idx)
	nClasses := len(b.tree.ClassLabels)

	type sample struct {
		value float64
		class int
		row   int
	}
	samples := make([]sample, n)

	for _, j := range candidates {
		for i, row := range idx {
			samples[i] = sample{value: b.X.At(row, j), class: b.classOf[row], row: row}
		}
		sort.Slice(samples, func(a, c int) bool { return samples[a].value < samples[c].value })

		leftCounts := make([]int, nClasses)
		rightCounts := b.classCounts(idx)

		for i := 0; i < n-1; i++ {
			leftCounts[samples[i].class]++
			rightCounts[samples[i].class]--

			if samples[i+1].value == samples[i].value {
				continue
			}
			nLeft, nRight := i+1, n-i-1
			if nLeft < b.tree.MinSamplesLeaf || nRight < b.tree.MinSamplesLeaf {
				continue
			}

			weighted := float64(nLeft)/float64(n)*gini(leftCounts, nLeft) +
				float64(nRight)/float64(n)*gini(rightCounts, nRight)
			gain := parentImpurity - weighted
			if gain > decrease {
				decrease = gain
				feature = j
				threshold = (samples[i].value + samples[i+1].value) / 2
			}
		}
	}

	if feature < 0 {
		return -1, 0, 0, nil, nil
	}

	for _, row := range idx {
		if b.X.At(row, feature) <= threshold {
			leftIdx = append(leftIdx, row)
		} else {
			rightIdx = append(rightIdx, row)
		}
	}
	return feature, threshold, decrease, leftIdx, rightIdx
}

func (b *treeBuilder) candidateFeatures() []int {
	k := b.tree.MaxFeatures
	if k <= 0 || k >= b.tree.NFeatures {
		all := make([]int, b.tree.NFeatures)
		for j := range all {
			all[j] = j
		}
		return all
	}
	return b.rng.Perm(b.tree.NFeatures)[:k]
}

func gini(counts []int, n int) float64 {
	if n == 0 {
		return 0
	}
	sum := 1.0
	for _, c := range counts {
		p := float64(c) / float64(n)
		sum -= p * p
	}
	return sum
}

func uniqueLabels(y []int) []int {
	seen := make(map[int]bool)
	var labels []int
	for _, label := range y {
		if !seen[label] {
			seen[label] = true
			labels = append(labels, label)
		}
	}
	sort.Ints(labels)
	return labels
}

func indexOf(labels []int, label int) (int, bool) {
	for i, l := range labels {
		if l == label {
			return i, true
		}
	}
	return 0, false
}

func argmaxLabels(proba mat.Matrix, labels []int) []int {
	r, c := proba.Dims()
	out := make([]int, r)
	for i := 0; i < r; i++ {
		best, bestVal := 0, math.Inf(-1)
		for j := 0; j < c; j++ {
			if v := proba.At(i, j); v > bestVal {
				best, bestVal = j, v
			}
		}
		out[i] = labels[best]
	}
	return out
}
