// Package metrics computes classification evaluation metrics over true and
// predicted label sequences. Multi-class precision, recall and F1 use
// weighted averaging: per-class scores weighted by class support.
package metrics

import (
	"github.com/factoryml/trainer/pkg/errors"
)

// Report bundles the four standard classification metrics.
type Report struct {
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1_score"`
}

// Accuracy returns the fraction of correctly predicted labels.
func Accuracy(yTrue, yPred []int) (float64, error) {
	if err := checkLabels("Accuracy", yTrue, yPred); err != nil {
		return 0, err
	}
	correct := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(yTrue)), nil
}

// Precision returns the support-weighted average of per-class precision.
// A class with no positive predictions contributes zero.
func Precision(yTrue, yPred []int) (float64, error) {
	if err := checkLabels("Precision", yTrue, yPred); err != nil {
		return 0, err
	}
	return weightedAverage(yTrue, yPred, func(tp, fp, fn int) float64 {
		if tp+fp == 0 {
			return 0
		}
		return float64(tp) / float64(tp+fp)
	}), nil
}

// Recall returns the support-weighted average of per-class recall.
func Recall(yTrue, yPred []int) (float64, error) {
	if err := checkLabels("Recall", yTrue, yPred); err != nil {
		return 0, err
	}
	return weightedAverage(yTrue, yPred, func(tp, fp, fn int) float64 {
		if tp+fn == 0 {
			return 0
		}
		return float64(tp) / float64(tp+fn)
	}), nil
}

// F1 returns the support-weighted average of per-class F1 scores.
func F1(yTrue, yPred []int) (float64, error) {
	if err := checkLabels("F1", yTrue, yPred); err != nil {
		return 0, err
	}
	return weightedAverage(yTrue, yPred, func(tp, fp, fn int) float64 {
		denom := float64(2*tp + fp + fn)
		if denom == 0 {
			return 0
		}
		return 2 * float64(tp) / denom
	}), nil
}

// ClassificationReport computes all four metrics in one pass over the
// inputs. It is a pure function of the two label sequences.
func ClassificationReport(yTrue, yPred []int) (Report, error) {
	if err := checkLabels("ClassificationReport", yTrue, yPred); err != nil {
		return Report{}, err
	}

	accuracy, _ := Accuracy(yTrue, yPred)
	precision, _ := Precision(yTrue, yPred)
	recall, _ := Recall(yTrue, yPred)
	f1, _ := F1(yTrue, yPred)

	return Report{
		Accuracy:  accuracy,
		Precision: precision,
		Recall:    recall,
		F1:        f1,
	}, nil
}

func checkLabels(op string, yTrue, yPred []int) error {
	if len(yTrue) == 0 {
		return errors.Wrap(errors.ErrEmptyData, op)
	}
	if len(yTrue) != len(yPred) {
		return errors.NewDimensionError(op, len(yTrue), len(yPred), 0)
	}
	return nil
}

// weightedAverage computes a per-class score from confusion counts and
// averages it weighted by class support in yTrue.
func weightedAverage(yTrue, yPred []int, score func(tp, fp, fn int) float64) float64 {
	classes := make(map[int]bool)
	for _, label := range yTrue {
		classes[label] = true
	}
	for _, label := range yPred {
		classes[label] = true
	}

	total := len(yTrue)
	result := 0.0
	for class := range classes {
		tp, fp, fn, support := 0, 0, 0, 0
		for i := range yTrue {
			switch {
			case yTrue[i] == class && yPred[i] == class:
				tp++
			case yTrue[i] != class && yPred[i] == class:
				fp++
			case yTrue[i] == class && yPred[i] != class:
				fn++
			}
			if yTrue[i] == class {
				support++
			}
		}
		result += float64(support) / float64(total) * score(tp, fp, fn)
	}
	return result
}
