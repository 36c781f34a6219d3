package model

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type fakeEstimator struct {
	BaseEstimator
	Weights []float64
}

func TestSaveLoadModel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.gob")

	saved := &fakeEstimator{Weights: []float64{1.5, -2.0, 3.25}}
	saved.SetFitted()
	if err := SaveModel(saved, path); err != nil {
		t.Fatalf("SaveModel() error = %v", err)
	}

	var loaded fakeEstimator
	if err := LoadModel(&loaded, path); err != nil {
		t.Fatalf("LoadModel() error = %v", err)
	}
	if !loaded.IsFitted() {
		t.Error("fitted state was not persisted")
	}
	if len(loaded.Weights) != 3 || loaded.Weights[2] != 3.25 {
		t.Errorf("weights = %v, want [1.5 -2 3.25]", loaded.Weights)
	}
}

func TestSaveModelLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()

	saved := &fakeEstimator{Weights: []float64{1}}
	if err := SaveModel(saved, filepath.Join(dir, "model.gob")); err != nil {
		t.Fatalf("SaveModel() error = %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".model-") {
			t.Errorf("temp file %s left behind", entry.Name())
		}
	}
}

func TestLoadModelMissingFile(t *testing.T) {
	var loaded fakeEstimator
	if err := LoadModel(&loaded, filepath.Join(t.TempDir(), "absent.gob")); err == nil {
		t.Error("LoadModel() on a missing file returned no error")
	}
}

func TestBaseEstimatorState(t *testing.T) {
	var e BaseEstimator
	if e.IsFitted() {
		t.Error("new estimator reports fitted")
	}
	e.SetFitted()
	if !e.IsFitted() {
		t.Error("SetFitted did not mark the estimator fitted")
	}
	e.Reset()
	if e.IsFitted() {
		t.Error("Reset did not clear the fitted state")
	}
}
