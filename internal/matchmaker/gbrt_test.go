// Pamoja - Matchmaking Candidate Ranking
// Copyright 2026 Joseph Kariuki (jkariuki)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jkariuki/pamoja

package matchmaker

import (
	"math"
	"reflect"
	"testing"
)

func gbrtConfig() ModelConfig {
	return ModelConfig{
		Estimators:   50,
		MaxDepth:     3,
		LearningRate: 0.1,
		Seed:         42,
	}
}

func TestGBRTFitsSeparableTargets(t *testing.T) {
	// Target depends on a simple threshold of the first feature.
	x := [][]float64{
		{0, 1}, {1, 0}, {2, 1}, {3, 0},
		{10, 1}, {11, 0}, {12, 1}, {13, 0},
	}
	y := []float64{0, 0, 0, 0, 1, 1, 1, 1}

	model := FitGBRT(x, y, gbrtConfig())

	for i, row := range x {
		pred := model.Predict(row)
		if math.Abs(pred-y[i]) > 0.05 {
			t.Errorf("row %d: predict = %f, want close to %f", i, pred, y[i])
		}
	}
}

func TestGBRTInitIsTargetMean(t *testing.T) {
	x := [][]float64{{1}, {2}, {3}}
	y := []float64{0.5, 1.0, 1.5}

	model := FitGBRT(x, y, gbrtConfig())
	if math.Abs(model.Init-1.0) > 1e-12 {
		t.Errorf("Init = %f, want target mean 1.0", model.Init)
	}
}

func TestGBRTDeterministic(t *testing.T) {
	x := [][]float64{
		{1, 5, 2}, {2, 4, 2}, {3, 3, 1}, {4, 2, 1}, {5, 1, 0},
	}
	y := []float64{0.1, 0.3, 0.5, 0.7, 0.9}

	a := FitGBRT(x, y, gbrtConfig())
	b := FitGBRT(x, y, gbrtConfig())

	if !reflect.DeepEqual(a, b) {
		t.Error("repeated fits on identical inputs produced different models")
	}
}

func TestGBRTConstantTargets(t *testing.T) {
	x := [][]float64{{1}, {2}, {3}}
	y := []float64{0.5, 0.5, 0.5}

	model := FitGBRT(x, y, gbrtConfig())
	for _, row := range x {
		if got := model.Predict(row); math.Abs(got-0.5) > 1e-9 {
			t.Errorf("predict = %f, want 0.5 for constant targets", got)
		}
	}
}

func TestGBRTEmptyTrainingSet(t *testing.T) {
	model := FitGBRT(nil, nil, gbrtConfig())
	if len(model.Trees) != 0 {
		t.Errorf("trees = %d, want 0 for empty training set", len(model.Trees))
	}
	if model.Predict([]float64{1, 2, 3}) != 0 {
		t.Error("empty model should predict the zero initial value")
	}
}

func TestGBRTStageCount(t *testing.T) {
	cfg := gbrtConfig()
	cfg.Estimators = 7

	x := [][]float64{{1}, {2}, {3}, {4}}
	y := []float64{0, 0, 1, 1}

	model := FitGBRT(x, y, cfg)
	if len(model.Trees) != 7 {
		t.Errorf("trees = %d, want 7", len(model.Trees))
	}
}

func TestRegressionTreeDepthLimit(t *testing.T) {
	cfg := gbrtConfig()
	cfg.Estimators = 1
	cfg.MaxDepth = 1

	// With depth 1 a single split cannot separate this XOR-like pattern.
	x := [][]float64{{0, 0}, {0, 1}, {1, 0}, {1, 1}}
	y := []float64{0, 1, 1, 0}

	model := FitGBRT(x, y, cfg)
	tree := model.Trees[0]

	// Depth 1 means at most one interior node and two leaves.
	if len(tree.Nodes) > 3 {
		t.Errorf("nodes = %d, want at most 3 at depth 1", len(tree.Nodes))
	}
}

func TestBestSplitTieBreaksLowestFeature(t *testing.T) {
	// Both features separate the targets identically; the split must pick
	// feature 0.
	x := [][]float64{{0, 0}, {0, 0}, {1, 1}, {1, 1}}
	y := []float64{0, 0, 1, 1}
	indices := []int{0, 1, 2, 3}

	feature, threshold, ok := bestSplit(x, y, indices)
	if !ok {
		t.Fatal("expected a split")
	}
	if feature != 0 {
		t.Errorf("feature = %d, want tie-break to feature 0", feature)
	}
	if math.Abs(threshold-0.5) > 1e-12 {
		t.Errorf("threshold = %f, want midpoint 0.5", threshold)
	}
}
