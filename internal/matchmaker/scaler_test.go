// Pamoja - Matchmaking Candidate Ranking
// Copyright 2026 Joseph Kariuki (jkariuki)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jkariuki/pamoja

package matchmaker

import (
	"math"
	"testing"
)

func TestFitScalerMeanAndStd(t *testing.T) {
	rows := [][]float64{
		{1, 10},
		{2, 20},
		{3, 30},
	}
	s := FitScaler(rows)

	if math.Abs(s.Mean[0]-2) > 1e-12 || math.Abs(s.Mean[1]-20) > 1e-12 {
		t.Errorf("Mean = %v, want [2 20]", s.Mean)
	}

	wantStd0 := math.Sqrt(2.0 / 3.0)
	if math.Abs(s.Std[0]-wantStd0) > 1e-12 {
		t.Errorf("Std[0] = %f, want %f", s.Std[0], wantStd0)
	}
}

func TestScalerTransformStandardizes(t *testing.T) {
	rows := [][]float64{
		{1, 10},
		{2, 20},
		{3, 30},
	}
	s := FitScaler(rows)
	s.TransformAll(rows)

	for j := 0; j < 2; j++ {
		var sum, sq float64
		for _, row := range rows {
			sum += row[j]
			sq += row[j] * row[j]
		}
		mean := sum / 3
		if math.Abs(mean) > 1e-12 {
			t.Errorf("column %d mean after transform = %f, want 0", j, mean)
		}
		variance := sq/3 - mean*mean
		if math.Abs(variance-1) > 1e-12 {
			t.Errorf("column %d variance after transform = %f, want 1", j, variance)
		}
	}
}

func TestScalerConstantColumn(t *testing.T) {
	rows := [][]float64{
		{5, 1},
		{5, 2},
		{5, 3},
	}
	s := FitScaler(rows)

	if s.Std[0] != 1 {
		t.Errorf("constant column std = %f, want fallback 1", s.Std[0])
	}

	row := s.Transform([]float64{5, 2})
	if row[0] != 0 {
		t.Errorf("constant column transforms to %f, want 0", row[0])
	}
}

func TestFitScalerEmpty(t *testing.T) {
	s := FitScaler(nil)
	if len(s.Mean) != 0 || len(s.Std) != 0 {
		t.Error("empty fit should produce an empty scaler")
	}
}
