// Pamoja - Matchmaking Candidate Ranking
// Copyright 2026 Joseph Kariuki (jkariuki)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jkariuki/pamoja

package matchmaker

import (
	"testing"

	"github.com/jkariuki/pamoja/internal/models"
)

func trainedTestModel(t *testing.T) (*CompatibilityModel, [][]float64) {
	t.Helper()

	features := [][]float64{
		{25, 0, 1},
		{30, 1, 0},
		{35, 1, 1},
	}
	idx := &InteractionIndex{
		UserIndex:    map[string]int{"u1": 0, "u2": 1, "u3": 2},
		ProfileIndex: map[string]int{"p1": 0, "p2": 1, "p3": 2},
		Cells: []InteractionCell{
			{UserIdx: 0, ProfileIdx: 1, Weight: 2},
			{UserIdx: 0, ProfileIdx: 2, Weight: 1},
			{UserIdx: 1, ProfileIdx: 0, Weight: 2},
			{UserIdx: 2, ProfileIdx: 0, Weight: 1},
		},
	}
	return TrainCompatibilityModel(features, idx, ModelConfig{
		Estimators:   20,
		MaxDepth:     3,
		LearningRate: 0.1,
		Seed:         42,
	}), features
}

func TestCompatibilityModelScoreRange(t *testing.T) {
	model, features := trainedTestModel(t)

	for userIdx := 0; userIdx < 3; userIdx++ {
		for profileIdx, f := range features {
			score := model.Score(userIdx, profileIdx, f)
			if score < 0 || score > 1 {
				t.Errorf("Score(%d, %d) = %f, want in [0, 1]", userIdx, profileIdx, score)
			}
		}
	}
}

func TestCompatibilityModelNormalizedTargets(t *testing.T) {
	model, features := trainedTestModel(t)

	// A strongly matched training pair should score above the liked pair.
	matched := model.Score(0, 1, features[1])
	liked := model.Score(0, 2, features[2])
	if matched <= liked {
		t.Errorf("matched pair scored %f, liked pair %f; want matched higher", matched, liked)
	}
}

func TestCompatibilityModelDegenerate(t *testing.T) {
	features := [][]float64{{25, 0, 1}}
	idx := &InteractionIndex{
		UserIndex:    map[string]int{"u1": 0},
		ProfileIndex: map[string]int{"p1": 0},
	}

	model := TrainCompatibilityModel(features, idx, ModelConfig{
		Estimators: 10, MaxDepth: 3, LearningRate: 0.1,
	})

	if !model.Degenerate() {
		t.Fatal("model trained on zero interactions should be degenerate")
	}
	if got := model.Score(0, 0, features[0]); got != 0 {
		t.Errorf("degenerate Score = %f, want 0", got)
	}
}

func TestCompatibilityModelUnknownUser(t *testing.T) {
	model, features := trainedTestModel(t)

	// Unknown users borrow the first indexed row, keeping the coordinate
	// inside the fitted range.
	score := model.Score(UnknownUserIdx, 0, features[0])
	if score < 0 || score > 1 {
		t.Errorf("unknown user score = %f, want in [0, 1]", score)
	}
	if known := model.Score(0, 0, features[0]); score != known {
		t.Errorf("unknown user score = %f, want %f (same as index 0)", score, known)
	}
}

func TestCompatibilityModelScoreDoesNotMutateFeatures(t *testing.T) {
	model, features := trainedTestModel(t)

	orig := make([]float64, len(features[0]))
	copy(orig, features[0])

	model.Score(0, 0, features[0])
	for i := range orig {
		if features[0][i] != orig[i] {
			t.Fatal("Score mutated the shared profile feature slice")
		}
	}
}

func TestInteractionWeights(t *testing.T) {
	if models.InteractionLiked.Weight() != 1 {
		t.Error("liked weight should be 1")
	}
	if models.InteractionMatched.Weight() != 2 {
		t.Error("matched weight should be 2")
	}
	if models.MaxInteractionWeight != 2.0 {
		t.Error("max interaction weight should be 2")
	}
}
