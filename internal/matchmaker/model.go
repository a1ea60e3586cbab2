// Pamoja - Matchmaking Candidate Ranking
// Copyright 2026 Joseph Kariuki (jkariuki)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jkariuki/pamoja

package matchmaker

import (
	"github.com/jkariuki/pamoja/internal/models"
)

// UnknownUserIdx is the row index substituted when the querying user has
// no profile in the training snapshot. Index 0 keeps the coordinate inside
// the range the scaler and trees saw at fit time; the feature columns, not
// the user coordinate, carry the generalization to unseen users.
const UnknownUserIdx = 0

// CompatibilityModel predicts normalized interaction strength for a
// (user, profile) pair. Each training row is the pair's matrix coordinates
// followed by the profile's encoded features; the target is the observed
// interaction weight normalized to [0, 1].
//
// A model fitted on zero interactions is degenerate: it predicts 0 for
// every pair and ranking falls back to the rule-derived signals alone.
type CompatibilityModel struct {
	// Scaler standardizes rows before prediction. Nil when degenerate.
	Scaler *Scaler

	// Booster is the fitted ensemble. Nil when degenerate.
	Booster *GBRT

	// Width is the expected row width.
	Width int
}

// TrainCompatibilityModel fits a model from the interaction cells.
// profileFeatures is indexed by profile index and must cover every cell.
func TrainCompatibilityModel(profileFeatures [][]float64, idx *InteractionIndex, cfg ModelConfig) *CompatibilityModel {
	if len(idx.Cells) == 0 {
		return &CompatibilityModel{}
	}

	width := 2 + len(profileFeatures[0])
	x := make([][]float64, len(idx.Cells))
	y := make([]float64, len(idx.Cells))
	for i, cell := range idx.Cells {
		row := make([]float64, 0, width)
		row = append(row, float64(cell.UserIdx), float64(cell.ProfileIdx))
		row = append(row, profileFeatures[cell.ProfileIdx]...)
		x[i] = row
		y[i] = cell.Weight / models.MaxInteractionWeight
	}

	scaler := FitScaler(x)
	scaler.TransformAll(x)

	return &CompatibilityModel{
		Scaler:  scaler,
		Booster: FitGBRT(x, y, cfg),
		Width:   width,
	}
}

// Degenerate reports whether the model was fitted without interactions.
func (m *CompatibilityModel) Degenerate() bool {
	return m.Booster == nil
}

// Score predicts compatibility for one pair, clamped to [0, 1]. Pass
// UnknownUserIdx for users absent from the training snapshot.
func (m *CompatibilityModel) Score(userIdx, profileIdx int, profileFeatures []float64) float64 {
	if m.Degenerate() {
		return 0
	}

	row := make([]float64, 0, m.Width)
	row = append(row, float64(userIdx), float64(profileIdx))
	row = append(row, profileFeatures...)
	m.Scaler.Transform(row)

	return clamp01(m.Booster.Predict(row))
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
