// Pamoja - Matchmaking Candidate Ranking
// Copyright 2026 Joseph Kariuki (jkariuki)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jkariuki/pamoja

package matchmaker

import "math"

// Scaler standardizes feature columns to zero mean and unit variance.
// Fitted on the training matrix and reused verbatim at inference so both
// sides see the same coordinate system.
type Scaler struct {
	Mean []float64
	Std  []float64
}

// FitScaler computes per-column mean and population standard deviation.
// Constant columns get a unit deviation so transforming them yields zero
// instead of dividing by zero.
func FitScaler(rows [][]float64) *Scaler {
	if len(rows) == 0 {
		return &Scaler{}
	}
	width := len(rows[0])
	mean := make([]float64, width)
	std := make([]float64, width)
	n := float64(len(rows))

	for _, row := range rows {
		for j, x := range row {
			mean[j] += x
		}
	}
	for j := range mean {
		mean[j] /= n
	}

	for _, row := range rows {
		for j, x := range row {
			d := x - mean[j]
			std[j] += d * d
		}
	}
	for j := range std {
		std[j] = math.Sqrt(std[j] / n)
		if std[j] == 0 {
			std[j] = 1
		}
	}

	return &Scaler{Mean: mean, Std: std}
}

// Transform standardizes one row in place and returns it.
func (s *Scaler) Transform(row []float64) []float64 {
	for j := range row {
		row[j] = (row[j] - s.Mean[j]) / s.Std[j]
	}
	return row
}

// TransformAll standardizes every row in place.
func (s *Scaler) TransformAll(rows [][]float64) [][]float64 {
	for _, row := range rows {
		s.Transform(row)
	}
	return rows
}
