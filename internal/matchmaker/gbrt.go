// Pamoja - Matchmaking Candidate Ranking
// Copyright 2026 Joseph Kariuki (jkariuki)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jkariuki/pamoja

package matchmaker

import (
	"sort"
)

// Tree-growing limits matching common gradient-boosting defaults.
const (
	minSamplesSplit = 2
	minSamplesLeaf  = 1
)

// TreeNode is one node of a regression tree in flattened form. Interior
// nodes route on Feature against Threshold; leaves carry the fitted value.
// Fields are exported for artifact serialization.
type TreeNode struct {
	Feature   int
	Threshold float64
	Left      int
	Right     int
	Value     float64
	Leaf      bool
}

// RegressionTree is a depth-limited regression tree grown by exact greedy
// variance-reduction splits. Node 0 is the root.
type RegressionTree struct {
	Nodes []TreeNode
}

// Predict routes one row to its leaf value.
func (t *RegressionTree) Predict(row []float64) float64 {
	i := 0
	for !t.Nodes[i].Leaf {
		if row[t.Nodes[i].Feature] <= t.Nodes[i].Threshold {
			i = t.Nodes[i].Left
		} else {
			i = t.Nodes[i].Right
		}
	}
	return t.Nodes[i].Value
}

// GBRT is a gradient-boosted ensemble of regression trees with squared
// loss. Training is fully deterministic: the initial prediction is the
// target mean, each stage fits one tree to the current residuals by exact
// greedy splits, and ties between candidate splits resolve to the lowest
// feature index.
type GBRT struct {
	// Init is the constant initial prediction (the training target mean).
	Init float64

	// LearningRate shrinks each stage's contribution.
	LearningRate float64

	// Trees holds the fitted stages in boosting order.
	Trees []RegressionTree
}

// FitGBRT trains a boosted ensemble on the given matrix and targets.
func FitGBRT(x [][]float64, y []float64, cfg ModelConfig) *GBRT {
	model := &GBRT{
		Init:         mean(y),
		LearningRate: cfg.LearningRate,
		Trees:        make([]RegressionTree, 0, cfg.Estimators),
	}
	if len(x) == 0 {
		return model
	}

	// Running ensemble prediction per training row
	pred := make([]float64, len(y))
	for i := range pred {
		pred[i] = model.Init
	}

	residuals := make([]float64, len(y))
	indices := make([]int, len(y))

	for stage := 0; stage < cfg.Estimators; stage++ {
		for i := range y {
			residuals[i] = y[i] - pred[i]
			indices[i] = i
		}

		tree := growTree(x, residuals, indices, cfg.MaxDepth)
		model.Trees = append(model.Trees, tree)

		for i := range pred {
			pred[i] += cfg.LearningRate * tree.Predict(x[i])
		}
	}

	return model
}

// Predict returns the ensemble prediction for one row.
func (g *GBRT) Predict(row []float64) float64 {
	out := g.Init
	for i := range g.Trees {
		out += g.LearningRate * g.Trees[i].Predict(row)
	}
	return out
}

// growTree grows one regression tree over the sample subset to maxDepth.
func growTree(x [][]float64, targets []float64, indices []int, maxDepth int) RegressionTree {
	t := RegressionTree{}
	t.grow(x, targets, indices, maxDepth)
	return t
}

// grow appends the subtree for the sample subset and returns its node index.
func (t *RegressionTree) grow(x [][]float64, targets []float64, indices []int, depth int) int {
	if depth == 0 || len(indices) < minSamplesSplit || pureTargets(targets, indices) {
		return t.appendLeaf(subsetMean(targets, indices))
	}

	feature, threshold, ok := bestSplit(x, targets, indices)
	if !ok {
		return t.appendLeaf(subsetMean(targets, indices))
	}

	var left, right []int
	for _, i := range indices {
		if x[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	node := len(t.Nodes)
	t.Nodes = append(t.Nodes, TreeNode{Feature: feature, Threshold: threshold})
	t.Nodes[node].Left = t.grow(x, targets, left, depth-1)
	t.Nodes[node].Right = t.grow(x, targets, right, depth-1)
	return node
}

func (t *RegressionTree) appendLeaf(value float64) int {
	t.Nodes = append(t.Nodes, TreeNode{Leaf: true, Value: value})
	return len(t.Nodes) - 1
}

// bestSplit scans every feature for the threshold minimizing the summed
// squared error of the two halves. Candidate thresholds are midpoints
// between consecutive distinct feature values; a strictly better score is
// required to displace the incumbent, so ties keep the lowest feature.
func bestSplit(x [][]float64, targets []float64, indices []int) (feature int, threshold float64, ok bool) {
	bestScore := subsetSSE(targets, indices)
	if bestScore <= 0 {
		return 0, 0, false
	}

	order := make([]int, len(indices))
	for f := 0; f < len(x[indices[0]]); f++ {
		copy(order, indices)
		sort.Slice(order, func(i, j int) bool {
			return x[order[i]][f] < x[order[j]][f]
		})

		// Prefix sums over the sorted order let each candidate split be
		// scored in constant time.
		var sumL, sqL float64
		sumT, sqT := 0.0, 0.0
		for _, i := range order {
			sumT += targets[i]
			sqT += targets[i] * targets[i]
		}

		for k := 0; k < len(order)-1; k++ {
			i := order[k]
			sumL += targets[i]
			sqL += targets[i] * targets[i]

			if x[order[k]][f] == x[order[k+1]][f] {
				continue
			}
			nL := k + 1
			nR := len(order) - nL
			if nL < minSamplesLeaf || nR < minSamplesLeaf {
				continue
			}

			sseL := sqL - sumL*sumL/float64(nL)
			sumR := sumT - sumL
			sseR := (sqT - sqL) - sumR*sumR/float64(nR)

			if score := sseL + sseR; score < bestScore {
				bestScore = score
				feature = f
				threshold = (x[order[k]][f] + x[order[k+1]][f]) / 2
				ok = true
			}
		}
	}
	return feature, threshold, ok
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func subsetMean(targets []float64, indices []int) float64 {
	var sum float64
	for _, i := range indices {
		sum += targets[i]
	}
	return sum / float64(len(indices))
}

func subsetSSE(targets []float64, indices []int) float64 {
	m := subsetMean(targets, indices)
	var sse float64
	for _, i := range indices {
		d := targets[i] - m
		sse += d * d
	}
	return sse
}

func pureTargets(targets []float64, indices []int) bool {
	for _, i := range indices[1:] {
		if targets[i] != targets[indices[0]] {
			return false
		}
	}
	return true
}
