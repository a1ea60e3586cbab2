// Pamoja - Matchmaking Candidate Ranking
// Copyright 2026 Joseph Kariuki (jkariuki)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jkariuki/pamoja

package matchmaker

import (
	"sort"

	"github.com/jkariuki/pamoja/internal/models"
)

// InteractionCell is one observed (user, profile) interaction with its
// strongest recorded weight. Cells are the nonzero entries of the sparse
// user-by-profile interaction matrix.
type InteractionCell struct {
	UserIdx    int
	ProfileIdx int
	Weight     float64
}

// InteractionIndex is the sparse interaction matrix in coordinate form,
// plus the id-to-index maps shared by training and inference. Index
// assignment is deterministic: first-seen order over the profile table.
type InteractionIndex struct {
	// UserIndex maps user id to row index.
	UserIndex map[string]int

	// ProfileIndex maps profile id to column index.
	ProfileIndex map[string]int

	// Cells holds the nonzero entries, sorted by (user, profile) index.
	// When a pair has both a like and a match on record, the match wins.
	Cells []InteractionCell

	// Dropped counts records referencing a user or profile absent from
	// the snapshot. Dangling records are skipped, never guessed at.
	Dropped int
}

// BuildInteractionIndex builds the sparse index from one dataset snapshot.
// Weights are the raw interaction weights; callers normalize them by
// models.MaxInteractionWeight before regression.
func BuildInteractionIndex(profiles []models.Profile, records []models.InteractionRecord) *InteractionIndex {
	idx := &InteractionIndex{
		UserIndex:    make(map[string]int, len(profiles)),
		ProfileIndex: make(map[string]int, len(profiles)),
	}
	for i := range profiles {
		if _, ok := idx.UserIndex[profiles[i].UserID]; !ok {
			idx.UserIndex[profiles[i].UserID] = len(idx.UserIndex)
		}
		if _, ok := idx.ProfileIndex[profiles[i].ProfileID]; !ok {
			idx.ProfileIndex[profiles[i].ProfileID] = len(idx.ProfileIndex)
		}
	}

	// Strongest weight per cell
	cells := make(map[[2]int]float64)
	for _, r := range records {
		u, okU := idx.UserIndex[r.UserID]
		p, okP := idx.ProfileIndex[r.ProfileID]
		if !okU || !okP {
			idx.Dropped++
			continue
		}
		key := [2]int{u, p}
		if w := r.Kind.Weight(); w > cells[key] {
			cells[key] = w
		}
	}

	idx.Cells = make([]InteractionCell, 0, len(cells))
	for key, w := range cells {
		idx.Cells = append(idx.Cells, InteractionCell{
			UserIdx:    key[0],
			ProfileIdx: key[1],
			Weight:     w,
		})
	}
	sort.Slice(idx.Cells, func(i, j int) bool {
		if idx.Cells[i].UserIdx != idx.Cells[j].UserIdx {
			return idx.Cells[i].UserIdx < idx.Cells[j].UserIdx
		}
		return idx.Cells[i].ProfileIdx < idx.Cells[j].ProfileIdx
	})

	return idx
}
