// Pamoja - Matchmaking Candidate Ranking
// Copyright 2026 Joseph Kariuki (jkariuki)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jkariuki/pamoja

package matchmaker

import (
	"github.com/jkariuki/pamoja/internal/models"
)

// Filter applies the hard eligibility rules to the profile pool and
// annotates survivors with their soft-match flags. Filtering is pure: it
// reads the query, pool, and exclusion sets and produces fresh candidates.
type Filter struct {
	cfg FilterConfig
}

// NewFilter constructs a filter with the given configuration.
func NewFilter(cfg FilterConfig) *Filter {
	return &Filter{cfg: cfg}
}

// Apply runs the eligibility rules over the pool, preserving pool order.
//
// A candidate survives only if all of the following hold:
//   - the candidate is not the querying user
//   - the candidate's profile id is in none of the exclusion sets
//   - sex and seeking are mutually compatible with the query (skipped
//     when the query omits sex or seeking)
//   - the candidate's age is within the inclusive window around the
//     query age (skipped when the query omits age)
//
// Soft matches on country, language, and relationship goals never remove a
// candidate; they are recorded on the survivors for downstream blending.
func (f *Filter) Apply(q *models.Query, pool []models.Profile, excl models.ExclusionSets) []models.Candidate {
	querySex := normalizeCategory(q.Sex)
	querySeeking := normalizeCategory(q.Seeking)
	queryCountry := normalizeCategory(q.Country)
	queryLanguage := normalizeCategory(q.Language)
	queryGoals := normalizeCategory(q.RelationshipGoals)

	candidates := make([]models.Candidate, 0, len(pool))
	for i := range pool {
		p := &pool[i]

		if p.UserID == q.UserID {
			continue
		}
		if excl.Contains(p.ProfileID) {
			continue
		}
		if !mutuallyCompatible(querySex, querySeeking, normalizeCategory(p.Sex), normalizeCategory(p.Seeking)) {
			continue
		}
		if q.Age != 0 && !withinWindow(q.Age, p.Age, f.cfg.AgeWindow) {
			continue
		}

		candidates = append(candidates, models.Candidate{
			Profile:         *p,
			CountryMatch:    softMatch(queryCountry, normalizeCategory(p.Country)),
			LanguageMatch:   softMatch(queryLanguage, normalizeCategory(p.Language)),
			GoalMatch:       softMatch(queryGoals, normalizeCategory(p.RelationshipGoals)),
			SubscribedScore: p.SubscribedScore(),
		})
	}
	return candidates
}

// mutuallyCompatible reports whether the query seeks the candidate's sex
// and the candidate seeks the query's sex. The check applies only when
// the query specifies both sex and seeking; a query without them filters
// on neither. A candidate with an unknown value fails an applied check.
func mutuallyCompatible(querySex, querySeeking, candSex, candSeeking string) bool {
	if querySex == models.Unknown || querySeeking == models.Unknown {
		return true
	}
	return querySeeking == candSex && candSeeking == querySex
}

// withinWindow reports whether candidate age falls inside the inclusive
// ±window years around the query age.
func withinWindow(queryAge, candAge, window int) bool {
	diff := candAge - queryAge
	if diff < 0 {
		diff = -diff
	}
	return diff <= window
}

// softMatch is plain equality on normalized values. Two unknown values
// count as a match; this is intentional, matching the equality semantics
// of the soft signals.
func softMatch(a, b string) bool {
	return a == b
}
