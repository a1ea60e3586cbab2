// Pamoja - Matchmaking Candidate Ranking
// Copyright 2026 Joseph Kariuki (jkariuki)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jkariuki/pamoja

package models

import (
	"bytes"
	"encoding/gob"
	"sort"
)

// Unknown is the sentinel value for missing or unrecognized categorical
// attributes. Every fitted category map includes it, so encoding an
// unseen value is always a total lookup, never an error.
const Unknown = "unknown"

// Age bounds accepted for profiles and queries.
const (
	MinAge = 18
	MaxAge = 120
)

// Profile is one candidate row from the profile table.
// Identity fields are immutable; categorical attributes are either a known
// category or the Unknown sentinel.
type Profile struct {
	// ProfileID is the unique profile identifier.
	ProfileID string `json:"profile_id"`

	// UserID is the owning user's identifier.
	UserID string `json:"user_id"`

	// DisplayName is the public profile name.
	DisplayName string `json:"display_name"`

	// Age in whole years.
	Age int `json:"age"`

	Country           string `json:"country"`
	Language          string `json:"language"`
	Sex               string `json:"sex"`
	Seeking           string `json:"seeking"`
	RelationshipGoals string `json:"relationship_goals"`

	// AboutMe is the free-text self description used for lexical features.
	AboutMe string `json:"about_me"`

	// Subscription tier flags. Summed into the candidate's subscribed score.
	Subscribed            bool `json:"subscribed"`
	SubscribedEliteOne    bool `json:"subscribed_elite_one"`
	SubscribedEliteThree  bool `json:"subscribed_elite_three"`
	SubscribedEliteSix    bool `json:"subscribed_elite_six"`
	SubscribedEliteTwelve bool `json:"subscribed_elite_twelve"`
}

// SubscriptionFlags returns the five tier flags in fixed column order.
// The order is load-bearing: it must match the fitted feature layout.
func (p *Profile) SubscriptionFlags() [5]bool {
	return [5]bool{
		p.Subscribed,
		p.SubscribedEliteOne,
		p.SubscribedEliteThree,
		p.SubscribedEliteSix,
		p.SubscribedEliteTwelve,
	}
}

// SubscribedScore is the sum of the subscription tier flags (0-5).
func (p *Profile) SubscribedScore() int {
	score := 0
	for _, f := range p.SubscriptionFlags() {
		if f {
			score++
		}
	}
	return score
}

// Query is the requesting user's profile shape. It is not persisted as a
// Profile and carries no identity constraints beyond a non-empty UserID.
// Validated against the same age range and categorical rules before use.
type Query struct {
	UserID            string `json:"user_id" validate:"required"`
	Age               int    `json:"age" validate:"omitempty,gte=18,lte=120"`
	Country           string `json:"country"`
	Language          string `json:"language"`
	Sex               string `json:"sex"`
	Seeking           string `json:"seeking"`
	RelationshipGoals string `json:"relationship_goals"`
	AboutMe           string `json:"about_me"`
}

// InteractionKind classifies an interaction record.
type InteractionKind int

const (
	// InteractionLiked indicates the user liked the profile.
	InteractionLiked InteractionKind = iota
	// InteractionMatched indicates a mutual match, a stronger signal.
	InteractionMatched
)

// String returns a human-readable name for the interaction kind.
func (k InteractionKind) String() string {
	switch k {
	case InteractionLiked:
		return "liked"
	case InteractionMatched:
		return "matched"
	default:
		return Unknown
	}
}

// Weight returns the implicit strength of this interaction kind.
// Matched outweighs liked; weights are normalized by MaxInteractionWeight
// before use as regression labels.
func (k InteractionKind) Weight() float64 {
	switch k {
	case InteractionMatched:
		return 2
	case InteractionLiked:
		return 1
	default:
		return 0
	}
}

// MaxInteractionWeight is the normalization divisor for interaction weights.
const MaxInteractionWeight = 2.0

// InteractionRecord is one (user, profile, kind) triple from the historical
// interaction tables. Records are append-only; the pipeline never mutates them.
type InteractionRecord struct {
	UserID    string          `json:"user_id"`
	ProfileID string          `json:"profile_id"`
	Kind      InteractionKind `json:"kind"`
}

// ExclusionSets holds the four hard-exclusion id lists. A candidate whose
// profile id appears in any set never reaches scoring.
type ExclusionSets struct {
	Blocked  map[string]struct{}
	Declined map[string]struct{}
	Deleted  map[string]struct{}
	Reported map[string]struct{}
}

// NewExclusionSets builds ExclusionSets from raw id slices.
func NewExclusionSets(blocked, declined, deleted, reported []string) ExclusionSets {
	return ExclusionSets{
		Blocked:  toSet(blocked),
		Declined: toSet(declined),
		Deleted:  toSet(deleted),
		Reported: toSet(reported),
	}
}

// exclusionSetsWire is the serialized form of ExclusionSets. The member
// sets use struct{} values, which gob cannot encode, so persistence goes
// through sorted id slices instead.
type exclusionSetsWire struct {
	Blocked  []string
	Declined []string
	Deleted  []string
	Reported []string
}

// GobEncode implements gob.GobEncoder.
func (e ExclusionSets) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	wire := exclusionSetsWire{
		Blocked:  setToSorted(e.Blocked),
		Declined: setToSorted(e.Declined),
		Deleted:  setToSorted(e.Deleted),
		Reported: setToSorted(e.Reported),
	}
	if err := gob.NewEncoder(&buf).Encode(wire); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder.
func (e *ExclusionSets) GobDecode(data []byte) error {
	var wire exclusionSetsWire
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&wire); err != nil {
		return err
	}
	*e = NewExclusionSets(wire.Blocked, wire.Declined, wire.Deleted, wire.Reported)
	return nil
}

func setToSorted(set map[string]struct{}) []string {
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Contains reports whether the id appears in any of the four sets.
func (e ExclusionSets) Contains(id string) bool {
	if _, ok := e.Blocked[id]; ok {
		return true
	}
	if _, ok := e.Declined[id]; ok {
		return true
	}
	if _, ok := e.Deleted[id]; ok {
		return true
	}
	_, ok := e.Reported[id]
	return ok
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		set[id] = struct{}{}
	}
	return set
}

// Candidate is the per-request projection of a Profile augmented with the
// rule-match flags and scores produced by the pipeline. Created fresh per
// query and discarded after the response.
type Candidate struct {
	Profile Profile `json:"profile"`

	// Soft match flags against the query. Not filters; they feed the
	// blended final score.
	CountryMatch  bool `json:"country_match"`
	LanguageMatch bool `json:"language_match"`
	GoalMatch     bool `json:"goal_match"`

	// SubscribedScore is the sum of subscription tier flags (0-5).
	// Informational ranking signal, not weighted into FinalScore.
	SubscribedScore int `json:"subscribed_score"`

	// MLScore is the model-predicted compatibility in [0, 1].
	MLScore float64 `json:"ml_score"`

	// FinalScore is the blended ranking score in [0, 1].
	FinalScore float64 `json:"final_score"`

	// Reasons lists human-readable explanations for the ranking.
	Reasons []string `json:"reasons,omitempty"`
}
