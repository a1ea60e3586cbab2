// Pamoja - Matchmaking Candidate Ranking
// Copyright 2026 Joseph Kariuki (jkariuki)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jkariuki/pamoja

package matchmaker

import (
	"errors"
	"fmt"
	"time"

	"github.com/jkariuki/pamoja/internal/models"
)

// Sentinel errors for the pipeline's typed outcomes.
var (
	// ErrNotTrained indicates no fitted artifact is available yet.
	ErrNotTrained = errors.New("no trained model available")

	// ErrTrainingInProgress indicates a concurrent training attempt.
	ErrTrainingInProgress = errors.New("training already in progress")

	// ErrEmptyProfilePool indicates training was requested with no profiles.
	ErrEmptyProfilePool = errors.New("profile pool is empty")
)

// ValidationError reports a malformed query or profile attribute. It is
// raised before any filtering or encoding work starts, never mid-pipeline.
type ValidationError struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Dataset is one immutable snapshot of the external data sources: the
// profile table, the historical interaction tables, and the four exclusion
// id lists. The pipeline never mutates a Dataset.
type Dataset struct {
	Profiles     []models.Profile
	Interactions []models.InteractionRecord
	Exclusions   models.ExclusionSets
}

// RankRequest asks for ranked candidates for one querying user.
type RankRequest struct {
	// Query is the requesting user's profile shape.
	Query models.Query `json:"query"`

	// K is the number of candidates to return.
	// Defaults to Config.Limits.DefaultK if zero.
	K int `json:"k,omitempty"`

	// RequestID is a unique identifier for tracing.
	RequestID string `json:"request_id,omitempty"`
}

// Outcome distinguishes the empty-result conditions from a populated
// ranking. Empty outcomes are not errors; callers report them to the end
// user distinctly from a system failure.
type Outcome string

const (
	// OutcomeRanked indicates candidates were scored and ranked.
	OutcomeRanked Outcome = "ranked"

	// OutcomeNoEligible indicates the eligibility filter emptied the pool.
	OutcomeNoEligible Outcome = "no_eligible_candidates"

	// OutcomeNoScorable indicates no eligible candidate had a known
	// profile index, so the model scored nothing.
	OutcomeNoScorable Outcome = "no_scorable_candidates"
)

// RankResponse carries the ranked candidate set and diagnostics.
type RankResponse struct {
	// Outcome classifies the result; check before reading Candidates.
	Outcome Outcome `json:"outcome"`

	// Candidates is ordered by FinalScore descending, pool order on ties.
	Candidates []models.Candidate `json:"candidates"`

	// PoolSize is the candidate count before eligibility filtering.
	PoolSize int `json:"pool_size"`

	// EligibleCount is the candidate count after eligibility filtering.
	EligibleCount int `json:"eligible_count"`

	// Metadata contains timing and model diagnostics.
	Metadata ResponseMetadata `json:"metadata"`
}

// ResponseMetadata contains timing and diagnostic information.
type ResponseMetadata struct {
	RequestID    string    `json:"request_id"`
	UserID       string    `json:"user_id"`
	LatencyMS    int64     `json:"latency_ms"`
	ModelVersion int       `json:"model_version"`
	TrainedAt    time.Time `json:"trained_at"`
	Timestamp    time.Time `json:"timestamp"`
}

// TrainingStatus represents the current training state.
type TrainingStatus struct {
	// IsTraining indicates whether training is currently in progress.
	IsTraining bool `json:"is_training"`

	// LastTrainedAt is when training last completed.
	LastTrainedAt time.Time `json:"last_trained_at"`

	// LastTrainingDurationMS is how long the last training took.
	LastTrainingDurationMS int64 `json:"last_training_duration_ms"`

	// LastError contains the last training error, if any.
	LastError string `json:"last_error,omitempty"`

	// ProfileCount is the number of profiles in the training snapshot.
	ProfileCount int `json:"profile_count"`

	// InteractionCount is the number of usable interaction records.
	InteractionCount int `json:"interaction_count"`

	// DroppedInteractions is the number of dangling records skipped.
	DroppedInteractions int `json:"dropped_interactions"`

	// ModelVersion is the current model version.
	ModelVersion int `json:"model_version"`
}
