// Pamoja - Matchmaking Candidate Ranking
// Copyright 2026 Joseph Kariuki (jkariuki)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jkariuki/pamoja

package matchmaker

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jkariuki/pamoja/internal/models"
)

// Artifact is one immutable fitted bundle: the frozen encoder, the
// interaction index, the compatibility model, and the profile snapshot
// they were fitted on. Training always publishes a brand-new artifact;
// queries only ever read one. Fields are exported for serialization.
type Artifact struct {
	Encoder    *Encoder
	Index      *InteractionIndex
	Model      *CompatibilityModel
	Profiles   []models.Profile
	Exclusions models.ExclusionSets

	// ProfileFeatures holds each profile's encoded vector, indexed by the
	// profile's position in Index.ProfileIndex.
	ProfileFeatures [][]float64

	Version   int
	TrainedAt time.Time
}

// Engine coordinates the full pipeline: training builds artifacts, ranking
// reads the latest one. Safe for concurrent use.
type Engine struct {
	config *Config
	logger zerolog.Logger
	filter *Filter

	// Published artifact, swapped whole on successful training
	artifactMu sync.RWMutex
	artifact   *Artifact

	// trainMu serializes training; a held lock rejects rather than queues
	trainMu sync.Mutex

	statusMu sync.RWMutex
	status   TrainingStatus
}

// NewEngine creates an engine with the given configuration.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Engine{
		config: cfg.Clone(),
		logger: logger.With().Str("component", "matchmaker").Logger(),
		filter: NewFilter(cfg.Filter),
	}, nil
}

// Ready reports whether a fitted artifact is available.
func (e *Engine) Ready() bool {
	e.artifactMu.RLock()
	defer e.artifactMu.RUnlock()
	return e.artifact != nil
}

// Artifact returns the currently published artifact, or nil before the
// first successful training.
func (e *Engine) Artifact() *Artifact {
	e.artifactMu.RLock()
	defer e.artifactMu.RUnlock()
	return e.artifact
}

// Restore publishes a previously persisted artifact, typically at startup.
func (e *Engine) Restore(a *Artifact) {
	e.artifactMu.Lock()
	e.artifact = a
	e.artifactMu.Unlock()

	e.statusMu.Lock()
	e.status.LastTrainedAt = a.TrainedAt
	e.status.ModelVersion = a.Version
	e.status.ProfileCount = len(a.Profiles)
	e.status.InteractionCount = len(a.Index.Cells)
	e.status.DroppedInteractions = a.Index.Dropped
	e.statusMu.Unlock()

	e.logger.Info().
		Int("version", a.Version).
		Int("profiles", len(a.Profiles)).
		Msg("restored persisted artifact")
}

// Status returns a snapshot of the training state.
func (e *Engine) Status() TrainingStatus {
	e.statusMu.RLock()
	defer e.statusMu.RUnlock()
	return e.status
}

// Train fits a fresh artifact from the dataset snapshot and publishes it.
// Returns ErrTrainingInProgress if another training run holds the lock and
// ErrEmptyProfilePool for a snapshot without profiles. Queries keep being
// served from the previous artifact until the swap.
func (e *Engine) Train(ctx context.Context, data *Dataset) error {
	if !e.trainMu.TryLock() {
		return ErrTrainingInProgress
	}
	defer e.trainMu.Unlock()

	start := time.Now()
	e.setTraining(true)

	artifact, err := e.fit(ctx, data)

	duration := time.Since(start)
	e.finishTraining(artifact, err, duration)

	if err != nil {
		e.logger.Error().Err(err).Msg("training failed")
		return err
	}

	e.artifactMu.Lock()
	e.artifact = artifact
	e.artifactMu.Unlock()

	e.logger.Info().
		Int("version", artifact.Version).
		Int("profiles", len(artifact.Profiles)).
		Int("interactions", len(artifact.Index.Cells)).
		Int("dropped_interactions", artifact.Index.Dropped).
		Dur("duration", duration).
		Msg("training complete")

	return nil
}

// fit builds the artifact without touching engine state.
func (e *Engine) fit(ctx context.Context, data *Dataset) (*Artifact, error) {
	if data == nil || len(data.Profiles) == 0 {
		return nil, ErrEmptyProfilePool
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	encoder, err := FitEncoder(data.Profiles, e.config.Encoder)
	if err != nil {
		return nil, fmt.Errorf("fit encoder: %w", err)
	}

	index := BuildInteractionIndex(data.Profiles, data.Interactions)

	// Encode every profile once, stored at its matrix index
	features := make([][]float64, len(index.ProfileIndex))
	for i := range data.Profiles {
		p := &data.Profiles[i]
		vec, err := encoder.EncodeProfile(p)
		if err != nil {
			return nil, fmt.Errorf("encode profile %s: %w", p.ProfileID, err)
		}
		features[index.ProfileIndex[p.ProfileID]] = vec
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	model := TrainCompatibilityModel(features, index, e.config.Model)
	if model.Degenerate() {
		e.logger.Warn().Msg("no usable interactions; model is degenerate, ranking falls back to rule signals")
	}

	return &Artifact{
		Encoder:         encoder,
		Index:           index,
		Model:           model,
		Profiles:        data.Profiles,
		Exclusions:      data.Exclusions,
		ProfileFeatures: features,
		Version:         e.nextVersion(),
		TrainedAt:       time.Now().UTC(),
	}, nil
}

// Rank scores and ranks candidates for one query against the published
// artifact. Returns ErrNotTrained before the first successful training and
// a *ValidationError for malformed queries.
func (e *Engine) Rank(ctx context.Context, req RankRequest) (*RankResponse, error) {
	start := time.Now()

	e.artifactMu.RLock()
	artifact := e.artifact
	e.artifactMu.RUnlock()
	if artifact == nil {
		return nil, ErrNotTrained
	}

	if err := validateQuery(&req.Query); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req = e.applyDefaults(req)
	logger := e.logger.With().
		Str("request_id", req.RequestID).
		Str("user_id", req.Query.UserID).
		Logger()

	resp := &RankResponse{
		Outcome:  OutcomeRanked,
		PoolSize: len(artifact.Profiles),
		Metadata: ResponseMetadata{
			RequestID:    req.RequestID,
			UserID:       req.Query.UserID,
			ModelVersion: artifact.Version,
			TrainedAt:    artifact.TrainedAt,
			Timestamp:    time.Now().UTC(),
		},
	}

	eligible := e.filter.Apply(&req.Query, artifact.Profiles, artifact.Exclusions)
	resp.EligibleCount = len(eligible)
	if len(eligible) == 0 {
		logger.Debug().Int("pool", resp.PoolSize).Msg("no eligible candidates")
		resp.Outcome = OutcomeNoEligible
		resp.Candidates = []models.Candidate{}
		resp.Metadata.LatencyMS = time.Since(start).Milliseconds()
		return resp, nil
	}

	scored := e.score(artifact, &req.Query, eligible)
	if len(scored) == 0 {
		logger.Debug().Int("eligible", len(eligible)).Msg("no scorable candidates")
		resp.Outcome = OutcomeNoScorable
		resp.Candidates = []models.Candidate{}
		resp.Metadata.LatencyMS = time.Since(start).Milliseconds()
		return resp, nil
	}

	// Stable sort keeps pool order on exact ties
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].FinalScore > scored[j].FinalScore
	})
	if len(scored) > req.K {
		scored = scored[:req.K]
	}

	resp.Candidates = scored
	resp.Metadata.LatencyMS = time.Since(start).Milliseconds()

	logger.Debug().
		Int("pool", resp.PoolSize).
		Int("eligible", resp.EligibleCount).
		Int("returned", len(scored)).
		Int64("latency_ms", resp.Metadata.LatencyMS).
		Msg("ranking complete")

	return resp, nil
}

// score predicts compatibility and blends the final score for each
// eligible candidate. A candidate absent from the fitted profile index
// never enters the model: it keeps MLScore 0 and ranks on the rule
// signals alone.
func (e *Engine) score(artifact *Artifact, q *models.Query, eligible []models.Candidate) []models.Candidate {
	userIdx := UnknownUserIdx
	if i, ok := artifact.Index.UserIndex[q.UserID]; ok {
		userIdx = i
	}

	w := e.config.Weights
	scored := make([]models.Candidate, 0, len(eligible))
	for _, cand := range eligible {
		if profileIdx, ok := artifact.Index.ProfileIndex[cand.Profile.ProfileID]; ok {
			cand.MLScore = artifact.Model.Score(userIdx, profileIdx, artifact.ProfileFeatures[profileIdx])
		}
		cand.FinalScore = w.ML*cand.MLScore +
			w.Country*boolWeight(cand.CountryMatch) +
			w.Language*boolWeight(cand.LanguageMatch) +
			w.Goal*boolWeight(cand.GoalMatch)
		cand.Reasons = buildReasons(&cand)
		scored = append(scored, cand)
	}
	return scored
}

// buildReasons produces the human-readable ranking explanations.
func buildReasons(c *models.Candidate) []string {
	var reasons []string
	if c.CountryMatch {
		reasons = append(reasons, "Country match")
	}
	if c.LanguageMatch {
		reasons = append(reasons, "Language match")
	}
	if c.GoalMatch {
		reasons = append(reasons, "Relationship goals match")
	}
	if c.MLScore > 0.5 {
		reasons = append(reasons, "High ML compatibility")
	}
	if c.SubscribedScore > 0 {
		reasons = append(reasons, "Subscribed user")
	}
	return reasons
}

// applyDefaults fills request id and clamps K to the configured limits.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) applyDefaults(req RankRequest) RankRequest {
	if req.RequestID == "" {
		req.RequestID = uuid.New().String()
	}
	if req.K <= 0 {
		req.K = e.config.Limits.DefaultK
	}
	if req.K > e.config.Limits.MaxK {
		req.K = e.config.Limits.MaxK
	}
	return req
}

// validateQuery rejects malformed queries before any pipeline work.
func validateQuery(q *models.Query) error {
	if q.UserID == "" {
		return &ValidationError{Field: "user_id", Reason: "must not be empty"}
	}
	if q.Age != 0 && (q.Age < models.MinAge || q.Age > models.MaxAge) {
		return &ValidationError{
			Field:  "age",
			Reason: fmt.Sprintf("must be between %d and %d", models.MinAge, models.MaxAge),
		}
	}
	if err := validateSexValue("sex", q.Sex); err != nil {
		return err
	}
	return validateSexValue("seeking", q.Seeking)
}

// validateSexValue checks a query sex or seeking value against the
// declared domain. Empty means unspecified and is accepted; profile-side
// values outside the domain encode to unknown instead.
func validateSexValue(field, value string) error {
	switch normalizeCategory(value) {
	case models.Unknown, "male", "female":
		return nil
	}
	return &ValidationError{Field: field, Reason: "must be male, female, or empty"}
}

func boolWeight(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func (e *Engine) setTraining(v bool) {
	e.statusMu.Lock()
	e.status.IsTraining = v
	e.statusMu.Unlock()
}

// finishTraining records the outcome of one training run.
func (e *Engine) finishTraining(a *Artifact, err error, duration time.Duration) {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()

	e.status.IsTraining = false
	e.status.LastTrainingDurationMS = duration.Milliseconds()
	if err != nil {
		e.status.LastError = err.Error()
		return
	}

	e.status.LastError = ""
	e.status.LastTrainedAt = a.TrainedAt
	e.status.ModelVersion = a.Version
	e.status.ProfileCount = len(a.Profiles)
	e.status.InteractionCount = len(a.Index.Cells)
	e.status.DroppedInteractions = a.Index.Dropped
}

func (e *Engine) nextVersion() int {
	e.statusMu.RLock()
	defer e.statusMu.RUnlock()
	return e.status.ModelVersion + 1
}
