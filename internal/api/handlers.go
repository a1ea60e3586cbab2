// Pamoja - Matchmaking Candidate Ranking
// Copyright 2026 Joseph Kariuki (jkariuki)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jkariuki/pamoja

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/jkariuki/pamoja/internal/dataset"
	"github.com/jkariuki/pamoja/internal/logging"
	"github.com/jkariuki/pamoja/internal/matchmaker"
	"github.com/jkariuki/pamoja/internal/matchmaker/storage"
	"github.com/jkariuki/pamoja/internal/metrics"
	"github.com/jkariuki/pamoja/internal/models"
)

// SnapshotLoader loads one dataset snapshot for training.
type SnapshotLoader interface {
	Load() (*matchmaker.Dataset, *dataset.LoadStats, error)
}

// ArtifactStore persists fitted artifacts.
type ArtifactStore interface {
	Save(ctx context.Context, artifact *matchmaker.Artifact) (*storage.Metadata, error)
	Prune(ctx context.Context, keep int) error
}

// Handler serves the ranking API.
type Handler struct {
	engine *matchmaker.Engine
	loader SnapshotLoader
	store  ArtifactStore

	// keepArtifacts is how many artifact versions to retain after saving.
	keepArtifacts int
}

// NewHandler creates an API handler. store may be nil to disable
// persistence.
func NewHandler(engine *matchmaker.Engine, loader SnapshotLoader, store ArtifactStore, keepArtifacts int) *Handler {
	return &Handler{
		engine:        engine,
		loader:        loader,
		store:         store,
		keepArtifacts: keepArtifacts,
	}
}

// Rank handles POST /api/v1/matches/rank.
func (h *Handler) Rank(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req matchmaker.RankRequest
	if err := decodeJSONBody(r, &req); err != nil {
		metrics.RankRequests.WithLabelValues("error").Inc()
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Request body is not valid JSON", err)
		return
	}
	if apiErr := validateRequest(&req.Query); apiErr != nil {
		metrics.RankRequests.WithLabelValues("error").Inc()
		respondJSON(w, http.StatusBadRequest, &models.APIResponse{
			Status:   "error",
			Metadata: models.Metadata{Timestamp: time.Now().UTC()},
			Error:    apiErr,
		})
		return
	}

	if req.RequestID == "" {
		req.RequestID = logging.RequestIDFromContext(r.Context())
	}

	resp, err := h.engine.Rank(r.Context(), req)
	if err != nil {
		h.respondRankError(w, err)
		return
	}

	metrics.RankRequests.WithLabelValues(string(resp.Outcome)).Inc()
	metrics.RankDuration.Observe(time.Since(start).Seconds())
	metrics.RankedCandidates.Observe(float64(len(resp.Candidates)))

	status := "success"
	if resp.Outcome != matchmaker.OutcomeRanked {
		status = "empty"
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: status,
		Data:   resp,
		Metadata: models.Metadata{
			Timestamp:   time.Now().UTC(),
			QueryTimeMS: resp.Metadata.LatencyMS,
			RequestID:   resp.Metadata.RequestID,
		},
	})
}

// respondRankError maps pipeline errors to HTTP responses.
func (h *Handler) respondRankError(w http.ResponseWriter, err error) {
	metrics.RankRequests.WithLabelValues("error").Inc()

	var vErr *matchmaker.ValidationError
	switch {
	case errors.As(err, &vErr):
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", vErr.Error(), nil)
	case errors.Is(err, matchmaker.ErrNotTrained):
		respondError(w, http.StatusServiceUnavailable, "MODEL_NOT_TRAINED", "No trained model is available yet", nil)
	default:
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Ranking failed", err)
	}
}

// Train handles POST /api/v1/matches/train. Training runs synchronously;
// a concurrent request is rejected rather than queued.
func (h *Handler) Train(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	data, stats, err := h.loader.Load()
	if err != nil {
		metrics.TrainingRuns.WithLabelValues("error").Inc()
		respondError(w, http.StatusInternalServerError, "DATA_LOAD_ERROR", "Failed to load dataset snapshot", err)
		return
	}

	if err := h.engine.Train(r.Context(), data); err != nil {
		switch {
		case errors.Is(err, matchmaker.ErrTrainingInProgress):
			metrics.TrainingRuns.WithLabelValues("rejected").Inc()
			respondError(w, http.StatusConflict, "TRAINING_IN_PROGRESS", "A training run is already in progress", nil)
		case errors.Is(err, matchmaker.ErrEmptyProfilePool):
			metrics.TrainingRuns.WithLabelValues("error").Inc()
			respondError(w, http.StatusUnprocessableEntity, "EMPTY_PROFILE_POOL", "The profile pool is empty", nil)
		default:
			metrics.TrainingRuns.WithLabelValues("error").Inc()
			respondError(w, http.StatusInternalServerError, "TRAINING_ERROR", "Training failed", err)
		}
		return
	}

	metrics.TrainingRuns.WithLabelValues("success").Inc()
	metrics.TrainingDuration.Observe(time.Since(start).Seconds())

	artifact := h.engine.Artifact()
	metrics.ModelVersion.Set(float64(artifact.Version))
	metrics.ProfilePoolSize.Set(float64(len(artifact.Profiles)))
	metrics.DroppedInteractions.Set(float64(artifact.Index.Dropped))

	h.persistArtifact(r.Context(), artifact)

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"status":     h.engine.Status(),
			"load_stats": stats,
		},
		Metadata: models.Metadata{
			Timestamp:   time.Now().UTC(),
			QueryTimeMS: time.Since(start).Milliseconds(),
			RequestID:   logging.RequestIDFromContext(r.Context()),
		},
	})
}

// persistArtifact saves the artifact and prunes old versions. Persistence
// failures are logged, not surfaced; the in-memory artifact is live.
func (h *Handler) persistArtifact(ctx context.Context, artifact *matchmaker.Artifact) {
	if h.store == nil {
		return
	}
	if _, err := h.store.Save(ctx, artifact); err != nil {
		logging.Error().Err(err).Int("version", artifact.Version).Msg("Failed to persist artifact")
		return
	}
	if err := h.store.Prune(ctx, h.keepArtifacts); err != nil {
		logging.Warn().Err(err).Msg("Failed to prune old artifacts")
	}
}

// Status handles GET /api/v1/matches/status.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   h.engine.Status(),
		Metadata: models.Metadata{
			Timestamp: time.Now().UTC(),
			RequestID: logging.RequestIDFromContext(r.Context()),
		},
	})
}

// Health handles GET /api/v1/health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	data := map[string]interface{}{
		"status": "ok",
		"ready":  h.engine.Ready(),
	}
	status := http.StatusOK
	if !h.engine.Ready() {
		data["status"] = "starting"
	}
	respondJSON(w, status, &models.APIResponse{
		Status:   "success",
		Data:     data,
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
	})
}

// HealthLive handles GET /api/v1/health/live.
func (h *Handler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status:   "success",
		Data:     map[string]string{"status": "alive"},
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
	})
}

// HealthReady handles GET /api/v1/health/ready. Returns 503 until a fitted
// artifact is published.
func (h *Handler) HealthReady(w http.ResponseWriter, _ *http.Request) {
	if !h.engine.Ready() {
		respondError(w, http.StatusServiceUnavailable, "NOT_READY", "No trained model is available yet", nil)
		return
	}
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status:   "success",
		Data:     map[string]string{"status": "ready"},
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
	})
}
