// Pamoja - Matchmaking Candidate Ranking
// Copyright 2026 Joseph Kariuki (jkariuki)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jkariuki/pamoja

// Package main is the entry point for the Pamoja ranking server.
//
// Pamoja ranks matchmaking candidates for a querying user by blending a
// learned compatibility score with deterministic rule signals. The server
// loads profile, interaction, and exclusion CSV exports, trains a model
// artifact, and serves ranking requests over HTTP.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: layered loading from defaults, YAML file, env vars
//  2. Logging: structured zerolog output
//  3. Artifact store: versioned model persistence on disk
//  4. Engine: restore the latest persisted artifact, or train from a
//     fresh snapshot when none exists
//  5. HTTP server: ranking API plus health and metrics endpoints
//  6. Retrain scheduler (optional): periodic retraining from fresh
//     snapshots
//
// # Configuration
//
// All settings come from config.yaml or PAMOJA_* environment variables,
// e.g.:
//
//	export PAMOJA_DATA_DIR=/data/export
//	export PAMOJA_HTTP_PORT=8094
//	export PAMOJA_TRAIN_INTERVAL=24h
//	./pamoja
//
// # Signal Handling
//
// The server shuts down gracefully on SIGINT and SIGTERM: it stops
// accepting connections, waits up to 10s for in-flight requests, and
// stops the retrain scheduler.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jkariuki/pamoja/internal/api"
	"github.com/jkariuki/pamoja/internal/config"
	"github.com/jkariuki/pamoja/internal/dataset"
	"github.com/jkariuki/pamoja/internal/logging"
	"github.com/jkariuki/pamoja/internal/matchmaker"
	"github.com/jkariuki/pamoja/internal/matchmaker/storage"
	"github.com/jkariuki/pamoja/internal/metrics"
)

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("server exited with error")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})
	logging.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Msg("starting pamoja")

	engine, err := matchmaker.NewEngine(&cfg.Matchmaker, logging.Logger())
	if err != nil {
		return fmt.Errorf("create engine: %w", err)
	}

	loader := dataset.NewLoader(cfg.Data, logging.Logger())

	store, err := storage.NewStore(cfg.Artifacts.Dir)
	if err != nil {
		return fmt.Errorf("open artifact store: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := bootstrap(ctx, cfg, engine, loader, store); err != nil {
		return err
	}

	handler := api.NewHandler(engine, loader, store, cfg.Artifacts.Keep)
	router := api.NewRouter(handler, api.RouterConfig{
		CORSOrigins:     cfg.Server.CORSOrigins,
		RateLimitReqs:   cfg.Server.RateLimitReqs,
		RateLimitWindow: cfg.Server.RateLimitWindow,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       2 * cfg.Server.Timeout,
	}

	if cfg.Training.Interval > 0 {
		go retrainLoop(ctx, cfg, engine, loader, store)
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logging.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logging.Info().Msg("shutdown complete")
	return nil
}

// bootstrap makes the engine ready: restore the latest persisted artifact,
// or train from a fresh snapshot when configured to. A server with neither
// still starts; it serves 503 until the first training request.
func bootstrap(ctx context.Context, cfg *config.Config, engine *matchmaker.Engine, loader *dataset.Loader, store *storage.Store) error {
	artifact, meta, err := store.Load(ctx, 0)
	switch {
	case err == nil:
		engine.Restore(artifact)
		metrics.ModelVersion.Set(float64(meta.Version))
		metrics.ProfilePoolSize.Set(float64(meta.ProfileCount))
		return nil
	case errors.Is(err, storage.ErrNoArtifact):
		// fall through to startup training
	default:
		logging.Warn().Err(err).Msg("failed to load persisted artifact, continuing without it")
	}

	if !cfg.Training.OnStartup {
		logging.Info().Msg("no persisted artifact and startup training disabled; waiting for train request")
		return nil
	}

	if err := trainOnce(ctx, cfg, engine, loader, store); err != nil {
		return fmt.Errorf("startup training: %w", err)
	}
	return nil
}

// trainOnce loads a fresh snapshot, trains, and persists the artifact.
func trainOnce(ctx context.Context, cfg *config.Config, engine *matchmaker.Engine, loader *dataset.Loader, store *storage.Store) error {
	start := time.Now()

	data, _, err := loader.Load()
	if err != nil {
		metrics.TrainingRuns.WithLabelValues("error").Inc()
		return fmt.Errorf("load dataset: %w", err)
	}

	if err := engine.Train(ctx, data); err != nil {
		if errors.Is(err, matchmaker.ErrTrainingInProgress) {
			metrics.TrainingRuns.WithLabelValues("rejected").Inc()
		} else {
			metrics.TrainingRuns.WithLabelValues("error").Inc()
		}
		return err
	}

	metrics.TrainingRuns.WithLabelValues("success").Inc()
	metrics.TrainingDuration.Observe(time.Since(start).Seconds())

	artifact := engine.Artifact()
	metrics.ModelVersion.Set(float64(artifact.Version))
	metrics.ProfilePoolSize.Set(float64(len(artifact.Profiles)))
	metrics.DroppedInteractions.Set(float64(artifact.Index.Dropped))

	if _, err := store.Save(ctx, artifact); err != nil {
		logging.Error().Err(err).Int("version", artifact.Version).Msg("failed to persist artifact")
		return nil
	}
	if err := store.Prune(ctx, cfg.Artifacts.Keep); err != nil {
		logging.Warn().Err(err).Msg("failed to prune old artifacts")
	}
	return nil
}

// retrainLoop retrains from fresh snapshots on the configured interval
// until the context is cancelled.
func retrainLoop(ctx context.Context, cfg *config.Config, engine *matchmaker.Engine, loader *dataset.Loader, store *storage.Store) {
	ticker := time.NewTicker(cfg.Training.Interval)
	defer ticker.Stop()

	logging.Info().Dur("interval", cfg.Training.Interval).Msg("retrain scheduler started")

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := trainOnce(ctx, cfg, engine, loader, store); err != nil {
				logging.Error().Err(err).Msg("scheduled retraining failed")
			}
		}
	}
}
