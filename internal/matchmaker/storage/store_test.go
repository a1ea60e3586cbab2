// Pamoja - Matchmaking Candidate Ranking
// Copyright 2026 Joseph Kariuki (jkariuki)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jkariuki/pamoja

package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/jkariuki/pamoja/internal/matchmaker"
	"github.com/jkariuki/pamoja/internal/models"
)

func trainedArtifact(t *testing.T) *matchmaker.Artifact {
	t.Helper()

	engine, err := matchmaker.NewEngine(matchmaker.DefaultConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	data := &matchmaker.Dataset{
		Profiles: []models.Profile{
			{
				ProfileID: "p1", UserID: "u1", Age: 30,
				Country: "Kenya", Language: "Swahili", Sex: "female", Seeking: "male",
				RelationshipGoals: "long-term", AboutMe: "Love football",
			},
			{
				ProfileID: "p2", UserID: "u2", Age: 31,
				Country: "Kenya", Language: "Swahili", Sex: "male", Seeking: "female",
				RelationshipGoals: "long-term", AboutMe: "Soccer and hiking",
			},
		},
		Interactions: []models.InteractionRecord{
			{UserID: "u1", ProfileID: "p2", Kind: models.InteractionMatched},
		},
	}
	if err := engine.Train(context.Background(), data); err != nil {
		t.Fatalf("Train: %v", err)
	}
	return engine.Artifact()
}

func TestStoreSaveLoadRoundtrip(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	artifact := trainedArtifact(t)
	meta, err := store.Save(context.Background(), artifact)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if meta.Version != artifact.Version {
		t.Errorf("meta version = %d, want %d", meta.Version, artifact.Version)
	}
	if meta.ProfileCount != 2 {
		t.Errorf("ProfileCount = %d, want 2", meta.ProfileCount)
	}
	if meta.Checksum == "" {
		t.Error("checksum should be set")
	}

	loaded, loadedMeta, err := store.Load(context.Background(), 0)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loadedMeta.Checksum != meta.Checksum {
		t.Error("metadata checksum changed between save and load")
	}
	if loaded.Version != artifact.Version {
		t.Errorf("loaded version = %d, want %d", loaded.Version, artifact.Version)
	}
	if len(loaded.Profiles) != len(artifact.Profiles) {
		t.Errorf("loaded profiles = %d, want %d", len(loaded.Profiles), len(artifact.Profiles))
	}
	if loaded.Encoder == nil || loaded.Model == nil || loaded.Index == nil {
		t.Fatal("loaded artifact missing fitted components")
	}

	// A restored artifact must keep serving predictions.
	engine, err := matchmaker.NewEngine(matchmaker.DefaultConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	engine.Restore(loaded)

	resp, err := engine.Rank(context.Background(), matchmaker.RankRequest{
		Query: models.Query{
			UserID: "u1", Age: 30, Country: "Kenya", Language: "Swahili",
			Sex: "female", Seeking: "male", RelationshipGoals: "long-term",
		},
	})
	if err != nil {
		t.Fatalf("Rank after restore: %v", err)
	}
	if resp.Outcome != matchmaker.OutcomeRanked {
		t.Errorf("Outcome = %s, want ranked", resp.Outcome)
	}
}

func TestStoreLoadEmpty(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	_, _, err = store.Load(context.Background(), 0)
	if !errors.Is(err, ErrNoArtifact) {
		t.Errorf("err = %v, want ErrNoArtifact", err)
	}
}

func TestStoreScanFindsExisting(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	artifact := trainedArtifact(t)
	if _, err := store.Save(context.Background(), artifact); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// A fresh store over the same directory sees the saved version.
	reopened, err := NewStore(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	version, ok := reopened.LatestVersion()
	if !ok || version != artifact.Version {
		t.Errorf("LatestVersion = %d, %v; want %d, true", version, ok, artifact.Version)
	}
}

func TestStoreCorruptionDetected(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	artifact := trainedArtifact(t)
	if _, err := store.Save(context.Background(), artifact); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// Truncate the artifact file to corrupt it
	path := filepath.Join(dir, "pamoja_v1.gob.gz")
	if err := os.Truncate(path, 64); err != nil {
		t.Fatalf("truncate: %v", err)
	}

	if _, _, err := store.Load(context.Background(), 0); err == nil {
		t.Error("expected an error loading a corrupted artifact")
	}
}

func TestStorePrune(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	artifact := trainedArtifact(t)
	for v := 1; v <= 4; v++ {
		artifact.Version = v
		artifact.TrainedAt = time.Now().UTC()
		if _, err := store.Save(context.Background(), artifact); err != nil {
			t.Fatalf("Save v%d: %v", v, err)
		}
	}

	if err := store.Prune(context.Background(), 2); err != nil {
		t.Fatalf("Prune: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("files after prune = %d, want 2", len(entries))
	}

	// Latest version must survive pruning
	if _, _, err := store.Load(context.Background(), 4); err != nil {
		t.Errorf("latest version pruned: %v", err)
	}
	if _, _, err := store.Load(context.Background(), 1); !errors.Is(err, ErrNoArtifact) {
		t.Errorf("oldest version should be pruned, got %v", err)
	}
}
