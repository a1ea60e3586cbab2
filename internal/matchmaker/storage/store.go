// Pamoja - Matchmaking Candidate Ranking
// Copyright 2026 Joseph Kariuki (jkariuki)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jkariuki/pamoja

package storage

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jkariuki/pamoja/internal/matchmaker"
)

// artifactName is the filename stem for persisted artifacts.
const artifactName = "pamoja"

// ErrNoArtifact indicates no persisted artifact exists in the store.
var ErrNoArtifact = errors.New("no persisted artifact found")

// Metadata describes one stored artifact.
type Metadata struct {
	// Version is the artifact version (monotonically increasing).
	Version int `json:"version"`

	// TrainedAt is when the artifact was fitted.
	TrainedAt time.Time `json:"trained_at"`

	// SavedAt is when the artifact was written.
	SavedAt time.Time `json:"saved_at"`

	// ProfileCount is the number of profiles in the fitted snapshot.
	ProfileCount int `json:"profile_count"`

	// InteractionCount is the number of interaction cells used.
	InteractionCount int `json:"interaction_count"`

	// Checksum is the SHA-256 checksum of the uncompressed artifact.
	Checksum string `json:"checksum"`

	// SizeBytes is the compressed artifact size.
	SizeBytes int64 `json:"size_bytes"`
}

// storedFile is the on-disk format.
type storedFile struct {
	Metadata       Metadata
	CompressedData []byte
}

// Store persists versioned artifacts in a single directory.
type Store struct {
	baseDir string
	mu      sync.RWMutex

	// latest known version on disk, 0 when none
	latest int
}

// NewStore opens an artifact store at the given directory, creating it if
// needed and scanning for existing artifact files.
func NewStore(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o750); err != nil { //nolint:gosec // 0750 is acceptable for artifact storage
		return nil, fmt.Errorf("create storage directory: %w", err)
	}

	s := &Store{baseDir: baseDir}
	if err := s.scan(); err != nil {
		return nil, fmt.Errorf("scan existing artifacts: %w", err)
	}
	return s, nil
}

// scan finds the latest artifact version already on disk.
func (s *Store) scan() error {
	versions, err := s.diskVersions()
	if err != nil {
		return err
	}
	for _, v := range versions {
		if v > s.latest {
			s.latest = v
		}
	}
	return nil
}

// diskVersions lists every artifact version present on disk.
func (s *Store) diskVersions() ([]int, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, err
	}

	var versions []int
	prefix := artifactName + "_v"
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".gob.gz") {
			continue
		}
		var v int
		if _, err := fmt.Sscanf(name[len(prefix):], "%d.gob.gz", &v); err != nil || v <= 0 {
			continue
		}
		versions = append(versions, v)
	}
	return versions, nil
}

// Save writes an artifact at its own version and records it as latest.
func (s *Store) Save(ctx context.Context, artifact *matchmaker.Artifact) (*Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(artifact); err != nil {
		return nil, fmt.Errorf("encode artifact: %w", err)
	}
	raw := buf.Bytes()

	hash := sha256.Sum256(raw)

	var compressed bytes.Buffer
	gzw := gzip.NewWriter(&compressed)
	if _, err := gzw.Write(raw); err != nil {
		return nil, fmt.Errorf("compress artifact: %w", err)
	}
	if err := gzw.Close(); err != nil {
		return nil, fmt.Errorf("finalize compression: %w", err)
	}

	meta := Metadata{
		Version:          artifact.Version,
		TrainedAt:        artifact.TrainedAt,
		SavedAt:          time.Now().UTC(),
		ProfileCount:     len(artifact.Profiles),
		InteractionCount: len(artifact.Index.Cells),
		Checksum:         hex.EncodeToString(hash[:]),
		SizeBytes:        int64(compressed.Len()),
	}

	f, err := os.Create(s.path(artifact.Version)) //nolint:gosec // path is built from the trusted base directory
	if err != nil {
		return nil, fmt.Errorf("create artifact file: %w", err)
	}
	defer func() { _ = f.Close() }() //nolint:errcheck // error on close after write is surfaced by Encode

	sf := storedFile{Metadata: meta, CompressedData: compressed.Bytes()}
	if err := gob.NewEncoder(f).Encode(sf); err != nil {
		return nil, fmt.Errorf("write artifact file: %w", err)
	}

	if artifact.Version > s.latest {
		s.latest = artifact.Version
	}
	return &meta, nil
}

// Load reads an artifact by version; version 0 loads the latest. Returns
// ErrNoArtifact when the store is empty.
func (s *Store) Load(ctx context.Context, version int) (*matchmaker.Artifact, *Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if version == 0 {
		if s.latest == 0 {
			return nil, nil, ErrNoArtifact
		}
		version = s.latest
	}

	f, err := os.Open(s.path(version)) //nolint:gosec // path is built from the trusted base directory
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, ErrNoArtifact
		}
		return nil, nil, fmt.Errorf("open artifact file: %w", err)
	}
	defer func() { _ = f.Close() }() //nolint:errcheck // error on close after read is not actionable

	var sf storedFile
	if err := gob.NewDecoder(f).Decode(&sf); err != nil {
		return nil, nil, fmt.Errorf("read artifact file: %w", err)
	}

	gzr, err := gzip.NewReader(bytes.NewReader(sf.CompressedData))
	if err != nil {
		return nil, nil, fmt.Errorf("decompress artifact: %w", err)
	}
	defer func() { _ = gzr.Close() }() //nolint:errcheck // error on gzip close after read is not actionable

	raw, err := io.ReadAll(gzr)
	if err != nil {
		return nil, nil, fmt.Errorf("read decompressed data: %w", err)
	}

	hash := sha256.Sum256(raw)
	if checksum := hex.EncodeToString(hash[:]); checksum != sf.Metadata.Checksum {
		return nil, nil, fmt.Errorf("checksum mismatch: expected %s, got %s", sf.Metadata.Checksum, checksum)
	}

	var artifact matchmaker.Artifact
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&artifact); err != nil {
		return nil, nil, fmt.Errorf("decode artifact: %w", err)
	}

	return &artifact, &sf.Metadata, nil
}

// LatestVersion returns the latest stored version and whether one exists.
func (s *Store) LatestVersion() (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest, s.latest > 0
}

// Prune removes old artifact versions, keeping the newest keep files.
func (s *Store) Prune(ctx context.Context, keep int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if keep < 1 {
		keep = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	versions, err := s.diskVersions()
	if err != nil {
		return fmt.Errorf("read directory: %w", err)
	}

	sort.Sort(sort.Reverse(sort.IntSlice(versions)))
	for i := keep; i < len(versions); i++ {
		_ = os.Remove(s.path(versions[i])) //nolint:errcheck // best-effort cleanup of old versions
	}
	return nil
}

// path returns the file path for an artifact version.
func (s *Store) path(version int) string {
	return filepath.Join(s.baseDir, fmt.Sprintf("%s_v%d.gob.gz", artifactName, version))
}
