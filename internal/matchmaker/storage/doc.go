// Pamoja - Matchmaking Candidate Ranking
// Copyright 2026 Joseph Kariuki (jkariuki)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jkariuki/pamoja

// Package storage persists fitted matchmaker artifacts to disk.
//
// Artifacts are gob-encoded, gzip-compressed, and written as versioned
// files ({name}_v{version}.gob.gz) with metadata including a SHA-256
// checksum, so a server restart can restore the latest fitted model
// without retraining and a corrupted file is detected rather than loaded.
//
// # Thread Safety
//
// All store operations are safe for concurrent use.
package storage
