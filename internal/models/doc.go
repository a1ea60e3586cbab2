// Pamoja - Matchmaking Candidate Ranking
// Copyright 2026 Joseph Kariuki (jkariuki)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jkariuki/pamoja

// Package models defines the shared data structures for Pamoja.
//
// It contains the profile and interaction types consumed by the matchmaking
// pipeline, the per-request candidate projection returned to callers, and the
// standardized API response envelope used by every HTTP endpoint.
//
// Types in this package are plain data carriers with no behavior beyond
// small helpers; all pipeline logic lives in internal/matchmaker.
package models
