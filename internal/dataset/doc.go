// Pamoja - Matchmaking Candidate Ranking
// Copyright 2026 Joseph Kariuki (jkariuki)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jkariuki/pamoja

// Package dataset loads profile, interaction, and exclusion snapshots from
// CSV exports.
//
// Each load produces one immutable snapshot for training. Schema problems
// (missing required columns) fail the load outright; individually malformed
// rows are skipped and counted, never guessed at.
package dataset
