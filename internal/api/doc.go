// Pamoja - Matchmaking Candidate Ranking
// Copyright 2026 Joseph Kariuki (jkariuki)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jkariuki/pamoja

// Package api provides the HTTP surface of the ranking service using the
// Chi router.
//
// Endpoints:
//
//	POST /api/v1/matches/rank    rank candidates for one query
//	POST /api/v1/matches/train   trigger a training run
//	GET  /api/v1/matches/status  training state and model version
//	GET  /api/v1/health          liveness and readiness
//	GET  /metrics                Prometheus metrics
//
// All JSON responses use the APIResponse envelope with a status of
// "success", "empty", or "error".
package api
