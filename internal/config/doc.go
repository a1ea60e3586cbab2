// Pamoja - Matchmaking Candidate Ranking
// Copyright 2026 Joseph Kariuki (jkariuki)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jkariuki/pamoja

// Package config loads server configuration from layered sources.
//
// Precedence, lowest to highest: built-in defaults, an optional YAML config
// file, environment variables. The merged configuration is validated before
// use; the server refuses to start on an invalid configuration.
package config
