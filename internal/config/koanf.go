// Pamoja - Matchmaking Candidate Ranking
// Copyright 2026 Joseph Kariuki (jkariuki)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jkariuki/pamoja

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists where config files are searched, in order.
// The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/pamoja/config.yaml",
	"/etc/pamoja/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// Load builds configuration from layered sources:
//  1. Defaults: built-in values
//  2. Config file: optional YAML file (if one exists)
//  3. Environment variables: override any setting
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// PAMOJA_HTTP_PORT -> server.port, PAMOJA_DATA_DIR -> data.dir
	envProvider := env.Provider("PAMOJA_", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first config file that exists, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths lists config paths parsed as comma-separated slices
// when supplied through environment variables.
var sliceConfigPaths = []string{
	"server.cors_origins",
	"matchmaker.encoder.categorical_columns",
	"matchmaker.encoder.keywords",
}

// processSliceFields converts comma-separated env strings to slices for
// known slice fields. YAML-sourced values arrive as slices and are skipped.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envTransformFunc maps environment variable names to config paths.
//
// Examples:
//   - PAMOJA_HTTP_PORT        -> server.port
//   - PAMOJA_LOG_LEVEL        -> logging.level
//   - PAMOJA_DATA_DIR         -> data.dir
//   - PAMOJA_TRAIN_INTERVAL   -> training.interval
//   - PAMOJA_ML_WEIGHT        -> matchmaker.weights.ml
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, "PAMOJA_"))

	envMappings := map[string]string{
		// Server
		"http_host":         "server.host",
		"http_port":         "server.port",
		"http_timeout":      "server.timeout",
		"rate_limit_reqs":   "server.rate_limit_reqs",
		"rate_limit_window": "server.rate_limit_window",
		"cors_origins":      "server.cors_origins",

		// Logging
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",

		// Data export
		"data_dir":      "data.dir",
		"profiles_file": "data.profiles_file",
		"liked_file":    "data.liked_file",
		"matched_file":  "data.matched_file",
		"blocked_file":  "data.blocked_file",
		"declined_file": "data.declined_file",
		"deleted_file":  "data.deleted_file",
		"reported_file": "data.reported_file",

		// Pipeline
		"categorical_columns": "matchmaker.encoder.categorical_columns",
		"keywords":            "matchmaker.encoder.keywords",
		"max_features":        "matchmaker.encoder.max_features",
		"min_doc_freq":        "matchmaker.encoder.min_doc_freq",
		"stop_words":          "matchmaker.encoder.stop_words",
		"age_window":          "matchmaker.filter.age_window",
		"estimators":          "matchmaker.model.estimators",
		"max_depth":           "matchmaker.model.max_depth",
		"learning_rate":       "matchmaker.model.learning_rate",
		"seed":                "matchmaker.model.seed",
		"ml_weight":           "matchmaker.weights.ml",
		"country_weight":      "matchmaker.weights.country",
		"language_weight":     "matchmaker.weights.language",
		"goal_weight":         "matchmaker.weights.goal",
		"default_k":           "matchmaker.limits.default_k",
		"max_k":               "matchmaker.limits.max_k",

		// Artifacts
		"artifacts_dir":  "artifacts.dir",
		"artifacts_keep": "artifacts.keep",

		// Training
		"train_on_startup": "training.on_startup",
		"train_interval":   "training.interval",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}
	// Unknown variables fall through untouched so nested paths can be
	// addressed directly, e.g. PAMOJA_SERVER_PORT.
	return strings.ReplaceAll(key, "_", ".")
}
