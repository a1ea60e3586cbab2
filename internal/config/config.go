// Pamoja - Matchmaking Candidate Ranking
// Copyright 2026 Joseph Kariuki (jkariuki)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jkariuki/pamoja

package config

import (
	"fmt"
	"time"

	"github.com/jkariuki/pamoja/internal/dataset"
	"github.com/jkariuki/pamoja/internal/matchmaker"
)

// Config is the full server configuration.
type Config struct {
	// Server configures the HTTP listener.
	Server ServerConfig `json:"server" koanf:"server"`

	// Logging configures structured log output.
	Logging LoggingConfig `json:"logging" koanf:"logging"`

	// Data names the CSV export to load snapshots from.
	Data dataset.Config `json:"data" koanf:"data"`

	// Matchmaker configures the scoring pipeline.
	Matchmaker matchmaker.Config `json:"matchmaker" koanf:"matchmaker"`

	// Artifacts configures fitted-model persistence.
	Artifacts ArtifactsConfig `json:"artifacts" koanf:"artifacts"`

	// Training configures automatic retraining.
	Training TrainingConfig `json:"training" koanf:"training"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host    string        `json:"host" koanf:"host"`
	Port    int           `json:"port" koanf:"port" validate:"gte=1,lte=65535"`
	Timeout time.Duration `json:"timeout" koanf:"timeout"`

	// RateLimitReqs is the per-IP request budget per RateLimitWindow.
	// Zero disables rate limiting.
	RateLimitReqs   int           `json:"rate_limit_reqs" koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `json:"rate_limit_window" koanf:"rate_limit_window"`

	// CORSOrigins lists allowed cross-origin request origins.
	CORSOrigins []string `json:"cors_origins" koanf:"cors_origins"`
}

// LoggingConfig configures structured log output.
type LoggingConfig struct {
	// Level is one of trace, debug, info, warn, error.
	Level string `json:"level" koanf:"level"`

	// Format is "json" or "console".
	Format string `json:"format" koanf:"format"`

	// Caller includes file:line in log entries.
	Caller bool `json:"caller" koanf:"caller"`
}

// ArtifactsConfig configures fitted-model persistence.
type ArtifactsConfig struct {
	// Dir is the artifact storage directory.
	Dir string `json:"dir" koanf:"dir"`

	// Keep is how many artifact versions to retain on disk.
	Keep int `json:"keep" koanf:"keep"`
}

// TrainingConfig configures automatic retraining.
type TrainingConfig struct {
	// OnStartup trains from a fresh snapshot at boot when no persisted
	// artifact exists.
	OnStartup bool `json:"on_startup" koanf:"on_startup"`

	// Interval between automatic retrains. Zero disables the scheduler.
	Interval time.Duration `json:"interval" koanf:"interval"`
}

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8094,
			Timeout:         30 * time.Second,
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Data: dataset.DefaultConfig(),
		// Pipeline defaults live with the pipeline
		Matchmaker: *matchmaker.DefaultConfig(),
		Artifacts: ArtifactsConfig{
			Dir:  "/data/artifacts",
			Keep: 3,
		},
		Training: TrainingConfig{
			OnStartup: true,
			Interval:  24 * time.Hour,
		},
	}
}

// Validate checks the merged configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server: port must be in [1, 65535], got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server: timeout must be positive")
	}
	if c.Server.RateLimitReqs < 0 {
		return fmt.Errorf("server: rate_limit_reqs must not be negative")
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging: format must be json or console, got %q", c.Logging.Format)
	}
	if c.Data.Dir == "" {
		return fmt.Errorf("data: dir must not be empty")
	}
	if c.Artifacts.Dir == "" {
		return fmt.Errorf("artifacts: dir must not be empty")
	}
	if c.Artifacts.Keep < 1 {
		return fmt.Errorf("artifacts: keep must be at least 1, got %d", c.Artifacts.Keep)
	}
	if c.Training.Interval < 0 {
		return fmt.Errorf("training: interval must not be negative")
	}
	if err := c.Matchmaker.Validate(); err != nil {
		return fmt.Errorf("matchmaker: %w", err)
	}
	return nil
}
