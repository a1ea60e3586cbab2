// Pamoja - Matchmaking Candidate Ranking
// Copyright 2026 Joseph Kariuki (jkariuki)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jkariuki/pamoja

package matchmaker

import (
	"fmt"
	"math"
)

// Config holds the pipeline configuration. Zero values are replaced by
// defaults in DefaultConfig; Validate rejects configurations the pipeline
// cannot honor.
type Config struct {
	// Encoder configures feature encoding.
	Encoder EncoderConfig `json:"encoder" koanf:"encoder"`

	// Filter configures eligibility filtering.
	Filter FilterConfig `json:"filter" koanf:"filter"`

	// Model configures the compatibility model.
	Model ModelConfig `json:"model" koanf:"model"`

	// Weights configures the final score blend.
	Weights ScoreWeights `json:"weights" koanf:"weights"`

	// Limits configures result sizing.
	Limits LimitsConfig `json:"limits" koanf:"limits"`
}

// EncoderConfig configures the feature encoder.
type EncoderConfig struct {
	// CategoricalColumns lists the categorical attribute names in fixed
	// column order. The order is load-bearing for the feature layout.
	CategoricalColumns []string `json:"categorical_columns" koanf:"categorical_columns"`

	// Keywords is the domain keyword list for the relevance score.
	Keywords []string `json:"keywords" koanf:"keywords"`

	// MaxFeatures caps the TF-IDF vocabulary size.
	MaxFeatures int `json:"max_features" koanf:"max_features"`

	// MinDocFreq is the minimum number of documents a term must appear
	// in to enter the vocabulary.
	MinDocFreq int `json:"min_doc_freq" koanf:"min_doc_freq"`

	// StopWords selects the stop-word policy: "english" or "" (none).
	StopWords string `json:"stop_words" koanf:"stop_words"`
}

// FilterConfig configures eligibility filtering.
type FilterConfig struct {
	// AgeWindow is the inclusive ± year window around the query age.
	AgeWindow int `json:"age_window" koanf:"age_window"`
}

// ModelConfig configures the gradient-boosted regression model.
type ModelConfig struct {
	// Estimators is the number of boosting stages.
	Estimators int `json:"estimators" koanf:"estimators"`

	// MaxDepth limits individual tree depth.
	MaxDepth int `json:"max_depth" koanf:"max_depth"`

	// LearningRate shrinks each stage's contribution.
	LearningRate float64 `json:"learning_rate" koanf:"learning_rate"`

	// Seed fixes the random source for reproducible training.
	Seed int64 `json:"seed" koanf:"seed"`
}

// ScoreWeights configures the final score blend. The model weight plus the
// three soft-match weights must sum to 1 so FinalScore stays in [0, 1].
type ScoreWeights struct {
	ML       float64 `json:"ml" koanf:"ml"`
	Country  float64 `json:"country" koanf:"country"`
	Language float64 `json:"language" koanf:"language"`
	Goal     float64 `json:"goal" koanf:"goal"`
}

// LimitsConfig configures result sizing.
type LimitsConfig struct {
	// DefaultK is the number of candidates returned when the request
	// does not specify one.
	DefaultK int `json:"default_k" koanf:"default_k"`

	// MaxK caps the number of candidates returned.
	MaxK int `json:"max_k" koanf:"max_k"`
}

// DefaultConfig returns the default pipeline configuration.
func DefaultConfig() *Config {
	return &Config{
		Encoder: EncoderConfig{
			CategoricalColumns: []string{
				"country", "language", "sex", "seeking", "relationshipGoals",
			},
			Keywords: []string{
				"love", "soul mate", "relationship", "partner", "soccer", "football",
			},
			MaxFeatures: 50,
			MinDocFreq:  1,
			StopWords:   "english",
		},
		Filter: FilterConfig{
			AgeWindow: 5,
		},
		Model: ModelConfig{
			Estimators:   50,
			MaxDepth:     3,
			LearningRate: 0.1,
			Seed:         42,
		},
		Weights: ScoreWeights{
			ML:       0.7,
			Country:  0.1,
			Language: 0.1,
			Goal:     0.1,
		},
		Limits: LimitsConfig{
			DefaultK: 10,
			MaxK:     100,
		},
	}
}

// Validate checks the configuration for invariant violations.
func (c *Config) Validate() error {
	if len(c.Encoder.CategoricalColumns) == 0 {
		return fmt.Errorf("encoder: categorical column list must not be empty")
	}
	if c.Encoder.MaxFeatures <= 0 {
		return fmt.Errorf("encoder: max_features must be positive, got %d", c.Encoder.MaxFeatures)
	}
	if c.Encoder.MinDocFreq < 1 {
		return fmt.Errorf("encoder: min_doc_freq must be at least 1, got %d", c.Encoder.MinDocFreq)
	}
	if c.Encoder.StopWords != "" && c.Encoder.StopWords != "english" {
		return fmt.Errorf("encoder: unsupported stop-word policy %q", c.Encoder.StopWords)
	}
	if c.Filter.AgeWindow < 0 {
		return fmt.Errorf("filter: age_window must not be negative, got %d", c.Filter.AgeWindow)
	}
	if c.Model.Estimators <= 0 {
		return fmt.Errorf("model: estimators must be positive, got %d", c.Model.Estimators)
	}
	if c.Model.MaxDepth <= 0 {
		return fmt.Errorf("model: max_depth must be positive, got %d", c.Model.MaxDepth)
	}
	if c.Model.LearningRate <= 0 || c.Model.LearningRate > 1 {
		return fmt.Errorf("model: learning_rate must be in (0, 1], got %f", c.Model.LearningRate)
	}
	if err := c.Weights.validate(); err != nil {
		return err
	}
	if c.Limits.DefaultK <= 0 {
		return fmt.Errorf("limits: default_k must be positive, got %d", c.Limits.DefaultK)
	}
	if c.Limits.MaxK < c.Limits.DefaultK {
		return fmt.Errorf("limits: max_k (%d) must not be below default_k (%d)", c.Limits.MaxK, c.Limits.DefaultK)
	}
	return nil
}

// validate checks that weights are non-negative and sum to 1, which keeps
// FinalScore inside [0, 1] for any MLScore in [0, 1].
func (w ScoreWeights) validate() error {
	if w.ML < 0 || w.Country < 0 || w.Language < 0 || w.Goal < 0 {
		return fmt.Errorf("weights: all weights must be non-negative")
	}
	sum := w.ML + w.Country + w.Language + w.Goal
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("weights: must sum to 1, got %f", sum)
	}
	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Encoder.CategoricalColumns = append([]string(nil), c.Encoder.CategoricalColumns...)
	clone.Encoder.Keywords = append([]string(nil), c.Encoder.Keywords...)
	return &clone
}
