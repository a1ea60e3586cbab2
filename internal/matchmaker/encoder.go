// Pamoja - Matchmaking Candidate Ranking
// Copyright 2026 Joseph Kariuki (jkariuki)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jkariuki/pamoja

package matchmaker

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jkariuki/pamoja/internal/models"
)

// Encoder converts profile attributes into fixed-width numeric feature
// vectors. It is fitted once over the full profile pool and then frozen;
// the column layout never changes between training and inference.
//
// Feature layout, in order:
//
//	[age] [categorical codes] [subscription flags] [keyword score] [lexical block]
//
// The categorical code block follows the configured column order; the
// lexical block is the fitted vectorizer's output.
type Encoder struct {
	// Columns is the categorical column order, fixed at fit time.
	Columns []string

	// Categories maps column name to its fitted value-to-code table.
	// Every table contains the unknown sentinel.
	Categories map[string]map[string]float64

	// Keywords is the lowercased keyword list for the relevance score.
	Keywords []string

	// Text is the fitted lexical vectorizer.
	Text *Vectorizer
}

// FitEncoder fits an encoder over the profile pool. Category codes are
// assigned in sorted value order so repeated fits over the same pool
// produce identical encoders.
func FitEncoder(profiles []models.Profile, cfg EncoderConfig) (*Encoder, error) {
	if len(profiles) == 0 {
		return nil, ErrEmptyProfilePool
	}

	columns := append([]string(nil), cfg.CategoricalColumns...)
	categories := make(map[string]map[string]float64, len(columns))

	for _, col := range columns {
		seen := map[string]struct{}{models.Unknown: {}}
		for i := range profiles {
			v, err := categoricalValue(&profiles[i], col)
			if err != nil {
				return nil, err
			}
			seen[normalizeCategory(v)] = struct{}{}
		}

		values := make([]string, 0, len(seen))
		for v := range seen {
			values = append(values, v)
		}
		sort.Strings(values)

		table := make(map[string]float64, len(values))
		for code, v := range values {
			table[v] = float64(code)
		}
		categories[col] = table
	}

	keywords := make([]string, 0, len(cfg.Keywords))
	for _, kw := range cfg.Keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			keywords = append(keywords, kw)
		}
	}

	docs := make([]string, len(profiles))
	for i := range profiles {
		docs[i] = profiles[i].AboutMe
	}

	return &Encoder{
		Columns:    columns,
		Categories: categories,
		Keywords:   keywords,
		Text:       FitVectorizer(docs, cfg),
	}, nil
}

// FeatureWidth returns the total encoded vector width.
func (e *Encoder) FeatureWidth() int {
	// age + categorical codes + subscription flags + keyword score + lexical block
	return 1 + len(e.Columns) + 5 + 1 + e.Text.Size
}

// EncodeProfile encodes one profile into its feature vector.
func (e *Encoder) EncodeProfile(p *models.Profile) ([]float64, error) {
	return e.encode(p.Age, p, p.SubscriptionFlags(), p.AboutMe)
}

// EncodeQuery encodes the requesting user's query the same way a profile is
// encoded. Queries carry no subscription tiers, so those columns are zero.
func (e *Encoder) EncodeQuery(q *models.Query) ([]float64, error) {
	p := models.Profile{
		Age:               q.Age,
		Country:           q.Country,
		Language:          q.Language,
		Sex:               q.Sex,
		Seeking:           q.Seeking,
		RelationshipGoals: q.RelationshipGoals,
	}
	return e.encode(q.Age, &p, [5]bool{}, q.AboutMe)
}

func (e *Encoder) encode(age int, p *models.Profile, subs [5]bool, aboutMe string) ([]float64, error) {
	vec := make([]float64, 0, e.FeatureWidth())
	vec = append(vec, float64(age))

	for _, col := range e.Columns {
		v, err := categoricalValue(p, col)
		if err != nil {
			return nil, err
		}
		vec = append(vec, e.code(col, v))
	}

	for _, f := range subs {
		if f {
			vec = append(vec, 1)
		} else {
			vec = append(vec, 0)
		}
	}

	vec = append(vec, e.KeywordScore(aboutMe))
	vec = append(vec, e.Text.Transform(aboutMe)...)

	return vec, nil
}

// code looks up the numeric code for a categorical value, falling back to
// the unknown sentinel for unseen values.
func (e *Encoder) code(column, value string) float64 {
	table := e.Categories[column]
	if c, ok := table[normalizeCategory(value)]; ok {
		return c
	}
	return table[models.Unknown]
}

// KeywordScore returns the fraction of configured keywords present in the
// text, in [0, 1]. Multi-word keywords match as phrases.
func (e *Encoder) KeywordScore(text string) float64 {
	if len(e.Keywords) == 0 {
		return 0
	}
	lower := strings.ToLower(text)
	hits := 0
	for _, kw := range e.Keywords {
		if strings.Contains(lower, kw) {
			hits++
		}
	}
	return float64(hits) / float64(len(e.Keywords))
}

// normalizeCategory lowercases and trims a raw categorical value and maps
// the empty string to the unknown sentinel.
func normalizeCategory(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return models.Unknown
	}
	return v
}

// categoricalValue extracts the named categorical attribute from a profile.
func categoricalValue(p *models.Profile, column string) (string, error) {
	switch column {
	case "country":
		return p.Country, nil
	case "language":
		return p.Language, nil
	case "sex":
		return p.Sex, nil
	case "seeking":
		return p.Seeking, nil
	case "relationshipGoals":
		return p.RelationshipGoals, nil
	default:
		return "", fmt.Errorf("unknown categorical column %q", column)
	}
}
