// Pamoja - Matchmaking Candidate Ranking
// Copyright 2026 Joseph Kariuki (jkariuki)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jkariuki/pamoja

package matchmaker

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// Vectorizer is a fitted bag-of-weighted-terms model over the AboutMe text.
// The vocabulary is selected once at fit time and frozen; transforming with
// a fitted vectorizer never alters it.
//
// Term weights follow the familiar TF-IDF scheme with smoothed inverse
// document frequency and L2-normalized rows, so transformed vectors are
// directly comparable between training and inference.
type Vectorizer struct {
	// Vocabulary maps term to column offset within the lexical block.
	Vocabulary map[string]int

	// IDF holds the smoothed inverse document frequency per vocabulary
	// column.
	IDF []float64

	// Size is the lexical block width. Fixed at fit time even when fewer
	// terms than MaxFeatures survived the frequency cuts.
	Size int
}

// FitVectorizer fits a vectorizer over the document corpus.
//
// Vocabulary selection: tokens shorter than two characters and configured
// stop words are discarded; terms below MinDocFreq documents are cut; when
// more terms remain than MaxFeatures, the terms with the highest corpus
// frequency win (alphabetical on ties, for determinism). Surviving terms
// are assigned columns in sorted order.
func FitVectorizer(docs []string, cfg EncoderConfig) *Vectorizer {
	stop := stopWordSet(cfg.StopWords)

	docFreq := make(map[string]int)
	termFreq := make(map[string]int)

	for _, doc := range docs {
		counts := termCounts(doc, stop)
		for term, n := range counts {
			docFreq[term]++
			termFreq[term] += n
		}
	}

	// Frequency cut
	terms := make([]string, 0, len(docFreq))
	for term, df := range docFreq {
		if df >= cfg.MinDocFreq {
			terms = append(terms, term)
		}
	}

	// Vocabulary cap: highest corpus frequency first, alphabetical on ties
	if len(terms) > cfg.MaxFeatures {
		sort.Slice(terms, func(i, j int) bool {
			if termFreq[terms[i]] != termFreq[terms[j]] {
				return termFreq[terms[i]] > termFreq[terms[j]]
			}
			return terms[i] < terms[j]
		})
		terms = terms[:cfg.MaxFeatures]
	}
	sort.Strings(terms)

	vocab := make(map[string]int, len(terms))
	idf := make([]float64, len(terms))
	n := float64(len(docs))
	for i, term := range terms {
		vocab[term] = i
		// Smoothed IDF keeps weights finite for terms present in every document.
		idf[i] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}

	return &Vectorizer{
		Vocabulary: vocab,
		IDF:        idf,
		Size:       len(terms),
	}
}

// Transform converts one document into its fixed-width lexical vector.
// Out-of-vocabulary terms are ignored; the result is L2-normalized unless
// the document matched nothing, in which case it is all zeros.
func (v *Vectorizer) Transform(doc string) []float64 {
	vec := make([]float64, v.Size)
	if v.Size == 0 {
		return vec
	}

	for term, n := range termCounts(doc, nil) {
		idx, ok := v.Vocabulary[term]
		if !ok {
			continue
		}
		vec[idx] = float64(n) * v.IDF[idx]
	}

	var norm float64
	for _, x := range vec {
		norm += x * x
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vec {
			vec[i] /= norm
		}
	}

	return vec
}

// termCounts tokenizes a document into lowercase alphanumeric terms of at
// least two characters, dropping terms found in the stop set.
func termCounts(doc string, stop map[string]struct{}) map[string]int {
	counts := make(map[string]int)
	var b strings.Builder

	flush := func() {
		if b.Len() < 2 {
			b.Reset()
			return
		}
		term := b.String()
		b.Reset()
		if stop != nil {
			if _, ok := stop[term]; ok {
				return
			}
		}
		counts[term]++
	}

	for _, r := range doc {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		flush()
	}
	flush()

	return counts
}

// stopWordSet returns the stop-word set for the configured policy.
func stopWordSet(policy string) map[string]struct{} {
	if policy != "english" {
		return nil
	}
	set := make(map[string]struct{}, len(englishStopWords))
	for _, w := range englishStopWords {
		set[w] = struct{}{}
	}
	return set
}

// englishStopWords is the english stop-word list applied when the encoder
// is configured with the "english" policy.
var englishStopWords = []string{
	"about", "above", "after", "again", "against", "all", "am", "an",
	"and", "any", "are", "as", "at", "be", "because", "been", "before",
	"being", "below", "between", "both", "but", "by", "can", "cannot",
	"could", "did", "do", "does", "doing", "down", "during", "each",
	"few", "for", "from", "further", "had", "has", "have", "having",
	"he", "her", "here", "hers", "herself", "him", "himself", "his",
	"how", "if", "in", "into", "is", "it", "its", "itself", "just",
	"me", "more", "most", "my", "myself", "no", "nor", "not", "now",
	"of", "off", "on", "once", "only", "or", "other", "our", "ours",
	"ourselves", "out", "over", "own", "same", "she", "should", "so",
	"some", "such", "than", "that", "the", "their", "theirs", "them",
	"themselves", "then", "there", "these", "they", "this", "those",
	"through", "to", "too", "under", "until", "up", "very", "was", "we",
	"were", "what", "when", "where", "which", "while", "who", "whom",
	"why", "will", "with", "would", "you", "your", "yours", "yourself",
	"yourselves",
}
