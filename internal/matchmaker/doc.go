// Pamoja - Matchmaking Candidate Ranking
// Copyright 2026 Joseph Kariuki (jkariuki)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jkariuki/pamoja

// Package matchmaker implements the candidate-scoring pipeline.
//
// # Architecture
//
// The pipeline combines deterministic eligibility rules with a learned
// compatibility score, in four stages:
//
//   - Feature encoding: profile attributes become fixed-width numeric
//     vectors (categorical codes, age, subscription flags, keyword
//     relevance, TF-IDF over the free-text description)
//   - Eligibility filtering: hard exclusion sets, mutual sex/seeking
//     compatibility, and an inclusive ±5 year age window shrink the pool
//   - Interaction indexing: historical likes and matches become sparse,
//     weight-normalized training labels
//   - Compatibility model: gradient-boosted regression trees predict
//     interaction strength; the prediction is blended with rule-derived
//     soft-match signals into the final ranking score
//
// # Design Principles
//
//   - Deterministic: same inputs produce identical outputs (fixed seed,
//     exact greedy tree splits, sorted category maps)
//   - Immutable artifacts: training always produces a brand-new fitted
//     bundle; nothing fitted is ever mutated by a query
//   - Schema-frozen: the feature column layout is fixed at fit time and
//     reused verbatim at inference - training and serving never diverge
//
// # Usage
//
//	cfg := matchmaker.DefaultConfig()
//	engine, err := matchmaker.NewEngine(cfg, logger)
//	if err != nil { ... }
//
//	if err := engine.Train(ctx, data); err != nil { ... }
//
//	resp, err := engine.Rank(ctx, matchmaker.RankRequest{
//	    Query: query,
//	    K:     20,
//	})
//
// # Thread Safety
//
// The engine is safe for concurrent use. Training acquires an exclusive
// lock and publishes a fresh artifact; ranking takes a shared read lock on
// the published artifact, so unlimited concurrent readers are allowed once
// training completes.
package matchmaker
