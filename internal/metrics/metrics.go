// Pamoja - Matchmaking Candidate Ranking
// Copyright 2026 Joseph Kariuki (jkariuki)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jkariuki/pamoja

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Ranking metrics
	RankRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pamoja_rank_requests_total",
			Help: "Total number of ranking requests by outcome",
		},
		[]string{"outcome"}, // "ranked", "no_eligible_candidates", "no_scorable_candidates", "error"
	)

	RankDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pamoja_rank_duration_seconds",
			Help:    "Duration of ranking requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	RankedCandidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pamoja_ranked_candidates",
			Help:    "Number of candidates returned per ranking request",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
		},
	)

	// Training metrics
	TrainingRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pamoja_training_runs_total",
			Help: "Total number of training runs by result",
		},
		[]string{"result"}, // "success", "error", "rejected"
	)

	TrainingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pamoja_training_duration_seconds",
			Help:    "Duration of training runs in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		},
	)

	ModelVersion = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pamoja_model_version",
			Help: "Version of the currently published model artifact",
		},
	)

	ProfilePoolSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pamoja_profile_pool_size",
			Help: "Number of profiles in the fitted snapshot",
		},
	)

	DroppedInteractions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pamoja_dropped_interactions",
			Help: "Dangling interaction records skipped during the last training",
		},
	)

	// API metrics
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pamoja_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pamoja_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "path", "status"},
	)
)

// RecordAPIRequest records one completed API request.
func RecordAPIRequest(method, path string, status int, duration time.Duration) {
	code := strconv.Itoa(status)
	APIRequestDuration.WithLabelValues(method, path, code).Observe(duration.Seconds())
	APIRequestsTotal.WithLabelValues(method, path, code).Inc()
}
