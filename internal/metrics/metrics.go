// RadioGlobe - Internet Radio Stations on an Interactive 3D Globe
// Copyright 2026 RadioGlobe contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/radioglobe/radioglobe

// Package metrics provides Prometheus instrumentation for RadioGlobe:
// directory fetch attempts and fallbacks, normalizer drop/duplicate counts,
// API endpoint latency and throughput, and websocket connections.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Directory (upstream station API) metrics

	DirectoryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "directory_attempts_total",
			Help: "Total station directory fetch attempts, per server and outcome",
		},
		[]string{"server", "outcome"}, // outcome: "success", "http_error", "network_error", "timeout", "decode_error", "breaker_open"
	)

	DirectoryFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "directory_fallbacks_total",
			Help: "Times the fetcher moved past a failed candidate server",
		},
	)

	DirectoryExhaustions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "directory_exhaustions_total",
			Help: "Fetch operations that failed on every candidate server",
		},
	)

	DirectoryFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "directory_fetch_duration_seconds",
			Help:    "Duration of complete fetch-for-tag operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"outcome"}, // "success", "exhausted"
	)

	DirectoryMirrorCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "directory_mirror_count",
			Help: "Current number of candidate directory servers",
		},
	)

	// Circuit breaker metrics

	BreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "directory_breaker_state",
			Help: "Circuit breaker state per server (0=closed, 1=half-open, 2=open)",
		},
		[]string{"server"},
	)

	BreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "directory_breaker_transitions_total",
			Help: "Circuit breaker state transitions per server",
		},
		[]string{"server", "from", "to"},
	)

	// Normalizer metrics

	NormalizerRecords = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "normalizer_records_total",
			Help: "Raw station records processed, per disposition",
		},
		[]string{"disposition"}, // "kept", "dropped_coords", "duplicate", "truncated"
	)

	// API metrics

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total API requests by method, path and status",
		},
		[]string{"method", "path", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Number of API requests currently being served",
		},
	)

	// WebSocket metrics

	WebSocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_clients",
			Help: "Currently connected websocket clients",
		},
	)

	ViewRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "view_refreshes_total",
			Help: "Tag-driven view refreshes by terminal phase",
		},
		[]string{"phase"}, // "success", "empty", "error", "superseded"
	)
)

// RecordAPIRequest records metrics for a completed API request.
func RecordAPIRequest(method, path string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(active bool) {
	if active {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordDirectoryAttempt records one candidate-server attempt.
func RecordDirectoryAttempt(server, outcome string) {
	DirectoryAttempts.WithLabelValues(server, outcome).Inc()
}
