// Veilcount - Differentially Private Attack Count Analytics
// Copyright 2026 Veilcount Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/veilio/veilcount

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus Metrics Integration
// This package provides instrumentation for:
// - API endpoint latency and throughput
// - Elasticsearch collector performance
// - Circuit breaker state
// - Private release activity

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Collector Metrics
	CollectorRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collector_requests_total",
			Help: "Total number of collector backend requests",
		},
		[]string{"status"}, // "success", "error"
	)

	CollectorRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "collector_request_duration_seconds",
			Help:    "Duration of collector backend requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	CollectorRecordsFetched = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "collector_records_fetched",
			Help:    "Number of identifier records returned per collector query",
			Buckets: []float64{0, 1, 10, 50, 100, 500, 1000, 5000, 10000},
		},
	)

	CollectorUp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "collector_up",
			Help: "Whether the collector backend answered the last probe (1=up, 0=down)",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Release Metrics
	ReleasesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "releases_total",
			Help: "Total number of private releases produced",
		},
		[]string{"mode"}, // "production", "debug"
	)

	DegenerateReleasesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "degenerate_releases_total",
			Help: "Total number of releases short-circuited for empty or all-zero data",
		},
	)

	ReleaseFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "release_failures_total",
			Help: "Total number of failed release attempts",
		},
		[]string{"reason"}, // "epsilon", "collector", "sampler", "record"
	)

	ReleaseEpsilon = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "release_epsilon",
			Help:    "Distribution of epsilon values used in successful releases",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the active request gauge
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRateLimitHit records a rate limit rejection for an endpoint
func RecordRateLimitHit(endpoint string) {
	APIRateLimitHits.WithLabelValues(endpoint).Inc()
}

// RecordCollectorRequest records a collector backend request
func RecordCollectorRequest(duration time.Duration, records int, err error) {
	CollectorRequestDuration.Observe(duration.Seconds())
	if err != nil {
		CollectorRequestsTotal.WithLabelValues("error").Inc()
		return
	}
	CollectorRequestsTotal.WithLabelValues("success").Inc()
	CollectorRecordsFetched.Observe(float64(records))
}

// SetCollectorUp records the outcome of a backend liveness probe
func SetCollectorUp(up bool) {
	if up {
		CollectorUp.Set(1)
		return
	}
	CollectorUp.Set(0)
}

// RecordRelease records a successful private release
func RecordRelease(mode string, epsilon float64, degenerate bool) {
	ReleasesTotal.WithLabelValues(mode).Inc()
	ReleaseEpsilon.Observe(epsilon)
	if degenerate {
		DegenerateReleasesTotal.Inc()
	}
}

// RecordReleaseFailure records a failed release attempt by reason
func RecordReleaseFailure(reason string) {
	ReleaseFailuresTotal.WithLabelValues(reason).Inc()
}

// UpdateCircuitBreakerState sets the current state gauge for a breaker
func UpdateCircuitBreakerState(name string, state float64) {
	CircuitBreakerState.WithLabelValues(name).Set(state)
}

// RecordCircuitBreakerTransition records a breaker state change
func RecordCircuitBreakerTransition(name, from, to string) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
}
