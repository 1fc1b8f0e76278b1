// Veilcount - Differentially Private Attack Count Analytics
// Copyright 2026 Veilcount Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/veilio/veilcount

package collector

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/veilio/veilcount/internal/logging"
	"github.com/veilio/veilcount/internal/metrics"
	"github.com/veilio/veilcount/internal/privacy"
)

// Ensure BreakerCollector implements Collector
var _ Collector = (*BreakerCollector)(nil)

// BreakerCollector wraps a Collector with the circuit breaker pattern
// so a slow or dead log backend cannot stall every query request.
//
// The breaker uses real time (via sony/gobreaker) for its interval and
// timeout calculations. The timing determines when to recover from
// failures, not data integrity. For unit tests, test the wrapped
// collector directly.
type BreakerCollector struct {
	inner Collector
	cb    *gobreaker.CircuitBreaker[[]privacy.Record]
	name  string
}

// NewBreakerCollector creates a circuit-breaker-protected collector.
// Configuration:
// - Max 3 concurrent requests in half-open state
// - 1 minute measurement window
// - 2 minute timeout before attempting recovery
// - Opens after 60% failure rate with minimum 10 requests
func NewBreakerCollector(inner Collector) *BreakerCollector {
	cbName := "elasticsearch"

	metrics.UpdateCircuitBreakerState(cbName, 0) // 0 = closed

	cb := gobreaker.NewCircuitBreaker[[]privacy.Record](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false // Need at least 10 requests for statistical significance
			}

			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6

			if shouldTrip {
				logging.Warn().Uint32("failures", counts.TotalFailures).Float64("failure_rate", failureRatio*100).Msg("Opening collector circuit")
			}

			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logging.Info().Str("from", fromStr).Str("to", toStr).Msg("Collector circuit state changed")

			metrics.UpdateCircuitBreakerState(name, stateToFloat(to))
			metrics.RecordCircuitBreakerTransition(name, fromStr, toStr)
		},
	})

	return &BreakerCollector{
		inner: inner,
		cb:    cb,
		name:  cbName,
	}
}

// FetchDay fetches records with circuit breaker protection. When the
// circuit is open the call fails fast with ErrBackendUnavailable
// without touching the backend.
func (b *BreakerCollector) FetchDay(ctx context.Context, day time.Time) ([]privacy.Record, error) {
	records, err := b.cb.Execute(func() ([]privacy.Record, error) {
		return b.inner.FetchDay(ctx, day)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			logging.Warn().Err(err).Msg("Collector request rejected by open circuit")
			return nil, errors.Join(ErrBackendUnavailable, err)
		}
		return nil, err
	}
	return records, nil
}

// Ping pings the backend without breaker protection: health probes
// should report the real backend state even while the circuit is open.
func (b *BreakerCollector) Ping(ctx context.Context) error {
	return b.inner.Ping(ctx)
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// stateToString converts circuit breaker state to string for logging
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
