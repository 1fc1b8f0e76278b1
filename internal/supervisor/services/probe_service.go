// Veilcount - Differentially Private Attack Count Analytics
// Copyright 2026 Veilcount Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/veilio/veilcount

package services

import (
	"context"
	"time"

	"github.com/veilio/veilcount/internal/logging"
	"github.com/veilio/veilcount/internal/metrics"
)

// Pinger matches the collector's liveness probe method. Satisfied by
// any collector.Collector.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ProbeService periodically pings the collector backend and publishes
// the result as the collector_up gauge. Readiness probes ask the
// backend directly; this loop exists so operators see backend outages
// on the metrics endpoint even when nobody is querying.
type ProbeService struct {
	pinger   Pinger
	interval time.Duration
	name     string
}

// NewProbeService creates a probe loop with the given interval.
// Intervals of zero or below default to 30s.
func NewProbeService(pinger Pinger, interval time.Duration) *ProbeService {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &ProbeService{
		pinger:   pinger,
		interval: interval,
		name:     "collector-probe",
	}
}

// Serve implements suture.Service. It probes once immediately, then on
// every tick, until the context is canceled.
func (p *ProbeService) Serve(ctx context.Context) error {
	p.probe(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.probe(ctx)
		}
	}
}

func (p *ProbeService) probe(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	err := p.pinger.Ping(probeCtx)
	metrics.SetCollectorUp(err == nil)
	if err != nil {
		logging.Warn().Err(err).Msg("Collector backend probe failed")
	}
}

// String implements fmt.Stringer for supervision log messages.
func (p *ProbeService) String() string {
	return p.name
}
