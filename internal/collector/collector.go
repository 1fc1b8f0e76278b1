// Veilcount - Differentially Private Attack Count Analytics
// Copyright 2026 Veilcount Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/veilio/veilcount

// Package collector fetches per-identifier attack counts from the log
// backend. The only implementation queries Elasticsearch for connection
// attempts against the monitored port, aggregated by source address
// over a single UTC day. A gobreaker wrapper shields the API from a
// slow or unavailable backend.
package collector

import (
	"context"
	"errors"
	"time"

	"github.com/veilio/veilcount/internal/privacy"
)

// Collector retrieves the per-identifier counts for one calendar day.
// An empty slice is a valid result: a day with no observed attacks.
type Collector interface {
	// FetchDay returns one record per distinct identifier observed
	// during the UTC day containing the given instant.
	FetchDay(ctx context.Context, day time.Time) ([]privacy.Record, error)

	// Ping verifies connectivity to the backend.
	Ping(ctx context.Context) error
}

var (
	// ErrBackendUnavailable indicates the backend could not be reached
	// or refused the query.
	ErrBackendUnavailable = errors.New("collector: backend unavailable")

	// ErrMalformedResponse indicates the backend answered with a body
	// the collector could not interpret.
	ErrMalformedResponse = errors.New("collector: malformed backend response")
)
