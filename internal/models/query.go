// Veilcount - Differentially Private Attack Count Analytics
// Copyright 2026 Veilcount Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/veilio/veilcount

package models

import "time"

// QueryRequest is the body of POST /api/v1/query. Epsilon bounds are
// enforced against the configured policy window after struct validation.
type QueryRequest struct {
	// Date is the UTC day to aggregate, in YYYY-MM-DD form.
	Date string `json:"date" validate:"required,daystamp"`

	// Epsilon is the privacy budget for this single release.
	Epsilon float64 `json:"epsilon" validate:"required"`
}

// Contributor is one (source identifier, exact event count) pair.
// Exact counts defeat the noised release, so contributors only ever
// appear in debug-mode responses.
type Contributor struct {
	Identifier string `json:"identifier"`
	Count      int64  `json:"count"`
}

// QueryResult is the payload of a successful query response.
//
// The noisy count, query echo, query time and mode flag are safe for
// unconditional disclosure. Every other field is diagnostic: the release
// engine populates the pointers only in debug mode, and omitempty keeps
// the keys out of production responses entirely.
type QueryResult struct {
	Date       string    `json:"date"`
	Epsilon    float64   `json:"epsilon"`
	QueryTime  time.Time `json:"query_time"`
	NoisyCount int64     `json:"noisy_count"`
	DebugMode  bool      `json:"debug_mode"`

	// Debug-mode diagnostics. Nil in production.
	TrueCount       *int64         `json:"true_count,omitempty"`
	Sensitivity     *int64         `json:"sensitivity,omitempty"`
	Noise           *float64       `json:"noise,omitempty"`
	NoiseScale      *float64       `json:"noise_scale,omitempty"`
	NumIdentifiers  *int           `json:"num_identifiers,omitempty"`
	TopContributors *[]Contributor `json:"top_contributors,omitempty"`
}
