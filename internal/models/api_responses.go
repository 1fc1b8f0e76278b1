// Veilcount - Differentially Private Attack Count Analytics
// Copyright 2026 Veilcount Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/veilio/veilcount

// Package models defines the API response envelope and the query DTOs
// shared between the HTTP layer and the release engine.
package models

import (
	"time"
)

// APIResponse is the standardized response wrapper used by all HTTP endpoints.
//
// Status field values:
//   - "success": Request completed successfully, see Data field
//   - "error": Request failed, see Error field for details
//
// Example successful response:
//
//	{
//	  "status": "success",
//	  "data": {"date": "2026-01-15", "noisy_count": 118, ...},
//	  "metadata": {"timestamp": "2026-01-15T12:00:00Z", "query_time_ms": 45}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata for observability.
// QueryTimeMS covers the collector fetch plus the release computation.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
}

// APIError represents an error response with structured error details.
//
// Common error codes:
//   - VALIDATION_ERROR: Invalid input parameters (date syntax, epsilon range)
//   - COLLECTOR_ERROR: The attack-count backend could not produce data
//   - RELEASE_ERROR: The release engine failed (e.g. noise sampling failure)
//   - NOT_FOUND: Route doesn't exist
//   - RATE_LIMIT_EXCEEDED: Too many requests
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// HealthStatus reports service health for the health endpoints.
type HealthStatus struct {
	Status             string  `json:"status"`
	Version            string  `json:"version"`
	CollectorConnected bool    `json:"collector_connected"`
	DisclosureMode     string  `json:"disclosure_mode"`
	Uptime             float64 `json:"uptime_seconds"`
}
