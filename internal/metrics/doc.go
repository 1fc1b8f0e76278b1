// Veilcount - Differentially Private Attack Count Analytics
// Copyright 2026 Veilcount Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/veilio/veilcount

// Package metrics provides Prometheus instrumentation for the API
// surface, the Elasticsearch collector, the circuit breaker around it,
// and the release engine. All collectors register through promauto at
// package init and are served from the /metrics endpoint.
//
// Release metrics deliberately record only epsilon and outcome labels.
// True counts, noise values, and sensitivities never reach the metrics
// registry, which keeps the exported time series safe under the
// production disclosure policy.
package metrics
