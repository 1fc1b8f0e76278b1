// Veilcount - Differentially Private Attack Count Analytics
// Copyright 2026 Veilcount Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/veilio/veilcount

// Package middleware provides HTTP middleware shared by the API router:
// request ID propagation tied into the logging context, and Prometheus
// request instrumentation with status code capture.
package middleware
