// Veilcount - Differentially Private Attack Count Analytics
// Copyright 2026 Veilcount Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/veilio/veilcount

package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/veilio/veilcount/internal/metrics"
)

// statusRecorder captures the response status for instrumentation.
// Handlers that never call WriteHeader report the implicit 200.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

// PrometheusMetrics instruments a handler with request count, duration,
// and in-flight gauges keyed by method, path, and status.
func PrometheusMetrics(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metrics.TrackActiveRequest(true)
		defer metrics.TrackActiveRequest(false)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		start := time.Now()
		next(rec, r)

		metrics.RecordAPIRequest(r.Method, r.URL.Path, strconv.Itoa(rec.status), time.Since(start))
	}
}
