// Veilcount - Differentially Private Attack Count Analytics
// Copyright 2026 Veilcount Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/veilio/veilcount

package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/veilio/veilcount/internal/logging"
)

type contextKey string

const RequestIDKey contextKey = "request_id"

// ensureRequestID returns the caller-supplied X-Request-ID when an
// upstream proxy set one, otherwise a fresh UUID.
func ensureRequestID(r *http.Request) string {
	if id := r.Header.Get("X-Request-ID"); id != "" {
		return id
	}
	return uuid.New().String()
}

// RequestID tags each request with a unique ID, echoed in the response
// header and carried in the context. The logging package picks the same
// ID up, plus a fresh correlation ID, so every log line emitted while
// handling the request is attributable.
func RequestID(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := ensureRequestID(r)
		w.Header().Set("X-Request-ID", requestID)

		ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
		ctx = logging.ContextWithRequestID(ctx, requestID)

		next(w, r.WithContext(logging.ContextWithNewCorrelationID(ctx)))
	}
}

// GetRequestID extracts the request ID from context, or "" when absent.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}
