// Veilcount - Differentially Private Attack Count Analytics
// Copyright 2026 Veilcount Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/veilio/veilcount

package api

import (
	"embed"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/veilio/veilcount/internal/middleware"
)

//go:embed static/index.html
var staticFS embed.FS

// Router wires handlers and middleware into an http.Handler.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a Router for the given handler and middleware factory.
func NewRouter(handler *Handler, cm *ChiMiddleware) *Router {
	return &Router{
		handler:       handler,
		chiMiddleware: cm,
	}
}

// chiMiddleware adapts http.HandlerFunc middleware to Chi's func(http.Handler) http.Handler.
func chiMiddlewareAdapter(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// SetupChi configures all HTTP routes using Chi router.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(RequestIDWithLogging())             // Add X-Request-ID header with logging context
	r.Use(chimiddleware.RealIP)               // Extract real IP from X-Forwarded-For
	r.Use(chimiddleware.Recoverer)            // Recover from panics
	r.Use(router.chiMiddleware.CORS())        // CORS must be global to handle OPTIONS preflight

	// ========================
	// Health Endpoints
	// ========================
	// Permissive rate limiting allows frequent monitoring checks
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Use(APISecurityHeaders())
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
		r.Get("/", router.handler.Health)
	})

	// ========================
	// Query Endpoint
	// ========================
	r.Route("/api/v1/query", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(chiMiddlewareAdapter(middleware.PrometheusMetrics))

		r.Post("/", router.handler.Query)
	})

	// ========================
	// Observability
	// ========================
	r.Handle("/metrics", promhttp.Handler())

	// ========================
	// Dashboard
	// ========================
	r.Get("/", router.serveDashboard)

	// Everything else is a JSON 404 rather than the default plain text
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Route not found", nil)
	})

	return r
}

// serveDashboard serves the embedded single-page dashboard.
func (router *Router) serveDashboard(w http.ResponseWriter, r *http.Request) {
	page, err := staticFS.ReadFile("static/index.html")
	if err != nil {
		respondError(w, http.StatusInternalServerError, "RELEASE_ERROR", "Dashboard unavailable", err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	_, _ = w.Write(page)
}
