// Veilcount - Differentially Private Attack Count Analytics
// Copyright 2026 Veilcount Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/veilio/veilcount

package api

import (
	"net/http"
	"time"

	"github.com/veilio/veilcount/internal/models"
)

// Health returns the overall service health: collector connectivity,
// the active disclosure mode, and uptime.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	collectorConnected := h.collector != nil && h.collector.Ping(r.Context()) == nil

	status := "healthy"
	if !collectorConnected {
		status = "degraded"
	}

	health := models.HealthStatus{
		Status:             status,
		Version:            Version,
		CollectorConnected: collectorConnected,
		DisclosureMode:     string(h.engine.Mode()),
		Uptime:             time.Since(h.startTime).Seconds(),
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   health,
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// HealthLive handles liveness probe requests (Kubernetes-style).
// Returns 200 OK if the process is alive, regardless of dependencies.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"alive":  true,
			"uptime": time.Since(h.startTime).Seconds(),
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// HealthReady handles readiness probe requests (Kubernetes-style).
// Returns 200 OK only if the collector backend is reachable, 503 otherwise.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	collectorConnected := h.collector != nil && h.collector.Ping(r.Context()) == nil

	statusCode := http.StatusOK
	status := "ready"
	if !collectorConnected {
		statusCode = http.StatusServiceUnavailable
		status = "not_ready"
	}

	respondJSON(w, statusCode, &models.APIResponse{
		Status: status,
		Data: map[string]interface{}{
			"collector_connected": collectorConnected,
			"ready_to_serve":      collectorConnected,
			"uptime":              time.Since(h.startTime).Seconds(),
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}
