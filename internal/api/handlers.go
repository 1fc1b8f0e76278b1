// Veilcount - Differentially Private Attack Count Analytics
// Copyright 2026 Veilcount Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/veilio/veilcount

// Package api provides the HTTP surface of the service: the private
// query endpoint, health probes, and the embedded dashboard, routed
// with chi.
package api

import (
	"time"

	"github.com/veilio/veilcount/internal/collector"
	"github.com/veilio/veilcount/internal/config"
	"github.com/veilio/veilcount/internal/privacy"
)

// Version is the reported service version.
const Version = "1.0.0"

// Handler holds the dependencies shared by all HTTP handlers.
type Handler struct {
	engine    *privacy.Engine
	collector collector.Collector
	config    *config.Config
	startTime time.Time
}

// NewHandler creates a Handler with the given dependencies.
func NewHandler(engine *privacy.Engine, col collector.Collector, cfg *config.Config) *Handler {
	return &Handler{
		engine:    engine,
		collector: col,
		config:    cfg,
		startTime: time.Now(),
	}
}
