// Veilcount - Differentially Private Attack Count Analytics
// Copyright 2026 Veilcount Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/veilio/veilcount

package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/veilio/veilcount/internal/logging"
	"github.com/veilio/veilcount/internal/metrics"
	"github.com/veilio/veilcount/internal/models"
	"github.com/veilio/veilcount/internal/privacy"
	"github.com/veilio/veilcount/internal/validation"
)

// Query handles a differentially private count request for one day.
//
// The handler never sends the true count anywhere: on any failure after
// the data is fetched, including sampler failure, the response carries
// only an error. Each invocation draws fresh noise; there is no result
// caching at any layer.
func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Request body must be valid JSON", err)
		return
	}

	if apiErr := validateRequest(&req); apiErr != nil {
		metrics.RecordReleaseFailure("validation")
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	// Epsilon policy window, checked before touching the backend so
	// an out-of-range budget never costs a query.
	minEps, maxEps := h.engine.EpsilonBounds()
	if req.Epsilon <= minEps || req.Epsilon > maxEps {
		metrics.RecordReleaseFailure("epsilon")
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR",
			fmt.Sprintf("epsilon must be greater than %g and at most %g", minEps, maxEps), nil)
		return
	}

	day, err := time.Parse(validation.DayFormat, req.Date)
	if err != nil {
		// daystamp validation already passed; unreachable in practice
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "date must be a calendar day in YYYY-MM-DD format", err)
		return
	}

	records, err := h.collector.FetchDay(r.Context(), day)
	if err != nil {
		metrics.RecordReleaseFailure("collector")
		logger := logging.Ctx(r.Context())
		logger.Error().Err(err).Str("date", req.Date).Msg("Collector fetch failed")
		respondError(w, http.StatusBadGateway, "COLLECTOR_ERROR", "Failed to fetch attack data from the log backend", err)
		return
	}

	release, err := h.engine.Release(records, req.Epsilon)
	if err != nil {
		switch {
		case errors.Is(err, privacy.ErrInvalidEpsilon):
			metrics.RecordReleaseFailure("epsilon")
			respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		case errors.Is(err, privacy.ErrInvalidRecord):
			metrics.RecordReleaseFailure("record")
			respondError(w, http.StatusBadGateway, "COLLECTOR_ERROR", "Log backend returned invalid count data", err)
		default:
			metrics.RecordReleaseFailure("sampler")
			respondError(w, http.StatusInternalServerError, "RELEASE_ERROR", "Failed to produce a private release", err)
		}
		return
	}

	result := h.engine.Disclose(release, req.Date, req.Epsilon)
	metrics.RecordRelease(string(h.engine.Mode()), req.Epsilon, release.Sensitivity == 0)

	logger := logging.Ctx(r.Context())
	logger.Info().
		Str("date", req.Date).
		Float64("epsilon", req.Epsilon).
		Int("num_identifiers", release.NumIdentifiers).
		Msg("Private release produced")

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   result,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}
