// Veilcount - Differentially Private Attack Count Analytics
// Copyright 2026 Veilcount Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/veilio/veilcount

// Package privacy implements the differential-privacy release engine.
//
// The engine answers one query shape: the total number of attack events
// observed across all source identifiers in one day. It derives the L1
// sensitivity of that sum, draws Laplace noise calibrated to
// sensitivity/epsilon, and assembles a release whose diagnostic fields
// are gated behind a process-wide disclosure mode.
//
// Sensitivity uses "bounded" neighboring-database semantics: one
// identifier's entire contribution may vanish between neighboring
// databases, so the sum can change by at most the largest single
// contribution. Calibrating to the observed maximum covers the worst
// case over every possible single-record removal.
//
// A release is computed fresh per invocation and never cached: repeated
// identical queries must draw independent noise, both for freshness and
// because reusing a noised value lets callers average it away.
package privacy
