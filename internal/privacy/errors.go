// Veilcount - Differentially Private Attack Count Analytics
// Copyright 2026 Veilcount Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/veilio/veilcount

package privacy

import "errors"

// Engine errors. Epsilon violations are precondition failures: the HTTP
// layer validates first, but the engine must reject on its own rather
// than clamp or divide by zero.
var (
	// ErrInvalidEpsilon indicates epsilon outside the configured policy window.
	ErrInvalidEpsilon = errors.New("epsilon outside the allowed range")

	// ErrInvalidRecord indicates a record with a negative event count.
	ErrInvalidRecord = errors.New("attack record has negative count")

	// ErrSampling indicates the noise sampler failed. The request must fail;
	// the true count is never released unnoised.
	ErrSampling = errors.New("laplace noise sampling failed")
)
