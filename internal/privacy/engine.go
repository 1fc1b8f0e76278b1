// Veilcount - Differentially Private Attack Count Analytics
// Copyright 2026 Veilcount Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/veilio/veilcount

package privacy

import (
	"fmt"
	"math"
	"time"

	"github.com/veilio/veilcount/internal/models"
)

// Mode is the process-wide disclosure policy, fixed at engine
// construction and constant for the process lifetime.
type Mode string

const (
	// ModeProduction discloses only the noisy count, the query echo,
	// a timestamp and the mode flag.
	ModeProduction Mode = "production"

	// ModeDebug additionally discloses every diagnostic field, including
	// exact per-identifier counts. Operators only; never production traffic.
	ModeDebug Mode = "debug"
)

// ParseMode validates a configured disclosure mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeProduction, ModeDebug:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown disclosure mode %q (want %q or %q)", s, ModeProduction, ModeDebug)
	}
}

// Release is the engine's full output for one query. It is constructed
// fresh per invocation and discarded after the response is sent.
// Only NoisyCount is safe for unconditional disclosure.
type Release struct {
	TrueCount       int64
	Sensitivity     int64
	Noise           float64
	NoiseScale      float64
	NoisyCount      int64
	NumIdentifiers  int
	TopContributors []Record
}

// EngineConfig configures the release engine. The epsilon window is an
// operational policy, not a DP-theoretic requirement, so both bounds are
// configurable: the floor is exclusive, the ceiling inclusive.
type EngineConfig struct {
	Mode            Mode
	EpsilonMin      float64
	EpsilonMax      float64
	TopContributors int
}

// DefaultEngineConfig returns the production defaults: epsilon in (0, 10],
// five top contributors, production disclosure.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Mode:            ModeProduction,
		EpsilonMin:      0,
		EpsilonMax:      10,
		TopContributors: 5,
	}
}

// Engine computes differentially-private releases of daily attack totals.
// It holds no mutable state beyond the injected sampler, so a single
// Engine serves concurrent requests without locking.
type Engine struct {
	sampler Sampler
	cfg     EngineConfig
}

// NewEngine creates a release engine with the given sampler and
// configuration. Zero-value bounds fall back to the defaults.
func NewEngine(sampler Sampler, cfg EngineConfig) *Engine {
	def := DefaultEngineConfig()
	if cfg.Mode == "" {
		cfg.Mode = def.Mode
	}
	if cfg.EpsilonMax == 0 {
		cfg.EpsilonMax = def.EpsilonMax
	}
	if cfg.TopContributors == 0 {
		cfg.TopContributors = def.TopContributors
	}
	return &Engine{sampler: sampler, cfg: cfg}
}

// Mode returns the engine's disclosure mode.
func (e *Engine) Mode() Mode {
	return e.cfg.Mode
}

// EpsilonBounds returns the operational epsilon window (exclusive floor,
// inclusive ceiling) for upstream request validation.
func (e *Engine) EpsilonBounds() (min, max float64) {
	return e.cfg.EpsilonMin, e.cfg.EpsilonMax
}

// checkEpsilon rejects epsilon outside the policy window. Never clamps.
func (e *Engine) checkEpsilon(epsilon float64) error {
	if math.IsNaN(epsilon) || math.IsInf(epsilon, 0) {
		return fmt.Errorf("%w: epsilon %v is not a finite number", ErrInvalidEpsilon, epsilon)
	}
	if epsilon <= e.cfg.EpsilonMin || epsilon > e.cfg.EpsilonMax {
		return fmt.Errorf("%w: epsilon %v not in (%v, %v]",
			ErrInvalidEpsilon, epsilon, e.cfg.EpsilonMin, e.cfg.EpsilonMax)
	}
	return nil
}

// Release applies the Laplace mechanism to the day's attack counts.
//
// Sensitivity is the maximum single-identifier count; the noise scale is
// sensitivity/epsilon. A zero sensitivity (empty or all-zero collection)
// short-circuits to an all-zero release without touching the sampler:
// there is no contribution to protect. A sampler failure fails the whole
// release; the true count is never returned unnoised.
func (e *Engine) Release(records []Record, epsilon float64) (*Release, error) {
	if err := e.checkEpsilon(epsilon); err != nil {
		return nil, err
	}
	for _, r := range records {
		if r.Count < 0 {
			return nil, fmt.Errorf("%w: %q has count %d", ErrInvalidRecord, r.Identifier, r.Count)
		}
	}

	sensitivity := Sensitivity(records)
	if sensitivity == 0 {
		return &Release{NumIdentifiers: len(records)}, nil
	}

	trueCount := TrueCount(records)
	noise, err := e.sampler.Sample(sensitivity, epsilon)
	if err != nil {
		return nil, err
	}

	noisy := int64(math.Round(float64(trueCount) + noise))
	if noisy < 0 {
		noisy = 0
	}

	return &Release{
		TrueCount:       trueCount,
		Sensitivity:     sensitivity,
		Noise:           noise,
		NoiseScale:      float64(sensitivity) / epsilon,
		NoisyCount:      noisy,
		NumIdentifiers:  len(records),
		TopContributors: TopContributors(records, e.cfg.TopContributors),
	}, nil
}

// Disclose assembles the caller-facing result, applying the disclosure
// policy. The diagnostic bundle crosses the trust boundary as one atomic
// unit: all fields in debug mode, none in production. The Laplace noise
// protects only the released count, so any unfiltered diagnostic would
// bypass the guarantee entirely.
func (e *Engine) Disclose(rel *Release, date string, epsilon float64) models.QueryResult {
	result := models.QueryResult{
		Date:       date,
		Epsilon:    epsilon,
		QueryTime:  time.Now().UTC(),
		NoisyCount: rel.NoisyCount,
		DebugMode:  e.cfg.Mode == ModeDebug,
	}

	if e.cfg.Mode != ModeDebug {
		return result
	}

	contributors := make([]models.Contributor, len(rel.TopContributors))
	for i, r := range rel.TopContributors {
		contributors[i] = models.Contributor{Identifier: r.Identifier, Count: r.Count}
	}

	result.TrueCount = &rel.TrueCount
	result.Sensitivity = &rel.Sensitivity
	result.Noise = &rel.Noise
	result.NoiseScale = &rel.NoiseScale
	result.NumIdentifiers = &rel.NumIdentifiers
	result.TopContributors = &contributors
	return result
}
