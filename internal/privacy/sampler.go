// Veilcount - Differentially Private Attack Count Analytics
// Copyright 2026 Veilcount Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/veilio/veilcount

package privacy

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sync"

	"github.com/google/differential-privacy/go/v3/noise"
)

// Sampler draws one value from a zero-mean Laplace distribution with
// scale sensitivity/epsilon. Implementations must be safe for concurrent
// use and must not correlate draws across invocations.
type Sampler interface {
	Sample(sensitivity int64, epsilon float64) (float64, error)
}

// SecureSampler is the production Sampler. It delegates to the
// differential-privacy library's Laplace mechanism, whose geometric
// sampling is robust against floating-point artifacts and draws from a
// cryptographically secure source. It is never seeded by request
// parameters, so outputs cannot be replayed across queries.
type SecureSampler struct {
	noise noise.Noise
}

// NewSecureSampler creates the production Laplace sampler.
func NewSecureSampler() *SecureSampler {
	return &SecureSampler{noise: noise.Laplace()}
}

// Sample draws Laplace(0, sensitivity/epsilon) noise. Adding the
// mechanism's noise to zero yields the raw noise value, which the engine
// reports in debug releases alongside the noised count.
func (s *SecureSampler) Sample(sensitivity int64, epsilon float64) (float64, error) {
	if sensitivity <= 0 {
		return 0, fmt.Errorf("%w: sensitivity %d must be positive", ErrSampling, sensitivity)
	}
	if epsilon <= 0 || math.IsNaN(epsilon) || math.IsInf(epsilon, 0) {
		return 0, fmt.Errorf("%w: epsilon %v must be a positive finite number", ErrInvalidEpsilon, epsilon)
	}

	n, err := s.noise.AddNoiseFloat64(0, 1, float64(sensitivity), epsilon, 0)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrSampling, err)
	}
	return n, nil
}

// SeededSampler is a deterministic inverse-CDF Laplace sampler over a
// seeded PCG generator. It exists so tests can assert distributional
// properties reproducibly; production code must use SecureSampler.
type SeededSampler struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSeededSampler creates a deterministic sampler from the given seed.
func NewSeededSampler(seed uint64) *SeededSampler {
	return &SeededSampler{rng: rand.New(rand.NewPCG(seed, seed))}
}

// Sample draws via the Laplace inverse CDF: with U uniform on (-1/2, 1/2),
// X = -scale * sgn(U) * ln(1 - 2|U|) has the Laplace(0, scale) distribution.
func (s *SeededSampler) Sample(sensitivity int64, epsilon float64) (float64, error) {
	if sensitivity <= 0 {
		return 0, fmt.Errorf("%w: sensitivity %d must be positive", ErrSampling, sensitivity)
	}
	if epsilon <= 0 || math.IsNaN(epsilon) || math.IsInf(epsilon, 0) {
		return 0, fmt.Errorf("%w: epsilon %v must be a positive finite number", ErrInvalidEpsilon, epsilon)
	}
	scale := float64(sensitivity) / epsilon

	s.mu.Lock()
	u := s.rng.Float64()
	for u == 0 {
		u = s.rng.Float64()
	}
	s.mu.Unlock()

	u -= 0.5
	return -scale * math.Copysign(1, u) * math.Log(1-2*math.Abs(u)), nil
}

// FailingSampler always returns ErrSampling. Tests use it to verify the
// engine fails a request rather than releasing the true count when no
// noise draw is available.
type FailingSampler struct{}

// Sample implements Sampler.
func (FailingSampler) Sample(int64, float64) (float64, error) {
	return 0, fmt.Errorf("%w: random source unavailable", ErrSampling)
}
