// Veilcount - Differentially Private Attack Count Analytics
// Copyright 2026 Veilcount Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/veilio/veilcount

package privacy

import (
	"errors"
	"math"
	"sync"
	"testing"
)

func TestSeededSamplerDeterministic(t *testing.T) {
	t.Parallel()

	a := NewSeededSampler(99)
	b := NewSeededSampler(99)

	for i := 0; i < 100; i++ {
		na, err := a.Sample(100, 1.0)
		if err != nil {
			t.Fatalf("draw %d: %v", i, err)
		}
		nb, err := b.Sample(100, 1.0)
		if err != nil {
			t.Fatalf("draw %d: %v", i, err)
		}
		if na != nb {
			t.Fatalf("draw %d: same seed diverged: %v != %v", i, na, nb)
		}
		if math.IsNaN(na) || math.IsInf(na, 0) {
			t.Fatalf("draw %d: non-finite sample %v", i, na)
		}
	}
}

func TestSeededSamplerRejectsBadArgs(t *testing.T) {
	t.Parallel()

	s := NewSeededSampler(1)

	if _, err := s.Sample(0, 1.0); !errors.Is(err, ErrSampling) {
		t.Errorf("sensitivity 0: got %v, want ErrSampling", err)
	}
	if _, err := s.Sample(-3, 1.0); !errors.Is(err, ErrSampling) {
		t.Errorf("negative sensitivity: got %v, want ErrSampling", err)
	}
	if _, err := s.Sample(10, 0); !errors.Is(err, ErrInvalidEpsilon) {
		t.Errorf("epsilon 0: got %v, want ErrInvalidEpsilon", err)
	}
	if _, err := s.Sample(10, math.NaN()); !errors.Is(err, ErrInvalidEpsilon) {
		t.Errorf("epsilon NaN: got %v, want ErrInvalidEpsilon", err)
	}
}

func TestSecureSampler(t *testing.T) {
	t.Parallel()

	s := NewSecureSampler()

	n, err := s.Sample(100, 1.0)
	if err != nil {
		t.Fatalf("Sample() error: %v", err)
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		t.Fatalf("non-finite sample %v", n)
	}

	if _, err := s.Sample(0, 1.0); !errors.Is(err, ErrSampling) {
		t.Errorf("sensitivity 0: got %v, want ErrSampling", err)
	}
	if _, err := s.Sample(10, -1); !errors.Is(err, ErrInvalidEpsilon) {
		t.Errorf("negative epsilon: got %v, want ErrInvalidEpsilon", err)
	}
}

func TestSeededSamplerConcurrentUse(t *testing.T) {
	t.Parallel()

	s := NewSeededSampler(5)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				if _, err := s.Sample(50, 0.5); err != nil {
					t.Errorf("concurrent sample: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()
}
