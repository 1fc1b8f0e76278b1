// Veilcount - Differentially Private Attack Count Analytics
// Copyright 2026 Veilcount Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/veilio/veilcount

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

type mockPinger struct {
	err   error
	calls atomic.Int32
}

func (m *mockPinger) Ping(ctx context.Context) error {
	m.calls.Add(1)
	return m.err
}

func TestProbeServiceInterface(t *testing.T) {
	var _ suture.Service = (*ProbeService)(nil)
}

func TestNewProbeServiceDefaults(t *testing.T) {
	svc := NewProbeService(&mockPinger{}, 0)
	if svc.interval != 30*time.Second {
		t.Errorf("zero interval: got %v, want 30s", svc.interval)
	}
	if svc.String() != "collector-probe" {
		t.Errorf("String() = %q", svc.String())
	}
}

func TestProbeServiceProbesImmediately(t *testing.T) {
	pinger := &mockPinger{}
	svc := NewProbeService(pinger, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- svc.Serve(ctx)
	}()

	// The first probe happens before the first tick.
	deadline := time.After(time.Second)
	for pinger.calls.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("no probe before first tick")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve returned %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Serve did not return after cancellation")
	}
}

func TestProbeServiceKeepsTicking(t *testing.T) {
	pinger := &mockPinger{err: errors.New("backend down")}
	svc := NewProbeService(pinger, 20*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	_ = svc.Serve(ctx)

	// A failing backend must not stop the loop.
	if got := pinger.calls.Load(); got < 3 {
		t.Errorf("probe ran %d times in 150ms at 20ms interval", got)
	}
}
