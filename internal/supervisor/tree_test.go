// Veilcount - Differentially Private Attack Count Analytics
// Copyright 2026 Veilcount Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/veilio/veilcount

package supervisor

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync/atomic"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// blockingService runs until its context is canceled.
type blockingService struct {
	started atomic.Int32
}

func (s *blockingService) Serve(ctx context.Context) error {
	s.started.Add(1)
	<-ctx.Done()
	return ctx.Err()
}

func (s *blockingService) String() string { return "blocking-service" }

func TestDefaultTreeConfig(t *testing.T) {
	cfg := DefaultTreeConfig()
	if cfg.FailureThreshold != 5.0 {
		t.Errorf("FailureThreshold = %v", cfg.FailureThreshold)
	}
	if cfg.FailureDecay != 30.0 {
		t.Errorf("FailureDecay = %v", cfg.FailureDecay)
	}
	if cfg.FailureBackoff != 15*time.Second {
		t.Errorf("FailureBackoff = %v", cfg.FailureBackoff)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("ShutdownTimeout = %v", cfg.ShutdownTimeout)
	}
}

func TestNewSupervisorTreeAppliesDefaults(t *testing.T) {
	tree, err := NewSupervisorTree(testLogger(), TreeConfig{})
	if err != nil {
		t.Fatalf("NewSupervisorTree: %v", err)
	}
	if tree.config.FailureThreshold != 5.0 {
		t.Errorf("FailureThreshold = %v", tree.config.FailureThreshold)
	}
	if tree.Root() == nil {
		t.Error("Root() returned nil")
	}
}

func TestSupervisorTreeRunsServices(t *testing.T) {
	tree, err := NewSupervisorTree(testLogger(), DefaultTreeConfig())
	if err != nil {
		t.Fatalf("NewSupervisorTree: %v", err)
	}

	apiSvc := &blockingService{}
	probeSvc := &blockingService{}
	tree.AddAPIService(apiSvc)
	tree.AddCollectorService(probeSvc)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	deadline := time.After(2 * time.Second)
	for apiSvc.started.Load() == 0 || probeSvc.started.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("services never started")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("supervisor returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("supervisor did not stop after cancellation")
	}
}
