// Veilcount - Differentially Private Attack Count Analytics
// Copyright 2026 Veilcount Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/veilio/veilcount

// Package main is the entry point for the Veilcount server.
//
// Veilcount releases differentially private daily counts of SSH attack
// events. Exact per-source-IP counts are aggregated in Elasticsearch;
// callers only ever see a Laplace-noised total, calibrated to hide any
// single attacker's contribution.
//
// # Startup Order
//
//  1. Configuration: Koanf v2 layered sources (defaults, config.yaml,
//     environment variables; highest priority wins)
//  2. Logging: zerolog, configured from LOG_LEVEL / LOG_FORMAT
//  3. Privacy engine: disclosure mode, epsilon policy window, secure
//     Laplace sampler
//  4. Collector: Elasticsearch client wrapped in a circuit breaker
//  5. Supervisor tree: backend probe loop and HTTP server under suture
//
// # Configuration
//
// Minimal environment for a local cluster:
//
//	export ES_ADDRESSES=https://localhost:9200
//	export ES_API_KEY=your-api-key
//	./veilcount
//
// Operators debugging calibration can opt into full diagnostics:
//
//	export DISCLOSURE_MODE=debug
//
// Debug mode discloses exact counts to every caller. Never enable it on
// an endpoint untrusted parties can reach.
//
// # Signal Handling
//
// SIGINT and SIGTERM trigger graceful shutdown: the server stops
// accepting connections, in-flight requests get 10s to drain, then the
// supervisor tree stops.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/veilio/veilcount/internal/api"
	"github.com/veilio/veilcount/internal/collector"
	"github.com/veilio/veilcount/internal/config"
	"github.com/veilio/veilcount/internal/logging"
	"github.com/veilio/veilcount/internal/privacy"
	"github.com/veilio/veilcount/internal/supervisor"
	"github.com/veilio/veilcount/internal/supervisor/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Config not yet available, the default logger has to do.
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().Msg("Starting Veilcount with supervisor tree")

	mode, err := privacy.ParseMode(cfg.Privacy.Disclosure)
	if err != nil {
		logging.Fatal().Err(err).Msg("Invalid disclosure mode")
	}
	if mode == privacy.ModeDebug {
		logging.Warn().Msg("Debug disclosure enabled: responses carry exact counts and per-identifier data")
	}

	logging.Info().
		Str("disclosure", string(mode)).
		Float64("epsilon_min", cfg.Privacy.EpsilonMin).
		Float64("epsilon_max", cfg.Privacy.EpsilonMax).
		Str("index", cfg.Collector.Index).
		Int("monitored_port", cfg.Collector.Port).
		Msg("Configuration loaded")

	engine := privacy.NewEngine(privacy.NewSecureSampler(), privacy.EngineConfig{
		Mode:            mode,
		EpsilonMin:      cfg.Privacy.EpsilonMin,
		EpsilonMax:      cfg.Privacy.EpsilonMax,
		TopContributors: cfg.Privacy.TopContributors,
	})

	esCollector, err := collector.NewESCollector(&cfg.Collector)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create Elasticsearch collector")
	}
	// Circuit breaker keeps a dead cluster from soaking up request
	// timeouts on every query.
	col := collector.NewBreakerCollector(esCollector)

	if err := col.Ping(context.Background()); err != nil {
		logging.Warn().Err(err).Msg("Failed to connect to Elasticsearch (will keep probing)")
	} else {
		logging.Info().Msg("Connected to Elasticsearch successfully")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// sutureslog wants slog; the adapter bridges it back to zerolog.
	slogLogger := logging.NewSlogLogger()

	tree, err := supervisor.NewSupervisorTree(slogLogger, supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	handler := api.NewHandler(engine, col, cfg)
	middleware := api.NewChiMiddlewareFromConfig(
		cfg.Security.CORSOrigins,
		cfg.Security.RateLimitReqs,
		cfg.Security.RateLimitWindow,
		cfg.Security.RateLimitDisabled,
	)
	router := api.NewRouter(handler, middleware)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.SetupChi(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	tree.AddCollectorService(services.NewProbeService(col, 30*time.Second))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}
