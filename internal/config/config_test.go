// Veilcount - Differentially Private Attack Count Analytics
// Copyright 2026 Veilcount Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/veilio/veilcount

package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Port != 8889 {
		t.Errorf("Server.Port = %d, want 8889", cfg.Server.Port)
	}
	if cfg.Privacy.Disclosure != "production" {
		t.Errorf("Privacy.Disclosure = %q, want production", cfg.Privacy.Disclosure)
	}
	if cfg.Privacy.EpsilonMax != 10 {
		t.Errorf("Privacy.EpsilonMax = %v, want 10", cfg.Privacy.EpsilonMax)
	}
	if cfg.Privacy.TopContributors != 5 {
		t.Errorf("Privacy.TopContributors = %d, want 5", cfg.Privacy.TopContributors)
	}
	if cfg.Collector.Index != "logstash-*" {
		t.Errorf("Collector.Index = %q, want logstash-*", cfg.Collector.Index)
	}
	if cfg.Collector.Port != 22 {
		t.Errorf("Collector.Port = %d, want 22", cfg.Collector.Port)
	}
	if cfg.Collector.MaxResults != 10000 {
		t.Errorf("Collector.MaxResults = %d, want 10000", cfg.Collector.MaxResults)
	}
	// Internal sources are excluded out of the box; an empty pattern
	// would count trusted traffic as attackers.
	if cfg.Collector.ExcludePattern != "10\\.0\\..*" {
		t.Errorf("Collector.ExcludePattern = %q, want 10\\.0\\..*", cfg.Collector.ExcludePattern)
	}
}

// TestEnvTransformOperatorNames pins the environment variable names the
// cmd/server package doc advertises to the loader's mapping table, so
// the docs and the loader cannot drift apart silently.
func TestEnvTransformOperatorNames(t *testing.T) {
	t.Parallel()

	documented := map[string]string{
		"ES_ADDRESSES":    "collector.addresses",
		"ES_API_KEY":      "collector.api_key",
		"DISCLOSURE_MODE": "privacy.disclosure",
	}
	for name, want := range documented {
		if got := envTransformFunc(name); got != want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", name, got, want)
		}
	}

	for _, name := range []string{"COLLECTOR_ADDRESSES", "PRIVACY_DISCLOSURE", "HOME"} {
		if got := envTransformFunc(name); got != "" {
			t.Errorf("envTransformFunc(%q) = %q, want dropped", name, got)
		}
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("HTTP_PORT", "9001")
	t.Setenv("DISCLOSURE_MODE", "debug")
	t.Setenv("ES_ADDRESSES", "http://a:9200, http://b:9200")
	t.Setenv("EPSILON_MAX", "5")
	t.Setenv("SERVER_TIMEOUT", "45s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Port != 9001 {
		t.Errorf("Server.Port = %d, want 9001", cfg.Server.Port)
	}
	if cfg.Privacy.Disclosure != "debug" {
		t.Errorf("Privacy.Disclosure = %q, want debug", cfg.Privacy.Disclosure)
	}
	if cfg.Privacy.EpsilonMax != 5 {
		t.Errorf("Privacy.EpsilonMax = %v, want 5", cfg.Privacy.EpsilonMax)
	}
	if cfg.Server.Timeout != 45*time.Second {
		t.Errorf("Server.Timeout = %v, want 45s", cfg.Server.Timeout)
	}
	if len(cfg.Collector.Addresses) != 2 || cfg.Collector.Addresses[1] != "http://b:9200" {
		t.Errorf("Collector.Addresses = %v, want two trimmed entries", cfg.Collector.Addresses)
	}
}

func TestLoadIgnoresUnrelatedEnv(t *testing.T) {
	t.Setenv("PATH_INFO", "garbage")
	t.Setenv("DISCLOSURE", "debug") // not a recognized name

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Privacy.Disclosure != "production" {
		t.Errorf("unrecognized env leaked into config: %q", cfg.Privacy.Disclosure)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"bad disclosure", func(c *Config) { c.Privacy.Disclosure = "verbose" }, "privacy.disclosure"},
		{"inverted epsilon window", func(c *Config) { c.Privacy.EpsilonMin = 10; c.Privacy.EpsilonMax = 1 }, "epsilon_max"},
		{"negative epsilon floor", func(c *Config) { c.Privacy.EpsilonMin = -1 }, "epsilon_min"},
		{"no addresses", func(c *Config) { c.Collector.Addresses = nil }, "collector.addresses"},
		{"bad exclude pattern", func(c *Config) { c.Collector.ExcludePattern = "[" }, "exclude_pattern"},
		{"bad max results", func(c *Config) { c.Collector.MaxResults = 0 }, "max_results"},
		{"bad rate limit", func(c *Config) { c.Security.RateLimitReqs = 0 }, "rate_limit_reqs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := defaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}
