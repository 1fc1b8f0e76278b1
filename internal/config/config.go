// Veilcount - Differentially Private Attack Count Analytics
// Copyright 2026 Veilcount Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/veilio/veilcount

// Package config provides layered configuration for Veilcount using
// Koanf v2: struct defaults, then an optional YAML file, then
// environment variables (highest priority).
package config

import (
	"fmt"
	"regexp"
	"time"
)

// Config is the root configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Privacy   PrivacyConfig   `koanf:"privacy"`
	Collector CollectorConfig `koanf:"collector"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`
}

// PrivacyConfig configures the DP release engine.
//
// The epsilon window is an operational policy (the floor is exclusive,
// the ceiling inclusive), kept configurable rather than hard-coded so it
// can be tuned without code changes.
type PrivacyConfig struct {
	// Disclosure is "production" or "debug". Debug exposes exact counts
	// and per-identifier data to callers; it exists for operators only.
	Disclosure      string  `koanf:"disclosure"`
	EpsilonMin      float64 `koanf:"epsilon_min"`
	EpsilonMax      float64 `koanf:"epsilon_max"`
	TopContributors int     `koanf:"top_contributors"`
}

// CollectorConfig configures the Elasticsearch attack-count source.
type CollectorConfig struct {
	Addresses []string `koanf:"addresses"`
	APIKey    string   `koanf:"api_key"`
	Index     string   `koanf:"index"`

	// Port is the monitored service port (dest_port filter).
	Port int `koanf:"port"`

	// ExcludePattern is a regexp matching trusted/internal source IPs
	// that must not be counted as attackers.
	ExcludePattern string `koanf:"exclude_pattern"`

	// MaxResults caps the terms aggregation bucket count.
	MaxResults int `koanf:"max_results"`

	InsecureSkipVerify bool          `koanf:"insecure_skip_verify"`
	Timeout            time.Duration `koanf:"timeout"`
}

// SecurityConfig configures CORS and rate limiting.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig configures zerolog output.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate checks the loaded configuration for consistency. It is called
// by Load; errors here abort startup.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive")
	}

	switch c.Privacy.Disclosure {
	case "production", "debug":
	default:
		return fmt.Errorf("privacy.disclosure %q must be \"production\" or \"debug\"", c.Privacy.Disclosure)
	}
	if c.Privacy.EpsilonMax <= c.Privacy.EpsilonMin {
		return fmt.Errorf("privacy.epsilon_max %v must exceed privacy.epsilon_min %v",
			c.Privacy.EpsilonMax, c.Privacy.EpsilonMin)
	}
	if c.Privacy.EpsilonMin < 0 {
		return fmt.Errorf("privacy.epsilon_min %v must not be negative", c.Privacy.EpsilonMin)
	}
	if c.Privacy.TopContributors < 1 {
		return fmt.Errorf("privacy.top_contributors %d must be positive", c.Privacy.TopContributors)
	}

	if len(c.Collector.Addresses) == 0 {
		return fmt.Errorf("collector.addresses must not be empty")
	}
	if c.Collector.Port < 1 || c.Collector.Port > 65535 {
		return fmt.Errorf("collector.port %d out of range", c.Collector.Port)
	}
	if c.Collector.MaxResults < 1 {
		return fmt.Errorf("collector.max_results %d must be positive", c.Collector.MaxResults)
	}
	if c.Collector.ExcludePattern != "" {
		if _, err := regexp.Compile(c.Collector.ExcludePattern); err != nil {
			return fmt.Errorf("collector.exclude_pattern: %w", err)
		}
	}

	if !c.Security.RateLimitDisabled {
		if c.Security.RateLimitReqs < 1 {
			return fmt.Errorf("security.rate_limit_reqs %d must be positive", c.Security.RateLimitReqs)
		}
		if c.Security.RateLimitWindow <= 0 {
			return fmt.Errorf("security.rate_limit_window must be positive")
		}
	}

	return nil
}
