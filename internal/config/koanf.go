// Veilcount - Differentially Private Attack Count Analytics
// Copyright 2026 Veilcount Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/veilio/veilcount

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/veilcount/config.yaml",
	"/etc/veilcount/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:    "0.0.0.0",
			Port:    8889,
			Timeout: 30 * time.Second,
		},
		Privacy: PrivacyConfig{
			Disclosure:      "production",
			EpsilonMin:      0,
			EpsilonMax:      10,
			TopContributors: 5,
		},
		Collector: CollectorConfig{
			Addresses:          []string{"https://localhost:9200"},
			APIKey:             "",
			Index:              "logstash-*",
			Port:               22,
			ExcludePattern:     "10\\.0\\..*",
			MaxResults:         10000,
			InsecureSkipVerify: false,
			Timeout:            15 * time.Second,
		},
		Security: SecurityConfig{
			CORSOrigins:       []string{},
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load loads configuration with layered sources:
//  1. Defaults: built-in struct defaults
//  2. Config file: optional YAML (CONFIG_PATH or DefaultConfigPaths)
//  3. Environment variables: override any setting
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Environment variable names map to koanf paths:
	// DISCLOSURE_MODE -> privacy.disclosure, ES_INDEX -> collector.index
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file, env override first.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths are parsed as
// comma-separated slices when supplied via environment variables.
var sliceConfigPaths = []string{
	"collector.addresses",
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices
// for known slice fields. Env vars come in as strings, but the config
// struct expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// already a slice (from YAML), skip
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envTransformFunc maps environment variable names to koanf config paths.
// Unknown variables are dropped so unrelated environment noise cannot
// leak into the configuration.
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		"http_host":      "server.host",
		"http_port":      "server.port",
		"server_timeout": "server.timeout",

		"disclosure_mode":  "privacy.disclosure",
		"epsilon_min":      "privacy.epsilon_min",
		"epsilon_max":      "privacy.epsilon_max",
		"top_contributors": "privacy.top_contributors",

		"es_addresses":            "collector.addresses",
		"es_api_key":              "collector.api_key",
		"es_index":                "collector.index",
		"monitored_port":          "collector.port",
		"exclude_pattern":         "collector.exclude_pattern",
		"es_max_results":          "collector.max_results",
		"es_insecure_skip_verify": "collector.insecure_skip_verify",
		"es_timeout":              "collector.timeout",

		"cors_origins":        "security.cors_origins",
		"rate_limit_reqs":     "security.rate_limit_reqs",
		"rate_limit_window":   "security.rate_limit_window",
		"rate_limit_disabled": "security.rate_limit_disabled",

		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",
	}

	if path, ok := envMappings[key]; ok {
		return path
	}
	return ""
}
