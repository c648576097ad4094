// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The ipv6ddns Authors

// Package config loads the daemon's configuration from a TOML file
// merged with environment variables, environment taking priority.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// MultiRecordPolicy controls how the provider client resolves a
// zone that already has more than one AAAA record for the name.
type MultiRecordPolicy string

const (
	MultiRecordError MultiRecordPolicy = "error"
	MultiRecordFirst MultiRecordPolicy = "first"
	MultiRecordAll   MultiRecordPolicy = "all"
)

const (
	DefaultTimeoutSec      = 30
	DefaultPollIntervalSec = 60
	DefaultProviderType    = "cloudflare"

	MinTimeoutSec      = 1
	MaxTimeoutSec      = 300
	MinPollIntervalSec = 10
	MaxPollIntervalSec = 3600
)

// Config is the daemon's validated, read-only configuration.
type Config struct {
	APIToken   string
	ZoneID     string
	RecordName string

	TimeoutSec      int
	PollIntervalSec int
	Verbose         bool
	MultiRecord     MultiRecordPolicy
	AllowLoopback   bool
	ProviderType    string
	HealthPort      int
}

// fileConfig mirrors the TOML-decodable subset of Config. Field names
// follow the key= names spec.md §6 recognizes.
type fileConfig struct {
	APIToken      string `toml:"api_token"`
	ZoneID        string `toml:"zone_id"`
	RecordName    string `toml:"record_name"`
	Timeout       int    `toml:"timeout"`
	PollInterval  int    `toml:"poll_interval"`
	Verbose       bool   `toml:"verbose"`
	MultiRecord   string `toml:"multi_record"`
	AllowLoopback bool   `toml:"allow_loopback"`
	ProviderType  string `toml:"provider_type"`
	HealthPort    int    `toml:"health_port"`
}

// Load reads path (if it exists), overlays recognized environment
// variables, applies defaults, and validates the result.
//
// A missing config file is not an error on its own: the daemon can be
// configured entirely through the environment.
func Load(path string) (*Config, error) {
	var fc fileConfig
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, &fc); err != nil {
				return nil, fmt.Errorf("parsing config file %q: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file %q: %w", path, err)
		}
	}

	cfg := &Config{
		APIToken:        fc.APIToken,
		ZoneID:          fc.ZoneID,
		RecordName:      fc.RecordName,
		TimeoutSec:      fc.Timeout,
		PollIntervalSec: fc.PollInterval,
		Verbose:         fc.Verbose,
		MultiRecord:     MultiRecordPolicy(fc.MultiRecord),
		AllowLoopback:   fc.AllowLoopback,
		ProviderType:    fc.ProviderType,
		HealthPort:      fc.HealthPort,
	}

	applyEnv(cfg)
	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.TimeoutSec == 0 {
		cfg.TimeoutSec = DefaultTimeoutSec
	}
	if cfg.PollIntervalSec == 0 {
		cfg.PollIntervalSec = DefaultPollIntervalSec
	}
	if cfg.MultiRecord == "" {
		cfg.MultiRecord = MultiRecordError
	}
	if cfg.ProviderType == "" {
		cfg.ProviderType = DefaultProviderType
	}
}

// Validate checks required fields and range constraints. It is safe
// to call on a partially-loaded Config, e.g. during --config-test or
// a SIGHUP reload, without mutating daemon state.
func (c *Config) Validate() error {
	if c.APIToken == "" {
		return errors.New("api_token is required")
	}
	if c.ZoneID == "" {
		return errors.New("zone_id is required")
	}
	if c.RecordName == "" {
		return errors.New("record_name is required")
	}
	if c.TimeoutSec < MinTimeoutSec || c.TimeoutSec > MaxTimeoutSec {
		return fmt.Errorf("timeout_sec must be in [%d,%d], got %d", MinTimeoutSec, MaxTimeoutSec, c.TimeoutSec)
	}
	if c.PollIntervalSec < MinPollIntervalSec || c.PollIntervalSec > MaxPollIntervalSec {
		return fmt.Errorf("poll_interval_sec must be in [%d,%d], got %d", MinPollIntervalSec, MaxPollIntervalSec, c.PollIntervalSec)
	}
	switch c.MultiRecord {
	case MultiRecordError, MultiRecordFirst, MultiRecordAll:
	default:
		return fmt.Errorf("multi_record must be one of error|first|all, got %q", c.MultiRecord)
	}
	if c.ProviderType == "" {
		return errors.New("provider_type must not be empty")
	}
	return nil
}

// Redacted returns a copy of c suitable for logging: api_token
// replaced with its redacted form.
func (c *Config) Redacted(redact func(string) string) Config {
	cp := *c
	cp.APIToken = redact(cp.APIToken)
	return cp
}
