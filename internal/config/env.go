// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The ipv6ddns Authors

package config

import (
	"os"
	"strconv"
)

// applyEnv overlays recognized environment variables onto cfg.
// Environment wins over whatever the file set, per spec.md §6.
func applyEnv(cfg *Config) {
	if v, ok := os.LookupEnv("CLOUDFLARE_API_TOKEN"); ok {
		cfg.APIToken = v
	}
	if v, ok := os.LookupEnv("CLOUDFLARE_ZONE_ID"); ok {
		cfg.ZoneID = v
	}
	if v, ok := os.LookupEnv("CLOUDFLARE_RECORD_NAME"); ok {
		cfg.RecordName = v
	}
	if v, ok := envInt("IPV6DDNS_TIMEOUT"); ok {
		cfg.TimeoutSec = v
	}
	if v, ok := envInt("IPV6DDNS_POLL_INTERVAL"); ok {
		cfg.PollIntervalSec = v
	}
	if v, ok := envBool("IPV6DDNS_VERBOSE"); ok {
		cfg.Verbose = v
	}
	if v, ok := os.LookupEnv("IPV6DDNS_MULTI_RECORD"); ok {
		cfg.MultiRecord = MultiRecordPolicy(v)
	}
	if v, ok := envBool("IPV6DDNS_ALLOW_LOOPBACK"); ok {
		cfg.AllowLoopback = v
	}
	if v, ok := os.LookupEnv("IPV6DDNS_PROVIDER_TYPE"); ok {
		cfg.ProviderType = v
	}
	if v, ok := envInt("IPV6DDNS_HEALTH_PORT"); ok {
		cfg.HealthPort = v
	}
}

func envInt(name string) (int, bool) {
	v, ok := os.LookupEnv(name)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func envBool(name string) (bool, bool) {
	v, ok := os.LookupEnv(name)
	if !ok {
		return false, false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, false
	}
	return b, true
}
