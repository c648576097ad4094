// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The ipv6ddns Authors

// Command ipv6ddns keeps one DNS AAAA record aligned with the host's
// current preferred global IPv6 address.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/ipv6ddns/ipv6ddns/internal/config"
	"github.com/ipv6ddns/ipv6ddns/internal/daemon"
)

const defaultConfigPath = "/etc/ipv6ddns/config.toml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "Path to the TOML configuration file")
	configTest := flag.Bool("config-test", false, "Load and validate configuration, then exit")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("ipv6ddns %s (built %s)\n", daemon.Version, daemon.BuildDate)
		os.Exit(0)
	}

	if *configTest {
		if _, err := config.Load(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "config invalid: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("config ok")
		os.Exit(0)
	}

	if err := daemon.Run(context.Background(), daemon.Options{ConfigPath: *configPath}); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}
