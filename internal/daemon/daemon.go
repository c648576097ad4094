// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The ipv6ddns Authors

// Package daemon wires the Observer, Reconciler, DNS Provider Client,
// and health endpoint together and owns process-level signal handling.
package daemon

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/go-logr/logr"

	"github.com/ipv6ddns/ipv6ddns/internal/address"
	"github.com/ipv6ddns/ipv6ddns/internal/config"
	"github.com/ipv6ddns/ipv6ddns/internal/health"
	"github.com/ipv6ddns/ipv6ddns/internal/logging"
	"github.com/ipv6ddns/ipv6ddns/internal/metrics"
	"github.com/ipv6ddns/ipv6ddns/internal/provider"
	"github.com/ipv6ddns/ipv6ddns/internal/reconciler"
)

// Version and BuildDate are stamped via -ldflags at build time,
// mirroring the maxfield-allison-dnsweaver reference's pattern.
var (
	Version   = "dev"
	BuildDate = "unknown"
)

// Options configures Run. ConfigPath is re-read on every SIGHUP.
type Options struct {
	ConfigPath string
}

func newProvider(cfg *config.Config) (provider.Provider, error) {
	return provider.New(cfg.ProviderType, provider.Options{
		APIToken:   cfg.APIToken,
		ZoneID:     cfg.ZoneID,
		TimeoutSec: cfg.TimeoutSec,
		Policy:     string(cfg.MultiRecord),
	})
}

// Run loads configuration, constructs every component, and blocks
// until ctx is canceled or a SIGTERM arrives. It returns a non-zero
// exit code's worth of error only for startup failures; once running,
// remote-API errors never cause it to return.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	log := logging.New(cfg.Verbose)
	log.Info("ipv6ddns starting",
		"version", Version,
		"build_date", BuildDate,
		"go_version", runtime.Version(),
		"record_name", cfg.RecordName,
		"provider_type", cfg.ProviderType,
		"multi_record", cfg.MultiRecord,
	)

	m := metrics.New()
	m.SetBuildInfo(Version, runtime.Version())

	p, err := newProvider(cfg)
	if err != nil {
		return fmt.Errorf("constructing provider client: %w", err)
	}

	obs := address.New(log.WithName("address"), cfg.AllowLoopback, time.Duration(cfg.PollIntervalSec)*time.Second)

	rec := reconciler.New(p, cfg.RecordName,
		reconciler.WithLogger(log.WithName("reconciler")),
		reconciler.WithMetrics(m),
		reconciler.WithTimeout(time.Duration(cfg.TimeoutSec)*time.Second),
		reconciler.WithProviderFactory(newProvider),
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := obs.Start(ctx); err != nil {
		return fmt.Errorf("starting address observer: %w", err)
	}

	forceResync := make(chan struct{}, 1)
	configUpdates := make(chan *config.Config, 1)

	reconcilerDone := make(chan error, 1)
	go func() {
		reconcilerDone <- rec.Run(ctx, obs.Notifications(), forceResync, configUpdates)
	}()

	var healthSrv *health.Server
	if cfg.HealthPort > 0 {
		healthSrv = health.New(fmt.Sprintf(":%d", cfg.HealthPort), m.Registry, health.WithLogger(log.WithName("health")))
		healthSrv.RegisterChecker(func() (bool, string) {
			s := rec.State()
			if s.Phase == reconciler.PhaseError {
				return false, s.LastError
			}
			return true, ""
		})
		if err := healthSrv.Start(); err != nil {
			return fmt.Errorf("starting health server: %w", err)
		}
	}

	go reportObserverMode(ctx, obs, m)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGHUP)
	defer signal.Stop(sigCh)

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case sig := <-sigCh:
			switch sig {
			case syscall.SIGHUP:
				handleReload(log, opts.ConfigPath, configUpdates, forceResync)
			default:
				log.Info("received shutdown signal", "signal", sig.String())
				cancel()
			}
		}
	}

	if healthSrv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := healthSrv.Shutdown(shutdownCtx); err != nil {
			log.Error(err, "health server shutdown error")
		}
		shutdownCancel()
	}

	<-reconcilerDone
	log.Info("ipv6ddns shutdown complete")
	return nil
}

func handleReload(log logr.Logger, path string, configUpdates chan<- *config.Config, forceResync chan<- struct{}) {
	cfg, err := config.Load(path)
	if err != nil {
		log.Error(err, "SIGHUP reload failed, keeping previous configuration")
		return
	}
	log.Info("configuration reloaded")
	select {
	case configUpdates <- cfg:
	default:
	}
	select {
	case forceResync <- struct{}{}:
	default:
	}
}

func reportObserverMode(ctx context.Context, obs *address.Observer, m *metrics.Metrics) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.SetObserverMode(string(obs.Mode()))
		}
	}
}
