// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The ipv6ddns Authors

// Package metrics is the Prometheus instrumentation backing the
// reconciler.Metrics and address observer status collaborators.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the daemon's Prometheus collectors, registered
// against a private Registry rather than prometheus's global
// DefaultRegisterer so tests can construct independent instances.
type Metrics struct {
	Registry *prometheus.Registry

	syncTotal           *prometheus.CounterVec
	consecutiveFailures prometheus.Gauge
	observerMode        *prometheus.GaugeVec
	buildInfo           *prometheus.GaugeVec
}

// New constructs a Metrics instance with all collectors registered.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		Registry: reg,
		syncTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ipv6ddns_sync_total",
			Help: "Count of provider sync attempts by result.",
		}, []string{"result"}),
		consecutiveFailures: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ipv6ddns_consecutive_failures",
			Help: "Current number of consecutive provider sync failures.",
		}),
		observerMode: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ipv6ddns_observer_mode",
			Help: "1 for the address observer's currently active mode, 0 otherwise.",
		}, []string{"mode"}),
		buildInfo: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ipv6ddns_build_info",
			Help: "Always 1; labeled with version and go_version.",
		}, []string{"version", "go_version"}),
	}

	reg.MustRegister(m.syncTotal, m.consecutiveFailures, m.observerMode, m.buildInfo)
	return m
}

// ObserveSyncResult implements reconciler.Metrics.
func (m *Metrics) ObserveSyncResult(result string) {
	m.syncTotal.WithLabelValues(result).Inc()
}

// SetConsecutiveFailures implements reconciler.Metrics.
func (m *Metrics) SetConsecutiveFailures(n int) {
	m.consecutiveFailures.Set(float64(n))
}

// SetObserverMode records which acquisition mode (event or poll) the
// address observer currently runs in, clearing the other mode's gauge.
func (m *Metrics) SetObserverMode(mode string) {
	for _, candidate := range []string{"event", "poll"} {
		v := 0.0
		if candidate == mode {
			v = 1.0
		}
		m.observerMode.WithLabelValues(candidate).Set(v)
	}
}

// SetBuildInfo records the running binary's version and Go runtime
// version as a constant gauge, the same one-time stamping the
// dnsweaver reference performs on startup.
func (m *Metrics) SetBuildInfo(version, goVersion string) {
	m.buildInfo.Reset()
	m.buildInfo.WithLabelValues(version, goVersion).Set(1)
}
