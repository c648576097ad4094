// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The ipv6ddns Authors

package metrics

import (
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gather(t *testing.T, m *Metrics, name string) []*dto.MetricFamily {
	t.Helper()
	families, err := m.Registry.Gather()
	require.NoError(t, err)
	var out []*dto.MetricFamily
	for _, f := range families {
		if f.GetName() == name {
			out = append(out, f)
		}
	}
	return out
}

func TestMetrics_ObserveSyncResultIncrementsCounter(t *testing.T) {
	m := New()
	m.ObserveSyncResult("success")
	m.ObserveSyncResult("success")
	m.ObserveSyncResult("retriable_error")

	families := gather(t, m, "ipv6ddns_sync_total")
	require.Len(t, families, 1)
	counts := map[string]float64{}
	for _, metric := range families[0].GetMetric() {
		counts[metric.GetLabel()[0].GetValue()] = metric.GetCounter().GetValue()
	}
	assert.Equal(t, 2.0, counts["success"])
	assert.Equal(t, 1.0, counts["retriable_error"])
}

func TestMetrics_SetConsecutiveFailures(t *testing.T) {
	m := New()
	m.SetConsecutiveFailures(3)
	families := gather(t, m, "ipv6ddns_consecutive_failures")
	require.Len(t, families, 1)
	assert.Equal(t, 3.0, families[0].GetMetric()[0].GetGauge().GetValue())
}

func TestMetrics_SetObserverModeClearsOtherMode(t *testing.T) {
	m := New()
	m.SetObserverMode("event")
	families := gather(t, m, "ipv6ddns_observer_mode")
	require.Len(t, families, 1)
	values := map[string]float64{}
	for _, metric := range families[0].GetMetric() {
		values[metric.GetLabel()[0].GetValue()] = metric.GetGauge().GetValue()
	}
	assert.Equal(t, 1.0, values["event"])
	assert.Equal(t, 0.0, values["poll"])

	m.SetObserverMode("poll")
	families = gather(t, m, "ipv6ddns_observer_mode")
	values = map[string]float64{}
	for _, metric := range families[0].GetMetric() {
		values[metric.GetLabel()[0].GetValue()] = metric.GetGauge().GetValue()
	}
	assert.Equal(t, 0.0, values["event"])
	assert.Equal(t, 1.0, values["poll"])
}
