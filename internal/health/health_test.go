// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The ipv6ddns Authors

package health

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_HealthzAlwaysOK(t *testing.T) {
	s := New("127.0.0.1:0", nil)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	s.handleHealthz(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServer_ReadyzReflectsCheckers(t *testing.T) {
	s := New("127.0.0.1:0", nil)
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)

	w := httptest.NewRecorder()
	s.handleReadyz(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	s.RegisterChecker(func() (bool, string) { return false, "reconciler in error state" })
	w = httptest.NewRecorder()
	s.handleReadyz(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "reconciler in error state")
}

func TestServer_StartServesMetricsFromRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_total"})
	reg.MustRegister(counter)
	counter.Inc()

	s := New("127.0.0.1:0", reg)
	require.NoError(t, s.Start())
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.Shutdown(ctx)
	}()

	resp, err := http.Get("http://" + s.Addr() + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "test_total")
}

func TestServer_ShutdownStopsListener(t *testing.T) {
	s := New("127.0.0.1:0", nil)
	require.NoError(t, s.Start())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))

	_, err := http.Get("http://" + s.Addr() + "/healthz")
	assert.Error(t, err)
}
