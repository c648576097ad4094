// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The ipv6ddns Authors

// Package health serves /healthz, /readyz, and /metrics over HTTP.
package health

import (
	"context"
	"net"
	"net/http"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func newListener(addr string) (net.Listener, error) {
	return net.Listen("tcp", addr)
}

// ReadyChecker reports whether the daemon is ready to serve, and a
// human-readable reason when it is not.
type ReadyChecker func() (ready bool, reason string)

// Server is the daemon's liveness/readiness/metrics HTTP endpoint, the
// same three-route shape the dnsweaver reference's health.Server
// exposes via Start/Shutdown.
type Server struct {
	log      logr.Logger
	srv      *http.Server
	checkers []ReadyChecker
	addr     string
}

// Option configures a Server at construction time.
type Option func(*Server)

// WithLogger sets the server's logger.
func WithLogger(log logr.Logger) Option {
	return func(s *Server) { s.log = log }
}

// New builds a Server that Start binds to addr. An empty addr is not
// a way to disable it (net.Listen then picks an arbitrary port), so
// callers skip the server entirely when health_port is 0. registry,
// if non-nil, backs the /metrics route via promhttp.
func New(addr string, registry *prometheus.Registry, opts ...Option) *Server {
	s := &Server{log: logr.Discard()}
	for _, opt := range opts {
		opt(s)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/readyz", s.handleReadyz)
	if registry != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	s.srv = &http.Server{Addr: addr, Handler: mux}
	return s
}

// RegisterChecker adds a condition that must hold for /readyz to
// report ready.
func (s *Server) RegisterChecker(c ReadyChecker) {
	s.checkers = append(s.checkers, c)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	for _, c := range s.checkers {
		if ready, reason := c(); !ready {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(reason))
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// Start begins serving in the background. It returns once the
// listener is bound; HTTP errors after that point are logged, not
// returned, matching the teacher's fire-and-forget server goroutines.
func (s *Server) Start() error {
	ln, err := newListener(s.srv.Addr)
	if err != nil {
		return err
	}
	s.addr = ln.Addr().String()
	go func() {
		if err := s.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.log.Error(err, "health server stopped unexpectedly")
		}
	}()
	s.log.Info("health server listening", "addr", s.addr)
	return nil
}

// Addr returns the address the server is actually bound to. Only
// meaningful after Start returns; useful when addr was "host:0".
func (s *Server) Addr() string { return s.addr }

// Shutdown gracefully stops the server, bounded by ctx.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
