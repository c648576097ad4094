// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The ipv6ddns Authors

package reconciler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-logr/logr"

	"github.com/ipv6ddns/ipv6ddns/internal/address"
	"github.com/ipv6ddns/ipv6ddns/internal/config"
	"github.com/ipv6ddns/ipv6ddns/internal/provider"
)

// Metrics is the explicit collaborator the reconciler reports
// outcomes to. Kept as an interface rather than a package-level
// Prometheus singleton, per spec.md §9's "no global mutable state"
// design note; internal/metrics provides the real implementation,
// and a nil Metrics is treated as a no-op.
type Metrics interface {
	ObserveSyncResult(result string)
	SetConsecutiveFailures(n int)
}

type noopMetrics struct{}

func (noopMetrics) ObserveSyncResult(string)   {}
func (noopMetrics) SetConsecutiveFailures(int) {}

// ProviderFactory rebuilds a Provider from freshly reloaded
// configuration. Used for the SIGHUP credential hot-reload path; a
// nil factory disables hot-reload (ConfigUpdate messages are logged
// and ignored).
type ProviderFactory func(cfg *config.Config) (provider.Provider, error)

// Option configures a Reconciler at construction time.
type Option func(*Reconciler)

// WithLogger sets the reconciler's logger.
func WithLogger(log logr.Logger) Option {
	return func(r *Reconciler) { r.log = log }
}

// WithMetrics sets the reconciler's metrics collaborator.
func WithMetrics(m Metrics) Option {
	return func(r *Reconciler) { r.metrics = m }
}

// WithProviderFactory enables SIGHUP credential hot-reload.
func WithProviderFactory(f ProviderFactory) Option {
	return func(r *Reconciler) { r.providerFactory = f }
}

// WithTimeout bounds how long a single provider attempt may run
// before its context is canceled, as an upper bound on shutdown
// latency.
func WithTimeout(d time.Duration) Option {
	return func(r *Reconciler) { r.timeout = d }
}

// Reconciler owns SyncState and drives it toward Synced{chosen
// address} per spec.md §4.2's decision table, on a single goroutine.
type Reconciler struct {
	recordName      string
	p               provider.Provider
	providerFactory ProviderFactory
	log             logr.Logger
	metrics         Metrics
	timeout         time.Duration

	// state is owned by the Run goroutine but read from State() by
	// other goroutines (the health endpoint's /readyz handler), so all
	// access goes through stateMu.
	stateMu sync.RWMutex
	state   SyncState

	desiredAddr *string
	loggedEmpty bool

	inFlight     bool
	pendingForce bool
}

type syncResult struct {
	address  string
	recordID string
	err      error
}

// New constructs a Reconciler targeting recordName through p.
func New(p provider.Provider, recordName string, opts ...Option) *Reconciler {
	r := &Reconciler{
		recordName: recordName,
		p:          p,
		log:        logr.Discard(),
		metrics:    noopMetrics{},
		timeout:    30 * time.Second,
		state:      Unknown(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// State returns a copy of the current SyncState. Safe to call from any
// goroutine, concurrently with Run.
func (r *Reconciler) State() SyncState {
	r.stateMu.RLock()
	defer r.stateMu.RUnlock()
	return r.state
}

// setState is called only from the Run goroutine.
func (r *Reconciler) setState(s SyncState) {
	r.stateMu.Lock()
	r.state = s
	r.stateMu.Unlock()
}

// Run is the single-goroutine event loop. It multiplexes address
// events, force-resync, the retry timer, config hot-reload, and
// shutdown, and never returns until ctx is canceled.
func (r *Reconciler) Run(
	ctx context.Context,
	events <-chan address.AddressSet,
	forceResync <-chan struct{},
	configUpdates <-chan *config.Config,
) error {
	retryTimer := time.NewTimer(time.Hour)
	if !retryTimer.Stop() {
		<-retryTimer.C
	}
	defer retryTimer.Stop()

	done := make(chan syncResult, 1)

	resetRetryTimer := func(d time.Duration) {
		if !retryTimer.Stop() {
			select {
			case <-retryTimer.C:
			default:
			}
		}
		retryTimer.Reset(d)
	}
	stopRetryTimer := func() {
		if !retryTimer.Stop() {
			select {
			case <-retryTimer.C:
			default:
			}
		}
	}

	startAttempt := func(target string) {
		r.inFlight = true
		attemptCtx, cancel := context.WithTimeout(ctx, r.timeout)
		go func() {
			defer cancel()
			id, err := r.p.UpsertAAAA(attemptCtx, r.recordName, target)
			done <- syncResult{address: target, recordID: id, err: err}
		}()
	}

	attempt := func(force, timerFired bool) {
		if r.inFlight {
			if force {
				r.pendingForce = true
			}
			return
		}
		should, target := r.decide(force, timerFired)
		if !should {
			return
		}
		startAttempt(target)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case set, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if addr, has := set.Chosen(); has {
				a := addr
				r.desiredAddr = &a
			} else {
				r.desiredAddr = nil
			}
			attempt(false, false)

		case _, ok := <-forceResync:
			if !ok {
				forceResync = nil
				continue
			}
			stopRetryTimer()
			attempt(true, false)

		case <-retryTimer.C:
			attempt(false, true)

		case cfg, ok := <-configUpdates:
			if !ok {
				configUpdates = nil
				continue
			}
			r.reloadProvider(cfg)

		case res := <-done:
			r.inFlight = false
			r.applyResult(res, resetRetryTimer, stopRetryTimer)
			force := r.pendingForce
			r.pendingForce = false
			attempt(force, false)
		}
	}
}

// decide implements spec.md §4.2's decision table given the
// reconciler's current phase, the latest known desired address, and
// whether this evaluation was triggered by a force-resync or a fired
// retry timer.
func (r *Reconciler) decide(force, timerFired bool) (shouldAttempt bool, target string) {
	current := r.State()
	switch current.Phase {
	case PhaseUnknown:
		if r.desiredAddr == nil {
			if !r.loggedEmpty {
				r.log.Info("no IPv6 address eligible on startup")
				r.loggedEmpty = true
			}
			return false, ""
		}
		return true, *r.desiredAddr

	case PhaseSynced:
		if r.desiredAddr == nil {
			return false, "" // remain Synced(A); never delete the remote record
		}
		if *r.desiredAddr == current.Address && !force {
			return false, ""
		}
		return true, *r.desiredAddr

	case PhaseError:
		if !force && !timerFired {
			return false, "" // record the latest desired value and wait
		}
		if r.desiredAddr == nil {
			return false, ""
		}
		return true, *r.desiredAddr

	default:
		return false, ""
	}
}

func (r *Reconciler) applyResult(res syncResult, resetRetryTimer func(time.Duration), stopRetryTimer func()) {
	if res.err == nil {
		r.setState(synced(res.address, res.recordID))
		stopRetryTimer()
		r.metrics.ObserveSyncResult("success")
		r.metrics.SetConsecutiveFailures(0)
		r.log.Info(fmt.Sprintf("Synced (ID: %s) address=%s", res.recordID, res.address))
		return
	}

	failures := r.State().ConsecutiveFailures + 1
	retriable := provider.Classify(res.err)
	var delay time.Duration
	if retriable {
		delay = nextBackoff(failures)
		r.metrics.ObserveSyncResult("retriable_error")
	} else {
		delay = backoffMax
		r.metrics.ObserveSyncResult("nonretriable_error")
	}
	r.setState(failed(failures, time.Now().Add(delay), res.err.Error()))
	r.metrics.SetConsecutiveFailures(failures)
	resetRetryTimer(delay)

	if retriable {
		r.log.Info("provider sync failed, backing off", "error", res.err, "consecutive_failures", failures, "retry_in", delay)
	} else {
		r.log.Error(res.err, "provider sync failed with non-retriable error; fix credentials and send SIGHUP to retry", "consecutive_failures", failures, "retry_in", delay)
	}
}

func (r *Reconciler) reloadProvider(cfg *config.Config) {
	if r.providerFactory == nil {
		r.log.Info("config reload received but hot-reload is not wired, ignoring")
		return
	}
	p, err := r.providerFactory(cfg)
	if err != nil {
		r.log.Error(err, "failed to rebuild provider client from reloaded config")
		return
	}
	r.p = p
	r.log.Info("provider credentials reloaded")
}
