// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The ipv6ddns Authors

package address

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-logr/logr"
)

// coalesceWindow is the quiet period the Observer waits for after a
// netlink event before re-evaluating the eligible set, so that a
// single DHCPv6/SLAAC renumbering burst produces one notification
// instead of one per message.
const coalesceWindow = 50 * time.Millisecond

// Observer tracks the host's IPv6 addresses and publishes the
// eligible AddressSet on Notifications whenever it changes. It always
// delivers one notification reflecting the host's state at Start
// before any incremental update, so a consumer that begins selecting
// on Notifications before calling Start never misses the bootstrap
// state.
type Observer struct {
	log           logr.Logger
	allowLoopback bool
	pollInterval  time.Duration

	primary  Source
	fallback Source

	mu       sync.Mutex
	mode     Mode
	degraded bool

	notifications chan AddressSet
}

// New constructs an Observer. pollInterval governs how often the
// poll-mode fallback re-enumerates addresses. Setting the environment
// variable IPV6DDNS_OBSERVER_MODE=poll skips the netlink source and
// runs the Observer in poll mode from the start.
func New(log logr.Logger, allowLoopback bool, pollInterval time.Duration) *Observer {
	primary, _ := newPreferredSource()
	if primary != nil && os.Getenv("IPV6DDNS_OBSERVER_MODE") == "poll" {
		_ = primary.Close()
		primary = nil
	}
	return &Observer{
		log:           log,
		allowLoopback: allowLoopback,
		pollInterval:  pollInterval,
		primary:       primary,
		fallback:      NewInterfaceSource(),
		notifications: make(chan AddressSet, 1),
	}
}

// Notifications returns the channel of eligible-AddressSet updates.
// It always holds the most recently published set: a slow consumer
// never blocks the Observer, and never sees a stale notification
// superseded before it was read.
func (o *Observer) Notifications() <-chan AddressSet {
	return o.notifications
}

// Mode reports the Observer's current acquisition strategy.
func (o *Observer) Mode() Mode {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.mode
}

// Degraded reports whether the Observer has fallen back from event
// mode to poll mode since starting.
func (o *Observer) Degraded() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.degraded
}

func (o *Observer) setMode(m Mode, degraded bool) {
	o.mu.Lock()
	o.mode = m
	if degraded {
		o.degraded = true
	}
	o.mu.Unlock()
}

// Start performs the bootstrap dump, publishes it, and spawns the
// background goroutine that delivers incremental updates until ctx is
// canceled. It returns an error only if no Source can even produce an
// initial dump.
func (o *Observer) Start(ctx context.Context) error {
	src := o.primary
	mode := ModeEvent
	if src == nil {
		src = o.fallback
		mode = ModePoll
	}

	addrs, err := src.Dump()
	if err != nil {
		if src != o.fallback {
			o.log.V(1).Info("primary address source dump failed, falling back", "error", err)
			src = o.fallback
			mode = ModePoll
			addrs, err = src.Dump()
		}
		if err != nil {
			return fmt.Errorf("address: initial dump failed: %w", err)
		}
	}
	o.setMode(mode, mode == ModePoll && o.primary != nil)

	raw := NewAddressSet(addrs)
	lastSent := o.filter(raw)
	o.publish(lastSent)

	go o.run(ctx, src, mode, raw, lastSent)
	return nil
}

func (o *Observer) filter(raw AddressSet) AddressSet {
	out := make(AddressSet, len(raw))
	for k, a := range raw {
		if a.Eligible(o.allowLoopback) {
			out[k] = a
		}
	}
	return out
}

// publish overwrites any unread pending notification with the latest
// state, giving Notifications its latest-value semantics.
func (o *Observer) publish(set AddressSet) {
	select {
	case o.notifications <- set:
		return
	default:
	}
	select {
	case <-o.notifications:
	default:
	}
	select {
	case o.notifications <- set:
	default:
	}
}

func (o *Observer) run(ctx context.Context, src Source, mode Mode, raw, lastSent AddressSet) {
	defer src.Close()

	if mode == ModeEvent {
		deltas, errs, err := src.Events()
		if err != nil {
			o.log.Info("address event subscription unavailable, switching to poll mode", "error", err)
			o.setMode(ModePoll, true)
			o.pollLoop(ctx, src, raw, lastSent)
			return
		}
		o.eventLoop(ctx, src, deltas, errs, raw, lastSent)
		return
	}
	o.pollLoop(ctx, src, raw, lastSent)
}

func (o *Observer) eventLoop(ctx context.Context, src Source, deltas <-chan delta, errs <-chan error, raw, lastSent AddressSet) {
	timer := time.NewTimer(time.Hour)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	resetTimer := func() {
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(coalesceWindow)
	}

	for {
		select {
		case <-ctx.Done():
			return

		case d, ok := <-deltas:
			if !ok {
				return
			}
			if d.deleted {
				delete(raw, d.addr.String())
			} else {
				raw[d.addr.String()] = d.addr
			}
			resetTimer()

		case <-timer.C:
			eligible := o.filter(raw)
			if !eligible.Equal(lastSent) {
				lastSent = eligible
				o.publish(lastSent)
			}

		case err, ok := <-errs:
			if ok && err != nil {
				o.log.Info("address event stream failed, switching to poll mode", "error", err)
			}
			o.setMode(ModePoll, true)
			o.pollLoop(ctx, src, raw, lastSent)
			return
		}
	}
}

func (o *Observer) pollLoop(ctx context.Context, src Source, raw, lastSent AddressSet) {
	ticker := time.NewTicker(o.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			addrs, err := src.Dump()
			if err != nil {
				o.log.Info("periodic address dump failed, retrying next interval", "error", err)
				continue
			}
			raw = NewAddressSet(addrs)
			eligible := o.filter(raw)
			if !eligible.Equal(lastSent) {
				lastSent = eligible
				o.publish(lastSent)
			}
		}
	}
}
