// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The ipv6ddns Authors

package address

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustIP(s string) net.IP {
	ip := net.ParseIP(s)
	if ip == nil {
		panic("bad test IP: " + s)
	}
	return ip
}

var globalA = IPv6Address{IP: mustIP("2001:db8::1"), Scope: ScopeGlobal, Interface: "eth0"}
var globalB = IPv6Address{IP: mustIP("2001:db8::2"), Scope: ScopeGlobal, Interface: "eth0"}

// fakeSource is a hand-controlled Source for exercising the Observer
// without a real kernel socket.
type fakeSource struct {
	mu         sync.Mutex
	dumpAddrs  []IPv6Address
	dumpErr    error
	eventsErr  error
	deltas     chan delta
	errs       chan error
	closed     bool
	closeCount int
}

func newFakeSource(initial []IPv6Address) *fakeSource {
	return &fakeSource{
		dumpAddrs: initial,
		deltas:    make(chan delta, 16),
		errs:      make(chan error, 1),
	}
}

func (f *fakeSource) Dump() ([]IPv6Address, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.dumpErr != nil {
		return nil, f.dumpErr
	}
	out := make([]IPv6Address, len(f.dumpAddrs))
	copy(out, f.dumpAddrs)
	return out, nil
}

func (f *fakeSource) Events() (<-chan delta, <-chan error, error) {
	if f.eventsErr != nil {
		return nil, nil, f.eventsErr
	}
	return f.deltas, f.errs, nil
}

func (f *fakeSource) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.closeCount++
	return nil
}

func testObserver(fallback Source) *Observer {
	return &Observer{
		log:           logr.Discard(),
		pollInterval:  20 * time.Millisecond,
		fallback:      fallback,
		notifications: make(chan AddressSet, 1),
	}
}

func recvWithTimeout(t *testing.T, ch <-chan AddressSet) AddressSet {
	t.Helper()
	select {
	case s := <-ch:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for notification")
		return nil
	}
}

func TestObserver_BootstrapUsesFallbackWhenNoPrimary(t *testing.T) {
	src := newFakeSource([]IPv6Address{globalA})
	o := testObserver(src)
	o.primary = nil

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, o.Start(ctx))
	set := recvWithTimeout(t, o.Notifications())
	assert.Len(t, set, 1)
	assert.Equal(t, ModePoll, o.Mode())
}

func TestObserver_EventModeCoalescesBurst(t *testing.T) {
	src := newFakeSource([]IPv6Address{globalA})
	o := testObserver(NewInterfaceSource())
	o.primary = src

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, o.Start(ctx))
	initial := recvWithTimeout(t, o.Notifications())
	assert.Len(t, initial, 1)
	assert.Equal(t, ModeEvent, o.Mode())

	// Burst of three rapid deltas; only the final state should be
	// published once the coalescing window elapses.
	src.deltas <- delta{addr: globalB}
	src.deltas <- delta{addr: globalA, deleted: true}
	src.deltas <- delta{addr: globalB}

	final := recvWithTimeout(t, o.Notifications())
	assert.Len(t, final, 1)
	_, ok := final[globalB.String()]
	assert.True(t, ok)
}

func TestObserver_DowngradesWhenEventsUnsupported(t *testing.T) {
	src := newFakeSource([]IPv6Address{globalA})
	src.eventsErr = ErrEventsUnsupported
	o := testObserver(NewInterfaceSource())
	o.primary = src

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, o.Start(ctx))
	recvWithTimeout(t, o.Notifications())

	require.Eventually(t, func() bool { return o.Mode() == ModePoll }, time.Second, 10*time.Millisecond)
	assert.True(t, o.Degraded())
}

func TestObserver_DowngradesOnEventStreamError(t *testing.T) {
	src := newFakeSource([]IPv6Address{globalA})
	o := testObserver(NewInterfaceSource())
	o.primary = src

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, o.Start(ctx))
	recvWithTimeout(t, o.Notifications())

	src.errs <- assertErr{}
	require.Eventually(t, func() bool { return o.Mode() == ModePoll }, time.Second, 10*time.Millisecond)
	assert.True(t, o.Degraded())
}

func TestObserver_NoChangeNoNotification(t *testing.T) {
	src := newFakeSource([]IPv6Address{globalA})
	o := testObserver(NewInterfaceSource())
	o.primary = src

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, o.Start(ctx))
	recvWithTimeout(t, o.Notifications())

	select {
	case set := <-o.Notifications():
		t.Fatalf("unexpected notification with no change: %v", set)
	case <-time.After(150 * time.Millisecond):
	}
}

type assertErr struct{}

func (assertErr) Error() string { return "simulated event stream failure" }
