// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The ipv6ddns Authors

package address

import "errors"

// ErrEventsUnsupported is returned by Source.Events when the
// underlying platform or socket cannot deliver live notifications,
// telling the Observer to fall back to poll mode.
var ErrEventsUnsupported = errors.New("address: event subscription unsupported, falling back to poll mode")

// delta is a single add/delete notification from a Source's live
// event stream.
type delta struct {
	addr    IPv6Address
	deleted bool
}

// Source abstracts the host's address inventory so the Observer's
// bootstrap/coalesce/fallback logic can be tested without a real
// kernel socket.
type Source interface {
	// Dump performs a one-shot enumeration of all addresses
	// currently on the host, regardless of eligibility.
	Dump() ([]IPv6Address, error)

	// Events returns a channel of incremental add/delete
	// notifications and a channel that is closed (after optionally
	// sending one error) when the underlying subscription fails.
	// Returning ErrEventsUnsupported signals that this Source never
	// supports live events; the Observer switches to poll mode
	// immediately and logs the downgrade once, as for any other
	// Events error.
	Events() (<-chan delta, <-chan error, error)

	// Close releases any resources (sockets) held by the source.
	Close() error
}
