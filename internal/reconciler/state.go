// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The ipv6ddns Authors

// Package reconciler owns the sync state machine that drives
// convergence between the host's chosen IPv6 address and the
// configured DNS provider record.
package reconciler

import "time"

// Phase identifies which variant of SyncState is active.
type Phase string

const (
	PhaseUnknown Phase = "unknown"
	PhaseSynced  Phase = "synced"
	PhaseError   Phase = "error"
)

// SyncState is the reconciler's single piece of owned mutable state.
// Exactly one Phase is meaningful at a time; the other fields are
// left at their zero value for inapplicable phases.
type SyncState struct {
	Phase Phase

	// Synced fields.
	Address  string
	RecordID string

	// Error fields.
	ConsecutiveFailures int
	NextAttemptAt       time.Time
	LastError           string
}

// Unknown returns the initial state: PhaseUnknown with every other
// field at its zero value.
func Unknown() SyncState { return SyncState{Phase: PhaseUnknown} }

func synced(address, recordID string) SyncState {
	return SyncState{Phase: PhaseSynced, Address: address, RecordID: recordID}
}

func failed(consecutive int, nextAttempt time.Time, cause string) SyncState {
	return SyncState{
		Phase:               PhaseError,
		ConsecutiveFailures: consecutive,
		NextAttemptAt:       nextAttempt,
		LastError:           cause,
	}
}
