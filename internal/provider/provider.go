// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The ipv6ddns Authors

// Package provider defines the narrow capability the reconciler needs
// from a hosted DNS provider, and a name-keyed registry of concrete
// implementations.
package provider

import "context"

// Record is a single AAAA record as reported by the provider.
type Record struct {
	ID      string
	Name    string
	Address string
}

// Provider is the capability the reconciler depends on. Any DNS
// provider satisfying this interface may stand in for the default
// Cloudflare implementation.
type Provider interface {
	// ListAAAA returns every AAAA record currently matching name, in
	// the provider's natural listing order.
	ListAAAA(ctx context.Context, name string) ([]Record, error)

	// UpsertAAAA idempotently makes name resolve to address, applying
	// the configured multi-record policy when more than one record
	// matches. It returns the id of the record considered canonical
	// for this update.
	UpsertAAAA(ctx context.Context, name, address string) (recordID string, err error)
}
