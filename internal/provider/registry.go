// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The ipv6ddns Authors

package provider

import "fmt"

// Options carries the configuration a Factory needs to construct a
// Provider. It is deliberately narrow: only what every provider
// plausibly needs, not Cloudflare-specific fields.
type Options struct {
	APIToken   string
	ZoneID     string
	TimeoutSec int
	Policy     string // one of "error"|"first"|"all"
}

// Factory constructs a Provider from Options. Generalizes the
// teacher's ClientFactory/DefaultClientFactory pair from a single
// concrete client to a name-keyed registry, so a second provider can
// be added without the reconciler knowing about it.
type Factory func(Options) (Provider, error)

var registry = map[string]Factory{}

// Register adds a Factory under name. Intended to be called from an
// implementation package's init, mirroring how database/sql drivers
// register themselves.
func Register(name string, f Factory) {
	registry[name] = f
}

// New constructs the Provider registered under name.
func New(name string, opts Options) (Provider, error) {
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("provider: unknown provider_type %q", name)
	}
	return f(opts)
}
