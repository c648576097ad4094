// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The ipv6ddns Authors

package address

import "net"

// interfaceSource is the portable, stdlib-only fallback used when no
// netlink socket is available: non-Linux hosts, or a Linux host where
// opening AF_NETLINK failed outright (permissions, sandboxing).
//
// Grounded on other_examples/942858bb_jsribeiro-ipv6-ddns-cloudflare's
// getPublicIPv6: enumerate every interface's addresses and keep the
// ones that look like real global IPv6 addresses. That reference
// scans one named interface; this generalizes to every interface on
// the host, matching spec.md's host-wide AddressSet.
type interfaceSource struct{}

// NewInterfaceSource returns the always-available, Dump-only Source.
func NewInterfaceSource() Source { return interfaceSource{} }

func (interfaceSource) Dump() ([]IPv6Address, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	var out []IPv6Address
	for _, iface := range ifaces {
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, a := range addrs {
			ipNet, ok := a.(*net.IPNet)
			if !ok {
				continue
			}
			ip := ipNet.IP
			if ip.To4() != nil {
				continue // IPv4 (or IPv4-mapped), not our concern
			}
			out = append(out, IPv6Address{
				IP:        ip,
				Ifindex:   iface.Index,
				Interface: iface.Name,
				Scope:     scopeOf(ip),
				Flags:     0,
			})
		}
	}
	return out, nil
}

// Events never succeeds: this Source has no notification mechanism,
// so the Observer always runs it in poll mode.
func (interfaceSource) Events() (<-chan delta, <-chan error, error) {
	return nil, nil, ErrEventsUnsupported
}

func (interfaceSource) Close() error { return nil }

// scopeOf derives an approximate RFC 4291 scope from stdlib
// classification helpers, since net.IP carries no kernel scope field.
// Link-local, loopback, and unique-local addresses are all treated as
// non-global; anything else is global. This mirrors the kernel's own
// RT_SCOPE_LINK/RT_SCOPE_HOST/RT_SCOPE_UNIVERSE split closely enough
// for the eligibility predicate, which only distinguishes
// global-vs-not.
func scopeOf(ip net.IP) Scope {
	switch {
	case ip.IsLoopback():
		return ScopeOther
	case ip.IsLinkLocalUnicast(), ip.IsLinkLocalMulticast():
		return ScopeOther
	case isUniqueLocal(ip):
		return ScopeOther
	default:
		return ScopeGlobal
	}
}

// isUniqueLocal reports whether ip is in fc00::/7 (RFC 4193).
func isUniqueLocal(ip net.IP) bool {
	ip16 := ip.To16()
	if ip16 == nil {
		return false
	}
	return ip16[0]&0xfe == 0xfc
}
