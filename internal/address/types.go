// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The ipv6ddns Authors

// Package address observes the host's global IPv6 addresses and
// emits coalesced change notifications.
package address

import (
	"bytes"
	"net"
	"sort"
)

// Flag bits mirror the kernel's IFA_F_* values from linux/if_addr.h
// directly, so parsed netlink flags need no remapping. Only the bits
// spec.md names are checked for eligibility; the rest are preserved
// in the bitfield but ignored.
type Flag uint32

const (
	FlagTemporary  Flag = 0x01 // IFA_F_TEMPORARY (aka IFA_F_SECONDARY)
	FlagNoDAD      Flag = 0x02 // IFA_F_NODAD
	FlagOptimistic Flag = 0x04 // IFA_F_OPTIMISTIC
	FlagDadFailed  Flag = 0x08 // IFA_F_DADFAILED
	FlagHomeAddr   Flag = 0x10 // IFA_F_HOMEADDRESS
	FlagDeprecated Flag = 0x20 // IFA_F_DEPRECATED
	FlagTentative  Flag = 0x40 // IFA_F_TENTATIVE
	FlagPermanent  Flag = 0x80 // IFA_F_PERMANENT
)

// Scope mirrors the kernel's RT_SCOPE_* values relevant to
// eligibility.
type Scope uint8

const (
	ScopeGlobal Scope = 0
	ScopeOther  Scope = 1
)

// IPv6Address is a single address observed on the host, together with
// the interface-flags bitfield and scope the kernel reported for it.
type IPv6Address struct {
	IP        net.IP
	Ifindex   int
	Scope     Scope
	Flags     Flag
	Interface string
}

// String returns the address in its canonical textual form.
func (a IPv6Address) String() string {
	return a.IP.String()
}

// Eligible reports whether a is a candidate chosen address, per
// spec.md §3: global scope, none of
// {tentative,deprecated,DAD-failed,temporary} set, and not loopback
// unless allowLoopback is set.
func (a IPv6Address) Eligible(allowLoopback bool) bool {
	if a.IP.IsLoopback() {
		return allowLoopback
	}
	if a.Scope != ScopeGlobal {
		return false
	}
	const ineligible = FlagTentative | FlagDeprecated | FlagDadFailed | FlagTemporary
	if a.Flags&ineligible != 0 {
		return false
	}
	return true
}

// AddressSet is the current set of eligible addresses on the host,
// keyed by textual form to make membership and equality comparisons
// well-defined regardless of observation order.
type AddressSet map[string]IPv6Address

// NewAddressSet builds an AddressSet from a slice of addresses.
func NewAddressSet(addrs []IPv6Address) AddressSet {
	s := make(AddressSet, len(addrs))
	for _, a := range addrs {
		s[a.String()] = a
	}
	return s
}

// Chosen returns the lexicographic minimum address in s, and false if
// s is empty. This is the deterministic tie-break rule spec.md §3
// requires. The comparison is over raw address bytes, not the
// textual form: net.IP.String() omits leading zeros per hex group, so
// string order and numeric order disagree whenever two addresses
// differ in digit count at the first differing group (e.g. "::5" vs
// "::10").
func (s AddressSet) Chosen() (string, bool) {
	if len(s) == 0 {
		return "", false
	}
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return bytes.Compare(s[keys[i]].IP.To16(), s[keys[j]].IP.To16()) < 0
	})
	return keys[0], true
}

// Equal reports whether s and other contain the same addresses.
func (s AddressSet) Equal(other AddressSet) bool {
	if len(s) != len(other) {
		return false
	}
	for k := range s {
		if _, ok := other[k]; !ok {
			return false
		}
	}
	return true
}

// Clone returns a shallow copy of s.
func (s AddressSet) Clone() AddressSet {
	cp := make(AddressSet, len(s))
	for k, v := range s {
		cp[k] = v
	}
	return cp
}

// Mode identifies which acquisition strategy the Observer is
// currently using.
type Mode string

const (
	ModeEvent Mode = "event"
	ModePoll  Mode = "poll"
)
