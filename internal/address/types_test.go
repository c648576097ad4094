// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The ipv6ddns Authors

package address

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddressSet_ChosenUsesNumericNotTextualOrder(t *testing.T) {
	set := NewAddressSet([]IPv6Address{
		{IP: mustIP("2001:db8::10"), Scope: ScopeGlobal},
		{IP: mustIP("2001:db8::5"), Scope: ScopeGlobal},
	})
	chosen, ok := set.Chosen()
	assert.True(t, ok)
	assert.Equal(t, "2001:db8::5", chosen, "byte-wise compare must pick ::5 over ::10, unlike string sort")
}

func TestAddressSet_ChosenSingleMember(t *testing.T) {
	set := NewAddressSet([]IPv6Address{{IP: mustIP("2001:db8::1"), Scope: ScopeGlobal}})
	chosen, ok := set.Chosen()
	assert.True(t, ok)
	assert.Equal(t, "2001:db8::1", chosen)
}

func TestAddressSet_ChosenEmpty(t *testing.T) {
	_, ok := AddressSet{}.Chosen()
	assert.False(t, ok)
}

func TestIPv6Address_EligibleLoopback(t *testing.T) {
	loopback := IPv6Address{IP: mustIP("::1"), Scope: ScopeOther}

	assert.False(t, loopback.Eligible(false), "loopback must be ineligible by default")
	assert.True(t, loopback.Eligible(true), "loopback must be eligible when allow_loopback is set, despite its non-global scope")
}

func TestIPv6Address_EligibleGlobalScope(t *testing.T) {
	global := IPv6Address{IP: mustIP("2001:db8::1"), Scope: ScopeGlobal}
	other := IPv6Address{IP: mustIP("fe80::1"), Scope: ScopeOther}

	assert.True(t, global.Eligible(false))
	assert.False(t, other.Eligible(false))
	assert.False(t, other.Eligible(true), "allow_loopback must not make non-loopback link-local addresses eligible")
}

func TestIPv6Address_EligibleFlags(t *testing.T) {
	base := IPv6Address{IP: mustIP("2001:db8::1"), Scope: ScopeGlobal}

	tentative := base
	tentative.Flags = FlagTentative
	assert.False(t, tentative.Eligible(false))

	deprecated := base
	deprecated.Flags = FlagDeprecated
	assert.False(t, deprecated.Eligible(false))

	temporary := base
	temporary.Flags = FlagTemporary
	assert.False(t, temporary.Eligible(false))

	permanent := base
	permanent.Flags = FlagPermanent
	assert.True(t, permanent.Eligible(false))
}
