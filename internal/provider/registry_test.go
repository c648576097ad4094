// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The ipv6ddns Authors

package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct{}

func (stubProvider) ListAAAA(context.Context, string) ([]Record, error) { return nil, nil }
func (stubProvider) UpsertAAAA(context.Context, string, string) (string, error) {
	return "stub-id", nil
}

func TestRegistry_RegisterAndNew(t *testing.T) {
	Register("stub-for-test", func(Options) (Provider, error) {
		return stubProvider{}, nil
	})

	p, err := New("stub-for-test", Options{})
	require.NoError(t, err)
	id, err := p.UpsertAAAA(context.Background(), "home.example.com", "2001:db8::1")
	require.NoError(t, err)
	assert.Equal(t, "stub-id", id)
}

func TestRegistry_UnknownProvider(t *testing.T) {
	_, err := New("does-not-exist", Options{})
	require.Error(t, err)
}
