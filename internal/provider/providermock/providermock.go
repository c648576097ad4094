// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The ipv6ddns Authors

// Package providermock is a hand-written gomock-style mock of
// internal/provider.Provider, in the shape `mockgen` would produce
// for the two-method interface, for use in reconciler tests.
package providermock

import (
	"context"
	"reflect"

	"go.uber.org/mock/gomock"

	"github.com/ipv6ddns/ipv6ddns/internal/provider"
)

// MockProvider is a mock of the Provider interface.
type MockProvider struct {
	ctrl     *gomock.Controller
	recorder *MockProviderMockRecorder
}

// MockProviderMockRecorder is the mock recorder for MockProvider.
type MockProviderMockRecorder struct {
	mock *MockProvider
}

// NewMockProvider creates a new mock instance.
func NewMockProvider(ctrl *gomock.Controller) *MockProvider {
	mock := &MockProvider{ctrl: ctrl}
	mock.recorder = &MockProviderMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockProvider) EXPECT() *MockProviderMockRecorder {
	return m.recorder
}

// ListAAAA mocks base method.
func (m *MockProvider) ListAAAA(ctx context.Context, name string) ([]provider.Record, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ListAAAA", ctx, name)
	ret0, _ := ret[0].([]provider.Record)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ListAAAA indicates an expected call of ListAAAA.
func (mr *MockProviderMockRecorder) ListAAAA(ctx, name interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ListAAAA", reflect.TypeOf((*MockProvider)(nil).ListAAAA), ctx, name)
}

// UpsertAAAA mocks base method.
func (m *MockProvider) UpsertAAAA(ctx context.Context, name, address string) (string, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "UpsertAAAA", ctx, name, address)
	ret0, _ := ret[0].(string)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// UpsertAAAA indicates an expected call of UpsertAAAA.
func (mr *MockProviderMockRecorder) UpsertAAAA(ctx, name, address interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "UpsertAAAA", reflect.TypeOf((*MockProvider)(nil).UpsertAAAA), ctx, name, address)
}

var _ provider.Provider = (*MockProvider)(nil)
