// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The ipv6ddns Authors

package provider

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeStatusError struct {
	code int
}

func (e fakeStatusError) Error() string   { return fmt.Sprintf("status %d", e.code) }
func (e fakeStatusError) StatusCode() int { return e.code }

func TestClassify_PolicyErrorsAreNonRetriable(t *testing.T) {
	assert.Equal(t, NonRetriable, Classify(ErrMultiRecordPolicy))
	assert.Equal(t, NonRetriable, Classify(ErrInvalidRecordName))
	assert.Equal(t, NonRetriable, Classify(fmt.Errorf("wrapped: %w", ErrMultiRecordPolicy)))
}

func TestClassify_StatusCodes(t *testing.T) {
	assert.Equal(t, Retriable, Classify(fakeStatusError{code: 429}))
	assert.Equal(t, Retriable, Classify(fakeStatusError{code: 500}))
	assert.Equal(t, Retriable, Classify(fakeStatusError{code: 503}))
	assert.Equal(t, NonRetriable, Classify(fakeStatusError{code: 401}))
	assert.Equal(t, NonRetriable, Classify(fakeStatusError{code: 404}))
}

func TestClassify_NetworkAndTimeoutErrorsAreRetriable(t *testing.T) {
	assert.Equal(t, Retriable, Classify(context.DeadlineExceeded))
	assert.Equal(t, Retriable, Classify(&net.DNSError{IsTimeout: true}))
}

func TestClassify_UnknownErrorDefaultsToRetriable(t *testing.T) {
	assert.Equal(t, Retriable, Classify(errors.New("something odd")))
}
