// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The ipv6ddns Authors

package provider

import (
	"context"
	"errors"
	"net"
)

// Retriability says whether the reconciler should back off and try
// again, or treat the failure as a standing condition to surface.
type Retriability bool

const (
	Retriable    Retriability = true
	NonRetriable Retriability = false
)

// Policy errors raised by a Provider implementation itself, rather
// than returned by the remote API.
var (
	// ErrMultiRecordPolicy is returned when more than one AAAA record
	// matches the configured name and multi_record=error.
	ErrMultiRecordPolicy = errors.New("provider: multiple AAAA records present and multi_record policy is \"error\"")

	// ErrInvalidRecordName is returned for a record name the provider
	// rejects outright (empty, malformed).
	ErrInvalidRecordName = errors.New("provider: invalid record name")
)

// StatusCoder is implemented by error types that expose the HTTP
// status code of the failed call (internal/provider/cloudflare wraps
// *cloudflare.Error in an adapter that implements it). Classify uses
// it instead of depending on any one SDK's error type.
type StatusCoder interface {
	StatusCode() int
}

// Classify decides whether err should trigger the reconciler's
// exponential backoff (Retriable) or a long-backoff, operator-visible
// standing error (NonRetriable). Network errors, context deadlines,
// HTTP 429 and 5xx are retriable; HTTP 4xx other than 429 and the
// client's own policy errors are not.
func Classify(err error) Retriability {
	if err == nil {
		return Retriable
	}
	if errors.Is(err, ErrMultiRecordPolicy) || errors.Is(err, ErrInvalidRecordName) {
		return NonRetriable
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Retriable
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return Retriable
	}

	var sc StatusCoder
	if errors.As(err, &sc) {
		code := sc.StatusCode()
		switch {
		case code == 429:
			return Retriable
		case code >= 500:
			return Retriable
		case code >= 400:
			return NonRetriable
		}
	}

	// Unclassified errors (DNS resolution failures, TLS errors, I/O
	// errors without a net.Error wrapper) default to retriable: a
	// transient local condition should not escalate to a standing
	// error the operator has to intervene on.
	return Retriable
}
