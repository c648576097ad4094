// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The ipv6ddns Authors

package reconciler

import "time"

const (
	backoffBase    = 5 * time.Second
	backoffMax     = 600 * time.Second
	backoffMaxExp  = 10
	backoffMinFail = 1
)

// nextBackoff computes the delay before the (consecutiveFailures+1)th
// attempt: min(5s * 2^(n-1), 600s), exponent capped at 10. Called with
// n<1 is treated as n=1.
func nextBackoff(consecutiveFailures int) time.Duration {
	n := consecutiveFailures
	if n < backoffMinFail {
		n = backoffMinFail
	}
	if n > backoffMaxExp {
		n = backoffMaxExp
	}
	d := backoffBase * time.Duration(uint64(1)<<uint(n-1))
	if d > backoffMax || d <= 0 {
		return backoffMax
	}
	return d
}
