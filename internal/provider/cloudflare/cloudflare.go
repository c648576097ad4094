// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The ipv6ddns Authors

// Package cloudflare is the default DNS Provider Client, wrapping
// github.com/cloudflare/cloudflare-go to implement the narrow
// list/upsert AAAA capability internal/provider describes.
package cloudflare

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	cfapi "github.com/cloudflare/cloudflare-go"

	"github.com/ipv6ddns/ipv6ddns/internal/provider"
)

func init() {
	provider.Register("cloudflare", New)
}

const recordType = "AAAA"

// autoTTL requests Cloudflare's "Auto" TTL, the same sentinel value
// the teacher's DNSRecordParams callers pass for unproxied records.
const autoTTL = 1

// Client implements provider.Provider against a single zone.
type Client struct {
	api    *cfapi.API
	zoneID string
	policy string
}

// New constructs a Client from provider.Options. Registered under the
// name "cloudflare" so internal/provider.New("cloudflare", opts)
// resolves to it.
func New(opts provider.Options) (provider.Provider, error) {
	if opts.APIToken == "" {
		return nil, errors.New("cloudflare: api token is required")
	}
	if opts.ZoneID == "" {
		return nil, errors.New("cloudflare: zone id is required")
	}

	timeout := time.Duration(opts.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	api, err := cfapi.NewWithAPIToken(opts.APIToken, cfapi.HTTPClient(&http.Client{Timeout: timeout}))
	if err != nil {
		return nil, fmt.Errorf("cloudflare: constructing client: %w", err)
	}

	policy := opts.Policy
	if policy == "" {
		policy = "error"
	}

	return &Client{api: api, zoneID: opts.ZoneID, policy: policy}, nil
}

// ListAAAA lists every AAAA record matching name, in the order the
// Cloudflare API returns them.
func (c *Client) ListAAAA(ctx context.Context, name string) ([]provider.Record, error) {
	rc := cfapi.ZoneIdentifier(c.zoneID)
	recs, _, err := c.api.ListDNSRecords(ctx, rc, cfapi.ListDNSRecordsParams{Type: recordType, Name: name})
	if err != nil {
		return nil, wrapError(err)
	}
	out := make([]provider.Record, len(recs))
	for i, r := range recs {
		out[i] = provider.Record{ID: r.ID, Name: r.Name, Address: r.Content}
	}
	return out, nil
}

// UpsertAAAA implements spec.md §4.3's algorithm: zero records
// creates, one record updates-if-different (idempotent otherwise),
// and more than one applies the configured multi-record policy.
func (c *Client) UpsertAAAA(ctx context.Context, name, address string) (string, error) {
	if name == "" {
		return "", provider.ErrInvalidRecordName
	}

	records, err := c.ListAAAA(ctx, name)
	if err != nil {
		return "", err
	}

	switch len(records) {
	case 0:
		return c.create(ctx, name, address)
	case 1:
		if records[0].Address == address {
			return records[0].ID, nil
		}
		return c.update(ctx, records[0].ID, name, address)
	default:
		return c.upsertMulti(ctx, name, address, records)
	}
}

func (c *Client) upsertMulti(ctx context.Context, name, address string, records []provider.Record) (string, error) {
	switch c.policy {
	case "first":
		first := records[0]
		if first.Address == address {
			return first.ID, nil
		}
		return c.update(ctx, first.ID, name, address)

	case "all":
		canonical := records[0].ID
		for _, r := range records {
			if r.Address == address {
				continue
			}
			if _, err := c.update(ctx, r.ID, name, address); err != nil {
				return "", err
			}
		}
		return canonical, nil

	default: // "error", or anything unrecognized
		return "", provider.ErrMultiRecordPolicy
	}
}

func (c *Client) create(ctx context.Context, name, address string) (string, error) {
	rc := cfapi.ZoneIdentifier(c.zoneID)
	rec, err := c.api.CreateDNSRecord(ctx, rc, cfapi.CreateDNSRecordParams{
		Name:    name,
		Type:    recordType,
		Content: address,
		TTL:     autoTTL,
	})
	if err != nil {
		return "", wrapError(err)
	}
	return rec.ID, nil
}

func (c *Client) update(ctx context.Context, id, name, address string) (string, error) {
	rc := cfapi.ZoneIdentifier(c.zoneID)
	rec, err := c.api.UpdateDNSRecord(ctx, rc, cfapi.UpdateDNSRecordParams{
		ID:      id,
		Name:    name,
		Type:    recordType,
		Content: address,
		TTL:     autoTTL,
	})
	if err != nil {
		return "", wrapError(err)
	}
	return rec.ID, nil
}

// statusError adapts *cloudflare.Error's StatusCode field to the
// provider.StatusCoder method interface, so internal/provider can
// classify retriability without importing cloudflare-go.
type statusError struct {
	code int
	err  error
}

func (e statusError) Error() string   { return e.err.Error() }
func (e statusError) Unwrap() error   { return e.err }
func (e statusError) StatusCode() int { return e.code }

func wrapError(err error) error {
	if err == nil {
		return nil
	}
	var cfErr *cfapi.Error
	if errors.As(err, &cfErr) {
		return statusError{code: cfErr.StatusCode, err: err}
	}
	return err
}
