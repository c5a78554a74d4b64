// Package ledger implements category probes against a ledger node's JSON-RPC API.
package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"

	"github.com/kailas-cloud/omnisearch/internal/domain"
	"github.com/kailas-cloud/omnisearch/internal/domain/category"
	"github.com/kailas-cloud/omnisearch/internal/transport/rpc"
	"github.com/kailas-cloud/omnisearch/internal/usecase/resolve"
)

// RPC methods used by the probes.
const (
	MethodGetOwnedObjects     = "suix_getOwnedObjects"
	MethodGetObject           = "sui_getObject"
	MethodGetTransactionBlock = "sui_getTransactionBlock"
)

const (
	maxHexLen    = 64
	digestLength = 32
)

// caller is the consumer interface for the JSON-RPC client (ISP).
type caller interface {
	Call(ctx context.Context, method string, params []any, out any) error
}

// NewProbes returns one probe per category backed by c.
func NewProbes(c caller) map[category.Category]resolve.Prober {
	return map[category.Category]resolve.Prober{
		category.Address:     &AddressProbe{rpc: c},
		category.Object:      &ObjectProbe{rpc: c},
		category.Transaction: &TransactionProbe{rpc: c},
	}
}

// AddressProbe matches an account address that owns at least one object.
type AddressProbe struct {
	rpc caller
}

// Probe implements resolve.Prober.
func (p *AddressProbe) Probe(ctx context.Context, input string) (domain.Payload, error) {
	addr, ok := hexID(input)
	if !ok {
		return nil, nil
	}

	var page struct {
		Data []struct {
			Data *struct {
				ObjectID string `json:"objectId"`
			} `json:"data"`
		} `json:"data"`
		HasNextPage bool `json:"hasNextPage"`
	}
	err := p.rpc.Call(ctx, MethodGetOwnedObjects, []any{addr, nil, nil, 1}, &page)
	if err != nil {
		return absentOnApplicationError(MethodGetOwnedObjects, err)
	}
	if len(page.Data) == 0 {
		return nil, nil
	}

	return domain.Payload{
		"id":          addr,
		"has_objects": true,
		"more":        page.HasNextPage,
	}, nil
}

// ObjectProbe matches an existing object id.
type ObjectProbe struct {
	rpc caller
}

// Probe implements resolve.Prober.
func (p *ObjectProbe) Probe(ctx context.Context, input string) (domain.Payload, error) {
	id, ok := hexID(input)
	if !ok {
		return nil, nil
	}

	var resp struct {
		Data *struct {
			ObjectID string         `json:"objectId"`
			Version  string         `json:"version"`
			Digest   string         `json:"digest"`
			Type     string         `json:"type"`
			Owner    map[string]any `json:"owner"`
		} `json:"data"`
	}
	opts := map[string]any{"showType": true, "showOwner": true}
	if err := p.rpc.Call(ctx, MethodGetObject, []any{id, opts}, &resp); err != nil {
		return absentOnApplicationError(MethodGetObject, err)
	}
	if resp.Data == nil || resp.Data.ObjectID == "" {
		return nil, nil
	}

	payload := domain.Payload{
		"id":      resp.Data.ObjectID,
		"version": resp.Data.Version,
		"digest":  resp.Data.Digest,
	}
	if resp.Data.Type != "" {
		payload["type"] = resp.Data.Type
	}
	if resp.Data.Owner != nil {
		payload["owner"] = resp.Data.Owner
	}
	return payload, nil
}

// TransactionProbe matches an executed transaction by its base58 digest.
type TransactionProbe struct {
	rpc caller
}

// Probe implements resolve.Prober.
func (p *TransactionProbe) Probe(ctx context.Context, input string) (domain.Payload, error) {
	digest := strings.TrimSpace(input)
	if !IsDigest(digest) {
		return nil, nil
	}

	var resp struct {
		Digest      string `json:"digest"`
		Checkpoint  string `json:"checkpoint"`
		TimestampMs string `json:"timestampMs"`
	}
	if err := p.rpc.Call(ctx, MethodGetTransactionBlock, []any{digest, map[string]any{}}, &resp); err != nil {
		return absentOnApplicationError(MethodGetTransactionBlock, err)
	}
	if resp.Digest == "" {
		return nil, nil
	}

	payload := domain.Payload{"id": resp.Digest}
	if resp.Checkpoint != "" {
		payload["checkpoint"] = resp.Checkpoint
	}
	if resp.TimestampMs != "" {
		payload["timestamp_ms"] = resp.TimestampMs
	}
	return payload, nil
}

// IsDigest reports whether s is a base58 string decoding to a 32-byte digest.
func IsDigest(s string) bool {
	if s == "" {
		return false
	}
	raw, err := base58.Decode(s)
	if err != nil {
		return false
	}
	return len(raw) == digestLength
}

// hexID accepts 0x followed by 1 to 64 hex digits and returns the trimmed id.
func hexID(input string) (string, bool) {
	s := strings.TrimSpace(input)
	if len(s) < 3 || (s[:2] != "0x" && s[:2] != "0X") {
		return "", false
	}
	body := s[2:]
	if len(body) > maxHexLen {
		return "", false
	}
	for i := 0; i < len(body); i++ {
		if !isHex(body[i]) {
			return "", false
		}
	}
	return s, true
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// absentOnApplicationError treats a node-side rejection (not found, invalid params) as absence.
func absentOnApplicationError(method string, err error) (domain.Payload, error) {
	if rpc.IsApplicationError(err) {
		return nil, nil
	}
	return nil, fmt.Errorf("query %s: %w", method, err)
}
