package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/omnisearch/internal/domain"
)

const (
	defaultTimeout  = 5 * time.Second
	defaultMaxTries = 2
	// maxResponseBytes caps a single response body.
	maxResponseBytes = 8 << 20

	// PingMethod is a cheap read used for health checks.
	PingMethod = "sui_getChainIdentifier"
)

// Error is a JSON-RPC application error returned by the node.
type Error struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// Config holds the JSON-RPC endpoint settings.
type Config struct {
	URL        string
	Timeout    time.Duration
	MaxTries   uint
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client is a JSON-RPC 2.0 client over HTTP POST.
type Client struct {
	url      string
	http     *http.Client
	maxTries uint
	nextID   atomic.Uint64
	logger   *zap.Logger
}

// NewClient creates a client for one ledger node.
func NewClient(cfg *Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	maxTries := cfg.MaxTries
	if maxTries == 0 {
		maxTries = defaultMaxTries
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{url: cfg.URL, http: hc, maxTries: maxTries, logger: logger}
}

// URL returns the node endpoint.
func (c *Client) URL() string { return c.url }

type request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *Error          `json:"error"`
}

// Call invokes method with positional params and decodes the result into out.
// A JSON-RPC error is returned as *Error and never retried.
// Transport failures and 5xx responses are retried and wrap domain.ErrBackendUnavailable.
func (c *Client) Call(ctx context.Context, method string, params []any, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if params == nil {
		params = []any{}
	}
	body, err := json.Marshal(request{
		JSONRPC: "2.0",
		ID:      c.nextID.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("encode %s request: %w", method, err)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond
	b.MaxInterval = 500 * time.Millisecond

	result, err := backoff.Retry(ctx, func() (json.RawMessage, error) {
		return c.roundTrip(ctx, method, body)
	}, backoff.WithBackOff(b), backoff.WithMaxTries(c.maxTries))
	if err != nil {
		return err
	}

	if out == nil || len(result) == 0 {
		return nil
	}
	if err := json.Unmarshal(result, out); err != nil {
		return fmt.Errorf("decode %s result: %w", method, err)
	}
	return nil
}

func (c *Client) roundTrip(ctx context.Context, method string, body []byte) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("build %s request: %w", method, err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, backoff.Permanent(ctx.Err())
		}
		c.logger.Debug("RPC transport error", zap.String("method", method), zap.Error(err))
		return nil, fmt.Errorf("call %s: %w: %w", method, domain.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w: %w", method, domain.ErrBackendUnavailable, err)
	}

	if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("call %s: status %d: %w", method, resp.StatusCode, domain.ErrBackendUnavailable)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, backoff.Permanent(
			fmt.Errorf("call %s: status %d: %w", method, resp.StatusCode, domain.ErrBackendUnavailable))
	}

	var rpcResp response
	if err := json.Unmarshal(data, &rpcResp); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("decode %s response: %w", method, err))
	}
	if rpcResp.Error != nil {
		return nil, backoff.Permanent(rpcResp.Error)
	}
	return rpcResp.Result, nil
}

// Ping issues a cheap read against the node.
func (c *Client) Ping(ctx context.Context) error {
	var chainID string
	if err := c.Call(ctx, PingMethod, nil, &chainID); err != nil {
		return fmt.Errorf("ping %s: %w", c.url, err)
	}
	return nil
}

// IsApplicationError reports whether err is a JSON-RPC error returned by the node.
func IsApplicationError(err error) bool {
	var rpcErr *Error
	return errors.As(err, &rpcErr)
}
