// Package ledger is a read-only JSON-RPC 2.0 client for the settlement ledger
//
// Only the three reads paygate needs are exposed. Every call carries its own
// timeout; timeouts and transport failures surface as UpstreamUnavailable and a
// null result surfaces as NotFound so callers can tell "retry later" from "no such thing".
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"paygate/internal/core/version"
	perr "paygate/internal/platform/errors"
	"paygate/internal/platform/logger"
)

const (
	defaultURL        = "https://api.mainnet-beta.solana.com"
	defaultTimeout    = 8 * time.Second
	defaultRetryBase  = 300 * time.Millisecond
	defaultCommitment = "confirmed"
	maxBody           = 8 << 20
)

// Stable reasons for upstream failures
const (
	ReasonUpstreamUnavailable = "UpstreamUnavailable"
	ReasonNotFound            = "NotFound"
)

// Options configures the Client
type Options struct {
	URL        string
	UserAgent  string
	Timeout    time.Duration
	Commitment string

	// MaxRetries applies to transport errors, 429 and 5xx only
	// zero means a single attempt, which is what the verify path wants
	MaxRetries int
	RetryBase  time.Duration
}

// Client talks to one JSON-RPC endpoint
type Client struct {
	http  *http.Client
	opts  Options
	seq   atomic.Uint64
	log   logger.Logger
	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

// NewClient creates a Client with sane defaults
func NewClient(o Options) *Client {
	if o.URL == "" {
		o.URL = defaultURL
	}
	if o.UserAgent == "" {
		o.UserAgent = version.UserAgent()
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.Commitment == "" {
		o.Commitment = defaultCommitment
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.RetryBase <= 0 {
		o.RetryBase = defaultRetryBase
	}
	return &Client{
		// per call deadlines come from the context; this is a backstop
		http:  &http.Client{Timeout: 2 * o.Timeout},
		opts:  o,
		log:   *logger.Named("ledger"),
		now:   time.Now,
		sleep: sleepCtx,
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	ID     uint64          `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

// call posts one request and decodes result into out
// a JSON null result returns NotFound without touching out
func (c *Client) call(ctx context.Context, method string, params []any, out any) error {
	body, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: c.seq.Add(1), Method: method, Params: params})
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeJSON, "ledger encode request")
	}

	for attempt := 0; ; attempt++ {
		raw, retry, err := c.post(ctx, method, body, attempt)
		if err == nil {
			return decodeResult(method, raw, out)
		}
		if !retry || attempt >= c.opts.MaxRetries || ctx.Err() != nil {
			return err
		}
		back := c.backoff(attempt)
		c.log.Warn().Str("method", method).Dur("retry_in", back).Int("attempt", attempt).Msg("ledger call failed retrying")
		if serr := c.sleep(ctx, back); serr != nil {
			return unavailable(serr, "ledger call canceled")
		}
	}
}

// post sends one attempt; retry is true for transport errors, 429 and 5xx
func (c *Client) post(ctx context.Context, method string, body []byte, attempt int) (raw []byte, retry bool, err error) {
	cctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(cctx, http.MethodPost, c.opts.URL, bytes.NewReader(body))
	if err != nil {
		return nil, false, perr.Wrap(err, perr.ErrorCodeUnknown, "ledger new request failed")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.opts.UserAgent)

	start := c.now()
	resp, err := c.http.Do(req)
	lat := c.now().Sub(start)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(cctx.Err(), context.DeadlineExceeded) {
			return nil, true, unavailable(err, "ledger call timed out")
		}
		return nil, true, unavailable(err, "ledger transport failed")
	}
	defer func() { _ = drainAndClose(resp.Body) }()

	c.log.Debug().
		Str("method", method).
		Int("status", resp.StatusCode).
		Int("attempt", attempt).
		Dur("latency", lat).
		Msg("ledger rpc response")

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, true, unavailable(nil, "ledger rate limited")
	case resp.StatusCode >= 500:
		return nil, true, unavailable(nil, "ledger server error")
	default:
		return nil, false, perr.WithDetail(unavailable(nil, "ledger unexpected status"), "status", int64(resp.StatusCode))
	}

	raw, err = io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, true, unavailable(err, "ledger read body failed")
	}
	return raw, false, nil
}

func decodeResult(method string, raw []byte, out any) error {
	var env rpcResponse
	if err := json.Unmarshal(raw, &env); err != nil {
		return unavailable(err, "ledger malformed response")
	}
	if env.Error != nil {
		return perr.WithDetail(unavailable(nil, "ledger "+method+" rpc error"), "rpc_code", int64(env.Error.Code))
	}
	if len(env.Result) == 0 || bytes.Equal(bytes.TrimSpace(env.Result), []byte("null")) {
		return notFound(method)
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return unavailable(err, "ledger malformed result")
	}
	return nil
}

func notFound(method string) error {
	return perr.Kind(perr.ErrorCodeNotFound, ReasonNotFound, "ledger "+method+" not found")
}

func unavailable(orig error, msg string) error {
	if orig == nil {
		return perr.Kind(perr.ErrorCodeUnavailable, ReasonUpstreamUnavailable, msg)
	}
	return perr.WrapKind(orig, perr.ErrorCodeUnavailable, ReasonUpstreamUnavailable, msg)
}

func (c *Client) backoff(attempt int) time.Duration {
	d := c.opts.RetryBase << uint(attempt)
	if d > 10*time.Second || d <= 0 {
		d = 10 * time.Second
	}
	return d
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func drainAndClose(rc io.ReadCloser) error {
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, 512))
	return rc.Close()
}

// IsUnavailable reports whether err means the ledger could not be reached in time
func IsUnavailable(err error) bool { return perr.IsReason(err, ReasonUpstreamUnavailable) }

// IsNotFound reports whether the ledger answered with no such object
func IsNotFound(err error) bool { return perr.IsReason(err, ReasonNotFound) }
