// Package notify posts grant events to an optional webhook
//
// Delivery is fire and forget: Notify never blocks the caller, each attempt is
// bounded by a timeout, and failures are logged and dropped.
package notify

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"paygate/internal/core/version"
	perr "paygate/internal/platform/errors"
	"paygate/internal/platform/logger"
)

// SignatureHeader carries hex(HMAC-SHA256(secret, body)) when a secret is configured
const SignatureHeader = "X-Paygate-Signature"

// EventGranted is the only event type today
const EventGranted = "payment.granted"

// Event is the webhook body
type Event struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Reference   string    `json:"reference"`
	Amount      uint64    `json:"amount"`
	AgentShare  uint64    `json:"agentShare"`
	PlatformFee uint64    `json:"platformFee"`
	Sender      string    `json:"sender"`
	Recipient   string    `json:"recipient"`
	Route       string    `json:"route,omitempty"`
	GrantedAt   time.Time `json:"grantedAt"`
}

// Options configures the Notifier
type Options struct {
	URL       string
	Secret    string
	Timeout   time.Duration
	UserAgent string
}

// Notifier delivers events; the zero URL disables it
type Notifier struct {
	opts Options
	http *http.Client
	log  logger.Logger
	wg   sync.WaitGroup
}

// New returns a Notifier; with an empty URL every call is a no op
func New(o Options) *Notifier {
	if o.Timeout <= 0 {
		o.Timeout = 3 * time.Second
	}
	if o.UserAgent == "" {
		o.UserAgent = version.UserAgent()
	}
	return &Notifier{
		opts: o,
		http: &http.Client{Timeout: o.Timeout},
		log:  *logger.Named("notifier"),
	}
}

// Enabled reports whether a webhook URL is configured
func (n *Notifier) Enabled() bool { return n != nil && n.opts.URL != "" }

// Notify sends ev in the background
func (n *Notifier) Notify(ev Event) {
	if !n.Enabled() {
		return
	}
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), n.opts.Timeout)
		defer cancel()
		if err := n.Send(ctx, ev); err != nil {
			n.log.Warn().Err(err).Str("event_id", ev.ID).Str("payment_ref", ev.Reference).Msg("webhook delivery failed")
		}
	}()
}

// Send delivers ev synchronously
func (n *Notifier) Send(ctx context.Context, ev Event) error {
	if !n.Enabled() {
		return nil
	}
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.Type == "" {
		ev.Type = EventGranted
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeJSON, "encode webhook event")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.opts.URL, bytes.NewReader(body))
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnknown, "webhook new request failed")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", n.opts.UserAgent)
	req.Header.Set("X-Paygate-Event", ev.Type)
	req.Header.Set("X-Paygate-Delivery", ev.ID)
	if n.opts.Secret != "" {
		req.Header.Set(SignatureHeader, Sign([]byte(n.opts.Secret), body))
	}

	resp, err := n.http.Do(req)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "webhook post failed")
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 512))
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return perr.WithDetail(perr.Newf(perr.ErrorCodeUnavailable, "webhook rejected event"), "status", int64(resp.StatusCode))
	}
	n.log.Debug().Str("event_id", ev.ID).Int("status", resp.StatusCode).Msg("webhook delivered")
	return nil
}

// Wait blocks until in flight deliveries finish
func (n *Notifier) Wait() {
	if n != nil {
		n.wg.Wait()
	}
}

// Sign computes the signature receivers check against SignatureHeader
func Sign(secret, body []byte) string {
	m := hmac.New(sha256.New, secret)
	m.Write(body)
	return hex.EncodeToString(m.Sum(nil))
}
