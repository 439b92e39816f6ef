// Package accesstoken mints and checks stateless bearer tokens for verified payments
//
// A token is base64(JSON(payload)) + "." + hex(HMAC-SHA256(secret, JSON(payload))).
// Nothing is stored; a token is valid when the tag recomputes under the process secret.
package accesstoken

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	perr "paygate/internal/platform/errors"
)

// ReasonTokenInvalid is the only failure Verify reports
const ReasonTokenInvalid = "TokenInvalid"

// MinSecretLen is the shortest accepted signing secret
const MinSecretLen = 32

// Payload is the signed content of a token
type Payload struct {
	Reference string `json:"reference"`
	Amount    uint64 `json:"amount"`
	IssuedAt  int64  `json:"issuedAt"`
	Recipient string `json:"recipient"`
}

// Issuer signs and checks tokens with one secret for the life of the process
type Issuer struct {
	secret []byte
	now    func() time.Time
	maxAge time.Duration
}

// Option tunes an Issuer
type Option func(*Issuer)

// WithClock injects the time source used for IssuedAt and age checks
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) {
		if now != nil {
			i.now = now
		}
	}
}

// WithMaxAge rejects tokens issued longer ago than d; zero disables the check
func WithMaxAge(d time.Duration) Option {
	return func(i *Issuer) { i.maxAge = d }
}

// New returns an Issuer bound to a copy of secret
func New(secret []byte, opts ...Option) (*Issuer, error) {
	if len(secret) < MinSecretLen {
		return nil, perr.WithField(perr.InvalidArgf("token secret must be at least %d bytes", MinSecretLen), "token_secret")
	}
	i := &Issuer{secret: append([]byte(nil), secret...), now: time.Now}
	for _, o := range opts {
		o(i)
	}
	return i, nil
}

// GenerateSecret returns MinSecretLen random bytes for processes started without a configured secret
func GenerateSecret() ([]byte, error) {
	b := make([]byte, MinSecretLen)
	if _, err := rand.Read(b); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnknown, "generate token secret")
	}
	return b, nil
}

// Issue mints a token for a verified payment
func (i *Issuer) Issue(reference string, amount uint64, recipient string) (string, Payload, error) {
	p := Payload{
		Reference: reference,
		Amount:    amount,
		IssuedAt:  i.now().Unix(),
		Recipient: recipient,
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return "", Payload{}, perr.Wrap(err, perr.ErrorCodeJSON, "encode token payload")
	}
	return base64.StdEncoding.EncodeToString(raw) + "." + i.tag(raw), p, nil
}

// Verify returns the payload of a genuine token
// every failure yields the same TokenInvalid error
func (i *Issuer) Verify(token string) (Payload, error) {
	body, sig, ok := strings.Cut(token, ".")
	if !ok || body == "" || sig == "" {
		return Payload{}, invalid()
	}
	raw, err := base64.StdEncoding.Strict().DecodeString(body)
	if err != nil || base64.StdEncoding.EncodeToString(raw) != body {
		return Payload{}, invalid()
	}
	if !hmac.Equal([]byte(i.tag(raw)), []byte(sig)) {
		return Payload{}, invalid()
	}

	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil || p.Reference == "" {
		return Payload{}, invalid()
	}
	if i.maxAge > 0 && i.now().Sub(time.Unix(p.IssuedAt, 0)) > i.maxAge {
		return Payload{}, invalid()
	}
	return p, nil
}

func (i *Issuer) tag(raw []byte) string {
	m := hmac.New(sha256.New, i.secret)
	m.Write(raw)
	return hex.EncodeToString(m.Sum(nil))
}

func invalid() error {
	return perr.Kind(perr.ErrorCodeUnauthorized, ReasonTokenInvalid, "invalid access token")
}
