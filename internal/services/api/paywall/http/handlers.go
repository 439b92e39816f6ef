// Package http provides http transport for the paywall
package http

import (
	stdhttp "net/http"

	"paygate/internal/modkit/httpkit"
	perr "paygate/internal/platform/errors"
	"paygate/internal/platform/net/http/bind"
	"paygate/internal/services/api/paywall/domain"
	verify "paygate/internal/services/verify/domain"
)

// Options tune the transport
type Options struct {
	VerifyLimit httpkit.RateLimitOptions
}

// Register mounts paywall endpoints on the given router
func Register(r httpkit.Router, s domain.GatePort, o Options) {
	h := &handlers{svc: s}

	// payment terms for clients that want to pay before calling a priced route
	httpkit.Get(r, "/terms", h.terms)

	// verification submission, rate limited per client
	r.Group(func(g httpkit.Router) {
		g.Use(httpkit.Limit(o.VerifyLimit))
		httpkit.Post(g, "/verify", h.verify)
	})
}

type handlers struct{ svc domain.GatePort }

// fieldReasons maps a rejected body field to its stable reason
var fieldReasons = map[string]string{
	"reference": verify.ReasonInvalidReferenceFormat,
	"recipient": domain.ReasonInvalidRecipientAddress,
	"amount":    domain.ReasonInvalidAmount,
}

// @Summary Payment terms
// @Tags Paywall
// @Produce json
// @Success 200 {object} domain.Challenge "ok"
// @Router /paywall/terms [get]
func (h *handlers) terms(r *stdhttp.Request) (any, error) {
	return h.svc.Terms(r), nil
}

// @Summary Verify a payment and mint an access token
// @Tags Paywall
// @Accept json
// @Produce json
// @Param payload body domain.VerifyRequest true "Payment"
// @Success 200 {object} domain.VerifyResponse "ok"
// @Router /paywall/verify [post]
func (h *handlers) verify(r *stdhttp.Request) (any, error) {
	in, err := bind.ParseJSON[domain.VerifyRequest](r)
	if err != nil {
		return nil, withFieldReason(err)
	}
	return h.svc.Verify(r.Context(), in)
}

func withFieldReason(err error) error {
	e, ok := perr.As(err)
	if !ok {
		return err
	}
	if reason, ok := fieldReasons[e.Field()]; ok {
		return perr.WithReason(err, reason)
	}
	return err
}
