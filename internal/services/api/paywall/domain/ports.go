package domain

import (
	"context"
	"net/http"
)

// GatePort is the paywall surface the transport and the middleware use
type GatePort interface {
	Terms(r *http.Request) Challenge
	Verify(ctx context.Context, in VerifyRequest) (VerifyResponse, error)
	Authorize(r *http.Request) (payer string, err error)
	Challenge(r *http.Request, err error) (status int, body any)
}

// GrantLogPort appends grants to the analytics store
type GrantLogPort interface {
	Append(ctx context.Context, g Grant) error
}
