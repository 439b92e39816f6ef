package httpkit

import (
	"compress/flate"
	"net/http"
	"time"

	phttp "paygate/internal/platform/net/http"
	"paygate/internal/platform/net/middleware"
)

// PaymentPort is re-exported so modules can implement the gate without importing middleware
type PaymentPort = middleware.PaymentPort

// RateLimitOptions re-exports the per client limiter knobs
type RateLimitOptions = middleware.RateLimitOptions

// CommonStack returns a baseline per module middleware slice
// compose the paywall and rate limits per route group
func CommonStack() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		// tracing / correlation
		middleware.RequestID(),
		middleware.RealIP(),
		middleware.RequestContext,

		// safety
		middleware.RecoverJSON,

		// cache / freshness; payment answers must never be cached by a proxy
		middleware.NoCache(),

		// observability
		middleware.AccessLogZerolog(middleware.AccessLogOptions{
			Slow: 500 * time.Millisecond,
			Skip: []string{"/health"},
		}),

		// cross-origin (tweak config in main if needed)
		middleware.CORS(middleware.CORSOptions{}),
		middleware.Compress(flate.BestSpeed),
		middleware.Heartbeat("/health"),
		middleware.StripSlashes(),
		middleware.Timeout(30 * time.Second),
	}
}

// Paywall wires the payment gate to the platform JSON writer
func Paywall(p PaymentPort) func(http.Handler) http.Handler {
	return middleware.RequirePayment(p, phttp.JSON)
}

// Limit wires the per client rate limiter to the platform JSON writer
func Limit(o RateLimitOptions) func(http.Handler) http.Handler {
	return middleware.RateLimit(o, phttp.JSON)
}
