package middleware

import (
	"net/http"

	pnet "paygate/internal/platform/net"
)

// PaymentPort is the seam the paywall service implements
type PaymentPort interface {
	// Authorize inspects the proof carried by r and returns the paying account
	Authorize(r *http.Request) (payer string, err error)

	// Challenge renders the rejection for r from the error Authorize returned
	Challenge(r *http.Request, err error) (status int, body any)
}

// RequirePayment lets a request through only once p authorizes it
// a nil port disables the gate
func RequirePayment(p PaymentPort, write func(w http.ResponseWriter, status int, body any)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p == nil {
				next.ServeHTTP(w, r)
				return
			}
			payer, err := p.Authorize(r)
			if err != nil {
				status, body := p.Challenge(r, err)
				write(w, status, body)
				return
			}
			next.ServeHTTP(w, r.WithContext(pnet.WithPayer(r.Context(), payer)))
		})
	}
}
