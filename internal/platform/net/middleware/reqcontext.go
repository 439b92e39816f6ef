package middleware

import (
	"net"
	"net/http"

	"paygate/internal/platform/logger"
	pnet "paygate/internal/platform/net"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// RequestContext copies the request id and client ip onto the context for logger.C and handlers
// mount after RequestID and RealIP
func RequestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := chimw.GetReqID(r.Context())
		ip := ClientIP(r)
		ctx := logger.WithRequest(r.Context(), reqID, ip)
		ctx = pnet.WithRequest(ctx, reqID, ip)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClientIP returns the host part of RemoteAddr (already rewritten by RealIP when mounted)
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
