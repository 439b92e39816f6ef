package middleware

import (
	"net/http"
	"slices"
	"time"

	"paygate/internal/platform/logger"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// AccessLogOptions configures the zerolog access log
type AccessLogOptions struct {
	// Slow logs requests at or above this duration at warn; zero disables it
	Slow time.Duration
	// Skip lists exact paths never logged, e.g. probes
	Skip []string
}

// accessLevel picks the level for a finished request
// a 402 is the normal first leg of a paid request and stays at info
func accessLevel(status int, elapsed, slow time.Duration) zerolog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zerolog.ErrorLevel
	case slow > 0 && elapsed >= slow:
		return zerolog.WarnLevel
	}
	return zerolog.InfoLevel
}

// AccessLogZerolog logs one line per request with route, status, elapsed and bytes written
func AccessLogZerolog(opt AccessLogOptions) func(http.Handler) http.Handler {
	skip := slices.Clone(opt.Skip)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if slices.Contains(skip, r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			elapsed := time.Since(start)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			e := logger.C(r.Context()).WithLevel(accessLevel(status, elapsed, opt.Slow))
			if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
				e = e.Str("route", rc.RoutePattern())
			}
			e.Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", status).
				Dur("elapsed", elapsed).
				Int("bytes", ww.BytesWritten()).
				Msg("request done")
		})
	}
}
