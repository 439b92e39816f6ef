package middleware

import (
	"net/http"
	"sync"

	perr "paygate/internal/platform/errors"
	pnet "paygate/internal/platform/net"

	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/time/rate"
)

// RateLimitOptions configures the per client token bucket
type RateLimitOptions struct {
	// RPS is the sustained rate per client, <= 0 disables limiting
	RPS float64
	// Burst is the bucket size, defaults to 1
	Burst int
	// MaxClients caps tracked clients; least recently seen are forgotten first (default 10000)
	MaxClients int
	// Key picks the client identity, defaults to ClientIP
	Key func(*http.Request) string
}

type limiterSet struct {
	mu    sync.Mutex
	cache *lru.Cache
	limit rate.Limit
	burst int
}

func (s *limiterSet) get(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.cache.Get(key); ok {
		return v.(*rate.Limiter)
	}
	l := rate.NewLimiter(s.limit, s.burst)
	s.cache.Add(key, l)
	return l
}

// RateLimit rejects requests over the per client budget with 429 and the standard envelope
func RateLimit(o RateLimitOptions, write func(w http.ResponseWriter, status int, body any)) func(http.Handler) http.Handler {
	if o.RPS <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if o.Burst <= 0 {
		o.Burst = 1
	}
	if o.MaxClients <= 0 {
		o.MaxClients = 10000
	}
	if o.Key == nil {
		o.Key = ClientIP
	}
	cache, err := lru.New(o.MaxClients)
	if err != nil {
		panic(err) // only on size <= 0, excluded above
	}
	set := &limiterSet{cache: cache, limit: rate.Limit(o.RPS), burst: o.Burst}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !set.get(o.Key(r)).Allow() {
				w.Header().Set("Retry-After", "1")
				status, body := pnet.Error(
					perr.Newf(perr.ErrorCodeTooManyRequests, "rate limit exceeded"),
					pnet.RequestID(r.Context()),
				)
				write(w, status, body)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
