package httpkit

import (
	"net/http"
	"slices"
	"strings"
	"sync"
)

var (
	paidMu     sync.Mutex
	paidRoutes []string
)

// Paid groups routes behind the payment gate and records them so meta can list priced endpoints
// paths are recorded relative to the router fn receives
func Paid(r Router, p PaymentPort, fn func(Router)) { PaidAt(r, "", p, fn) }

// PaidAt is Paid for a router mounted under base; recorded paths carry the base
func PaidAt(r Router, base string, p PaymentPort, fn func(Router)) {
	r.Group(func(gr Router) {
		gr.Use(Paywall(p))
		fn(&paidRouter{Router: gr, base: base})
	})
}

// PaidRoutes returns "METHOD path" for every route mounted through Paid, sorted
func PaidRoutes() []string {
	paidMu.Lock()
	defer paidMu.Unlock()
	out := slices.Clone(paidRoutes)
	slices.Sort(out)
	return slices.Compact(out)
}

func markPaid(method, base, path string) {
	paidMu.Lock()
	paidRoutes = append(paidRoutes, method+" "+joinPath(base, path))
	paidMu.Unlock()
}

type paidRouter struct {
	Router
	base string
}

func joinPath(a, b string) string {
	if a == "" {
		if strings.HasPrefix(b, "/") {
			return b
		}
		return "/" + b
	}
	return strings.TrimSuffix(a, "/") + "/" + strings.TrimPrefix(b, "/")
}

func (s *paidRouter) Route(prefix string, fn func(Router)) {
	child := &paidRouter{base: joinPath(s.base, prefix)}
	s.Router.Route(prefix, func(sub Router) {
		child.Router = sub
		fn(child)
	})
}

func (s *paidRouter) Handle(path string, h http.Handler) {
	markPaid("ANY", s.base, path)
	s.Router.Handle(path, h)
}

func (s *paidRouter) Get(path string, h Handler) {
	markPaid(http.MethodGet, s.base, path)
	s.Router.Get(path, h)
}

func (s *paidRouter) Post(path string, h Handler) {
	markPaid(http.MethodPost, s.base, path)
	s.Router.Post(path, h)
}
