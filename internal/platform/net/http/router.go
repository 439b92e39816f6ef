package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Handler is the handler shape every module registers
type Handler = func(http.ResponseWriter, *http.Request)

// Router is the routing surface modules mount against, chi stays behind it
type Router interface {
	Get(path string, h Handler)
	Post(path string, h Handler)
	Handle(path string, h http.Handler)
	Use(mw ...func(http.Handler) http.Handler)
	Group(fn func(Router))
	Route(pattern string, fn func(Router))
	Mux() http.Handler
}

type chiRouter struct{ r chi.Router }

// AdaptChi wraps a chi router so callers only see Router
func AdaptChi(r chi.Router) Router { return chiRouter{r: r} }

func (c chiRouter) Get(p string, h Handler)  { c.r.MethodFunc(http.MethodGet, p, h) }
func (c chiRouter) Post(p string, h Handler) { c.r.MethodFunc(http.MethodPost, p, h) }

func (c chiRouter) Handle(p string, h http.Handler)           { c.r.Handle(p, h) }
func (c chiRouter) Use(mw ...func(http.Handler) http.Handler) { c.r.Use(mw...) }

func (c chiRouter) Group(fn func(Router)) {
	c.r.Group(func(g chi.Router) { fn(chiRouter{r: g}) })
}

func (c chiRouter) Route(pattern string, fn func(Router)) {
	c.r.Route(pattern, func(sub chi.Router) { fn(chiRouter{r: sub}) })
}

// Mux exposes the wrapped router as a plain handler
func (c chiRouter) Mux() http.Handler { return c.r }
