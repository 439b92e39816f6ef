package modkit

import (
	"net/http"
	"slices"

	"paygate/internal/modkit/httpkit"
	str "paygate/internal/platform/strings"
)

// Option adjusts how a module is named and mounted
type Option func(*Built)

// Built is the resolved setup a module keeps after New
type Built struct {
	Name   string
	Prefix string
	Mw     []func(http.Handler) http.Handler

	// Ports holds whatever the caller injected with WithPorts; modules assert their own Needs type
	Ports any
}

// WithName names the module for logs
func WithName(name string) Option { return func(b *Built) { b.Name = name } }

// WithPrefix sets the path the module mounts under
func WithPrefix(prefix string) Option { return func(b *Built) { b.Prefix = prefix } }

// WithMiddlewares appends per module middleware, applied in order
func WithMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return func(b *Built) { b.Mw = append(b.Mw, mw...) }
}

// WithPorts injects the ports another module exposes
func WithPorts[T any](p T) Option { return func(b *Built) { b.Ports = p } }

// Build applies opts in order; later options win
// the name and prefix are required, a module without them panics here rather than at mount time
func Build(opts ...Option) Built {
	var b Built
	for _, o := range opts {
		o(&b)
	}
	b.Name = str.MustString(b.Name, "module name")
	b.Prefix = str.MustPrefix(b.Prefix)
	b.Mw = slices.Clone(b.Mw)
	return b
}

// Needs asserts the injected ports as T
func Needs[T any](b Built) (T, bool) {
	t, ok := b.Ports.(T)
	return t, ok
}

// Mount opens a subrouter at Prefix, applies Mw, then hands it to register
func (b Built) Mount(r httpkit.Router, register func(httpkit.Router)) {
	r.Route(b.Prefix, func(sub httpkit.Router) {
		if len(b.Mw) > 0 {
			sub.Use(b.Mw...)
		}
		if register != nil {
			register(sub)
		}
	})
}
