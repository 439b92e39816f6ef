package http

import (
	stdhttp "net/http"

	mw "github.com/go-chi/chi/v5/middleware"
)

// MountProfiler serves chi's pprof bundle under prefix, e.g. /debug/pprof/heap for prefix /debug
// nothing is mounted when enabled is false
func MountProfiler(r Router, prefix string, enabled bool) {
	if !enabled {
		return
	}
	pprof := stdhttp.StripPrefix(prefix, mw.Profiler())
	r.Get(prefix, pprof.ServeHTTP)
	r.Get(prefix+"/*", pprof.ServeHTTP)
}
