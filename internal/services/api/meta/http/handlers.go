// Package http provides meta endpoints
package http

import (
	stdctx "context"
	"net/http"
	"time"

	"paygate/internal/core/version"
	"paygate/internal/modkit/httpkit"
)

// Pinger is satisfied by adapters that expose Ping
type Pinger interface {
	Ping(stdctx.Context) error
}

// Check names one dependency probed by /ready
// a nil Target reports skipped
type Check struct {
	Name   string
	Target any
}

// Deps are the handler dependencies
type Deps struct {
	ServiceName  string
	StartedAt    time.Time
	Checks       []Check
	ReadyTimeout time.Duration
	PaidRoutes   func() []string
}

type handlers struct {
	deps Deps
}

// Register mounts the meta routes
func Register(r httpkit.Router, d Deps) {
	if d.ReadyTimeout <= 0 {
		d.ReadyTimeout = 2 * time.Second
	}
	if d.PaidRoutes == nil {
		d.PaidRoutes = httpkit.PaidRoutes
	}
	h := &handlers{deps: d}

	httpkit.Get(r, "/health", h.health)
	r.Get("/ready", httpkit.Handle(h.ready))
	httpkit.Get(r, "/version", h.version)
	httpkit.Get(r, "/service", h.service)
}

// HealthResponse is the health payload
type HealthResponse struct {
	OK      bool   `json:"ok"`
	Service string `json:"service"`
	Started string `json:"started"`
	Now     string `json:"now"`
}

// ReadyCheck describes a single dependency check
type ReadyCheck struct {
	Name   string `json:"name"`
	Status string `json:"status"` // ok fail skipped unknown
	Error  string `json:"error,omitempty"`
}

// ReadyResponse summarizes readiness
type ReadyResponse struct {
	Status string       `json:"status"` // ok degraded fail
	Checks []ReadyCheck `json:"checks"`
	Now    string       `json:"now"`
}

// ServiceResponse describes service info
type ServiceResponse struct {
	Name       string   `json:"name"`
	Started    string   `json:"started"`
	Uptime     int64    `json:"uptime"`
	PaidRoutes []string `json:"paid_routes"`
}

func (h *handlers) health(_ *http.Request) (any, error) {
	return HealthResponse{
		OK:      true,
		Service: h.deps.ServiceName,
		Started: h.deps.StartedAt.UTC().Format(time.RFC3339),
		Now:     time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// ready answers 503 when any configured store fails its ping
func (h *handlers) ready(r *http.Request) httpkit.Response {
	ctx, cancel := stdctx.WithTimeout(r.Context(), h.deps.ReadyTimeout)
	defer cancel()

	checks := make([]ReadyCheck, 0, len(h.deps.Checks))
	overall := "ok"
	for _, c := range h.deps.Checks {
		rc := probe(ctx, c)
		switch {
		case rc.Status == "fail":
			overall = "fail"
		case rc.Status != "ok" && rc.Status != "skipped" && overall == "ok":
			overall = "degraded"
		}
		checks = append(checks, rc)
	}

	status := http.StatusOK
	if overall == "fail" {
		status = http.StatusServiceUnavailable
	}
	return httpkit.Response{Status: status, Body: ReadyResponse{
		Status: overall,
		Checks: checks,
		Now:    time.Now().UTC().Format(time.RFC3339),
	}}
}

func probe(ctx stdctx.Context, c Check) ReadyCheck {
	if c.Target == nil {
		return ReadyCheck{Name: c.Name, Status: "skipped"}
	}
	p, ok := c.Target.(Pinger)
	if !ok {
		return ReadyCheck{Name: c.Name, Status: "unknown"}
	}
	if err := p.Ping(ctx); err != nil {
		return ReadyCheck{Name: c.Name, Status: "fail", Error: err.Error()}
	}
	return ReadyCheck{Name: c.Name, Status: "ok"}
}

func (h *handlers) version(_ *http.Request) (any, error) {
	return version.Info(h.deps.ServiceName), nil
}

func (h *handlers) service(_ *http.Request) (any, error) {
	return ServiceResponse{
		Name:       h.deps.ServiceName,
		Started:    h.deps.StartedAt.UTC().Format(time.RFC3339),
		Uptime:     int64(time.Since(h.deps.StartedAt) / time.Second),
		PaidRoutes: h.deps.PaidRoutes(),
	}, nil
}
