// Package http provides http transport for the entities read model
package http

import (
	stdhttp "net/http"

	"paygate/internal/modkit/httpkit"
	"paygate/internal/platform/logger"
	"paygate/internal/services/api/entities/domain"
)

// Register mounts entity endpoints; reputation is priced through pay
// base is the path r is mounted under, used when listing priced routes
func Register(r httpkit.Router, s domain.ServicePort, pay httpkit.PaymentPort, base string) {
	h := &handlers{svc: s}

	httpkit.Get(r, "/", h.list)
	httpkit.Get(r, "/{id}", h.get)

	httpkit.PaidAt(r, base, pay, func(pr httpkit.Router) {
		httpkit.Get(pr, "/{id}/reputation", h.reputation)
	})
}

type handlers struct{ svc domain.ServicePort }

// @Summary List indexed entities
// @Tags Entities
// @Produce json
// @Param page query int false "Page, 1 based"
// @Param size query int false "Page size (max 200)"
// @Param active query bool false "Filter on the active flag"
// @Success 200 {array} domain.Entity "ok"
// @Router /entities [get]
func (h *handlers) list(r *stdhttp.Request) (any, error) {
	page, err := httpkit.QueryInt(r, "page", 1, 1, 1_000_000)
	if err != nil {
		return nil, err
	}
	size, err := httpkit.QueryInt(r, "size", domain.DefaultPageSize, 1, domain.MaxPageSize)
	if err != nil {
		return nil, err
	}
	active, err := httpkit.QueryBool(r, "active")
	if err != nil {
		return nil, err
	}

	p, err := h.svc.List(r.Context(), domain.ListInput{Page: page, Size: size, Active: active})
	if err != nil {
		return nil, err
	}
	return httpkit.List(p.Items, p.Total, p.Page, p.Size, ""), nil
}

// @Summary Get one entity
// @Tags Entities
// @Produce json
// @Param id path int true "Entity id"
// @Success 200 {object} domain.Entity "ok"
// @Router /entities/{id} [get]
func (h *handlers) get(r *stdhttp.Request) (any, error) {
	id, err := httpkit.ParamInt64(r, "id")
	if err != nil {
		return nil, err
	}
	return h.svc.Get(r.Context(), id)
}

// @Summary Entity reputation (paid)
// @Tags Entities
// @Produce json
// @Param id path int true "Entity id"
// @Param Authorization header string true "x402 <proof> or Bearer <access token>"
// @Success 200 {object} domain.Reputation "ok"
// @Router /entities/{id}/reputation [get]
func (h *handlers) reputation(r *stdhttp.Request) (any, error) {
	id, err := httpkit.ParamInt64(r, "id")
	if err != nil {
		return nil, err
	}
	rep, err := h.svc.Reputation(r.Context(), id)
	if err != nil {
		return nil, err
	}

	// bearer token reuse carries no payer
	ev := logger.C(r.Context()).Debug().Int64("entity", id)
	if payer, ok := httpkit.Payer(r); ok {
		ev = ev.Str("payer", payer)
	}
	ev.Msg("reputation served")
	return rep, nil
}
