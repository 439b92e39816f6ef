// Package service contains entity read model workflows
package service

import (
	"context"

	"paygate/internal/modkit/repokit"
	perr "paygate/internal/platform/errors"
	"paygate/internal/services/api/entities/domain"
	"paygate/internal/services/api/entities/repo"
)

// Service defines the entities service contract
type Service interface {
	domain.ServicePort
}

// Svc implements the entities service
type Svc struct {
	Repo repo.Repo
}

var _ Service = (*Svc)(nil)

// New constructs an entities service
func New(db repokit.TxRunner, binder repokit.Binder[repo.Repo]) *Svc {
	if binder == nil {
		panic("entities.Service requires a non nil Repo binder")
	}
	return &Svc{Repo: repokit.MustBind(binder, db)}
}

// List returns one page of indexed entities ordered by id
func (s *Svc) List(ctx context.Context, in domain.ListInput) (domain.Page, error) {
	if in.Page < 1 {
		in.Page = 1
	}
	if in.Size < 1 {
		in.Size = domain.DefaultPageSize
	}
	if in.Size > domain.MaxPageSize {
		return domain.Page{}, perr.WithField(perr.Newf(perr.ErrorCodeValidation, "size must not exceed %d", domain.MaxPageSize), "size")
	}

	total, err := s.Repo.Count(ctx, in.Active)
	if err != nil {
		return domain.Page{}, err
	}
	rows, err := s.Repo.List(ctx, in.Active, in.Size, (in.Page-1)*in.Size)
	if err != nil {
		return domain.Page{}, err
	}
	out := make([]domain.Entity, 0, len(rows))
	for _, r := range rows {
		out = append(out, toEntity(r))
	}
	return domain.Page{Items: out, Total: int(total), Page: in.Page, Size: in.Size}, nil
}

// Get returns one entity by id
func (s *Svc) Get(ctx context.Context, id int64) (domain.Entity, error) {
	r, err := s.Repo.Get(ctx, id)
	if err != nil {
		return domain.Entity{}, err
	}
	return toEntity(r), nil
}

// Reputation returns the rating aggregate for id
func (s *Svc) Reputation(ctx context.Context, id int64) (domain.Reputation, error) {
	r, err := s.Repo.Reputation(ctx, id)
	if err != nil {
		return domain.Reputation{}, err
	}
	rep := domain.Reputation{
		EntityID:     r.ID,
		Address:      r.Address,
		TotalRatings: r.TotalRatings,
		RatingSum:    r.RatingSum,
		TotalVolume:  r.TotalVolume,
		UniqueRaters: r.UniqueRaters,
		Distribution: r.Stars,
		IndexedAt:    r.IndexedAt,
	}
	if r.TotalRatings > 0 {
		rep.Average = float64(r.RatingSum) / float64(r.TotalRatings)
	}
	return rep, nil
}

func toEntity(r repo.EntityRow) domain.Entity {
	return domain.Entity{
		ID:            r.ID,
		Address:       r.Address,
		Owner:         r.Owner,
		PayoutAddress: r.PayoutAddress,
		Name:          r.Name,
		Description:   r.Description,
		URI:           r.URI,
		Active:        r.Active,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
		IndexedAt:     r.IndexedAt,
	}
}
