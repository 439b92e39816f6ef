package domain

import "context"

// ServicePort is consumed by handlers and other modules
type ServicePort interface {
	List(ctx context.Context, in ListInput) (Page, error)
	Get(ctx context.Context, id int64) (Entity, error)
	Reputation(ctx context.Context, id int64) (Reputation, error)
}
