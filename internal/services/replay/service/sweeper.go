package service

import (
	"context"
	"time"

	perr "paygate/internal/platform/errors"
)

// SweepOnce deletes durable records older than the TTL
func (s *Svc) SweepOnce(ctx context.Context) (int64, error) {
	cutoff := s.config.Clock().Add(-s.config.TTL)
	n, err := s.repo().DeleteBefore(ctx, cutoff)
	if err != nil {
		return 0, perr.WithOp(err, "replay.Sweep")
	}
	s.log.Info().Int64("deleted", n).Time("cutoff", cutoff).Msg("replay sweep")
	return n, nil
}

// Run sweeps on every tick until ctx is done
// a failed sweep is logged and retried on the next tick
func (s *Svc) Run(ctx context.Context) error {
	if _, err := s.SweepOnce(ctx); err != nil && ctx.Err() == nil {
		s.log.Warn().Err(err).Msg("replay sweep failed")
	}

	t := time.NewTicker(s.config.SweepEvery)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			if _, err := s.SweepOnce(ctx); err != nil && ctx.Err() == nil {
				s.log.Warn().Err(err).Msg("replay sweep failed")
			}
		}
	}
}
