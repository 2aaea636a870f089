// Package sweep runs periodic cleanup of expired key/value entries and old
// notification history.
package sweep

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// ExpiredSweeper deletes expired key/value entries.
type ExpiredSweeper interface {
	SweepExpired(ctx context.Context) (int64, error)
}

// Pruner deletes history created before a cutoff.
type Pruner interface {
	Prune(ctx context.Context, before time.Time) (int64, error)
}

// Sweeper prunes history past Retention and sweeps expired KV rows.
type Sweeper struct {
	KV        ExpiredSweeper
	History   Pruner
	Retention time.Duration // 0 keeps history forever
	Log       zerolog.Logger

	now func() time.Time
}

// RunOnce performs one sweep. Failures are logged and do not stop the
// other half of the sweep.
func (s *Sweeper) RunOnce(ctx context.Context) {
	now := time.Now
	if s.now != nil {
		now = s.now
	}

	if s.KV != nil {
		n, err := s.KV.SweepExpired(ctx)
		if err != nil {
			s.Log.Debug().Err(err).Msg("kv sweep failed")
		} else if n > 0 {
			s.Log.Debug().Int64("deleted", n).Msg("kv sweep")
		}
	}

	if s.History != nil && s.Retention > 0 {
		n, err := s.History.Prune(ctx, now().Add(-s.Retention))
		if err != nil {
			s.Log.Debug().Err(err).Msg("history prune failed")
		} else if n > 0 {
			s.Log.Debug().Int64("deleted", n).Msg("history prune")
		}
	}
}

// Start sweeps once immediately and then every interval.
// It blocks until the context is cancelled.
func (s *Sweeper) Start(ctx context.Context, interval time.Duration) {
	s.RunOnce(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}
