// Package scavenger implements the retention scavenger (C3): a
// periodic task that deletes notes past their retention window.
//
// Grounded on the teacher's pkg/reconciler.Reconciler ticker-loop
// shape, generalized from cluster-state reconciliation to a single
// delete_older_than sweep.
package scavenger

import (
	"context"
	"time"

	"github.com/cuemby/notesd/internal/storage"
	"github.com/rs/zerolog"
)

// DefaultRetention is the default note lifetime (spec §3 "Lifecycle").
const DefaultRetention = 30 * 24 * time.Hour

// DefaultPeriod is the default interval between sweeps (spec §4.3).
const DefaultPeriod = time.Hour

// SweepObserver receives a callback after every completed sweep, used
// by C8 to expose the time of the last sweep and the running count of
// swept notes in the stats snapshot.
type SweepObserver interface {
	ObserveSweep(deleted int, at time.Time)
}

// Scavenger runs DeleteOlderThan on a fixed period until Stop is
// called. It never surfaces errors to callers; failures are logged
// and retried next tick (spec §4.3, §7).
type Scavenger struct {
	store     storage.Store
	retention time.Duration
	period    time.Duration
	observer  SweepObserver
	log       zerolog.Logger

	stopCh chan struct{}
	doneCh chan struct{}
}

// New creates a Scavenger. retention<=0 uses DefaultRetention;
// period<=0 uses DefaultPeriod.
func New(store storage.Store, retention, period time.Duration, observer SweepObserver, log zerolog.Logger) *Scavenger {
	if retention <= 0 {
		retention = DefaultRetention
	}
	if period <= 0 {
		period = DefaultPeriod
	}
	return &Scavenger{
		store:     store,
		retention: retention,
		period:    period,
		observer:  observer,
		log:       log,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start launches the sweep loop in its own goroutine.
func (s *Scavenger) Start(ctx context.Context) {
	go s.run(ctx)
}

// Stop signals the loop to exit and waits for the current sweep (if
// any) to finish or be interrupted via ctx. A partial sweep is always
// safe: DeleteOlderThan is idempotent, so the next tick (or the next
// process) simply finishes the job.
func (s *Scavenger) Stop() {
	close(s.stopCh)
	<-s.doneCh
}

func (s *Scavenger) run(ctx context.Context) {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.period)
	defer ticker.Stop()

	s.log.Info().Dur("period", s.period).Dur("retention", s.retention).Msg("scavenger started")

	for {
		select {
		case <-ticker.C:
			s.sweep(ctx)
		case <-s.stopCh:
			s.log.Info().Msg("scavenger stopped")
			return
		case <-ctx.Done():
			s.log.Info().Msg("scavenger context cancelled")
			return
		}
	}
}

func (s *Scavenger) sweep(ctx context.Context) {
	cutoff := time.Now().Add(-s.retention).UnixMilli()

	deleted, err := s.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		s.log.Error().Err(err).Msg("retention sweep failed, will retry next tick")
		return
	}

	at := time.Now()
	if s.observer != nil {
		s.observer.ObserveSweep(deleted, at)
	}
	if deleted > 0 {
		s.log.Info().Int("deleted", deleted).Msg("retention sweep completed")
	}
}
