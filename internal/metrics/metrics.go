// Package metrics keeps connection state synchronized with the
// service and assembles run statistics.
package metrics

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"likebot/internal/content"
	"likebot/internal/logging"
	"likebot/internal/pipeline"
	"likebot/internal/store"
)

// Snapshot is a full set of run and connection statistics.
type Snapshot struct {
	TotalProcessed int64
	Liked          int64
	Skipped        int64
	Errors         int64
	Retries        int64

	TotalLikes     int
	NewConnections int
	GainedYear     int
	GainedMonth    int
	GainedWeek     int
	GainedToday    int
	LostYear       int
	LostMonth      int
	LostWeek       int
	LostToday      int

	LikesPerConnection float64
	Timestamp          time.Time
}

// Aggregator periodically reconciles connections and can produce
// snapshots on demand.
type Aggregator struct {
	store    *store.Store
	svc      content.Service
	tally    *pipeline.Tally
	logger   *slog.Logger
	interval time.Duration

	// now is swapped out in tests for deterministic windows.
	now func() time.Time
}

// NewAggregator builds an aggregator syncing every interval.
func NewAggregator(st *store.Store, svc content.Service, tally *pipeline.Tally, logger *slog.Logger, interval time.Duration) *Aggregator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Aggregator{
		store:    st,
		svc:      svc,
		tally:    tally,
		logger:   logging.NewComponentLogger(logger, "metrics"),
		interval: interval,
		now:      time.Now,
	}
}

// Run syncs on a fixed cadence until the context is canceled. Cycle
// errors are logged, never fatal; a bad cycle must not stop the run.
func (a *Aggregator) Run(ctx context.Context) {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := a.Sync(ctx); err != nil {
				if ctx.Err() != nil {
					return
				}
				a.logger.Warn("metrics cycle failed", logging.Error(err))
				continue
			}
			snap, err := a.Collect(ctx)
			if err != nil {
				a.logger.Warn("metrics collect failed", logging.Error(err))
				continue
			}
			a.logger.Info("progress",
				logging.Int64("processed", snap.TotalProcessed),
				logging.Int64("liked", snap.Liked),
				logging.Int("new_connections", snap.NewConnections))
		}
	}
}

// Sync pulls the current connection roster and reconciles the store.
func (a *Aggregator) Sync(ctx context.Context) error {
	names, err := a.svc.CurrentConnections(ctx)
	if err != nil {
		return fmt.Errorf("fetch connections: %w", err)
	}
	if err := a.store.SyncConnections(ctx, names); err != nil {
		return fmt.Errorf("sync connections: %w", err)
	}
	return nil
}

// Collect assembles a snapshot from the tally and the store.
func (a *Aggregator) Collect(ctx context.Context) (Snapshot, error) {
	now := a.now()
	snap := Snapshot{Timestamp: now.UTC()}

	if a.tally != nil {
		counters := a.tally.Snapshot()
		snap.TotalProcessed = counters.Processed
		snap.Liked = counters.Liked
		snap.Skipped = counters.Skipped
		snap.Errors = counters.Failed
		snap.Retries = counters.Retries
	}

	var err error
	if snap.TotalLikes, err = a.store.TotalLikes(ctx); err != nil {
		return snap, err
	}
	if snap.NewConnections, err = a.store.NewConnections(ctx); err != nil {
		return snap, err
	}

	windows := []struct {
		since  time.Time
		gained *int
		lost   *int
	}{
		{now.AddDate(-1, 0, 0), &snap.GainedYear, &snap.LostYear},
		{now.AddDate(0, -1, 0), &snap.GainedMonth, &snap.LostMonth},
		{now.AddDate(0, 0, -7), &snap.GainedWeek, &snap.LostWeek},
		{startOfDay(now), &snap.GainedToday, &snap.LostToday},
	}
	for _, w := range windows {
		if *w.gained, err = a.store.ConnectionsGainedSince(ctx, w.since); err != nil {
			return snap, err
		}
		if *w.lost, err = a.store.ConnectionsLostSince(ctx, w.since); err != nil {
			return snap, err
		}
	}

	if snap.NewConnections > 0 {
		snap.LikesPerConnection = float64(snap.TotalLikes) / float64(snap.NewConnections)
	}
	return snap, nil
}

func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
