package pipeline

import "sync/atomic"

// Tally accumulates per-run counters across workers.
type Tally struct {
	processed atomic.Int64
	liked     atomic.Int64
	skipped   atomic.Int64
	failed    atomic.Int64
	retries   atomic.Int64
}

// TallySnapshot is a point-in-time copy of the run counters.
type TallySnapshot struct {
	Processed int64
	Liked     int64
	Skipped   int64
	Failed    int64
	Retries   int64
}

// Snapshot copies the current counter values.
func (t *Tally) Snapshot() TallySnapshot {
	return TallySnapshot{
		Processed: t.processed.Load(),
		Liked:     t.liked.Load(),
		Skipped:   t.skipped.Load(),
		Failed:    t.failed.Load(),
		Retries:   t.retries.Load(),
	}
}

func (t *Tally) recordRetry() {
	t.retries.Add(1)
}

func (t *Tally) recordOutcome(outcome outcomeKind) {
	t.processed.Add(1)
	switch outcome {
	case outcomeLiked:
		t.liked.Add(1)
	case outcomeSkipped:
		t.skipped.Add(1)
	case outcomeFailed:
		t.failed.Add(1)
	}
}
