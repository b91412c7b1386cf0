package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"likebot/internal/config"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	s, err := Open(context.Background(), &cfg)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return s
}

func TestOpenHonorsCanceledContext(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Open(ctx, &cfg); !errors.Is(err, context.Canceled) {
		t.Fatalf("Open(canceled ctx) error = %v, want context.Canceled", err)
	}
}

func TestEnqueueIgnoresDuplicates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	total, err := s.Enqueue(ctx, []string{"alice", "bob", ""})
	if err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}
	if total != 2 {
		t.Fatalf("Enqueue() total = %d, want 2", total)
	}

	total, err = s.Enqueue(ctx, []string{"bob", "carol"})
	if err != nil {
		t.Fatalf("Enqueue() second call error = %v", err)
	}
	if total != 3 {
		t.Fatalf("Enqueue() total after second call = %d, want 3", total)
	}
}

func TestClaimPendingFiltersTerminalStatuses(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"alice", "bob", "carol", "dave"} {
		if _, err := s.Enqueue(ctx, []string{name}); err != nil {
			t.Fatalf("Enqueue(%q) error = %v", name, err)
		}
	}

	if err := s.UpdateStatus(ctx, "bob", StatusLiked, 0); err != nil {
		t.Fatalf("UpdateStatus(bob) error = %v", err)
	}
	if err := s.UpdateStatus(ctx, "carol", StatusPending, 0); err != nil {
		t.Fatalf("UpdateStatus(carol) error = %v", err)
	}
	if err := s.UpdateStatus(ctx, "dave", StatusRetry, 2); err != nil {
		t.Fatalf("UpdateStatus(dave) error = %v", err)
	}

	names, err := s.ClaimPending(ctx)
	if err != nil {
		t.Fatalf("ClaimPending() error = %v", err)
	}
	want := []string{"alice", "carol"}
	if len(names) != len(want) {
		t.Fatalf("ClaimPending() = %v, want %v", names, want)
	}
	for i, name := range want {
		if names[i] != name {
			t.Fatalf("ClaimPending()[%d] = %q, want %q", i, names[i], name)
		}
	}
}

func TestClaimPendingReoffersRetryAfterCooldown(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Enqueue(ctx, []string{"alice"}); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}
	if err := s.UpdateStatus(ctx, "alice", StatusRetry, 1); err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}

	names, err := s.ClaimPending(ctx)
	if err != nil {
		t.Fatalf("ClaimPending() error = %v", err)
	}
	if len(names) != 0 {
		t.Fatalf("ClaimPending() before cooldown = %v, want empty", names)
	}

	stale := formatTime(time.Now().Add(-2 * retryCooldown))
	if _, err := s.db.Exec(`UPDATE processing_records SET processed_at = ?`, stale); err != nil {
		t.Fatalf("backdate processed_at: %v", err)
	}

	names, err = s.ClaimPending(ctx)
	if err != nil {
		t.Fatalf("ClaimPending() after cooldown error = %v", err)
	}
	if len(names) != 1 || names[0] != "alice" {
		t.Fatalf("ClaimPending() after cooldown = %v, want [alice]", names)
	}
}

func TestUpdateStatusStampsLastChecked(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Enqueue(ctx, []string{"alice"}); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}
	if err := s.UpdateStatus(ctx, "alice", StatusSkipped, 0); err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}

	target, err := s.GetTarget(ctx, "alice")
	if err != nil {
		t.Fatalf("GetTarget() error = %v", err)
	}
	if target.LastChecked == nil {
		t.Fatal("GetTarget() LastChecked = nil, want timestamp")
	}

	status, err := s.GetStatus(ctx, "alice")
	if err != nil {
		t.Fatalf("GetStatus() error = %v", err)
	}
	if status != StatusSkipped {
		t.Fatalf("GetStatus() = %q, want %q", status, StatusSkipped)
	}
}

func TestUpdateStatusRejectsUnknownStatusAndTarget(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.UpdateStatus(ctx, "ghost", StatusLiked, 0); !errors.Is(err, ErrTargetNotFound) {
		t.Fatalf("UpdateStatus(ghost) error = %v, want ErrTargetNotFound", err)
	}
	if _, err := s.Enqueue(ctx, []string{"alice"}); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}
	if err := s.UpdateStatus(ctx, "alice", Status("bogus"), 0); err == nil {
		t.Fatal("UpdateStatus(bogus) error = nil, want error")
	}
}

func TestRecordActionAppendsLikeAndStatus(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Enqueue(ctx, []string{"alice"}); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}
	if err := s.RecordAction(ctx, "alice", "media-1", false, StatusLiked, 0); err != nil {
		t.Fatalf("RecordAction() error = %v", err)
	}

	total, err := s.TotalLikes(ctx)
	if err != nil {
		t.Fatalf("TotalLikes() error = %v", err)
	}
	if total != 1 {
		t.Fatalf("TotalLikes() = %d, want 1", total)
	}

	status, err := s.GetStatus(ctx, "alice")
	if err != nil {
		t.Fatalf("GetStatus() error = %v", err)
	}
	if status != StatusLiked {
		t.Fatalf("GetStatus() = %q, want %q", status, StatusLiked)
	}
}

func TestRetryCountDefaultsToZero(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Enqueue(ctx, []string{"alice"}); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}
	count, err := s.RetryCount(ctx, "alice")
	if err != nil {
		t.Fatalf("RetryCount() error = %v", err)
	}
	if count != 0 {
		t.Fatalf("RetryCount() = %d, want 0", count)
	}

	if err := s.UpdateStatus(ctx, "alice", StatusRetry, 3); err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}
	count, err = s.RetryCount(ctx, "alice")
	if err != nil {
		t.Fatalf("RetryCount() after update error = %v", err)
	}
	if count != 3 {
		t.Fatalf("RetryCount() = %d, want 3", count)
	}
}

func TestSetExternalRef(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SetExternalRef(ctx, "ghost", 42); !errors.Is(err, ErrTargetNotFound) {
		t.Fatalf("SetExternalRef(ghost) error = %v, want ErrTargetNotFound", err)
	}

	if _, err := s.Enqueue(ctx, []string{"alice"}); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}
	if err := s.SetExternalRef(ctx, "alice", 42); err != nil {
		t.Fatalf("SetExternalRef() error = %v", err)
	}
	target, err := s.GetTarget(ctx, "alice")
	if err != nil {
		t.Fatalf("GetTarget() error = %v", err)
	}
	if target.ExternalRef == nil || *target.ExternalRef != 42 {
		t.Fatalf("GetTarget() ExternalRef = %v, want 42", target.ExternalRef)
	}
}

func TestSyncConnectionsPreservesFirstConfirmedAt(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Enqueue(ctx, []string{"alice", "bob"}); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}
	if err := s.RecordAction(ctx, "alice", "media-1", false, StatusLiked, 0); err != nil {
		t.Fatalf("RecordAction() error = %v", err)
	}

	if err := s.SyncConnections(ctx, []string{"alice"}); err != nil {
		t.Fatalf("SyncConnections() error = %v", err)
	}
	current, err := s.CurrentConnections(ctx)
	if err != nil {
		t.Fatalf("CurrentConnections() error = %v", err)
	}
	if current != 1 {
		t.Fatalf("CurrentConnections() = %d, want 1", current)
	}
	gained, err := s.NewConnections(ctx)
	if err != nil {
		t.Fatalf("NewConnections() error = %v", err)
	}
	if gained != 1 {
		t.Fatalf("NewConnections() = %d, want 1", gained)
	}

	var firstBefore string
	if err := s.db.QueryRow(
		`SELECT first_confirmed_at FROM connection_status WHERE currently_confirmed = 1`).Scan(&firstBefore); err != nil {
		t.Fatalf("read first_confirmed_at: %v", err)
	}

	// Drop and regain: first_confirmed_at must survive both syncs.
	if err := s.SyncConnections(ctx, nil); err != nil {
		t.Fatalf("SyncConnections(drop) error = %v", err)
	}
	lost, err := s.ConnectionsLostSince(ctx, time.Now().Add(-time.Minute))
	if err != nil {
		t.Fatalf("ConnectionsLostSince() error = %v", err)
	}
	if lost != 1 {
		t.Fatalf("ConnectionsLostSince() = %d, want 1", lost)
	}

	if err := s.SyncConnections(ctx, []string{"alice"}); err != nil {
		t.Fatalf("SyncConnections(regain) error = %v", err)
	}
	var firstAfter string
	if err := s.db.QueryRow(
		`SELECT first_confirmed_at FROM connection_status WHERE currently_confirmed = 1`).Scan(&firstAfter); err != nil {
		t.Fatalf("read first_confirmed_at after regain: %v", err)
	}
	if firstAfter != firstBefore {
		t.Fatalf("first_confirmed_at changed on regain: %q -> %q", firstBefore, firstAfter)
	}
}

func TestCountByStatusTreatsUnrecordedAsPending(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Enqueue(ctx, []string{"alice", "bob", "carol"}); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}
	if err := s.UpdateStatus(ctx, "alice", StatusLiked, 0); err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}
	if err := s.UpdateStatus(ctx, "bob", StatusFailed, 5); err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}

	counts, err := s.CountByStatus(ctx)
	if err != nil {
		t.Fatalf("CountByStatus() error = %v", err)
	}
	if counts.Total != 3 || counts.Liked != 1 || counts.Failed != 1 || counts.Pending != 1 {
		t.Fatalf("CountByStatus() = %+v", counts)
	}
}

func TestResetClearsAllTables(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Enqueue(ctx, []string{"alice"}); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}
	if err := s.Reset(ctx); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}

	total, err := s.Enqueue(ctx, nil)
	if err != nil {
		t.Fatalf("Enqueue() after reset error = %v", err)
	}
	if total != 0 {
		t.Fatalf("Enqueue() total after reset = %d, want 0", total)
	}
}
