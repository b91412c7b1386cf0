package summary

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"likebot/internal/metrics"
)

func sampleSnapshot() metrics.Snapshot {
	return metrics.Snapshot{
		TotalProcessed:     3,
		Liked:              2,
		Skipped:            1,
		TotalLikes:         12,
		NewConnections:     4,
		GainedToday:        1,
		GainedWeek:         2,
		GainedMonth:        3,
		GainedYear:         4,
		LikesPerConnection: 3.0,
		Timestamp:          time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
	}
}

func TestWriteProducesStableKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "summary_report.json")
	report := FromSnapshot(sampleSnapshot(), "run-123")

	if err := Write(path, report); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	for _, key := range []string{
		"run_id", "total_processed", "liked", "skipped", "errors", "retries",
		"total_likes", "new_connections",
		"connections_gained_year", "connections_gained_month",
		"connections_gained_week", "connections_gained_today",
		"connections_lost_year", "connections_lost_month",
		"connections_lost_week", "connections_lost_today",
		"likes_per_connection_ratio", "timestamp",
	} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("summary missing key %q", key)
		}
	}
	if decoded["run_id"] != "run-123" {
		t.Errorf("run_id = %v", decoded["run_id"])
	}
	if decoded["timestamp"] != "2026-03-14T09:26:53Z" {
		t.Errorf("timestamp = %v", decoded["timestamp"])
	}
}

func TestWriteReplacesExistingArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary_report.json")
	if err := Write(path, FromSnapshot(sampleSnapshot(), "first")); err != nil {
		t.Fatalf("Write() first error = %v", err)
	}
	if err := Write(path, FromSnapshot(sampleSnapshot(), "second")); err != nil {
		t.Fatalf("Write() second error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), `"second"`) {
		t.Fatalf("artifact not replaced: %s", data)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("leftover temp files: %d entries", len(entries))
	}
}

func TestRenderTableIncludesCounters(t *testing.T) {
	out := RenderTable(FromSnapshot(sampleSnapshot(), "run-123"))

	for _, want := range []string{"run-123", "Liked", "Total likes", "3.00"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}
