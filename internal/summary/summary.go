// Package summary emits the end-of-run report as a JSON artifact and
// a human-readable table.
package summary

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"likebot/internal/metrics"
)

// Report is the serialized shape of the run summary artifact.
type Report struct {
	RunID          string `json:"run_id"`
	TotalProcessed int64  `json:"total_processed"`
	Liked          int64  `json:"liked"`
	Skipped        int64  `json:"skipped"`
	Errors         int64  `json:"errors"`
	Retries        int64  `json:"retries"`

	TotalLikes     int `json:"total_likes"`
	NewConnections int `json:"new_connections"`

	ConnectionsGainedYear  int `json:"connections_gained_year"`
	ConnectionsGainedMonth int `json:"connections_gained_month"`
	ConnectionsGainedWeek  int `json:"connections_gained_week"`
	ConnectionsGainedToday int `json:"connections_gained_today"`
	ConnectionsLostYear    int `json:"connections_lost_year"`
	ConnectionsLostMonth   int `json:"connections_lost_month"`
	ConnectionsLostWeek    int `json:"connections_lost_week"`
	ConnectionsLostToday   int `json:"connections_lost_today"`

	LikesPerConnectionRatio float64 `json:"likes_per_connection_ratio"`
	Timestamp               string  `json:"timestamp"`
}

// FromSnapshot converts a metrics snapshot into a report.
func FromSnapshot(snap metrics.Snapshot, runID string) Report {
	return Report{
		RunID:                   runID,
		TotalProcessed:          snap.TotalProcessed,
		Liked:                   snap.Liked,
		Skipped:                 snap.Skipped,
		Errors:                  snap.Errors,
		Retries:                 snap.Retries,
		TotalLikes:              snap.TotalLikes,
		NewConnections:          snap.NewConnections,
		ConnectionsGainedYear:   snap.GainedYear,
		ConnectionsGainedMonth:  snap.GainedMonth,
		ConnectionsGainedWeek:   snap.GainedWeek,
		ConnectionsGainedToday:  snap.GainedToday,
		ConnectionsLostYear:     snap.LostYear,
		ConnectionsLostMonth:    snap.LostMonth,
		ConnectionsLostWeek:     snap.LostWeek,
		ConnectionsLostToday:    snap.LostToday,
		LikesPerConnectionRatio: snap.LikesPerConnection,
		Timestamp:               snap.Timestamp.UTC().Format(time.RFC3339),
	}
}

// Write persists the report to path. The write goes through a temp
// file so a crash never leaves a half-written artifact.
func Write(path string, report Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create summary directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".summary-*.json")
	if err != nil {
		return fmt.Errorf("create temp summary: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp summary: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp summary: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace summary: %w", err)
	}
	return nil
}
