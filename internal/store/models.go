package store

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a target's processing record.
type Status string

const (
	StatusPending Status = "pending"
	StatusLiked   Status = "liked"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
	StatusRetry   Status = "retry"
)

var allStatuses = []Status{
	StatusPending,
	StatusLiked,
	StatusSkipped,
	StatusFailed,
	StatusRetry,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var terminalStatuses = map[Status]struct{}{
	StatusLiked:   {},
	StatusSkipped: {},
	StatusFailed:  {},
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether a status admits no further transitions.
func (s Status) IsTerminal() bool {
	_, ok := terminalStatuses[s]
	return ok
}

// Target is a uniquely named subject queued for processing.
type Target struct {
	ID          int64
	Name        string
	ExternalRef *int64
	AddedAt     time.Time
	LastChecked *time.Time
}

// Record is the durable current status of one target's pipeline run.
// There is exactly one record per target; it is updated in place.
type Record struct {
	ID          int64
	TargetID    int64
	Status      Status
	RetryCount  int
	ProcessedAt time.Time
}

// Like is one append-only entry recording a verified successful like.
type Like struct {
	ID           int64
	TargetID     int64
	ActionRef    string
	CreatedAt    time.Time
	WasConnected bool
}

// ConnectionState tracks whether a target account is connected back to the
// acting account. FirstConfirmedAt is set once and never cleared;
// CurrentlyConfirmed is overwritten on every metrics cycle.
type ConnectionState struct {
	TargetID           int64
	FirstConfirmedAt   *time.Time
	CurrentlyConfirmed bool
}

// StatusCounts aggregates record totals per status for summaries and health
// output.
type StatusCounts struct {
	Total   int
	Pending int
	Liked   int
	Skipped int
	Failed  int
	Retry   int
}
