package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrTargetNotFound indicates the named target is not enqueued.
var ErrTargetNotFound = errors.New("target not found")

// retryCooldown is how long a retry-flagged target stays ineligible
// before ClaimPending offers it again.
const retryCooldown = time.Hour

// Enqueue registers names for processing. Names already present are
// left untouched. It returns the total number of targets on record.
func (s *Store) Enqueue(ctx context.Context, names []string) (int64, error) {
	ctx = ensureContext(ctx)
	now := formatTime(time.Now())
	for _, name := range names {
		if name == "" {
			continue
		}
		if err := s.execWithoutResultRetry(ctx,
			`INSERT INTO targets (name, added_at) VALUES (?, ?)
			 ON CONFLICT(name) DO NOTHING`,
			name, now); err != nil {
			return 0, fmt.Errorf("enqueue target %q: %w", name, err)
		}
	}

	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM targets`).Scan(&total); err != nil {
		return 0, fmt.Errorf("count targets: %w", err)
	}
	return total, nil
}

// ClaimPending returns names eligible for processing in enqueue order.
// A target is eligible when it has no processing record, is pending,
// or was marked retry more than retryCooldown ago.
func (s *Store) ClaimPending(ctx context.Context) ([]string, error) {
	ctx = ensureContext(ctx)
	cutoff := formatTime(time.Now().Add(-retryCooldown))

	rows, err := s.db.QueryContext(ctx, `
		SELECT t.name
		FROM targets t
		LEFT JOIN processing_records r ON r.target_id = t.id
		WHERE r.id IS NULL
		   OR r.status = ?
		   OR (r.status = ? AND r.processed_at < ?)
		ORDER BY t.added_at ASC, t.id ASC`,
		string(StatusPending), string(StatusRetry), cutoff)
	if err != nil {
		return nil, fmt.Errorf("query pending targets: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan pending target: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending targets: %w", err)
	}
	return names, nil
}

// SetExternalRef records the service-side identifier for a target.
func (s *Store) SetExternalRef(ctx context.Context, name string, ref int64) error {
	ctx = ensureContext(ctx)
	res, err := s.execWithRetry(ctx,
		`UPDATE targets SET external_ref = ? WHERE name = ?`, ref, name)
	if err != nil {
		return fmt.Errorf("set external ref for %q: %w", name, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set external ref for %q: %w", name, err)
	}
	if affected == 0 {
		return ErrTargetNotFound
	}
	return nil
}

// GetTarget fetches a single target by name.
func (s *Store) GetTarget(ctx context.Context, name string) (*Target, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, external_ref, added_at, last_checked FROM targets WHERE name = ?`, name)

	var (
		target      Target
		externalRef sql.NullInt64
		addedAt     string
		lastChecked sql.NullString
	)
	if err := row.Scan(&target.ID, &target.Name, &externalRef, &addedAt, &lastChecked); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTargetNotFound
		}
		return nil, fmt.Errorf("get target %q: %w", name, err)
	}
	if externalRef.Valid {
		ref := externalRef.Int64
		target.ExternalRef = &ref
	}
	if parsed, err := parseTimeString(addedAt); err == nil {
		target.AddedAt = parsed
	}
	if lastChecked.Valid {
		if parsed, err := parseTimeString(lastChecked.String); err == nil {
			target.LastChecked = &parsed
		}
	}
	return &target, nil
}
