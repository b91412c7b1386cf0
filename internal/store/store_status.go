package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// UpdateStatus upserts the processing record for a named target and
// stamps last_checked on the target row in the same transaction.
func (s *Store) UpdateStatus(ctx context.Context, name string, status Status, retryCount int) error {
	if _, ok := statusSet[status]; !ok {
		return fmt.Errorf("unknown status %q", status)
	}
	ctx = ensureContext(ctx)
	now := formatTime(time.Now())

	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin status update: %w", err)
		}
		defer tx.Rollback()

		var targetID int64
		if err := tx.QueryRowContext(ctx,
			`SELECT id FROM targets WHERE name = ?`, name).Scan(&targetID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrTargetNotFound
			}
			return fmt.Errorf("resolve target %q: %w", name, err)
		}

		if err := upsertRecord(ctx, tx, targetID, status, retryCount, now); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE targets SET last_checked = ? WHERE id = ?`, now, targetID); err != nil {
			return fmt.Errorf("stamp last_checked: %w", err)
		}

		return tx.Commit()
	})
}

// RecordAction appends a like entry and upserts the status record in a
// single transaction, so a crash never leaves a like without a status.
func (s *Store) RecordAction(ctx context.Context, name string, actionRef string, wasConnected bool, status Status, retryCount int) error {
	if _, ok := statusSet[status]; !ok {
		return fmt.Errorf("unknown status %q", status)
	}
	ctx = ensureContext(ctx)
	now := formatTime(time.Now())

	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin record action: %w", err)
		}
		defer tx.Rollback()

		var targetID int64
		if err := tx.QueryRowContext(ctx,
			`SELECT id FROM targets WHERE name = ?`, name).Scan(&targetID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrTargetNotFound
			}
			return fmt.Errorf("resolve target %q: %w", name, err)
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO likes (target_id, action_ref, created_at, was_connected)
			 VALUES (?, ?, ?, ?)`,
			targetID, actionRef, now, boolToInt(wasConnected)); err != nil {
			return fmt.Errorf("append like: %w", err)
		}

		if err := upsertRecord(ctx, tx, targetID, status, retryCount, now); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE targets SET last_checked = ? WHERE id = ?`, now, targetID); err != nil {
			return fmt.Errorf("stamp last_checked: %w", err)
		}

		return tx.Commit()
	})
}

func upsertRecord(ctx context.Context, tx *sql.Tx, targetID int64, status Status, retryCount int, now string) error {
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO processing_records (target_id, status, retry_count, processed_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(target_id) DO UPDATE SET
			status = excluded.status,
			retry_count = excluded.retry_count,
			processed_at = excluded.processed_at`,
		targetID, string(status), retryCount, now); err != nil {
		return fmt.Errorf("upsert processing record: %w", err)
	}
	return nil
}

// RetryCount reports the persisted retry count for a target. Targets
// without a record report zero.
func (s *Store) RetryCount(ctx context.Context, name string) (int, error) {
	ctx = ensureContext(ctx)
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT r.retry_count
		FROM processing_records r
		JOIN targets t ON t.id = r.target_id
		WHERE t.name = ?`, name).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("retry count for %q: %w", name, err)
	}
	return count, nil
}

// GetStatus reports the current status for a target. Targets without a
// record report StatusPending.
func (s *Store) GetStatus(ctx context.Context, name string) (Status, error) {
	ctx = ensureContext(ctx)
	var raw string
	err := s.db.QueryRowContext(ctx, `
		SELECT r.status
		FROM processing_records r
		JOIN targets t ON t.id = r.target_id
		WHERE t.name = ?`, name).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return StatusPending, nil
	}
	if err != nil {
		return "", fmt.Errorf("status for %q: %w", name, err)
	}
	status, ok := ParseStatus(raw)
	if !ok {
		return "", fmt.Errorf("unknown status %q for %q", raw, name)
	}
	return status, nil
}

// CountByStatus tallies processing records per status. Targets without
// a record are counted as pending.
func (s *Store) CountByStatus(ctx context.Context) (StatusCounts, error) {
	ctx = ensureContext(ctx)
	var counts StatusCounts

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM targets`).Scan(&counts.Total); err != nil {
		return counts, fmt.Errorf("count targets: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM processing_records GROUP BY status`)
	if err != nil {
		return counts, fmt.Errorf("count statuses: %w", err)
	}
	defer rows.Close()

	recorded := 0
	for rows.Next() {
		var (
			raw string
			n   int
		)
		if err := rows.Scan(&raw, &n); err != nil {
			return counts, fmt.Errorf("scan status count: %w", err)
		}
		recorded += n
		switch Status(raw) {
		case StatusPending:
			counts.Pending += n
		case StatusLiked:
			counts.Liked += n
		case StatusSkipped:
			counts.Skipped += n
		case StatusFailed:
			counts.Failed += n
		case StatusRetry:
			counts.Retry += n
		}
	}
	if err := rows.Err(); err != nil {
		return counts, fmt.Errorf("iterate status counts: %w", err)
	}

	if unrecorded := counts.Total - recorded; unrecorded > 0 {
		counts.Pending += unrecorded
	}
	return counts, nil
}
