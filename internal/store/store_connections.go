package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SyncConnections reconciles the connection table against the set of
// names currently confirmed by the service. first_confirmed_at is set
// once and never cleared; currently_confirmed mirrors the latest sync.
func (s *Store) SyncConnections(ctx context.Context, connectedNames []string) error {
	ctx = ensureContext(ctx)
	now := formatTime(time.Now())

	connected := make(map[string]struct{}, len(connectedNames))
	for _, name := range connectedNames {
		connected[name] = struct{}{}
	}

	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin connection sync: %w", err)
		}
		defer tx.Rollback()

		rows, err := tx.QueryContext(ctx, `
			SELECT t.id, t.name, c.currently_confirmed
			FROM targets t
			LEFT JOIN connection_status c ON c.target_id = t.id`)
		if err != nil {
			return fmt.Errorf("load connection state: %w", err)
		}

		type change struct {
			targetID  int64
			confirmed bool
			known     bool
		}
		var changes []change
		for rows.Next() {
			var (
				targetID  int64
				name      string
				confirmed sql.NullInt64
			)
			if err := rows.Scan(&targetID, &name, &confirmed); err != nil {
				rows.Close()
				return fmt.Errorf("scan connection state: %w", err)
			}
			_, isConnected := connected[name]
			wasConnected := confirmed.Valid && confirmed.Int64 != 0
			if !confirmed.Valid || wasConnected != isConnected {
				changes = append(changes, change{targetID: targetID, confirmed: isConnected, known: confirmed.Valid})
			}
		}
		if err := rows.Close(); err != nil {
			return fmt.Errorf("close connection state rows: %w", err)
		}

		for _, ch := range changes {
			var firstConfirmed any
			if ch.confirmed {
				firstConfirmed = now
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO connection_status (target_id, first_confirmed_at, currently_confirmed, last_changed_at)
				VALUES (?, ?, ?, ?)
				ON CONFLICT(target_id) DO UPDATE SET
					first_confirmed_at = COALESCE(connection_status.first_confirmed_at, excluded.first_confirmed_at),
					currently_confirmed = excluded.currently_confirmed,
					last_changed_at = excluded.last_changed_at`,
				ch.targetID, firstConfirmed, boolToInt(ch.confirmed), now); err != nil {
				return fmt.Errorf("upsert connection status: %w", err)
			}
		}

		return tx.Commit()
	})
}

// TotalLikes counts every like ever recorded.
func (s *Store) TotalLikes(ctx context.Context) (int, error) {
	ctx = ensureContext(ctx)
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM likes`).Scan(&total); err != nil {
		return 0, fmt.Errorf("count likes: %w", err)
	}
	return total, nil
}

// NewConnections counts targets that were not connected when liked but
// are confirmed connected now.
func (s *Store) NewConnections(ctx context.Context) (int, error) {
	ctx = ensureContext(ctx)
	var total int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT l.target_id)
		FROM likes l
		JOIN connection_status c ON c.target_id = l.target_id
		WHERE l.was_connected = 0 AND c.currently_confirmed = 1`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("count new connections: %w", err)
	}
	return total, nil
}

// ConnectionsGainedSince counts targets first confirmed connected at or
// after the given time and still confirmed.
func (s *Store) ConnectionsGainedSince(ctx context.Context, since time.Time) (int, error) {
	ctx = ensureContext(ctx)
	var total int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM connection_status
		WHERE currently_confirmed = 1 AND first_confirmed_at >= ?`,
		formatTime(since)).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("count gained connections: %w", err)
	}
	return total, nil
}

// ConnectionsLostSince counts targets that were once confirmed but
// dropped off at or after the given time.
func (s *Store) ConnectionsLostSince(ctx context.Context, since time.Time) (int, error) {
	ctx = ensureContext(ctx)
	var total int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM connection_status
		WHERE currently_confirmed = 0
		  AND first_confirmed_at IS NOT NULL
		  AND last_changed_at >= ?`,
		formatTime(since)).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("count lost connections: %w", err)
	}
	return total, nil
}

// CurrentConnections counts targets confirmed connected right now.
func (s *Store) CurrentConnections(ctx context.Context) (int, error) {
	ctx = ensureContext(ctx)
	var total int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM connection_status WHERE currently_confirmed = 1`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("count current connections: %w", err)
	}
	return total, nil
}
