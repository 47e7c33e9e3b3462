package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/xraph/hookbridge/deliverylog"
)

// PrependLog inserts e and deletes everything beyond the newest capacity
// rows in one transaction.
func (s *Store) PrependLog(ctx context.Context, e *deliverylog.Entry, capacity int) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("hookbridge/sqlite: marshal log entry: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("hookbridge/sqlite: begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	_, err = tx.ExecContext(ctx, `
INSERT INTO hookbridge_delivery_log (id, type, trigger, success, entry, created_at)
VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID.String(), string(e.Type), e.Trigger, e.Success, string(raw),
		e.Timestamp.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("hookbridge/sqlite: insert log entry: %w", err)
	}

	if capacity > 0 {
		_, err = tx.ExecContext(ctx, `
DELETE FROM hookbridge_delivery_log
WHERE seq NOT IN (SELECT seq FROM hookbridge_delivery_log ORDER BY seq DESC LIMIT ?)`,
			capacity,
		)
		if err != nil {
			return fmt.Errorf("hookbridge/sqlite: trim log: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("hookbridge/sqlite: commit: %w", err)
	}
	return nil
}

// ListLogs returns every retained entry, newest first.
func (s *Store) ListLogs(ctx context.Context) ([]*deliverylog.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT entry FROM hookbridge_delivery_log ORDER BY seq DESC`)
	if err != nil {
		return nil, fmt.Errorf("hookbridge/sqlite: list logs: %w", err)
	}
	defer rows.Close()

	var out []*deliverylog.Entry
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("hookbridge/sqlite: scan log entry: %w", err)
		}
		var e deliverylog.Entry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			return nil, fmt.Errorf("hookbridge/sqlite: decode log entry: %w", err)
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

// ClearLogs removes every entry.
func (s *Store) ClearLogs(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM hookbridge_delivery_log`); err != nil {
		return fmt.Errorf("hookbridge/sqlite: clear logs: %w", err)
	}
	return nil
}
