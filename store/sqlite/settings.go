package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/xraph/hookbridge/settings"
)

// GetSetting returns the stored JSON value, or settings.ErrNotFound.
func (s *Store) GetSetting(ctx context.Context, key string) (json.RawMessage, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM hookbridge_settings WHERE key = ?`, key,
	).Scan(&value)
	if err != nil {
		if isNoRows(err) {
			return nil, settings.ErrNotFound
		}
		return nil, fmt.Errorf("hookbridge/sqlite: get setting %s: %w", key, err)
	}
	return json.RawMessage(value), nil
}

// SetSetting inserts or replaces the stored value.
func (s *Store) SetSetting(ctx context.Context, key string, value json.RawMessage) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO hookbridge_settings (key, value, updated_at)
VALUES (?, ?, datetime('now'))
ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(value),
	)
	if err != nil {
		return fmt.Errorf("hookbridge/sqlite: set setting %s: %w", key, err)
	}
	return nil
}
