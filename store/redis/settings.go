package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/xraph/hookbridge/settings"
)

// GetSetting returns the stored JSON value, or settings.ErrNotFound.
func (s *Store) GetSetting(ctx context.Context, key string) (json.RawMessage, error) {
	raw, err := s.rdb.Get(ctx, settingKey(key)).Bytes()
	if err != nil {
		if isRedisNil(err) {
			return nil, settings.ErrNotFound
		}
		return nil, fmt.Errorf("hookbridge/redis: get setting %s: %w", key, err)
	}
	return raw, nil
}

// SetSetting overwrites the stored value.
func (s *Store) SetSetting(ctx context.Context, key string, value json.RawMessage) error {
	if err := s.rdb.Set(ctx, settingKey(key), []byte(value), 0).Err(); err != nil {
		return fmt.Errorf("hookbridge/redis: set setting %s: %w", key, err)
	}
	return nil
}
