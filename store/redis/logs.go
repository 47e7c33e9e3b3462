package redis

import (
	"context"
	"encoding/json"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/xraph/hookbridge/deliverylog"
)

// PrependLog pushes e onto the head of the log list and trims it to
// capacity in one MULTI/EXEC.
func (s *Store) PrependLog(ctx context.Context, e *deliverylog.Entry, capacity int) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("hookbridge/redis: marshal log entry: %w", err)
	}
	_, err = s.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.LPush(ctx, keyLog, raw)
		if capacity > 0 {
			pipe.LTrim(ctx, keyLog, 0, int64(capacity-1))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("hookbridge/redis: prepend log: %w", err)
	}
	return nil
}

// ListLogs returns every retained entry, newest first.
func (s *Store) ListLogs(ctx context.Context) ([]*deliverylog.Entry, error) {
	items, err := s.rdb.LRange(ctx, keyLog, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("hookbridge/redis: list logs: %w", err)
	}
	out := make([]*deliverylog.Entry, 0, len(items))
	for _, item := range items {
		var e deliverylog.Entry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			return nil, fmt.Errorf("hookbridge/redis: decode log entry: %w", err)
		}
		out = append(out, &e)
	}
	return out, nil
}

// ClearLogs removes the log list.
func (s *Store) ClearLogs(ctx context.Context) error {
	if err := s.rdb.Del(ctx, keyLog).Err(); err != nil {
		return fmt.Errorf("hookbridge/redis: clear logs: %w", err)
	}
	return nil
}
