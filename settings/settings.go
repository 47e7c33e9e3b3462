// Package settings defines the key/value Settings Store consumed by the bridge
// and typed accessors over it.
//
// Values are stored as JSON documents. Readers always go to the store; nothing
// is cached between calls, so configuration changes apply to the next
// operation.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Setting keys read by the bridge.
const (
	KeyEngineURL       = "engine_url"
	KeyAPIKey          = "api_key"
	KeyEngineAPIKey    = "engine_api_key"
	KeyEnabledTriggers = "enabled_triggers"
	KeyWebhookURLs     = "webhook_urls"
	KeyDebugMode       = "debug_mode"
	KeySigningSecret   = "signing_secret"
)

// ErrNotFound is returned by a Store when a key has never been set.
var ErrNotFound = errors.New("settings: key not found")

// Store persists settings as JSON documents keyed by name.
type Store interface {
	// GetSetting returns the raw JSON value for key, or ErrNotFound.
	GetSetting(ctx context.Context, key string) (json.RawMessage, error)

	// SetSetting stores a raw JSON value under key, replacing any previous value.
	SetSetting(ctx context.Context, key string, value json.RawMessage) error
}

// Get decodes the value under key into T, returning def when the key is unset.
func Get[T any](ctx context.Context, s Store, key string, def T) (T, error) {
	raw, err := s.GetSetting(ctx, key)
	if errors.Is(err, ErrNotFound) || (err == nil && isEmpty(raw)) {
		return def, nil
	}
	if err != nil {
		return def, fmt.Errorf("settings: get %s: %w", key, err)
	}

	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return def, fmt.Errorf("settings: decode %s: %w", key, err)
	}
	return v, nil
}

// Set encodes v as JSON and stores it under key.
func Set(ctx context.Context, s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("settings: encode %s: %w", key, err)
	}
	if err := s.SetSetting(ctx, key, raw); err != nil {
		return fmt.Errorf("settings: set %s: %w", key, err)
	}
	return nil
}

// String returns a string setting, or "" when unset.
func String(ctx context.Context, s Store, key string) (string, error) {
	return Get(ctx, s, key, "")
}

// Strings returns a list setting, or nil when unset.
func Strings(ctx context.Context, s Store, key string) ([]string, error) {
	return Get[[]string](ctx, s, key, nil)
}

// Bool returns a flag setting. Besides JSON booleans it accepts the numeric
// and string forms hosts commonly persist ("1", "true", 1).
func Bool(ctx context.Context, s Store, key string) (bool, error) {
	v, err := Get[any](ctx, s, key, false)
	if err != nil {
		return false, err
	}
	switch b := v.(type) {
	case bool:
		return b, nil
	case float64:
		return b != 0, nil
	case string:
		parsed, perr := strconv.ParseBool(strings.TrimSpace(b))
		if perr != nil {
			return false, nil
		}
		return parsed, nil
	default:
		return false, nil
	}
}

func isEmpty(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return s == "" || s == "null"
}
