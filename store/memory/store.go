// Package memory provides an in-memory Store implementation and an
// in-memory Content Repository, for tests and single-process deployments.
package memory

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/xraph/hookbridge"
	"github.com/xraph/hookbridge/deliverylog"
	"github.com/xraph/hookbridge/settings"
	bridgestore "github.com/xraph/hookbridge/store"
)

// compile-time interface check.
var _ bridgestore.Store = (*Store)(nil)

// Store is an in-memory implementation of store.Store.
type Store struct {
	mu sync.RWMutex

	settings map[string]json.RawMessage
	logs     []*deliverylog.Entry // newest first

	closed bool
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		settings: make(map[string]json.RawMessage),
	}
}

// ──────────────────────────────────────────────────
// Lifecycle
// ──────────────────────────────────────────────────

// Migrate is a no-op for the in-memory store.
func (s *Store) Migrate(_ context.Context) error { return nil }

// Ping reports ErrStoreClosed after Close.
func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return hookbridge.ErrStoreClosed
	}
	return nil
}

// Close marks the store as closed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// ──────────────────────────────────────────────────
// settings.Store
// ──────────────────────────────────────────────────

// GetSetting returns a copy of the stored value.
func (s *Store) GetSetting(_ context.Context, key string) (json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.settings[key]
	if !ok {
		return nil, settings.ErrNotFound
	}
	out := make(json.RawMessage, len(v))
	copy(out, v)
	return out, nil
}

// SetSetting stores a copy of value.
func (s *Store) SetSetting(_ context.Context, key string, value json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return hookbridge.ErrStoreClosed
	}
	v := make(json.RawMessage, len(value))
	copy(v, value)
	s.settings[key] = v
	return nil
}

// ──────────────────────────────────────────────────
// deliverylog.Store
// ──────────────────────────────────────────────────

// PrependLog inserts e at the head and truncates to capacity.
func (s *Store) PrependLog(_ context.Context, e *deliverylog.Entry, capacity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return hookbridge.ErrStoreClosed
	}

	n := len(s.logs) + 1
	if capacity > 0 && n > capacity {
		n = capacity
	}
	logs := make([]*deliverylog.Entry, 0, n)
	cp := *e
	logs = append(logs, &cp)
	logs = append(logs, s.logs[:n-1]...)
	s.logs = logs
	return nil
}

// ListLogs returns copies of every entry, newest first.
func (s *Store) ListLogs(_ context.Context) ([]*deliverylog.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*deliverylog.Entry, 0, len(s.logs))
	for _, e := range s.logs {
		cp := *e
		out = append(out, &cp)
	}
	return out, nil
}

// ClearLogs drops every entry.
func (s *Store) ClearLogs(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = nil
	return nil
}
