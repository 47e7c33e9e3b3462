package deliverylog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xraph/hookbridge/id"
	"github.com/xraph/hookbridge/settings"
)

// Service records and queries the delivery log. Recording is gated by the
// debug_mode setting, read on every call.
type Service struct {
	store    Store
	settings settings.Store
	logger   *slog.Logger
}

// NewService creates a delivery log service.
func NewService(store Store, s settings.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, settings: s, logger: logger}
}

// Enabled reports whether recording is currently switched on.
func (svc *Service) Enabled(ctx context.Context) bool {
	on, err := settings.Bool(ctx, svc.settings, settings.KeyDebugMode)
	if err != nil {
		svc.logger.WarnContext(ctx, "delivery log: read debug flag", "error", err)
		return false
	}
	return on
}

// Record prepends e to the log when recording is enabled. It assigns an ID
// and timestamp when missing.
func (svc *Service) Record(ctx context.Context, e *Entry) error {
	if !svc.Enabled(ctx) {
		return nil
	}
	if e.ID.IsNil() {
		e.ID = id.NewLogEntryID()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	if err := svc.store.PrependLog(ctx, e, Capacity); err != nil {
		return fmt.Errorf("deliverylog: record: %w", err)
	}
	return nil
}

// List returns the entries matching f, newest first.
func (svc *Service) List(ctx context.Context, f Filter) ([]*Entry, error) {
	entries, err := svc.store.ListLogs(ctx)
	if err != nil {
		return nil, fmt.Errorf("deliverylog: list: %w", err)
	}
	return Apply(entries, f), nil
}

// Clear empties the log.
func (svc *Service) Clear(ctx context.Context) error {
	if err := svc.store.ClearLogs(ctx); err != nil {
		return fmt.Errorf("deliverylog: clear: %w", err)
	}
	svc.logger.InfoContext(ctx, "delivery log cleared")
	return nil
}
