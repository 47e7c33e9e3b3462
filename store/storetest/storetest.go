// Package storetest is a conformance suite run against every store.Store
// backend.
package storetest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/xraph/hookbridge/deliverylog"
	"github.com/xraph/hookbridge/id"
	"github.com/xraph/hookbridge/settings"
	"github.com/xraph/hookbridge/store"
)

// Run exercises s against the store.Store contract. s must be empty and
// migrated.
func Run(t *testing.T, s store.Store) {
	t.Helper()

	t.Run("Settings", func(t *testing.T) { testSettings(t, s) })
	t.Run("LogOrder", func(t *testing.T) { testLogOrder(t, s) })
	t.Run("LogCapacity", func(t *testing.T) { testLogCapacity(t, s) })
	t.Run("LogClear", func(t *testing.T) { testLogClear(t, s) })
}

func entry(trigger string, success bool) *deliverylog.Entry {
	return &deliverylog.Entry{
		ID:        id.NewLogEntryID(),
		Timestamp: time.Now().UTC(),
		Type:      deliverylog.TypeTrigger,
		Trigger:   trigger,
		URL:       "https://hooks.example/" + trigger,
		Payload:   json.RawMessage(`{"trigger":"` + trigger + `"}`),
		Success:   success,
	}
}

func testSettings(t *testing.T, s store.Store) {
	ctx := context.Background()

	if _, err := s.GetSetting(ctx, "missing"); !errors.Is(err, settings.ErrNotFound) {
		t.Fatalf("expected settings.ErrNotFound, got %v", err)
	}

	if err := s.SetSetting(ctx, settings.KeyEngineURL, json.RawMessage(`"https://engine.example"`)); err != nil {
		t.Fatal(err)
	}
	if err := s.SetSetting(ctx, settings.KeyEngineURL, json.RawMessage(`"https://other.example"`)); err != nil {
		t.Fatal(err)
	}
	got, err := settings.String(ctx, s, settings.KeyEngineURL)
	if err != nil {
		t.Fatal(err)
	}
	if got != "https://other.example" {
		t.Fatalf("expected overwritten value, got %q", got)
	}

	if err := settings.Set(ctx, s, settings.KeyEnabledTriggers, []string{"post_save", "comment_post"}); err != nil {
		t.Fatal(err)
	}
	enabled, err := settings.Strings(ctx, s, settings.KeyEnabledTriggers)
	if err != nil {
		t.Fatal(err)
	}
	if len(enabled) != 2 || enabled[1] != "comment_post" {
		t.Fatalf("unexpected triggers %v", enabled)
	}
}

func testLogOrder(t *testing.T, s store.Store) {
	ctx := context.Background()
	if err := s.ClearLogs(ctx); err != nil {
		t.Fatal(err)
	}

	first := entry("post_save", true)
	second := entry("user_register", false)
	second.StatusCode = 500
	second.Error = "boom"
	for _, e := range []*deliverylog.Entry{first, second} {
		if err := s.PrependLog(ctx, e, deliverylog.Capacity); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.ListLogs(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].ID != second.ID || got[1].ID != first.ID {
		t.Fatalf("expected newest first, got %s then %s", got[0].ID, got[1].ID)
	}
	if got[0].Error != "boom" || got[0].StatusCode != 500 || got[0].Success {
		t.Fatalf("entry fields not preserved: %+v", got[0])
	}
	if string(got[1].Payload) != `{"trigger":"post_save"}` {
		t.Fatalf("payload not preserved: %s", got[1].Payload)
	}
}

func testLogCapacity(t *testing.T, s store.Store) {
	ctx := context.Background()
	if err := s.ClearLogs(ctx); err != nil {
		t.Fatal(err)
	}

	const capacity = 5
	var last *deliverylog.Entry
	for i := range capacity + 3 {
		last = entry(fmt.Sprintf("t%d", i), true)
		if err := s.PrependLog(ctx, last, capacity); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.ListLogs(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != capacity {
		t.Fatalf("expected %d entries, got %d", capacity, len(got))
	}
	if got[0].ID != last.ID {
		t.Fatalf("expected newest entry first, got %s", got[0].Trigger)
	}
	if got[capacity-1].Trigger != "t3" {
		t.Fatalf("expected oldest retained t3, got %s", got[capacity-1].Trigger)
	}
}

func testLogClear(t *testing.T, s store.Store) {
	ctx := context.Background()
	if err := s.PrependLog(ctx, entry("post_save", true), deliverylog.Capacity); err != nil {
		t.Fatal(err)
	}
	if err := s.ClearLogs(ctx); err != nil {
		t.Fatal(err)
	}
	got, err := s.ListLogs(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty log, got %d entries", len(got))
	}
}
