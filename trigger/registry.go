package trigger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"

	"github.com/xraph/hookbridge/content"
	"github.com/xraph/hookbridge/settings"
)

// Registry answers enablement and destination questions for triggers.
// Every call reads the Settings Store and the host's content kinds afresh.
type Registry struct {
	settings settings.Store
	kinds    content.KindSource
	logger   *slog.Logger
}

// NewRegistry creates a trigger registry.
func NewRegistry(s settings.Store, kinds content.KindSource, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{settings: s, kinds: kinds, logger: logger}
}

// IsEnabled reports whether triggerID is in the enabled-trigger set.
func (r *Registry) IsEnabled(ctx context.Context, triggerID string) (bool, error) {
	enabled, err := r.enabled(ctx)
	if err != nil {
		return false, err
	}
	return slices.Contains(enabled, CanonicalID(triggerID)), nil
}

// enabled returns the enabled-trigger set with legacy ids translated.
func (r *Registry) enabled(ctx context.Context) ([]string, error) {
	ids, err := settings.Strings(ctx, r.settings, settings.KeyEnabledTriggers)
	if err != nil {
		return nil, err
	}
	for i, triggerID := range ids {
		ids[i] = CanonicalID(triggerID)
	}
	return ids, nil
}

// Destinations returns every configured destination, legacy entries normalized.
func (r *Registry) Destinations(ctx context.Context) (Destinations, error) {
	raw, err := settings.Get(ctx, r.settings, settings.KeyWebhookURLs, json.RawMessage(nil))
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return Destinations{}, nil
	}

	// Some hosts persist an empty map as [].
	if string(raw) == "[]" {
		return Destinations{}, nil
	}

	var dests Destinations
	if err := json.Unmarshal(raw, &dests); err != nil {
		return nil, fmt.Errorf("trigger: decode %s: %w", settings.KeyWebhookURLs, err)
	}
	return dests, nil
}

// ResolveDestination returns the destination for triggerID, or nil when none
// is configured or its URL is empty.
func (r *Registry) ResolveDestination(ctx context.Context, triggerID string) (*Destination, error) {
	dests, err := r.Destinations(ctx)
	if err != nil {
		return nil, err
	}
	d, ok := dests[CanonicalID(triggerID)]
	if !ok || !d.Usable() {
		return nil, nil //nolint:nilnil // absent destination is not an error
	}
	return &d, nil
}

// List returns the currently available triggers. Content kinds registered
// after startup appear on the next call.
func (r *Registry) List(ctx context.Context) ([]Definition, error) {
	var (
		kinds    []content.Kind
		commerce bool
	)
	if r.kinds != nil {
		var err error
		kinds, err = r.kinds.ContentKinds(ctx)
		if err != nil {
			return nil, fmt.Errorf("trigger: list content kinds: %w", err)
		}
		commerce = r.kinds.CommerceActive(ctx)
	}
	return Definitions(kinds, commerce), nil
}

// Lookup returns the definition of a currently available trigger.
func (r *Registry) Lookup(ctx context.Context, triggerID string) (Definition, bool, error) {
	defs, err := r.List(ctx)
	if err != nil {
		return Definition{}, false, err
	}
	for _, d := range defs {
		if d.ID == triggerID {
			return d, true, nil
		}
	}
	return Definition{}, false, nil
}

// Status is a trigger definition joined with its current configuration.
type Status struct {
	Definition  `yaml:",inline"`
	Enabled     bool         `json:"enabled" yaml:"enabled"`
	Destination *Destination `json:"destination,omitempty" yaml:"destination,omitempty"`
}

// Statuses lists every available trigger with its enablement and destination.
func (r *Registry) Statuses(ctx context.Context) ([]Status, error) {
	defs, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	enabled, err := r.enabled(ctx)
	if err != nil {
		return nil, err
	}
	dests, err := r.Destinations(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Status, 0, len(defs))
	for _, def := range defs {
		st := Status{Definition: def, Enabled: slices.Contains(enabled, def.ID)}
		if d, ok := dests[def.ID]; ok {
			st.Destination = &d
		}
		out = append(out, st)
	}
	return out, nil
}
