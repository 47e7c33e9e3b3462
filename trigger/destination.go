package trigger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// Destination is the webhook a trigger delivers to.
type Destination struct {
	URL         string `json:"url" yaml:"url"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`

	// Condition is an optional boolean expression over {trigger, data}.
	// Live fires whose condition evaluates false are skipped.
	Condition string `json:"condition,omitempty" yaml:"condition,omitempty"`
}

// UnmarshalJSON accepts both the current object form and the legacy bare URL
// string, which decodes to a Destination with only URL set.
func (d *Destination) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var u string
		if err := json.Unmarshal(data, &u); err != nil {
			return err
		}
		*d = Destination{URL: u}
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*d = Destination{}
		return nil
	}

	type plain Destination
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("trigger: decode destination: %w", err)
	}
	*d = Destination(p)
	return nil
}

// Usable reports whether the destination has a URL to deliver to.
func (d *Destination) Usable() bool {
	return d != nil && strings.TrimSpace(d.URL) != ""
}

// Destinations is the webhook_urls setting: trigger id to destination.
type Destinations map[string]Destination

// UnmarshalJSON decodes the map and rewrites legacy trigger ids. An entry
// under the current id wins over its legacy alias.
func (ds *Destinations) UnmarshalJSON(data []byte) error {
	var raw map[string]Destination
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Destinations, len(raw))
	for triggerID, d := range raw {
		canonical := CanonicalID(triggerID)
		if canonical != triggerID {
			if _, ok := raw[canonical]; ok {
				continue
			}
		}
		out[canonical] = d
	}
	*ds = out
	return nil
}

// ParseDestinations decodes and validates a webhook_urls document.
func ParseDestinations(raw []byte) (Destinations, error) {
	var dests Destinations
	if err := json.Unmarshal(raw, &dests); err != nil {
		return nil, err
	}
	for triggerID, d := range dests {
		if d.URL == "" {
			continue
		}
		u, err := url.ParseRequestURI(d.URL)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return nil, fmt.Errorf("trigger: invalid url for %s: %q", triggerID, d.URL)
		}
	}
	return dests, nil
}
