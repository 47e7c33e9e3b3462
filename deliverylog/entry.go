// Package deliverylog keeps a bounded, newest-first record of webhook
// deliveries and inbound actions for diagnostics.
package deliverylog

import (
	"encoding/json"
	"time"

	"github.com/xraph/hookbridge/id"
)

// Capacity is the number of entries retained. Older entries are dropped.
const Capacity = 100

// Type distinguishes outbound deliveries from inbound actions.
type Type string

// Entry types.
const (
	TypeTrigger Type = "trigger"
	TypeAction  Type = "action"
)

// Status is the outcome filter value.
type Status string

// Outcome filter values.
const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Entry records one delivery attempt or inbound action.
type Entry struct {
	ID        id.ID     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Type      Type      `json:"type"`

	// Trigger is the trigger id for deliveries, the action name for actions.
	Trigger string `json:"trigger"`

	URL  string `json:"url,omitempty"`
	Name string `json:"name,omitempty"`

	// Payload is the exact document sent or received.
	Payload json.RawMessage `json:"data,omitempty"`

	Success    bool   `json:"success"`
	StatusCode int    `json:"status_code,omitempty"`
	Response   string `json:"response,omitempty"`
	Error      string `json:"error,omitempty"`
	Test       bool   `json:"test,omitempty"`
}

// Status returns the entry's outcome filter value.
func (e *Entry) Status() Status {
	if e.Success {
		return StatusSuccess
	}
	return StatusError
}

// Filter selects entries by type and outcome. Zero fields match everything.
type Filter struct {
	Type   Type
	Status Status
}

// Match reports whether e passes the filter.
func (f Filter) Match(e *Entry) bool {
	if f.Type != "" && e.Type != f.Type {
		return false
	}
	if f.Status != "" && e.Status() != f.Status {
		return false
	}
	return true
}

// Apply returns the entries passing f, preserving order.
func Apply(entries []*Entry, f Filter) []*Entry {
	out := make([]*Entry, 0, len(entries))
	for _, e := range entries {
		if f.Match(e) {
			out = append(out, e)
		}
	}
	return out
}
