// Package dispatch delivers trigger payloads to their configured webhook
// destinations and records every attempt.
package dispatch

import (
	"github.com/xraph/hookbridge/payload"
)

// Site identifies the host that produced an envelope.
type Site struct {
	Name       string `json:"name"`
	URL        string `json:"url"`
	AdminEmail string `json:"admin_email"`
	Version    string `json:"version"`
	Language   string `json:"language"`
}

// Envelope is the JSON document POSTed to a destination.
type Envelope struct {
	Trigger     string           `json:"trigger"`
	Data        payload.Document `json:"data"`
	Site        Site             `json:"site"`
	Timestamp   int64            `json:"timestamp"`
	WebhookName string           `json:"webhook_name,omitempty"`
	Test        bool             `json:"test,omitempty"`
}

func newEnvelope(triggerID string, data payload.Document) Envelope {
	if data == nil {
		data = payload.Document{}
	}
	return Envelope{Trigger: triggerID, Data: data}
}
