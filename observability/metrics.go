// Package observability provides metrics and tracing for hookbridge.
package observability

import (
	gu "github.com/xraph/go-utils/metrics"
)

// Metrics holds metric instruments for hookbridge, backed by any go-utils
// MetricFactory.
type Metrics struct {
	TriggersFiredTotal gu.Counter
	DispatchesTotal    gu.Counter
	DispatchLatency    gu.Histogram
	ActionsTotal       gu.Counter
}

// NewMetrics creates hookbridge metric instruments using the supplied factory.
func NewMetrics(factory gu.MetricFactory) *Metrics {
	return &Metrics{
		TriggersFiredTotal: factory.Counter("hookbridge_triggers_fired_total"),
		DispatchesTotal:    factory.Counter("hookbridge_dispatches_total"),
		DispatchLatency:    factory.Histogram("hookbridge_dispatch_latency_seconds"),
		ActionsTotal:       factory.Counter("hookbridge_actions_total"),
	}
}

// RecordFire counts a trigger firing that reached the dispatcher.
func (m *Metrics) RecordFire(trigger string, test bool) {
	if m == nil {
		return
	}
	mode := "live"
	if test {
		mode = "test"
	}
	m.TriggersFiredTotal.WithLabels(map[string]string{"trigger": trigger, "mode": mode}).Inc()
}

// RecordDispatch records a dispatch attempt with the given status and latency.
func (m *Metrics) RecordDispatch(status string, latencySeconds float64) {
	if m == nil {
		return
	}
	m.DispatchesTotal.WithLabels(map[string]string{"status": status}).Inc()
	m.DispatchLatency.Observe(latencySeconds)
}

// RecordAction counts an inbound action by name and outcome.
func (m *Metrics) RecordAction(action, status string) {
	if m == nil {
		return
	}
	m.ActionsTotal.WithLabels(map[string]string{"action": action, "status": status}).Inc()
}
