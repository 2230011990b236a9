// Package status holds lock-free narration counters read by the host overlay
package status

import (
	"fmt"
	"sync/atomic"
)

// Counter keys
const (
	Spoken         = "narration.spoken"
	Deduplicated   = "narration.deduplicated"
	Failed         = "narration.failed"
	Throttled      = "coordinator.throttled"
	Absorbed       = "coordinator.absorbed"
	Suppressed     = "coordinator.suppressed"
	Scheduled      = "coordinator.scheduled"
	Urgent         = "coordinator.urgent"
	WavesEmitted   = "combat.waves"
	EffectsIgnored = "combat.ignored"
	HealthAlerts   = "health.alerts"
	Ingested       = "ingest.events"
	IngestDropped  = "ingest.dropped"
	IngestSpilled  = "ingest.spilled"
	IngestOverflow = "ingest.overflow"
	RefreshFailed  = "refresh.failed"
)

// Flag keys
const (
	ModalFocus = "coordinator.modal"
)

// Label keys
const (
	LastUtterance = "narration.last"
	NavMode       = "navigation.mode"
)

// Registry is the central metrics facade
// Components cache pointers during construction and write directly to atomics
type Registry struct {
	Counters *MetricMap[atomic.Int64]
	Flags    *MetricMap[atomic.Bool]
	Labels   *MetricMap[AtomicString]
}

// NewRegistry creates an initialized Registry
func NewRegistry() *Registry {
	return &Registry{
		Counters: NewMetricMap[atomic.Int64](),
		Flags:    NewMetricMap[atomic.Bool](),
		Labels:   NewMetricMap[AtomicString](),
	}
}

// Counter returns the counter for key, a nil registry yields a detached counter
func (r *Registry) Counter(key string) *atomic.Int64 {
	if r == nil {
		return new(atomic.Int64)
	}
	return r.Counters.Get(key)
}

// Flag returns the flag for key, a nil registry yields a detached flag
func (r *Registry) Flag(key string) *atomic.Bool {
	if r == nil {
		return new(atomic.Bool)
	}
	return r.Flags.Get(key)
}

// Label returns the label for key, a nil registry yields a detached label
func (r *Registry) Label(key string) *AtomicString {
	if r == nil {
		return new(AtomicString)
	}
	return r.Labels.Get(key)
}

// TotalCount returns total metrics across all types
func (r *Registry) TotalCount() int {
	return r.Counters.Count() + r.Flags.Count() + r.Labels.Count()
}

// Lines renders every metric as "key=value" in sorted order per type
func (r *Registry) Lines() []string {
	lines := make([]string, 0, r.TotalCount())
	for k, v := range r.Counters.All() {
		lines = append(lines, fmt.Sprintf("%s=%d", k, v.Load()))
	}
	for k, v := range r.Flags.All() {
		lines = append(lines, fmt.Sprintf("%s=%t", k, v.Load()))
	}
	for k, v := range r.Labels.All() {
		lines = append(lines, fmt.Sprintf("%s=%q", k, v.Load()))
	}
	return lines
}
