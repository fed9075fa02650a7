package events

import (
	"time"

	"github.com/orchestra-ai/orchestra/internal/types"
)

// EventType identifies the category and nature of an orchestration event.
type EventType string

// Run lifecycle events.
// These events track the overall plan/execute/report lifecycle of a run.
const (
	EventRunStarted   EventType = "run.started"
	EventRunCompleted EventType = "run.completed"
	EventRunFailed    EventType = "run.failed"
	EventRunCancelled EventType = "run.cancelled"
)

// Planning events.
const (
	EventPlanStarted EventType = "plan.started"
	EventPlanCreated EventType = "plan.created"
)

// Subtask execution events.
// One started event and exactly one completed or failed event is
// emitted per subtask, in plan order.
const (
	EventSubtaskStarted   EventType = "subtask.started"
	EventSubtaskCompleted EventType = "subtask.completed"
	EventSubtaskFailed    EventType = "subtask.failed"
)

// Reporting events.
const (
	EventReportStarted EventType = "report.started"
	EventReportCreated EventType = "report.created"
)

// String returns the string representation of the event type.
func (t EventType) String() string {
	return string(t)
}

// Event is a single observability record emitted during a run. Events
// of one run share the run's trace ID and are emitted in the order the
// underlying phase transitions occur.
type Event struct {
	// Type identifies the category and nature of the event.
	Type EventType `json:"type"`

	// Timestamp records when the event occurred.
	Timestamp time.Time `json:"timestamp"`

	// TraceID correlates the event with one orchestration run.
	TraceID types.ID `json:"trace_id"`

	// Phase is the run status at emission time.
	Phase string `json:"phase,omitempty"`

	// Role is the worker role for subtask events (empty otherwise).
	Role string `json:"role,omitempty"`

	// SubtaskIndex is the plan position for subtask events.
	SubtaskIndex int `json:"subtask_index,omitempty"`

	// Duration is how long the completed operation took, where known.
	Duration time.Duration `json:"duration,omitempty"`

	// Error carries the failure description for failed events.
	Error string `json:"error,omitempty"`

	// Attrs contains additional key-value attributes for flexible
	// event metadata.
	Attrs map[string]any `json:"attrs,omitempty"`
}

// Filter defines criteria for filtering events in subscriptions.
// All filter fields use AND logic; empty fields act as wildcards.
type Filter struct {
	// Types filters by event types (empty = all types).
	Types []EventType `json:"types,omitempty"`

	// TraceID filters by run (empty = all runs).
	TraceID types.ID `json:"trace_id,omitempty"`

	// Role filters by worker role (empty = all roles).
	Role string `json:"role,omitempty"`
}

// Matches determines if the given event matches this filter's criteria.
// Empty filter fields act as wildcards that match any value.
func (f *Filter) Matches(event Event) bool {
	if len(f.Types) > 0 {
		matched := false
		for _, t := range f.Types {
			if event.Type == t {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	if !f.TraceID.IsZero() && event.TraceID != f.TraceID {
		return false
	}

	if f.Role != "" && event.Role != f.Role {
		return false
	}

	return true
}
