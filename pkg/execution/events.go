package execution

import (
	"time"
)

// EventDomain is the eventbus domain for router events.
const EventDomain = "execution"

// Event types published by the router.
const (
	EventExecutionStarted   = "execution.started"
	EventExecutionCompleted = "execution.completed"
	EventExecutionFailed    = "execution.failed"
	EventExecutionBlocked   = "execution.blocked"
)

// Event is the router's eventbus payload. CorrelationID carries the
// ExecutionResult ID so subscribers can stitch started/completed pairs
// together.
type Event struct {
	EventType      string         `json:"event_type"`
	Query          string         `json:"query"`
	SkillName      string         `json:"skill_name,omitempty"`
	Arguments      map[string]any `json:"arguments,omitempty"`
	Confidence     float64        `json:"confidence,omitempty"`
	Warning        string         `json:"warning,omitempty"`
	DryRun         bool           `json:"dry_run,omitempty"`
	EventTimestamp time.Time      `json:"timestamp"`
	ResultID       string         `json:"result_id"`
}

func (e *Event) Type() string          { return e.EventType }
func (e *Event) Domain() string        { return EventDomain }
func (e *Event) Payload() any          { return e }
func (e *Event) Timestamp() time.Time  { return e.EventTimestamp }
func (e *Event) CorrelationID() string { return e.ResultID }
