package agent

import (
	"fmt"
	"time"
)

// EventType is emitted by the orchestrator for observability and streaming.
type EventType string

const (
	EventTypeAgentInitialized    EventType = "agent_initialized"
	EventTypeIterationStarted    EventType = "iteration_started"
	EventTypePlanCreated         EventType = "plan_created"
	EventTypeTaskDispatched      EventType = "task_dispatched"
	EventTypeObservationRecorded EventType = "observation_recorded"
	EventTypeReflectionRecorded  EventType = "reflection_recorded"
	EventTypeProgressAssessed    EventType = "progress_assessed"
	EventTypeRunCompleted        EventType = "run_completed"
	EventTypeRunFailed           EventType = "run_failed"
)

// Event is intentionally compact so adapters can map it to logs, metrics, or
// streams.
type Event struct {
	AgentID     string    `json:"agent_id"`
	Iteration   int       `json:"iteration"`
	Type        EventType `json:"type"`
	TaskID      string    `json:"task_id,omitempty"`
	Description string    `json:"description,omitempty"`
	Timestamp   time.Time `json:"timestamp,omitempty"`
}

var knownEventTypes = map[EventType]struct{}{
	EventTypeAgentInitialized:    {},
	EventTypeIterationStarted:    {},
	EventTypePlanCreated:         {},
	EventTypeTaskDispatched:      {},
	EventTypeObservationRecorded: {},
	EventTypeReflectionRecorded:  {},
	EventTypeProgressAssessed:    {},
	EventTypeRunCompleted:        {},
	EventTypeRunFailed:           {},
}

// ValidateEvent rejects events that sinks could not attribute to an agent run.
func ValidateEvent(event Event) error {
	if event.AgentID == "" {
		return fmt.Errorf("%w: empty agent id", ErrEventInvalid)
	}
	if event.Iteration < 0 {
		return fmt.Errorf("%w: negative iteration %d", ErrEventInvalid, event.Iteration)
	}
	if _, ok := knownEventTypes[event.Type]; !ok {
		return fmt.Errorf("%w: unknown type %q", ErrEventInvalid, event.Type)
	}
	return nil
}
