package ledger

import (
	"maps"
	"time"
)

// IntentStatus is the caller-managed lifecycle state of an intent.
type IntentStatus string

const (
	IntentStatusActive   IntentStatus = "active"
	IntentStatusResolved IntentStatus = "resolved"
	IntentStatusArchived IntentStatus = "archived"
)

// Intent is a tracked objective, versioned over time and cross-linked to the
// hypotheses and workflows explored to satisfy it. The link sets reflect
// current membership only; the audit trail retains every transition.
type Intent struct {
	ID             string         `json:"id"`
	Description    string         `json:"description"`
	CreatedBy      string         `json:"created_by"`
	Status         IntentStatus   `json:"status"`
	CurrentVersion int            `json:"current_version"`
	Parameters     map[string]any `json:"parameters,omitempty"`
	HypothesisIDs  []string       `json:"hypothesis_ids,omitempty"`
	WorkflowIDs    []string       `json:"workflow_ids,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// AuditEventType classifies one audit trail entry.
type AuditEventType string

const (
	EventCreated            AuditEventType = "CREATED"
	EventUpdated            AuditEventType = "UPDATED"
	EventHypothesisLinked   AuditEventType = "HYPOTHESIS_LINKED"
	EventHypothesisUnlinked AuditEventType = "HYPOTHESIS_UNLINKED"
	EventWorkflowLinked     AuditEventType = "WORKFLOW_LINKED"
	EventWorkflowUnlinked   AuditEventType = "WORKFLOW_UNLINKED"
)

// AuditEvent is one append-only entry in an intent's audit trail. Sequence is
// a per-intent monotonic counter so the trail stays totally ordered even when
// the clock ties.
type AuditEvent struct {
	Type      AuditEventType `json:"type"`
	IntentID  string         `json:"intent_id"`
	Sequence  int            `json:"sequence"`
	Timestamp time.Time      `json:"timestamp"`
	Actor     string         `json:"actor"`
	Payload   map[string]any `json:"payload,omitempty"`
}

// CloneIntent returns a deep copy safe for snapshots.
func CloneIntent(in Intent) Intent {
	out := in
	if in.Parameters != nil {
		out.Parameters = make(map[string]any, len(in.Parameters))
		maps.Copy(out.Parameters, in.Parameters)
	}
	if len(in.HypothesisIDs) > 0 {
		out.HypothesisIDs = make([]string, len(in.HypothesisIDs))
		copy(out.HypothesisIDs, in.HypothesisIDs)
	}
	if len(in.WorkflowIDs) > 0 {
		out.WorkflowIDs = make([]string, len(in.WorkflowIDs))
		copy(out.WorkflowIDs, in.WorkflowIDs)
	}
	return out
}

// CloneAuditEvent returns a deep copy of one trail entry.
func CloneAuditEvent(in AuditEvent) AuditEvent {
	out := in
	if in.Payload != nil {
		out.Payload = make(map[string]any, len(in.Payload))
		maps.Copy(out.Payload, in.Payload)
	}
	return out
}
