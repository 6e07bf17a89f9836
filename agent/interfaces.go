package agent

import "context"

// Backend performs a task's real-world effect. It is the sole side-effecting
// boundary of the kernel; an error return is fatal to the current run and is
// propagated to the caller unretried.
type Backend interface {
	Execute(ctx context.Context, task TaskSpec, state ExecutionContext) (TaskResult, error)
}

// ContextStore persists execution context snapshots keyed by agent id.
type ContextStore interface {
	Save(ctx context.Context, state ExecutionContext) error
	Load(ctx context.Context, agentID string) (ExecutionContext, error)
}

// EventSink receives the low-level execution trace, distinct from the intent
// ledger's audit trail.
type EventSink interface {
	Publish(ctx context.Context, event Event) error
}

// IDGenerator creates plan ids at the orchestration boundary.
type IDGenerator interface {
	NewPlanID(ctx context.Context) (string, error)
}
