package agent

import "errors"

var (
	// ErrMissingBackend is returned when an orchestrator is built without an
	// execution backend.
	ErrMissingBackend = errors.New("execution backend is required")
	// ErrBlueprintInvalid is returned for blueprints missing an agent id.
	ErrBlueprintInvalid = errors.New("blueprint is invalid")
	// ErrNoContext is returned when no execution context has been built yet.
	ErrNoContext = errors.New("no execution context")
	// ErrContextNil is returned when a nil context.Context reaches the API.
	ErrContextNil = errors.New("context must not be nil")
	// ErrContextNotFound is returned by context stores for unknown agent ids.
	ErrContextNotFound = errors.New("execution context not found")
	// ErrEventInvalid is returned by sinks for structurally invalid events.
	ErrEventInvalid = errors.New("event is invalid")
)
