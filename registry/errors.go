package registry

import "errors"

var (
	// ErrNotFound is returned by write-path operations whose target agent or
	// version does not exist. Read paths report absence without an error.
	ErrNotFound = errors.New("revision not found")
	// ErrAgentIDEmpty is returned for blueprints without an agent id.
	ErrAgentIDEmpty = errors.New("agent id is empty")
	// ErrVersionMalformed is returned when a stored version string cannot be
	// parsed for patch incrementing.
	ErrVersionMalformed = errors.New("malformed revision version")
	// ErrVersionConflict is returned by stores when appending a version that
	// already exists for the agent.
	ErrVersionConflict = errors.New("revision version already exists")
	// ErrMissingStore is returned when a registry is built without a store.
	ErrMissingStore = errors.New("revision store is required")
)
