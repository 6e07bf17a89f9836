package registry

import "context"

// Store is the persistence contract for revisions. Implementations must keep
// per-agent append order and tolerate concurrent use across agent ids; the
// registry serializes mutations within one agent id itself.
type Store interface {
	// Append persists a new revision. It fails with ErrVersionConflict when
	// the (agent id, version) pair already exists.
	Append(ctx context.Context, revision Revision) error
	// Get returns the revision for an exact version, reporting absence
	// through the boolean rather than an error.
	Get(ctx context.Context, agentID, version string) (Revision, bool, error)
	// Latest returns the most recently appended revision for the agent.
	Latest(ctx context.Context, agentID string) (Revision, bool, error)
	// List returns all revisions for the agent, newest first.
	List(ctx context.Context, agentID string) ([]Revision, error)
	// Agents returns the distinct agent ids with at least one revision.
	Agents(ctx context.Context) ([]string, error)
	// Purge removes every revision for the agent. Unknown agents are a no-op.
	Purge(ctx context.Context, agentID string) error
}
