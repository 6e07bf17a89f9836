package registry

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/agentfoundry/agentkernel/agent"
)

// InitialVersion is assigned to the first revision registered for an agent.
const InitialVersion = "1.0.0"

// Revision is a versioned, immutable snapshot of a blueprint.
type Revision struct {
	AgentID         string          `json:"agent_id"`
	Version         string          `json:"version"`
	Blueprint       agent.Blueprint `json:"blueprint"`
	Author          string          `json:"author"`
	Description     string          `json:"description"`
	CreatedAt       time.Time       `json:"created_at"`
	Tags            []string        `json:"tags,omitempty"`
	PreviousVersion string          `json:"previous_version,omitempty"`
	Diff            *Diff           `json:"diff,omitempty"`
}

// CloneRevision returns a deep copy safe for in-memory stores and snapshots.
func CloneRevision(in Revision) Revision {
	out := in
	out.Blueprint = agent.CloneBlueprint(in.Blueprint)
	if len(in.Tags) > 0 {
		out.Tags = make([]string, len(in.Tags))
		copy(out.Tags, in.Tags)
	}
	if in.Diff != nil {
		out.Diff = cloneDiff(in.Diff)
	}
	return out
}

// nextVersion increments only the patch component. Revision numbering is
// driven by registration order; the blueprint's self-reported version is
// never consulted.
func nextVersion(version string) (string, error) {
	parts := strings.Split(version, ".")
	if len(parts) != 3 {
		return "", fmt.Errorf("%w: %q", ErrVersionMalformed, version)
	}
	patch, err := strconv.Atoi(parts[2])
	if err != nil || patch < 0 {
		return "", fmt.Errorf("%w: %q", ErrVersionMalformed, version)
	}
	return fmt.Sprintf("%s.%s.%d", parts[0], parts[1], patch+1), nil
}
