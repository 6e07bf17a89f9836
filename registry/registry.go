package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/agentfoundry/agentkernel/agent"
)

// Dependencies wires collaborators into the registry. Store is required.
type Dependencies struct {
	Store  Store
	Logger *zap.Logger
	Clock  func() time.Time
}

// Registry stores, versions, diffs, and rolls back agent blueprints.
// Mutations are serialized per agent id; operations on distinct agents
// proceed concurrently.
type Registry struct {
	store  Store
	logger *zap.Logger
	clock  func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New(deps Dependencies) (*Registry, error) {
	if deps.Store == nil {
		return nil, fmt.Errorf("new registry: %w", ErrMissingStore)
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	return &Registry{
		store:  deps.Store,
		logger: deps.Logger,
		clock:  deps.Clock,
		locks:  map[string]*sync.Mutex{},
	}, nil
}

func (r *Registry) agentLock(agentID string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock, ok := r.locks[agentID]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[agentID] = lock
	}
	return lock
}

// LatestSentinel resolves to the most recent revision in GetRevision.
const LatestSentinel = "latest"

// RegisterRevision snapshots the blueprint as the agent's next revision. The
// first revision for an agent is 1.0.0 with no predecessor and no diff;
// later revisions bump the patch component and carry a structural diff
// against their immediate predecessor.
func (r *Registry) RegisterRevision(ctx context.Context, blueprint agent.Blueprint, author, description string, tags []string) (Revision, error) {
	if blueprint.ID == "" {
		return Revision{}, fmt.Errorf("register revision: %w", ErrAgentIDEmpty)
	}
	lock := r.agentLock(blueprint.ID)
	lock.Lock()
	defer lock.Unlock()
	return r.appendRevision(ctx, blueprint, author, description, tags)
}

// appendRevision assumes the caller holds the agent's lock.
func (r *Registry) appendRevision(ctx context.Context, blueprint agent.Blueprint, author, description string, tags []string) (Revision, error) {
	latest, exists, err := r.store.Latest(ctx, blueprint.ID)
	if err != nil {
		return Revision{}, fmt.Errorf("load latest revision for %q: %w", blueprint.ID, err)
	}

	revision := Revision{
		AgentID:     blueprint.ID,
		Version:     InitialVersion,
		Blueprint:   agent.CloneBlueprint(blueprint),
		Author:      author,
		Description: description,
		CreatedAt:   r.clock().UTC(),
	}
	if len(tags) > 0 {
		revision.Tags = make([]string, len(tags))
		copy(revision.Tags, tags)
	}
	if exists {
		version, err := nextVersion(latest.Version)
		if err != nil {
			return Revision{}, fmt.Errorf("increment version for %q: %w", blueprint.ID, err)
		}
		revision.Version = version
		revision.PreviousVersion = latest.Version
		revision.Diff = ComputeDiff(latest.Blueprint, blueprint)
	}

	if err := r.store.Append(ctx, revision); err != nil {
		return Revision{}, fmt.Errorf("append revision %s for %q: %w", revision.Version, blueprint.ID, err)
	}
	r.logger.Info("revision registered",
		zap.String("agent_id", revision.AgentID),
		zap.String("version", revision.Version),
		zap.String("author", author),
	)
	return CloneRevision(revision), nil
}

// GetRevision looks up an exact version, or the most recent one when version
// is "latest". Absence is reported through the boolean, not an error.
func (r *Registry) GetRevision(ctx context.Context, agentID, version string) (Revision, bool, error) {
	if version == LatestSentinel {
		return r.store.Latest(ctx, agentID)
	}
	return r.store.Get(ctx, agentID, version)
}

// ListRevisions returns the agent's revisions newest first, paginated. An
// unknown agent yields an empty slice.
func (r *Registry) ListRevisions(ctx context.Context, agentID string, limit, offset int) ([]Revision, error) {
	revisions, err := r.store.List(ctx, agentID)
	if err != nil {
		return nil, err
	}
	return paginate(revisions, limit, offset), nil
}

// ListAgents returns the distinct agent ids holding at least one revision.
func (r *Registry) ListAgents(ctx context.Context) ([]string, error) {
	agents, err := r.store.Agents(ctx)
	if err != nil {
		return nil, err
	}
	sort.Strings(agents)
	return agents, nil
}

// Query filters revisions with AND semantics. Tag matching requires a
// non-empty intersection with the query's tag set.
type Query struct {
	AgentID string
	Author  string
	Tags    []string
	Limit   int
	Offset  int
}

// QueryRevisions applies the query's filters, orders newest first, and
// paginates after filtering.
func (r *Registry) QueryRevisions(ctx context.Context, query Query) ([]Revision, error) {
	agentIDs := []string{query.AgentID}
	if query.AgentID == "" {
		all, err := r.store.Agents(ctx)
		if err != nil {
			return nil, err
		}
		sort.Strings(all)
		agentIDs = all
	}

	var matched []Revision
	for _, agentID := range agentIDs {
		revisions, err := r.store.List(ctx, agentID)
		if err != nil {
			return nil, err
		}
		for _, revision := range revisions {
			if query.Author != "" && revision.Author != query.Author {
				continue
			}
			if len(query.Tags) > 0 && !tagsIntersect(revision.Tags, query.Tags) {
				continue
			}
			matched = append(matched, revision)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return paginate(matched, query.Limit, query.Offset), nil
}

// Rollback re-registers the target version's blueprint under a brand-new
// version number. The target's number is never reused.
func (r *Registry) Rollback(ctx context.Context, agentID, targetVersion, author, reason string) (Revision, error) {
	if agentID == "" {
		return Revision{}, fmt.Errorf("rollback: %w", ErrAgentIDEmpty)
	}
	lock := r.agentLock(agentID)
	lock.Lock()
	defer lock.Unlock()

	target, exists, err := r.store.Get(ctx, agentID, targetVersion)
	if err != nil {
		return Revision{}, fmt.Errorf("load rollback target %s for %q: %w", targetVersion, agentID, err)
	}
	if !exists {
		return Revision{}, fmt.Errorf("rollback target %s for %q: %w", targetVersion, agentID, ErrNotFound)
	}

	description := fmt.Sprintf("Rollback to version %s: %s", targetVersion, reason)
	revision, err := r.appendRevision(ctx, target.Blueprint, author, description, []string{"rollback"})
	if err != nil {
		return Revision{}, err
	}
	r.logger.Info("revision rolled back",
		zap.String("agent_id", agentID),
		zap.String("target_version", targetVersion),
		zap.String("new_version", revision.Version),
	)
	return revision, nil
}

// CompareVersions diffs two registered versions, treating versionB as the
// baseline regardless of chronological order.
func (r *Registry) CompareVersions(ctx context.Context, agentID, versionA, versionB string) (*Diff, error) {
	revisionA, existsA, err := r.store.Get(ctx, agentID, versionA)
	if err != nil {
		return nil, err
	}
	if !existsA {
		return nil, fmt.Errorf("compare version %s for %q: %w", versionA, agentID, ErrNotFound)
	}
	revisionB, existsB, err := r.store.Get(ctx, agentID, versionB)
	if err != nil {
		return nil, err
	}
	if !existsB {
		return nil, fmt.Errorf("compare version %s for %q: %w", versionB, agentID, ErrNotFound)
	}
	return ComputeDiff(revisionB.Blueprint, revisionA.Blueprint), nil
}

// DeleteAgent purges all revisions for the agent. Idempotent.
func (r *Registry) DeleteAgent(ctx context.Context, agentID string) error {
	if agentID == "" {
		return fmt.Errorf("delete agent: %w", ErrAgentIDEmpty)
	}
	lock := r.agentLock(agentID)
	lock.Lock()
	defer lock.Unlock()

	if err := r.store.Purge(ctx, agentID); err != nil {
		return fmt.Errorf("purge revisions for %q: %w", agentID, err)
	}
	r.logger.Info("agent deleted", zap.String("agent_id", agentID))
	return nil
}

func paginate(revisions []Revision, limit, offset int) []Revision {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(revisions) {
		return []Revision{}
	}
	revisions = revisions[offset:]
	if limit > 0 && limit < len(revisions) {
		revisions = revisions[:limit]
	}
	return revisions
}

func tagsIntersect(revisionTags, queryTags []string) bool {
	for _, queryTag := range queryTags {
		for _, revisionTag := range revisionTags {
			if revisionTag == queryTag {
				return true
			}
		}
	}
	return false
}
