package sqlitestore_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/agentfoundry/agentkernel/agent"
	"github.com/agentfoundry/agentkernel/registry"
	"github.com/agentfoundry/agentkernel/registry/sqlitestore"
)

func openStore(t *testing.T) *sqlitestore.Store {
	t.Helper()
	store, err := sqlitestore.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleRevision(agentID, version string) registry.Revision {
	return registry.Revision{
		AgentID: agentID,
		Version: version,
		Blueprint: agent.Blueprint{
			ID:     agentID,
			Name:   "researcher",
			Goal:   "goal " + version,
			Config: map[string]any{"temperature": 0.2},
			Tools:  []agent.ToolDescriptor{{Name: "search", Enabled: true}},
		},
		Author:      "ana",
		Description: "snapshot",
		CreatedAt:   time.Date(2025, 6, 1, 12, 0, 0, 123456789, time.UTC),
		Tags:        []string{"stable"},
	}
}

func TestStore_RoundTrip(t *testing.T) {
	t.Parallel()

	store := openStore(t)
	ctx := context.Background()

	in := sampleRevision("agent-1", "1.0.0")
	require.NoError(t, store.Append(ctx, in))

	second := sampleRevision("agent-1", "1.0.1")
	second.PreviousVersion = "1.0.0"
	second.Diff = &registry.Diff{
		Added:    map[string]any{},
		Removed:  map[string]any{},
		Modified: map[string]registry.Change{"goal": {Old: "goal 1.0.0", New: "goal 1.0.1"}},
	}
	require.NoError(t, store.Append(ctx, second))

	got, exists, err := store.Get(ctx, "agent-1", "1.0.0")
	require.NoError(t, err)
	require.True(t, exists)
	require.Equal(t, in.Blueprint.Goal, got.Blueprint.Goal)
	require.Equal(t, in.Blueprint.Tools, got.Blueprint.Tools)
	require.Equal(t, in.Tags, got.Tags)
	require.Empty(t, got.PreviousVersion)
	require.Nil(t, got.Diff)
	require.True(t, got.CreatedAt.Equal(in.CreatedAt))

	latest, exists, err := store.Latest(ctx, "agent-1")
	require.NoError(t, err)
	require.True(t, exists)
	require.Equal(t, "1.0.1", latest.Version)
	require.Equal(t, "1.0.0", latest.PreviousVersion)
	require.NotNil(t, latest.Diff)
	require.Equal(t, "goal 1.0.0", latest.Diff.Modified["goal"].Old)

	_, exists, err = store.Get(ctx, "agent-1", "9.9.9")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestStore_DuplicateVersionConflict(t *testing.T) {
	t.Parallel()

	store := openStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, sampleRevision("agent-1", "1.0.0")))
	err := store.Append(ctx, sampleRevision("agent-1", "1.0.0"))
	require.ErrorIs(t, err, registry.ErrVersionConflict)

	require.NoError(t, store.Append(ctx, sampleRevision("agent-2", "1.0.0")))
}

func TestStore_ListOrderAndAgents(t *testing.T) {
	t.Parallel()

	store := openStore(t)
	ctx := context.Background()

	for _, version := range []string{"1.0.0", "1.0.1", "1.0.2"} {
		require.NoError(t, store.Append(ctx, sampleRevision("agent-1", version)))
	}
	require.NoError(t, store.Append(ctx, sampleRevision("agent-2", "1.0.0")))

	listed, err := store.List(ctx, "agent-1")
	require.NoError(t, err)
	require.Len(t, listed, 3)
	require.Equal(t, "1.0.2", listed[0].Version)
	require.Equal(t, "1.0.0", listed[2].Version)

	agents, err := store.Agents(ctx)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"agent-1", "agent-2"}, agents)
}

func TestStore_PurgeIsIdempotent(t *testing.T) {
	t.Parallel()

	store := openStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, sampleRevision("agent-1", "1.0.0")))
	require.NoError(t, store.Purge(ctx, "agent-1"))
	require.NoError(t, store.Purge(ctx, "agent-1"))

	_, exists, err := store.Latest(ctx, "agent-1")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestStore_SurvivesReopen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "revisions.db")
	ctx := context.Background()

	store, err := sqlitestore.Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Append(ctx, sampleRevision("agent-1", "1.0.0")))
	require.NoError(t, store.Close())

	reopened, err := sqlitestore.Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, exists, err := reopened.Get(ctx, "agent-1", "1.0.0")
	require.NoError(t, err)
	require.True(t, exists)
	require.Equal(t, "goal 1.0.0", got.Blueprint.Goal)
}

func TestRegistryOnSQLiteStore(t *testing.T) {
	t.Parallel()

	store := openStore(t)
	reg, err := registry.New(registry.Dependencies{Store: store})
	require.NoError(t, err)
	ctx := context.Background()

	blueprint := agent.Blueprint{ID: "agent-1", Name: "researcher", Goal: "v1"}
	_, err = reg.RegisterRevision(ctx, blueprint, "ana", "initial", nil)
	require.NoError(t, err)

	blueprint.Goal = "v2"
	second, err := reg.RegisterRevision(ctx, blueprint, "ana", "revise", nil)
	require.NoError(t, err)
	require.Equal(t, "1.0.1", second.Version)

	restored, err := reg.Rollback(ctx, "agent-1", "1.0.0", "ops", "regression")
	require.NoError(t, err)
	require.Equal(t, "1.0.2", restored.Version)
	require.Equal(t, "v1", restored.Blueprint.Goal)
}
