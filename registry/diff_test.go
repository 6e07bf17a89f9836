package registry_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/agentfoundry/agentkernel/agent"
	"github.com/agentfoundry/agentkernel/registry"
)

func TestComputeDiff_FieldClassification(t *testing.T) {
	t.Parallel()

	oldBlueprint := agent.Blueprint{
		ID:        "agent-1",
		Name:      "researcher",
		Goal:      "collect signals",
		RiskLevel: agent.RiskLevelLow,
		Config:    map[string]any{"temperature": 0.2, "prompt": "baseline"},
		Tools: []agent.ToolDescriptor{
			{Name: "search", Enabled: true},
			{Name: "parse", Enabled: true},
		},
	}
	newBlueprint := agent.Blueprint{
		ID:        "agent-1",
		Name:      "researcher",
		Goal:      "collect and rank signals",
		RiskLevel: agent.RiskLevelLow,
		Config:    map[string]any{"temperature": 0.7, "top_p": 0.9},
		Tools: []agent.ToolDescriptor{
			{Name: "search", Enabled: true},
		},
		Workflows: []agent.WorkflowRef{{ID: "wf-1", Name: "triage"}},
	}

	diff := registry.ComputeDiff(oldBlueprint, newBlueprint)

	require.Equal(t, map[string]any{
		"config.top_p":  0.9,
		"workflow.wf-1": agent.WorkflowRef{ID: "wf-1", Name: "triage"},
	}, diff.Added)
	require.Equal(t, map[string]any{
		"config.prompt": "baseline",
		"tool.parse":    agent.ToolDescriptor{Name: "parse", Enabled: true},
	}, diff.Removed)
	require.Equal(t, map[string]registry.Change{
		"goal":               {Old: "collect signals", New: "collect and rank signals"},
		"config.temperature": {Old: 0.2, New: 0.7},
	}, diff.Modified)
}

func TestComputeDiff_IdenticalBlueprintsAreEmpty(t *testing.T) {
	t.Parallel()

	blueprint := agent.Blueprint{
		ID:        "agent-1",
		Name:      "researcher",
		Goal:      "collect signals",
		Config:    map[string]any{"temperature": 0.2},
		Reasoning: &agent.ReasoningConfig{Enabled: true, MaxIterations: 3},
	}

	diff := registry.ComputeDiff(blueprint, agent.CloneBlueprint(blueprint))
	require.True(t, diff.Empty())
}

func TestComputeDiff_ScalarIntroductionIsAddition(t *testing.T) {
	t.Parallel()

	oldBlueprint := agent.Blueprint{ID: "agent-1", Name: "researcher"}
	newBlueprint := agent.Blueprint{ID: "agent-1", Name: "researcher", Goal: "new goal"}

	diff := registry.ComputeDiff(oldBlueprint, newBlueprint)
	require.Empty(t, diff.Modified)
	require.Empty(t, diff.Removed)
	require.Equal(t, map[string]any{"goal": "new goal"}, diff.Added)
}

func TestComputeDiff_ReasoningFields(t *testing.T) {
	t.Parallel()

	oldBlueprint := agent.Blueprint{
		ID: "agent-1",
		Reasoning: &agent.ReasoningConfig{
			Enabled:          true,
			MaxIterations:    3,
			PlanningStrategy: agent.PlanningStrategySequential,
		},
	}
	newBlueprint := agent.Blueprint{
		ID: "agent-1",
		Reasoning: &agent.ReasoningConfig{
			Enabled:          true,
			MaxIterations:    5,
			PlanningStrategy: agent.PlanningStrategyAdaptive,
		},
	}

	diff := registry.ComputeDiff(oldBlueprint, newBlueprint)
	want := map[string]registry.Change{
		"reasoning.max_iterations":    {Old: 3, New: 5},
		"reasoning.planning_strategy": {Old: "sequential", New: "adaptive"},
	}
	require.Empty(t, cmp.Diff(want, diff.Modified))
}
