package agent_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/agentfoundry/agentkernel/agent"
)

// scriptedBackend records every dispatched task and answers with a scripted
// outcome function.
type scriptedBackend struct {
	mu    sync.Mutex
	calls []agent.TaskSpec
	fn    func(task agent.TaskSpec, state agent.ExecutionContext) (agent.TaskResult, error)
}

func (b *scriptedBackend) Execute(_ context.Context, task agent.TaskSpec, state agent.ExecutionContext) (agent.TaskResult, error) {
	b.mu.Lock()
	b.calls = append(b.calls, agent.CloneTaskSpec(task))
	b.mu.Unlock()
	return b.fn(task, state)
}

func (b *scriptedBackend) taskNames() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	names := make([]string, len(b.calls))
	for i, call := range b.calls {
		names[i] = call.Name
	}
	return names
}

func succeedingBackend() *scriptedBackend {
	return &scriptedBackend{
		fn: func(task agent.TaskSpec, _ agent.ExecutionContext) (agent.TaskResult, error) {
			return agent.TaskResult{
				TaskID: task.ID,
				Status: agent.TaskStatusSuccess,
				Output: "ok",
			}, nil
		},
	}
}

// counterIDGenerator provides deterministic in-process plan ids.
type counterIDGenerator struct {
	counter atomic.Uint64
}

func (g *counterIDGenerator) NewPlanID(_ context.Context) (string, error) {
	return fmt.Sprintf("plan-%06d", g.counter.Add(1)), nil
}

func fixedClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	current := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		current = current.Add(time.Millisecond)
		return current
	}
}

func reasoningBlueprint(agentID string, maxIterations int, strategy agent.PlanningStrategy, reflection bool, tools ...agent.ToolDescriptor) agent.Blueprint {
	return agent.Blueprint{
		ID:        agentID,
		Name:      agentID,
		Goal:      "collect and summarize signals",
		RiskLevel: agent.RiskLevelLow,
		Tools:     tools,
		Reasoning: &agent.ReasoningConfig{
			Enabled:           true,
			MaxIterations:     maxIterations,
			Pattern:           "plan-act-reflect",
			ReflectionEnabled: reflection,
			PlanningStrategy:  strategy,
		},
	}
}

func enabledTool(name string) agent.ToolDescriptor {
	return agent.ToolDescriptor{Name: name, Enabled: true}
}
