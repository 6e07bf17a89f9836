package agent

import (
	"fmt"
	"sort"
	"strings"
)

// Planner produces one iteration's plan from the blueprint and the context
// accumulated so far. Implementations must be pure: the orchestrator assigns
// plan ids and appends the plan to the context.
type Planner interface {
	Plan(blueprint Blueprint, state ExecutionContext) Plan
}

// plannerFor maps the configured strategy to its implementation. Unknown or
// empty strategies fall back to sequential.
func plannerFor(strategy PlanningStrategy) Planner {
	switch strategy {
	case PlanningStrategyAdaptive:
		return adaptivePlanner{}
	case PlanningStrategyHierarchical:
		return hierarchicalPlanner{}
	default:
		return sequentialPlanner{}
	}
}

func taskID(kind TaskKind, iteration int, name string) string {
	return fmt.Sprintf("%s-%d-%s", kind, iteration, name)
}

func toolTask(tool ToolDescriptor, iteration int) TaskSpec {
	return TaskSpec{
		ID:        taskID(TaskKindTool, iteration, tool.Name),
		Kind:      TaskKindTool,
		Name:      tool.Name,
		Arguments: tool.Parameters,
	}
}

// sequentialPlanner invokes every enabled tool in declared order.
type sequentialPlanner struct{}

func (sequentialPlanner) Plan(blueprint Blueprint, state ExecutionContext) Plan {
	iteration := state.CurrentIteration + 1
	tools := blueprint.EnabledTools()
	tasks := make([]TaskSpec, 0, len(tools))
	for _, tool := range tools {
		tasks = append(tasks, toolTask(tool, iteration))
	}
	return Plan{
		Iteration: iteration,
		Strategy:  PlanningStrategySequential,
		Reasoning: fmt.Sprintf(
			"Sequential plan for iteration %d: execute %d enabled tools in declared order.",
			iteration,
			len(tasks),
		),
		Tasks: tasks,
	}
}

// adaptivePlanner consults accumulated observations and the latest
// reflection: tools that already succeeded are skipped, previously failed
// tools and reflection-prioritized tools move to the front.
type adaptivePlanner struct{}

func (adaptivePlanner) Plan(blueprint Blueprint, state ExecutionContext) Plan {
	iteration := state.CurrentIteration + 1
	succeeded := map[string]bool{}
	failed := map[string]bool{}
	for _, obs := range state.Observations {
		switch obs.Status {
		case TaskStatusSuccess:
			succeeded[obs.TaskName] = true
			delete(failed, obs.TaskName)
		case TaskStatusFailed:
			failed[obs.TaskName] = true
			delete(succeeded, obs.TaskName)
		}
	}
	prioritized := map[string]bool{}
	if len(state.Reflections) > 0 {
		last := state.Reflections[len(state.Reflections)-1]
		for _, adjustment := range last.Adjustments {
			if name, ok := strings.CutPrefix(adjustment, "prioritize "); ok {
				prioritized[name] = true
			}
		}
	}

	tools := blueprint.EnabledTools()
	var front, rest []TaskSpec
	skipped := 0
	for _, tool := range tools {
		if succeeded[tool.Name] {
			skipped++
			continue
		}
		task := toolTask(tool, iteration)
		if failed[tool.Name] || prioritized[tool.Name] {
			front = append(front, task)
		} else {
			rest = append(rest, task)
		}
	}
	tasks := append(front, rest...)
	return Plan{
		Iteration: iteration,
		Strategy:  PlanningStrategyAdaptive,
		Reasoning: fmt.Sprintf(
			"Adaptive plan for iteration %d: %d of %d enabled tools remaining, %d already satisfied, %d retried first.",
			iteration,
			len(tasks),
			len(tools),
			skipped,
			len(front),
		),
		Tasks: tasks,
	}
}

// hierarchicalPlanner phases the goal's decomposition: tools execute in
// ascending priority (the tool's "priority" parameter, default 100), ties
// keeping declared order.
type hierarchicalPlanner struct{}

const defaultToolPriority = 100

func toolPriority(tool ToolDescriptor) int {
	switch v := tool.Parameters["priority"].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return defaultToolPriority
	}
}

func (hierarchicalPlanner) Plan(blueprint Blueprint, state ExecutionContext) Plan {
	iteration := state.CurrentIteration + 1
	tools := blueprint.EnabledTools()
	sort.SliceStable(tools, func(i, j int) bool {
		return toolPriority(tools[i]) < toolPriority(tools[j])
	})
	phases := map[int]struct{}{}
	tasks := make([]TaskSpec, 0, len(tools))
	for _, tool := range tools {
		phases[toolPriority(tool)] = struct{}{}
		tasks = append(tasks, toolTask(tool, iteration))
	}
	return Plan{
		Iteration: iteration,
		Strategy:  PlanningStrategyHierarchical,
		Reasoning: fmt.Sprintf(
			"Hierarchical plan for iteration %d: %d tools across %d priority phases.",
			iteration,
			len(tasks),
			len(phases),
		),
		Tasks: tasks,
	}
}
