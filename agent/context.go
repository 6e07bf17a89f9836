package agent

import (
	"maps"
	"time"
)

// TaskKind distinguishes what a planned task dispatches.
type TaskKind string

const (
	TaskKindTool   TaskKind = "tool"
	TaskKindPolicy TaskKind = "policy"
)

// TaskStatus is the backend-reported outcome of a single task execution.
type TaskStatus string

const (
	TaskStatusSuccess TaskStatus = "success"
	TaskStatusFailed  TaskStatus = "failed"
	TaskStatusSkipped TaskStatus = "skipped"
)

// TaskSpec is the unit of work handed to the execution backend.
type TaskSpec struct {
	ID        string         `json:"id"`
	Kind      TaskKind       `json:"kind"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

// TaskResult is the normalized output produced by the execution backend.
type TaskResult struct {
	TaskID   string        `json:"task_id"`
	Status   TaskStatus    `json:"status"`
	Output   string        `json:"output,omitempty"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
}

// Observation records one backend result in the order it was produced.
type Observation struct {
	Iteration int        `json:"iteration"`
	TaskID    string     `json:"task_id"`
	TaskName  string     `json:"task_name"`
	Status    TaskStatus `json:"status"`
	Output    string     `json:"output,omitempty"`
	Error     string     `json:"error,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

// Plan is one iteration's ordered selection of tasks. Reasoning names the
// strategy that produced it.
type Plan struct {
	ID        string           `json:"id"`
	Iteration int              `json:"iteration"`
	Strategy  PlanningStrategy `json:"strategy"`
	Reasoning string           `json:"reasoning"`
	Tasks     []TaskSpec       `json:"tasks,omitempty"`
}

// Reflection captures insights synthesized after an iteration's observations.
// Adjustments may influence the next iteration's plan.
type Reflection struct {
	Iteration   int               `json:"iteration"`
	Trigger     ReflectionTrigger `json:"trigger"`
	Insights    []string          `json:"insights,omitempty"`
	Adjustments []string          `json:"adjustments,omitempty"`
	Timestamp   time.Time         `json:"timestamp"`
}

// GoalProgress is the loop's running assessment of goal attainment.
type GoalProgress struct {
	Achieved        bool    `json:"achieved"`
	ProgressPercent float64 `json:"progress_percent"`
}

// ExecutionContext is the durable state of one agent run. It is exclusively
// owned by the orchestrator run that created it.
type ExecutionContext struct {
	AgentID          string        `json:"agent_id"`
	CurrentIteration int           `json:"current_iteration"`
	MaxIterations    int           `json:"max_iterations"`
	Observations     []Observation `json:"observations,omitempty"`
	Plans            []Plan        `json:"plans,omitempty"`
	Reflections      []Reflection  `json:"reflections,omitempty"`
	GoalProgress     GoalProgress  `json:"goal_progress"`
}

// CloneExecutionContext returns a deep copy safe for snapshots and stores.
func CloneExecutionContext(in ExecutionContext) ExecutionContext {
	out := in
	if len(in.Observations) > 0 {
		out.Observations = make([]Observation, len(in.Observations))
		copy(out.Observations, in.Observations)
	}
	if len(in.Plans) > 0 {
		out.Plans = make([]Plan, len(in.Plans))
		for i := range in.Plans {
			out.Plans[i] = ClonePlan(in.Plans[i])
		}
	}
	if len(in.Reflections) > 0 {
		out.Reflections = make([]Reflection, len(in.Reflections))
		for i := range in.Reflections {
			out.Reflections[i] = cloneReflection(in.Reflections[i])
		}
	}
	return out
}

// ClonePlan returns a deep copy of a plan.
func ClonePlan(in Plan) Plan {
	out := in
	if len(in.Tasks) > 0 {
		out.Tasks = make([]TaskSpec, len(in.Tasks))
		for i := range in.Tasks {
			out.Tasks[i] = CloneTaskSpec(in.Tasks[i])
		}
	}
	return out
}

// CloneTaskSpec returns a deep copy of a task spec.
func CloneTaskSpec(in TaskSpec) TaskSpec {
	out := in
	if in.Arguments != nil {
		out.Arguments = make(map[string]any, len(in.Arguments))
		maps.Copy(out.Arguments, in.Arguments)
	}
	return out
}

func cloneReflection(in Reflection) Reflection {
	out := in
	if len(in.Insights) > 0 {
		out.Insights = make([]string, len(in.Insights))
		copy(out.Insights, in.Insights)
	}
	if len(in.Adjustments) > 0 {
		out.Adjustments = make([]string, len(in.Adjustments))
		copy(out.Adjustments, in.Adjustments)
	}
	return out
}
