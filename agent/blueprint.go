package agent

import "maps"

// RiskLevel classifies the blast radius an agent's blueprint is allowed.
type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "low"
	RiskLevelMedium RiskLevel = "medium"
	RiskLevelHigh   RiskLevel = "high"
)

// PlanningStrategy selects how the reasoning loop orders and picks tool
// invocations for one iteration.
type PlanningStrategy string

const (
	PlanningStrategySequential   PlanningStrategy = "sequential"
	PlanningStrategyAdaptive     PlanningStrategy = "adaptive"
	PlanningStrategyHierarchical PlanningStrategy = "hierarchical"
)

// ReflectionTrigger names a condition that causes the loop to reflect.
type ReflectionTrigger string

const (
	ReflectionTriggerTaskCompletion ReflectionTrigger = "task_completion"
	ReflectionTriggerFailure        ReflectionTrigger = "failure"
)

// ToolDescriptor declares a capability the agent may invoke through the
// execution backend.
type ToolDescriptor struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Enabled     bool           `json:"enabled"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

// PolicySpec declares a policy evaluated alongside the agent's tools.
type PolicySpec struct {
	Name       string         `json:"name"`
	Enabled    bool           `json:"enabled"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

// WorkflowRef points at an externally defined workflow.
type WorkflowRef struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// ReasoningConfig bounds and shapes the plan-act-reflect loop.
type ReasoningConfig struct {
	Enabled            bool                `json:"enabled"`
	MaxIterations      int                 `json:"max_iterations,omitempty"`
	Pattern            string              `json:"pattern,omitempty"`
	ReflectionEnabled  bool                `json:"reflection_enabled,omitempty"`
	ReflectionTriggers []ReflectionTrigger `json:"reflection_triggers,omitempty"`
	PlanningStrategy   PlanningStrategy    `json:"planning_strategy,omitempty"`
}

// Blueprint is the immutable declarative specification for one agent.
// Version is self-reported and informational only; the registry assigns
// revision versions independently.
type Blueprint struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Version   string           `json:"version,omitempty"`
	Goal      string           `json:"goal,omitempty"`
	RiskLevel RiskLevel        `json:"risk_level,omitempty"`
	Config    map[string]any   `json:"config,omitempty"`
	Tools     []ToolDescriptor `json:"tools,omitempty"`
	Policies  []PolicySpec     `json:"policies,omitempty"`
	Workflows []WorkflowRef    `json:"workflows,omitempty"`
	Reasoning *ReasoningConfig `json:"reasoning,omitempty"`
}

// ReasoningEnabled reports whether the blueprint opts into the reasoning loop.
func (b Blueprint) ReasoningEnabled() bool {
	return b.Reasoning != nil && b.Reasoning.Enabled
}

// EnabledTools returns the declared tools that are enabled, in declared order.
func (b Blueprint) EnabledTools() []ToolDescriptor {
	var out []ToolDescriptor
	for _, tool := range b.Tools {
		if tool.Enabled {
			out = append(out, tool)
		}
	}
	return out
}

// EnabledPolicies returns the declared policies that are enabled, in declared order.
func (b Blueprint) EnabledPolicies() []PolicySpec {
	var out []PolicySpec
	for _, policy := range b.Policies {
		if policy.Enabled {
			out = append(out, policy)
		}
	}
	return out
}

// CloneBlueprint returns a deep copy suitable for isolation across component
// boundaries.
func CloneBlueprint(in Blueprint) Blueprint {
	out := in
	if in.Config != nil {
		out.Config = make(map[string]any, len(in.Config))
		maps.Copy(out.Config, in.Config)
	}
	if len(in.Tools) > 0 {
		out.Tools = make([]ToolDescriptor, len(in.Tools))
		for i := range in.Tools {
			out.Tools[i] = cloneToolDescriptor(in.Tools[i])
		}
	}
	if len(in.Policies) > 0 {
		out.Policies = make([]PolicySpec, len(in.Policies))
		for i := range in.Policies {
			out.Policies[i] = clonePolicySpec(in.Policies[i])
		}
	}
	if len(in.Workflows) > 0 {
		out.Workflows = make([]WorkflowRef, len(in.Workflows))
		copy(out.Workflows, in.Workflows)
	}
	if in.Reasoning != nil {
		reasoningCopy := *in.Reasoning
		if len(in.Reasoning.ReflectionTriggers) > 0 {
			reasoningCopy.ReflectionTriggers = make([]ReflectionTrigger, len(in.Reasoning.ReflectionTriggers))
			copy(reasoningCopy.ReflectionTriggers, in.Reasoning.ReflectionTriggers)
		}
		out.Reasoning = &reasoningCopy
	}
	return out
}

func cloneToolDescriptor(in ToolDescriptor) ToolDescriptor {
	out := in
	if in.Parameters != nil {
		out.Parameters = make(map[string]any, len(in.Parameters))
		maps.Copy(out.Parameters, in.Parameters)
	}
	return out
}

func clonePolicySpec(in PolicySpec) PolicySpec {
	out := in
	if in.Parameters != nil {
		out.Parameters = make(map[string]any, len(in.Parameters))
		maps.Copy(out.Parameters, in.Parameters)
	}
	return out
}
