package registry

import (
	"fmt"
	"maps"
	"reflect"

	"github.com/agentfoundry/agentkernel/agent"
)

// Change records an old and new value for a modified field.
type Change struct {
	Old any `json:"old"`
	New any `json:"new"`
}

// Diff is a structural, field-level comparison of two blueprints. Keys are
// dotted field paths (goal, risk_level, config.<key>, tool.<name>,
// policy.<name>, workflow.<id>, reasoning.<field>).
type Diff struct {
	Added    map[string]any    `json:"added"`
	Removed  map[string]any    `json:"removed"`
	Modified map[string]Change `json:"modified"`
}

// Empty reports whether the diff carries no field changes.
func (d *Diff) Empty() bool {
	return d == nil || (len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Modified) == 0)
}

// ComputeDiff compares two blueprints structurally, treating old as the
// baseline.
func ComputeDiff(oldBlueprint, newBlueprint agent.Blueprint) *Diff {
	oldFields := flattenBlueprint(oldBlueprint)
	newFields := flattenBlueprint(newBlueprint)

	diff := &Diff{
		Added:    map[string]any{},
		Removed:  map[string]any{},
		Modified: map[string]Change{},
	}
	for key, newValue := range newFields {
		oldValue, existed := oldFields[key]
		switch {
		case !existed:
			diff.Added[key] = newValue
		case !reflect.DeepEqual(oldValue, newValue):
			diff.Modified[key] = Change{Old: oldValue, New: newValue}
		}
	}
	for key, oldValue := range oldFields {
		if _, exists := newFields[key]; !exists {
			diff.Removed[key] = oldValue
		}
	}
	return diff
}

// flattenBlueprint projects a blueprint onto dotted field paths. Zero-valued
// scalar fields are treated as absent so that setting one reads as an
// addition rather than a modification from the empty string.
func flattenBlueprint(blueprint agent.Blueprint) map[string]any {
	fields := map[string]any{}
	putNonEmpty := func(key, value string) {
		if value != "" {
			fields[key] = value
		}
	}
	putNonEmpty("name", blueprint.Name)
	putNonEmpty("goal", blueprint.Goal)
	putNonEmpty("risk_level", string(blueprint.RiskLevel))
	for key, value := range blueprint.Config {
		fields["config."+key] = value
	}
	for _, tool := range blueprint.Tools {
		fields["tool."+tool.Name] = tool
	}
	for _, policy := range blueprint.Policies {
		fields["policy."+policy.Name] = policy
	}
	for _, workflow := range blueprint.Workflows {
		fields["workflow."+workflow.ID] = workflow
	}
	if blueprint.Reasoning != nil {
		reasoning := blueprint.Reasoning
		fields["reasoning.enabled"] = reasoning.Enabled
		fields["reasoning.reflection_enabled"] = reasoning.ReflectionEnabled
		if reasoning.MaxIterations != 0 {
			fields["reasoning.max_iterations"] = reasoning.MaxIterations
		}
		putNonEmpty("reasoning.pattern", reasoning.Pattern)
		putNonEmpty("reasoning.planning_strategy", string(reasoning.PlanningStrategy))
		if len(reasoning.ReflectionTriggers) > 0 {
			fields["reasoning.reflection_triggers"] = fmt.Sprint(reasoning.ReflectionTriggers)
		}
	}
	return fields
}

func cloneDiff(in *Diff) *Diff {
	if in == nil {
		return nil
	}
	out := &Diff{
		Added:    maps.Clone(in.Added),
		Removed:  maps.Clone(in.Removed),
		Modified: maps.Clone(in.Modified),
	}
	return out
}
