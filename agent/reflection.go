package agent

import (
	"fmt"
	"time"
)

// defaultReflectionTriggers applies when reflection is enabled without an
// explicit trigger list.
var defaultReflectionTriggers = []ReflectionTrigger{ReflectionTriggerTaskCompletion}

// firingTrigger returns the first configured trigger whose condition holds
// for the iteration's observations.
func firingTrigger(cfg *ReasoningConfig, observations []Observation) (ReflectionTrigger, bool) {
	if cfg == nil || !cfg.ReflectionEnabled || len(observations) == 0 {
		return "", false
	}
	triggers := cfg.ReflectionTriggers
	if len(triggers) == 0 {
		triggers = defaultReflectionTriggers
	}
	for _, trigger := range triggers {
		switch trigger {
		case ReflectionTriggerFailure:
			if countByStatus(observations, TaskStatusFailed) > 0 {
				return trigger, true
			}
		case ReflectionTriggerTaskCompletion:
			if countByStatus(observations, TaskStatusSuccess) == len(observations) {
				return trigger, true
			}
		}
	}
	return "", false
}

func countByStatus(observations []Observation, status TaskStatus) int {
	n := 0
	for _, obs := range observations {
		if obs.Status == status {
			n++
		}
	}
	return n
}

// synthesizeReflection turns one iteration's observations into insights and
// adjustments. Adjustments use the "prioritize <tool>" form the adaptive
// planner understands.
func synthesizeReflection(iteration int, trigger ReflectionTrigger, observations []Observation, now time.Time) Reflection {
	reflection := Reflection{
		Iteration: iteration,
		Trigger:   trigger,
		Timestamp: now,
	}
	failures := 0
	for _, obs := range observations {
		if obs.Status != TaskStatusFailed {
			continue
		}
		failures++
		reflection.Insights = append(reflection.Insights,
			fmt.Sprintf("task %s failed: %s", obs.TaskName, obs.Error))
		reflection.Adjustments = append(reflection.Adjustments,
			fmt.Sprintf("prioritize %s", obs.TaskName))
	}
	if failures == 0 {
		reflection.Insights = append(reflection.Insights,
			fmt.Sprintf("all %d tasks completed successfully in iteration %d", len(observations), iteration))
	}
	return reflection
}
