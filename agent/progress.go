package agent

// achievedThreshold is the percentage at which the baseline success-signal
// model marks the goal achieved.
const achievedThreshold = 100.0

// assessProgress recomputes goal progress from accumulated success and
// failure signals. The baseline model scores the most recent signal per task:
// a task retried to success after an earlier failure counts as satisfied.
func assessProgress(state ExecutionContext) GoalProgress {
	latest := map[string]TaskStatus{}
	order := make([]string, 0, len(state.Observations))
	for _, obs := range state.Observations {
		if _, seen := latest[obs.TaskName]; !seen {
			order = append(order, obs.TaskName)
		}
		latest[obs.TaskName] = obs.Status
	}
	if len(order) == 0 {
		return GoalProgress{}
	}
	satisfied := 0
	for _, name := range order {
		if latest[name] == TaskStatusSuccess {
			satisfied++
		}
	}
	percent := 100 * float64(satisfied) / float64(len(order))
	return GoalProgress{
		Achieved:        percent >= achievedThreshold,
		ProgressPercent: percent,
	}
}
