package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultMaxIterations bounds the reasoning loop when a blueprint enables it
// without a positive iteration budget.
const DefaultMaxIterations = 10

// Dependencies wires collaborators into the orchestrator. Backend is
// required; everything else has a working default.
type Dependencies struct {
	Backend  Backend
	Contexts ContextStore
	Events   EventSink
	IDs      IDGenerator
	Logger   *zap.Logger
	Clock    func() time.Time
}

// Orchestrator drives one agent's reasoning loop: plan, act, observe,
// reflect, assess. The loop is strictly sequential; the only suspension point
// is the call into the execution backend.
type Orchestrator struct {
	backend  Backend
	contexts ContextStore
	events   EventSink
	ids      IDGenerator
	logger   *zap.Logger
	clock    func() time.Time

	mu      sync.RWMutex
	current *ExecutionContext
}

func NewOrchestrator(deps Dependencies) (*Orchestrator, error) {
	if deps.Backend == nil {
		return nil, fmt.Errorf("new orchestrator: %w", ErrMissingBackend)
	}
	if deps.Events == nil {
		deps.Events = noopEventSink{}
	}
	if deps.IDs == nil {
		deps.IDs = uuidIDGenerator{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	return &Orchestrator{
		backend:  deps.Backend,
		contexts: deps.Contexts,
		events:   deps.Events,
		ids:      deps.IDs,
		logger:   deps.Logger,
		clock:    deps.Clock,
	}, nil
}

type noopEventSink struct{}

func (noopEventSink) Publish(context.Context, Event) error { return nil }

type uuidIDGenerator struct{}

func (uuidIDGenerator) NewPlanID(context.Context) (string, error) {
	return uuid.NewString(), nil
}

// InitializeAgent builds a fresh execution context for the blueprint and makes
// it the orchestrator's current context.
func (o *Orchestrator) InitializeAgent(ctx context.Context, blueprint Blueprint) (ExecutionContext, error) {
	if ctx == nil {
		return ExecutionContext{}, ErrContextNil
	}
	if blueprint.ID == "" {
		return ExecutionContext{}, fmt.Errorf("%w: empty agent id", ErrBlueprintInvalid)
	}

	maxIterations := 1
	if blueprint.ReasoningEnabled() {
		maxIterations = blueprint.Reasoning.MaxIterations
		if maxIterations <= 0 {
			maxIterations = DefaultMaxIterations
		}
	}
	state := ExecutionContext{
		AgentID:       blueprint.ID,
		MaxIterations: maxIterations,
	}
	o.setCurrent(state)
	if err := o.checkpoint(ctx, state); err != nil {
		return ExecutionContext{}, err
	}
	o.publish(ctx, Event{
		AgentID:     blueprint.ID,
		Type:        EventTypeAgentInitialized,
		Description: fmt.Sprintf("context initialized with max_iterations=%d", maxIterations),
	})
	o.logger.Debug("agent initialized",
		zap.String("agent_id", blueprint.ID),
		zap.Int("max_iterations", maxIterations),
		zap.Bool("reasoning", blueprint.ReasoningEnabled()),
	)
	return CloneExecutionContext(state), nil
}

// ExecuteAgent runs the blueprint to completion or failure. With reasoning
// disabled it performs a single pass over all enabled tools and policies;
// with reasoning enabled it loops until the goal is achieved or the iteration
// budget is spent. A backend error aborts the run and propagates; the partial
// context stays readable through Context.
func (o *Orchestrator) ExecuteAgent(ctx context.Context, blueprint Blueprint) (ExecutionContext, error) {
	state, err := o.InitializeAgent(ctx, blueprint)
	if err != nil {
		return ExecutionContext{}, err
	}

	if !blueprint.ReasoningEnabled() {
		err = o.singlePass(ctx, blueprint, &state)
	} else {
		err = o.reasoningLoop(ctx, blueprint, &state)
	}
	if err != nil {
		o.publish(ctx, Event{
			AgentID:     state.AgentID,
			Iteration:   state.CurrentIteration,
			Type:        EventTypeRunFailed,
			Description: err.Error(),
		})
		o.logger.Warn("agent run failed",
			zap.String("agent_id", state.AgentID),
			zap.Int("iteration", state.CurrentIteration),
			zap.Error(err),
		)
		if saveErr := o.checkpoint(ctx, state); saveErr != nil {
			err = errors.Join(err, saveErr)
		}
		return ExecutionContext{}, err
	}

	if saveErr := o.checkpoint(ctx, state); saveErr != nil {
		return ExecutionContext{}, saveErr
	}
	o.publish(ctx, Event{
		AgentID:     state.AgentID,
		Iteration:   state.CurrentIteration,
		Type:        EventTypeRunCompleted,
		Description: fmt.Sprintf("run completed at %.0f%% progress", state.GoalProgress.ProgressPercent),
	})
	o.logger.Info("agent run completed",
		zap.String("agent_id", state.AgentID),
		zap.Int("iterations", state.CurrentIteration),
		zap.Bool("achieved", state.GoalProgress.Achieved),
		zap.Float64("progress", state.GoalProgress.ProgressPercent),
	)
	return CloneExecutionContext(state), nil
}

// Context returns a read-only snapshot of the most recently built execution
// context. It never blocks on a running loop.
func (o *Orchestrator) Context() (ExecutionContext, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.current == nil {
		return ExecutionContext{}, ErrNoContext
	}
	return CloneExecutionContext(*o.current), nil
}

func (o *Orchestrator) setCurrent(state ExecutionContext) {
	snapshot := CloneExecutionContext(state)
	o.mu.Lock()
	o.current = &snapshot
	o.mu.Unlock()
}

func (o *Orchestrator) checkpoint(ctx context.Context, state ExecutionContext) error {
	if o.contexts == nil {
		return nil
	}
	return o.contexts.Save(ctx, CloneExecutionContext(state))
}

// publish is best-effort: a failing trace sink must not alter run semantics.
func (o *Orchestrator) publish(ctx context.Context, event Event) {
	event.Timestamp = o.clock()
	if err := o.events.Publish(ctx, event); err != nil {
		o.logger.Debug("event publish failed",
			zap.String("agent_id", event.AgentID),
			zap.String("type", string(event.Type)),
			zap.Error(err),
		)
	}
}

// singlePass executes every enabled tool and policy exactly once and assesses
// progress a single time. Terminal by construction.
func (o *Orchestrator) singlePass(ctx context.Context, blueprint Blueprint, state *ExecutionContext) error {
	iteration := 1
	tasks := make([]TaskSpec, 0, len(blueprint.Tools)+len(blueprint.Policies))
	for _, tool := range blueprint.EnabledTools() {
		tasks = append(tasks, toolTask(tool, iteration))
	}
	for _, policy := range blueprint.EnabledPolicies() {
		tasks = append(tasks, TaskSpec{
			ID:        taskID(TaskKindPolicy, iteration, policy.Name),
			Kind:      TaskKindPolicy,
			Name:      policy.Name,
			Arguments: policy.Parameters,
		})
	}
	if _, err := o.act(ctx, iteration, tasks, state); err != nil {
		return err
	}
	state.GoalProgress = assessProgress(*state)
	state.CurrentIteration = iteration
	o.setCurrent(*state)
	o.publish(ctx, Event{
		AgentID:     state.AgentID,
		Iteration:   iteration,
		Type:        EventTypeProgressAssessed,
		Description: fmt.Sprintf("progress %.0f%%", state.GoalProgress.ProgressPercent),
	})
	return nil
}

func (o *Orchestrator) reasoningLoop(ctx context.Context, blueprint Blueprint, state *ExecutionContext) error {
	cfg := blueprint.Reasoning
	planner := plannerFor(cfg.PlanningStrategy)

	for state.CurrentIteration < state.MaxIterations && !state.GoalProgress.Achieved {
		iteration := state.CurrentIteration + 1
		o.publish(ctx, Event{
			AgentID:   state.AgentID,
			Iteration: iteration,
			Type:      EventTypeIterationStarted,
		})

		// Plan.
		plan := planner.Plan(blueprint, *state)
		planID, err := o.ids.NewPlanID(ctx)
		if err != nil {
			return fmt.Errorf("plan id for iteration %d: %w", iteration, err)
		}
		plan.ID = planID
		state.Plans = append(state.Plans, plan)
		o.setCurrent(*state)
		o.publish(ctx, Event{
			AgentID:     state.AgentID,
			Iteration:   iteration,
			Type:        EventTypePlanCreated,
			Description: plan.Reasoning,
		})

		// Act and observe.
		iterationObservations, err := o.act(ctx, iteration, plan.Tasks, state)
		if err != nil {
			return err
		}

		// Reflect.
		if trigger, fired := firingTrigger(cfg, iterationObservations); fired {
			reflection := synthesizeReflection(iteration, trigger, iterationObservations, o.clock())
			state.Reflections = append(state.Reflections, reflection)
			o.setCurrent(*state)
			o.publish(ctx, Event{
				AgentID:     state.AgentID,
				Iteration:   iteration,
				Type:        EventTypeReflectionRecorded,
				Description: fmt.Sprintf("trigger=%s insights=%d", trigger, len(reflection.Insights)),
			})
		}

		// Assess.
		state.GoalProgress = assessProgress(*state)
		state.CurrentIteration = iteration
		o.setCurrent(*state)
		o.publish(ctx, Event{
			AgentID:     state.AgentID,
			Iteration:   iteration,
			Type:        EventTypeProgressAssessed,
			Description: fmt.Sprintf("progress %.0f%%", state.GoalProgress.ProgressPercent),
		})
	}
	return nil
}

// act dispatches the planned tasks to the backend in order and appends the
// raw results to the observation sequence. A backend error aborts the run
// immediately; it is never retried or converted into a soft result.
func (o *Orchestrator) act(ctx context.Context, iteration int, tasks []TaskSpec, state *ExecutionContext) ([]Observation, error) {
	var observations []Observation
	for _, task := range tasks {
		o.publish(ctx, Event{
			AgentID:   state.AgentID,
			Iteration: iteration,
			Type:      EventTypeTaskDispatched,
			TaskID:    task.ID,
		})
		result, err := o.backend.Execute(ctx, CloneTaskSpec(task), CloneExecutionContext(*state))
		if err != nil {
			return nil, fmt.Errorf("execute task %q: %w", task.Name, err)
		}
		if result.TaskID == "" {
			result.TaskID = task.ID
		}
		observation := Observation{
			Iteration: iteration,
			TaskID:    result.TaskID,
			TaskName:  task.Name,
			Status:    result.Status,
			Output:    result.Output,
			Error:     result.Error,
			Timestamp: o.clock(),
		}
		state.Observations = append(state.Observations, observation)
		observations = append(observations, observation)
		o.setCurrent(*state)
		o.publish(ctx, Event{
			AgentID:     state.AgentID,
			Iteration:   iteration,
			Type:        EventTypeObservationRecorded,
			TaskID:      result.TaskID,
			Description: string(result.Status),
		})
	}
	return observations, nil
}
