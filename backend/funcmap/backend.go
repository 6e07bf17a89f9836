// Package funcmap provides an in-process execution backend that routes tasks
// to registered handler funcs by task name.
package funcmap

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/agentfoundry/agentkernel/agent"
)

var (
	ErrTaskUnregistered = errors.New("task handler is not registered")
	ErrNilHandler       = errors.New("task handler is nil")
	ErrTaskNameEmpty    = errors.New("task name is empty")
)

// Handler executes one task with its planned arguments and a read-only view
// of the run's context. Returning an error aborts the run; a failed-but-
// recoverable outcome should return a TaskResult with StatusFailed instead.
type Handler func(ctx context.Context, arguments map[string]any, state agent.ExecutionContext) (agent.TaskResult, error)

// Backend stores handlers by task name and executes dispatched tasks.
type Backend struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	clock    func() time.Time
}

var _ agent.Backend = (*Backend)(nil)

func New(initial map[string]Handler) *Backend {
	handlers := make(map[string]Handler, len(initial))
	for name, handler := range initial {
		handlers[name] = handler
	}
	return &Backend{
		handlers: handlers,
		clock:    time.Now,
	}
}

func (b *Backend) Register(name string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[name] = handler
}

func (b *Backend) Execute(ctx context.Context, task agent.TaskSpec, state agent.ExecutionContext) (agent.TaskResult, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return agent.TaskResult{}, ctxErr
	}
	if task.Name == "" {
		return agent.TaskResult{}, fmt.Errorf("%w: task %q", ErrTaskNameEmpty, task.ID)
	}

	b.mu.RLock()
	handler, ok := b.handlers[task.Name]
	b.mu.RUnlock()
	if !ok {
		return agent.TaskResult{}, fmt.Errorf("%w: %q", ErrTaskUnregistered, task.Name)
	}
	if handler == nil {
		return agent.TaskResult{}, fmt.Errorf("%w: %q", ErrNilHandler, task.Name)
	}

	started := b.clock()
	result, err := handler(ctx, task.Arguments, state)
	if err != nil {
		return agent.TaskResult{}, err
	}
	if result.TaskID == "" {
		result.TaskID = task.ID
	}
	if result.Status == "" {
		result.Status = agent.TaskStatusSuccess
	}
	if result.Duration == 0 {
		result.Duration = b.clock().Sub(started)
	}
	return result, nil
}
