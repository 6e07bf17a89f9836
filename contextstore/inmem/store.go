// Package inmem provides the in-memory execution context store.
package inmem

import (
	"context"
	"fmt"
	"sync"

	"github.com/agentfoundry/agentkernel/agent"
)

// Store keeps the latest execution context snapshot per agent id with
// deep-clone isolation. Last write wins; the orchestrator is the single
// writer for any one agent id.
type Store struct {
	mu     sync.RWMutex
	states map[string]agent.ExecutionContext
}

var _ agent.ContextStore = (*Store)(nil)

func New() *Store {
	return &Store{states: map[string]agent.ExecutionContext{}}
}

func (s *Store) Save(ctx context.Context, state agent.ExecutionContext) error {
	if ctx == nil {
		return agent.ErrContextNil
	}
	if state.AgentID == "" {
		return fmt.Errorf("%w: empty agent id", agent.ErrBlueprintInvalid)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[state.AgentID] = agent.CloneExecutionContext(state)
	return nil
}

func (s *Store) Load(ctx context.Context, agentID string) (agent.ExecutionContext, error) {
	if ctx == nil {
		return agent.ExecutionContext{}, agent.ErrContextNil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.states[agentID]
	if !ok {
		return agent.ExecutionContext{}, fmt.Errorf("agent %q: %w", agentID, agent.ErrContextNotFound)
	}
	return agent.CloneExecutionContext(state), nil
}
