// Package memstore provides the in-memory revision store used by tests and
// single-process deployments.
package memstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/agentfoundry/agentkernel/registry"
)

// Store keeps revisions in per-agent append order with deep-clone isolation.
type Store struct {
	mu        sync.RWMutex
	revisions map[string][]registry.Revision
}

var _ registry.Store = (*Store)(nil)

func New() *Store {
	return &Store{revisions: map[string][]registry.Revision{}}
}

func (s *Store) Append(_ context.Context, revision registry.Revision) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.revisions[revision.AgentID] {
		if existing.Version == revision.Version {
			return fmt.Errorf(
				"%w: agent %q version %s",
				registry.ErrVersionConflict,
				revision.AgentID,
				revision.Version,
			)
		}
	}
	s.revisions[revision.AgentID] = append(s.revisions[revision.AgentID], registry.CloneRevision(revision))
	return nil
}

func (s *Store) Get(_ context.Context, agentID, version string) (registry.Revision, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, revision := range s.revisions[agentID] {
		if revision.Version == version {
			return registry.CloneRevision(revision), true, nil
		}
	}
	return registry.Revision{}, false, nil
}

func (s *Store) Latest(_ context.Context, agentID string) (registry.Revision, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	revisions := s.revisions[agentID]
	if len(revisions) == 0 {
		return registry.Revision{}, false, nil
	}
	return registry.CloneRevision(revisions[len(revisions)-1]), true, nil
}

func (s *Store) List(_ context.Context, agentID string) ([]registry.Revision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	revisions := s.revisions[agentID]
	out := make([]registry.Revision, 0, len(revisions))
	for i := len(revisions) - 1; i >= 0; i-- {
		out = append(out, registry.CloneRevision(revisions[i]))
	}
	return out, nil
}

func (s *Store) Agents(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.revisions))
	for agentID, revisions := range s.revisions {
		if len(revisions) > 0 {
			out = append(out, agentID)
		}
	}
	return out, nil
}

func (s *Store) Purge(_ context.Context, agentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.revisions, agentID)
	return nil
}
