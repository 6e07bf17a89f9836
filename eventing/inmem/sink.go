// Package inmem provides an event sink that captures the execution trace in
// memory and exposes deterministic snapshots for tests and introspection.
package inmem

import (
	"context"
	"sync"

	"github.com/agentfoundry/agentkernel/agent"
)

// Sink validates and records lifecycle events in publish order.
type Sink struct {
	mu     sync.RWMutex
	events []agent.Event
}

var _ agent.EventSink = (*Sink)(nil)

func New() *Sink {
	return &Sink{events: make([]agent.Event, 0)}
}

func (s *Sink) Publish(ctx context.Context, event agent.Event) error {
	if ctx == nil {
		return agent.ErrContextNil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if err := agent.ValidateEvent(event); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// Events returns a copy of everything published so far, in order.
func (s *Sink) Events() []agent.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]agent.Event, len(s.events))
	copy(out, s.events)
	return out
}

// EventsOfType filters the captured trace by event type, preserving order.
func (s *Sink) EventsOfType(eventType agent.EventType) []agent.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []agent.Event
	for _, event := range s.events {
		if event.Type == eventType {
			out = append(out, event)
		}
	}
	return out
}
