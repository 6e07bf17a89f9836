// Package zaplog adapts the lifecycle event trace onto a zap logger.
package zaplog

import (
	"context"

	"go.uber.org/zap"

	"github.com/agentfoundry/agentkernel/agent"
)

// Sink renders each lifecycle event as one structured log entry. Run
// failures log at warn, everything else at info.
type Sink struct {
	logger *zap.Logger
}

var _ agent.EventSink = (*Sink)(nil)

func New(logger *zap.Logger) *Sink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sink{logger: logger}
}

func (s *Sink) Publish(_ context.Context, event agent.Event) error {
	if err := agent.ValidateEvent(event); err != nil {
		return err
	}

	fields := []zap.Field{
		zap.String("agent_id", event.AgentID),
		zap.Int("iteration", event.Iteration),
	}
	if event.TaskID != "" {
		fields = append(fields, zap.String("task_id", event.TaskID))
	}
	if event.Description != "" {
		fields = append(fields, zap.String("description", event.Description))
	}
	if !event.Timestamp.IsZero() {
		fields = append(fields, zap.Time("at", event.Timestamp))
	}

	if event.Type == agent.EventTypeRunFailed {
		s.logger.Warn(string(event.Type), fields...)
	} else {
		s.logger.Info(string(event.Type), fields...)
	}
	return nil
}
