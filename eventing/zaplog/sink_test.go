package zaplog_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/agentfoundry/agentkernel/agent"
	"github.com/agentfoundry/agentkernel/eventing/zaplog"
)

func TestSink_LogsEventsAsStructuredEntries(t *testing.T) {
	t.Parallel()

	core, observed := observer.New(zapcore.InfoLevel)
	sink := zaplog.New(zap.New(core))

	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	err := sink.Publish(context.Background(), agent.Event{
		AgentID:     "agent-1",
		Iteration:   2,
		Type:        agent.EventTypeTaskDispatched,
		TaskID:      "tool-2-fetch",
		Description: "dispatching fetch",
		Timestamp:   at,
	})
	require.NoError(t, err)

	entries := observed.All()
	require.Len(t, entries, 1)
	require.Equal(t, zapcore.InfoLevel, entries[0].Level)
	require.Equal(t, string(agent.EventTypeTaskDispatched), entries[0].Message)

	fields := entries[0].ContextMap()
	require.Equal(t, "agent-1", fields["agent_id"])
	require.Equal(t, int64(2), fields["iteration"])
	require.Equal(t, "tool-2-fetch", fields["task_id"])
	require.Equal(t, "dispatching fetch", fields["description"])
	require.Equal(t, at, fields["at"])
}

func TestSink_RunFailureLogsAtWarn(t *testing.T) {
	t.Parallel()

	core, observed := observer.New(zapcore.InfoLevel)
	sink := zaplog.New(zap.New(core))

	err := sink.Publish(context.Background(), agent.Event{
		AgentID:   "agent-1",
		Iteration: 1,
		Type:      agent.EventTypeRunFailed,
	})
	require.NoError(t, err)

	entries := observed.All()
	require.Len(t, entries, 1)
	require.Equal(t, zapcore.WarnLevel, entries[0].Level)
}

func TestSink_RejectsInvalidEvents(t *testing.T) {
	t.Parallel()

	core, observed := observer.New(zapcore.InfoLevel)
	sink := zaplog.New(zap.New(core))

	err := sink.Publish(context.Background(), agent.Event{Type: agent.EventTypeRunCompleted})
	require.ErrorIs(t, err, agent.ErrEventInvalid)
	require.Empty(t, observed.All())
}

func TestNew_NilLoggerFallsBackToNop(t *testing.T) {
	t.Parallel()

	sink := zaplog.New(nil)
	err := sink.Publish(context.Background(), agent.Event{
		AgentID: "agent-1",
		Type:    agent.EventTypeRunCompleted,
	})
	require.NoError(t, err)
}
