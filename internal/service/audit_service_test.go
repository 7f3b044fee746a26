package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/survey-auth/internal/domain"
	"github.com/spec-kit/survey-auth/internal/events"
)

func TestAuditServiceLogsEvents(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	dispatcher := events.NewInMemoryDispatcher()
	NewAuditService(dispatcher, zap.New(core)).RegisterHandlers()

	ctx := context.Background()
	require.NoError(t, dispatcher.Publish(ctx, events.Event{
		ID:        "e1",
		Type:      events.EventSessionIssued,
		Kind:      domain.PrincipalUser,
		SubjectID: "user-1",
		Timestamp: time.Now(),
		Payload:   events.SessionPayload{Role: "admin", ExpiresAt: time.Now().Add(time.Minute)},
	}))
	require.NoError(t, dispatcher.Publish(ctx, events.Event{
		ID:      "e2",
		Type:    events.EventSessionRejected,
		Kind:    domain.PrincipalJudge,
		Payload: events.RejectedPayload{Operation: "refresh", Reason: "token expired"},
	}))

	entries := logs.All()
	require.Len(t, entries, 2)

	assert.Equal(t, "session_issued", entries[0].Message)
	assert.Equal(t, "audit", entries[0].LoggerName)
	assert.Equal(t, "admin", entries[0].ContextMap()["role"])
	assert.Equal(t, "user-1", entries[0].ContextMap()["subject_id"])

	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "token expired", entries[1].ContextMap()["reason"])
	assert.NotContains(t, entries[1].ContextMap(), "subject_id")
}
