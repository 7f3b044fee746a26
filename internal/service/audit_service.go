package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/survey-auth/internal/events"
)

// AuditService writes session lifecycle events to the audit log.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger) *AuditService {
	return &AuditService{
		dispatcher: dispatcher,
		logger:     logger.Named("audit"),
	}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventSessionIssued, a.handleSessionEvent)
	a.dispatcher.Subscribe(events.EventSessionRefreshed, a.handleSessionEvent)
	a.dispatcher.Subscribe(events.EventSessionEnded, a.handleSessionEvent)
	a.dispatcher.Subscribe(events.EventSessionRejected, a.handleSessionRejected)
}

func (a *AuditService) handleSessionEvent(_ context.Context, event events.Event) error {
	fields := a.baseFields(event)
	if payload, ok := event.Payload.(events.SessionPayload); ok {
		fields = append(fields,
			zap.String("role", payload.Role),
			zap.Time("expires_at", payload.ExpiresAt))
	}
	a.logger.Info(string(event.Type), fields...)
	return nil
}

func (a *AuditService) handleSessionRejected(_ context.Context, event events.Event) error {
	fields := a.baseFields(event)
	if payload, ok := event.Payload.(events.RejectedPayload); ok {
		fields = append(fields,
			zap.String("operation", payload.Operation),
			zap.String("reason", payload.Reason))
	}
	a.logger.Warn(string(event.Type), fields...)
	return nil
}

func (a *AuditService) baseFields(event events.Event) []zap.Field {
	fields := []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("kind", string(event.Kind)),
		zap.Time("at", event.Timestamp),
	}
	if event.SubjectID != "" {
		fields = append(fields, zap.String("subject_id", event.SubjectID))
	}
	return fields
}
