package events

import (
	"time"

	"github.com/spec-kit/survey-auth/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventSessionIssued    EventType = "session_issued"
	EventSessionRefreshed EventType = "session_refreshed"
	EventSessionRejected  EventType = "session_rejected"
	EventSessionEnded     EventType = "session_ended"
)

// Event represents a session lifecycle event. It never carries token
// values or passwords.
type Event struct {
	ID        string               `json:"id"`
	Type      EventType            `json:"type"`
	Kind      domain.PrincipalKind `json:"kind"`
	SubjectID string               `json:"subject_id,omitempty"`
	Timestamp time.Time            `json:"timestamp"`
	Payload   interface{}          `json:"payload,omitempty"`
}

// SessionPayload describes an issued or rotated session.
type SessionPayload struct {
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// RejectedPayload describes why an issuance or refresh was refused.
type RejectedPayload struct {
	Operation string `json:"operation"`
	Reason    string `json:"reason"`
}
