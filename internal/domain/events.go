package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Stream event types recorded in the append-only session event log.
const (
	EventStreamStarted         = "stream_started"
	EventStreamEnded           = "stream_ended"
	EventStreamActive          = "stream_active"
	EventStreamInactive        = "stream_inactive"
	EventSessionTimeout        = "session_timeout"
	EventSessionTimeoutWarning = "session_timeout_warning"
)

// Domain event types emitted through the outbox for downstream consumers.
const (
	EventBountyCreated   = "bounty.created"
	EventBountyClaimed   = "bounty.claimed"
	EventSessionResolved = "session.resolved"
)

// StreamEvent is one entry in a session's event log. Entries are written
// once and never updated; where an entry accompanies a state transition it
// rides the same transaction.
type StreamEvent struct {
	EventID       uuid.UUID
	SessionID     uuid.UUID
	EventType     string
	ParticipantID *uuid.UUID
	Metadata      json.RawMessage
	OccurredAt    time.Time
}

// IsParticipantEvent reports whether clients may report the event type
// themselves. Lifecycle events (started/ended/timeout) are only ever written
// by the orchestrator.
func IsParticipantEvent(eventType string) bool {
	switch eventType {
	case EventStreamActive, EventStreamInactive, EventSessionTimeoutWarning:
		return true
	default:
		return false
	}
}
