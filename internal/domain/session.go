package domain

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus is the lifecycle state of a streaming session.
type SessionStatus string

const (
	SessionStatusActive    SessionStatus = "active"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusCancelled SessionStatus = "cancelled"
)

// Session is the live-streaming engagement created when a streamer claims a
// bounty. A session is active iff its bounty is accepted; the transition out
// of active is a single conditional update so a creator finish and a sweeper
// timeout on the same session resolve exactly once.
type Session struct {
	SessionID       uuid.UUID
	BountyID        uuid.UUID
	StreamerID      uuid.UUID
	Status          SessionStatus
	StartedAt       time.Time
	CompletedAt     *time.Time
	Approved        *bool
	RoomName        *string
	StreamStartedAt *time.Time
	StreamEndedAt   *time.Time
	LastActivityAt  time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Terminal reports whether the session has reached a final state.
func (s Session) Terminal() bool {
	return s.Status == SessionStatusCompleted || s.Status == SessionStatusCancelled
}

// RoomNameFor derives the media room identifier for a session. The name is
// deterministic so repeated grant issuance lands every participant in the
// same room.
func RoomNameFor(sessionID uuid.UUID) string {
	return "session-" + sessionID.String()
}
