package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role is a participant's relationship to a session, derived from identity
// rather than stored. The streamer publishes media, the bounty creator
// watches, everyone else is unrelated and gets nothing.
type Role string

const (
	RoleStreamer  Role = "streamer"
	RoleViewer    Role = "viewer"
	RoleUnrelated Role = "unrelated"
)

// ResolveRole is the single role-resolution point used by both the grant
// authority and the finish-authorization check.
func ResolveRole(streamerID, creatorID, identity uuid.UUID) Role {
	switch identity {
	case streamerID:
		return RoleStreamer
	case creatorID:
		return RoleViewer
	default:
		return RoleUnrelated
	}
}

// Grant is a short-lived, derived authorization to join a session's media
// room. It is computed from current session/bounty state on demand and never
// persisted; expiry is enforced by the signed token's own lifetime.
type Grant struct {
	Identity  uuid.UUID
	Role      Role
	RoomName  string
	SessionID uuid.UUID
	IssuedAt  time.Time
}

// CanPublish reports whether the role carries publish rights in the media
// room. Viewers are subscribe-only.
func (g Grant) CanPublish() bool {
	return g.Role == RoleStreamer
}
