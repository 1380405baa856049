package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/spotcast-live/spotcast/internal/domain"
	"github.com/spotcast-live/spotcast/internal/ports"
)

// IssueGrant authorizes the caller into the session's media room. The
// authorization decision and role mapping happen here; token construction is
// the signing adapter's job. Only the session's streamer and the owning
// bounty's creator are ever admitted, and only while the session is active.
func (s *Service) IssueGrant(ctx context.Context, actor Actor, sessionID uuid.UUID) (GrantResponse, error) {
	if actor.UserID == uuid.Nil {
		return GrantResponse{}, domain.ErrUnauthorized
	}
	session, bounty, err := s.sessions.GetWithBounty(ctx, sessionID)
	if err != nil {
		return GrantResponse{}, err
	}

	role := domain.ResolveRole(session.StreamerID, bounty.CreatorID, actor.UserID)
	if role == domain.RoleUnrelated {
		return GrantResponse{}, fmt.Errorf("%w: not a participant of this session", domain.ErrForbidden)
	}
	if session.Status != domain.SessionStatusActive {
		return GrantResponse{}, fmt.Errorf("%w: session is %s", domain.ErrInvalidState, session.Status)
	}

	now := s.nowFn()
	roomName, err := s.sessions.EnsureRoomName(ctx, sessionID, domain.RoomNameFor(sessionID), now)
	if err != nil {
		return GrantResponse{}, err
	}

	grant := domain.Grant{
		Identity:  actor.UserID,
		Role:      role,
		RoomName:  roomName,
		SessionID: sessionID,
		IssuedAt:  now,
	}
	token, err := s.signer.Sign(ports.MediaGrant{
		RoomName:    grant.RoomName,
		Identity:    grant.Identity,
		DisplayName: displayName(actor),
		Role:        grant.Role,
		SessionID:   grant.SessionID,
		CanPublish:  grant.CanPublish(),
		IssuedAt:    now,
		ExpiresAt:   now.Add(s.cfg.GrantTTL),
	})
	if err != nil {
		return GrantResponse{}, fmt.Errorf("%w: sign media token: %v", domain.ErrUnavailable, err)
	}

	// First streamer grant doubles as the stream-start signal.
	if role == domain.RoleStreamer && session.StreamStartedAt == nil {
		if err := s.markStreamStarted(ctx, sessionID, actor.UserID); err != nil {
			return GrantResponse{}, err
		}
	}
	if err := s.touch(ctx, sessionID); err != nil && !errors.Is(err, domain.ErrInvalidState) {
		return GrantResponse{}, err
	}

	return GrantResponse{Token: token, RoomName: roomName, Role: role}, nil
}

// ValidateRoomAccess answers the media layer's join callback: given a room
// and identity, is the join allowed and with what role. Room names encode
// the session identity, so anything unparseable is simply denied.
func (s *Service) ValidateRoomAccess(ctx context.Context, roomName string, identity uuid.UUID) (RoomAccess, error) {
	sessionID, ok := sessionIDFromRoom(roomName)
	if !ok {
		return RoomAccess{}, nil
	}
	session, bounty, err := s.sessions.GetWithBounty(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return RoomAccess{}, nil
		}
		return RoomAccess{}, err
	}
	role := domain.ResolveRole(session.StreamerID, bounty.CreatorID, identity)
	if role == domain.RoleUnrelated || session.Status != domain.SessionStatusActive {
		return RoomAccess{Role: role, SessionID: sessionID}, nil
	}
	return RoomAccess{
		Allowed:    true,
		Role:       role,
		SessionID:  sessionID,
		CanPublish: role == domain.RoleStreamer,
	}, nil
}

func (s *Service) markStreamStarted(ctx context.Context, sessionID, participantID uuid.UUID) error {
	now := s.nowFn()
	changed, err := s.sessions.MarkStreamStarted(ctx, sessionID, now)
	if err != nil || !changed {
		return err
	}
	participant := participantID
	return s.events.Append(ctx, domain.StreamEvent{
		EventID:       uuid.New(),
		SessionID:     sessionID,
		EventType:     domain.EventStreamStarted,
		ParticipantID: &participant,
		Metadata:      mustJSON(map[string]any{"role": string(domain.RoleStreamer)}),
		OccurredAt:    now,
	})
}

func displayName(actor Actor) string {
	if name := strings.TrimSpace(actor.Email); name != "" {
		return name
	}
	return actor.UserID.String()
}

func sessionIDFromRoom(roomName string) (uuid.UUID, bool) {
	const prefix = "session-"
	if !strings.HasPrefix(roomName, prefix) {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(strings.TrimPrefix(roomName, prefix))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
