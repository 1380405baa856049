package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/spotcast-live/spotcast/internal/domain"
	"github.com/spotcast-live/spotcast/internal/ports"
)

// GetSession returns a session joined with its bounty for participants only.
func (s *Service) GetSession(ctx context.Context, actor Actor, sessionID uuid.UUID) (SessionDetail, error) {
	if actor.UserID == uuid.Nil {
		return SessionDetail{}, domain.ErrUnauthorized
	}
	session, bounty, err := s.sessions.GetWithBounty(ctx, sessionID)
	if err != nil {
		return SessionDetail{}, err
	}
	role := domain.ResolveRole(session.StreamerID, bounty.CreatorID, actor.UserID)
	if role == domain.RoleUnrelated {
		return SessionDetail{}, domain.ErrForbidden
	}
	return SessionDetail{Session: session, Bounty: bounty, Role: role}, nil
}

func (s *Service) MySessions(ctx context.Context, actor Actor, limit, offset int) ([]domain.Session, error) {
	if actor.UserID == uuid.Nil {
		return nil, domain.ErrUnauthorized
	}
	limit = clampLimit(limit, s.cfg.ListPageSize)
	if offset < 0 {
		offset = 0
	}
	return s.sessions.ListByStreamer(ctx, actor.UserID, limit, offset)
}

// Heartbeat records participant activity on an active session. Touches are
// coalesced through the activity throttle so a busy session persists at most
// one last-activity write per window.
func (s *Service) Heartbeat(ctx context.Context, actor Actor, sessionID uuid.UUID) error {
	if actor.UserID == uuid.Nil {
		return domain.ErrUnauthorized
	}
	session, bounty, err := s.sessions.GetWithBounty(ctx, sessionID)
	if err != nil {
		return err
	}
	if domain.ResolveRole(session.StreamerID, bounty.CreatorID, actor.UserID) == domain.RoleUnrelated {
		return domain.ErrForbidden
	}
	if session.Terminal() {
		return fmt.Errorf("%w: session is %s", domain.ErrInvalidState, session.Status)
	}
	return s.touch(ctx, sessionID)
}

// RecordParticipantEvent appends a client-reported stream event and counts
// it as activity. Lifecycle events are orchestrator-only and rejected here.
func (s *Service) RecordParticipantEvent(ctx context.Context, actor Actor, sessionID uuid.UUID, eventType string, metadata json.RawMessage) (domain.StreamEvent, error) {
	if actor.UserID == uuid.Nil {
		return domain.StreamEvent{}, domain.ErrUnauthorized
	}
	if !domain.IsParticipantEvent(eventType) {
		return domain.StreamEvent{}, fmt.Errorf("%w: unsupported event type %q", domain.ErrInvalidInput, eventType)
	}
	session, bounty, err := s.sessions.GetWithBounty(ctx, sessionID)
	if err != nil {
		return domain.StreamEvent{}, err
	}
	if domain.ResolveRole(session.StreamerID, bounty.CreatorID, actor.UserID) == domain.RoleUnrelated {
		return domain.StreamEvent{}, domain.ErrForbidden
	}
	if session.Terminal() {
		return domain.StreamEvent{}, fmt.Errorf("%w: session is %s", domain.ErrInvalidState, session.Status)
	}

	participant := actor.UserID
	event := domain.StreamEvent{
		EventID:       uuid.New(),
		SessionID:     sessionID,
		EventType:     eventType,
		ParticipantID: &participant,
		Metadata:      metadata,
		OccurredAt:    s.nowFn(),
	}
	if err := s.events.Append(ctx, event); err != nil {
		return domain.StreamEvent{}, err
	}
	if err := s.touch(ctx, sessionID); err != nil && !errors.Is(err, domain.ErrInvalidState) {
		return domain.StreamEvent{}, err
	}
	return event, nil
}

// ListSessionEvents exposes the audit trail to the session's participants.
func (s *Service) ListSessionEvents(ctx context.Context, actor Actor, sessionID uuid.UUID, limit, offset int) ([]domain.StreamEvent, error) {
	if actor.UserID == uuid.Nil {
		return nil, domain.ErrUnauthorized
	}
	session, bounty, err := s.sessions.GetWithBounty(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if domain.ResolveRole(session.StreamerID, bounty.CreatorID, actor.UserID) == domain.RoleUnrelated {
		return nil, domain.ErrForbidden
	}
	limit = clampLimit(limit, s.cfg.ListPageSize)
	if offset < 0 {
		offset = 0
	}
	return s.events.ListBySession(ctx, sessionID, limit, offset)
}

// FinishSession is the creator's resolution of an active session. The
// session's terminal flip, the bounty transition, the streamer credit on
// approval, and the event log entries are applied as one transaction; a
// concurrent sweeper timeout loses or wins the conditional update, never
// both, so the credit is applied at most once.
func (s *Service) FinishSession(ctx context.Context, actor Actor, sessionID uuid.UUID, approved bool) (ports.ResolveResult, error) {
	if actor.UserID == uuid.Nil {
		return ports.ResolveResult{}, domain.ErrUnauthorized
	}
	session, bounty, err := s.sessions.GetWithBounty(ctx, sessionID)
	if err != nil {
		return ports.ResolveResult{}, err
	}
	if bounty.CreatorID != actor.UserID {
		return ports.ResolveResult{}, fmt.Errorf("%w: only the bounty creator may finish a session", domain.ErrForbidden)
	}
	if session.Terminal() {
		return ports.ResolveResult{}, fmt.Errorf("%w: session is %s", domain.ErrInvalidState, session.Status)
	}

	outcome := domain.OutcomeRejected
	if approved {
		outcome = domain.OutcomeApproved
	}

	now := s.nowFn()
	var events []domain.StreamEvent
	if session.StreamStartedAt != nil && session.StreamEndedAt == nil {
		participant := actor.UserID
		events = append(events, domain.StreamEvent{
			EventID:       uuid.New(),
			SessionID:     sessionID,
			EventType:     domain.EventStreamEnded,
			ParticipantID: &participant,
			Metadata:      mustJSON(map[string]any{"approved": approved}),
			OccurredAt:    now,
		})
	}

	return s.sessions.ResolveTx(ctx, ports.ResolveParams{
		SessionID: sessionID,
		Outcome:   outcome,
		Now:       now,
		Events:    events,
		Outbox:    s.sessionResolvedEvent(session, bounty, outcome, actor.RequestID, now),
	})
}

// MarkStreamEnded records the end-of-stream timestamp once. Re-marking an
// already-ended stream is a no-op, not an error.
func (s *Service) MarkStreamEnded(ctx context.Context, actor Actor, sessionID uuid.UUID) error {
	if actor.UserID == uuid.Nil {
		return domain.ErrUnauthorized
	}
	session, bounty, err := s.sessions.GetWithBounty(ctx, sessionID)
	if err != nil {
		return err
	}
	if domain.ResolveRole(session.StreamerID, bounty.CreatorID, actor.UserID) == domain.RoleUnrelated {
		return domain.ErrForbidden
	}

	now := s.nowFn()
	changed, err := s.sessions.MarkStreamEnded(ctx, sessionID, now)
	if err != nil || !changed {
		return err
	}
	participant := actor.UserID
	return s.events.Append(ctx, domain.StreamEvent{
		EventID:       uuid.New(),
		SessionID:     sessionID,
		EventType:     domain.EventStreamEnded,
		ParticipantID: &participant,
		OccurredAt:    now,
	})
}

// Me returns the caller's account including the current points balance.
func (s *Service) Me(ctx context.Context, actor Actor) (domain.User, error) {
	if actor.UserID == uuid.Nil {
		return domain.User{}, domain.ErrUnauthorized
	}
	return s.users.GetByID(ctx, actor.UserID)
}

func (s *Service) touch(ctx context.Context, sessionID uuid.UUID) error {
	if s.throttle != nil && s.cfg.HeartbeatWindow > 0 {
		persist, err := s.throttle.ShouldPersist(ctx, sessionID, s.cfg.HeartbeatWindow)
		if err == nil && !persist {
			return nil
		}
	}
	return s.sessions.TouchActivity(ctx, sessionID, s.nowFn())
}

func mustJSON(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage(`{}`)
	}
	return b
}
