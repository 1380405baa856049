package application

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/spotcast-live/spotcast/internal/domain"
	"github.com/spotcast-live/spotcast/internal/ports"
)

// Outbox payload builders. Domain events are captured transactionally with
// the state change they describe and published by the outbox worker.

func (s *Service) bountyCreatedEvent(bounty domain.Bounty, requestID string) ports.OutboxEvent {
	payload, _ := json.Marshal(map[string]any{
		"bounty_id":  bounty.BountyID.String(),
		"creator_id": bounty.CreatorID.String(),
		"amount":     bounty.Amount,
		"lat":        bounty.Lat,
		"lng":        bounty.Lng,
		"request_id": requestID,
		"created_at": bounty.CreatedAt.Format(time.RFC3339Nano),
	})
	return ports.OutboxEvent{
		EventID:      uuid.New(),
		EventType:    domain.EventBountyCreated,
		PartitionKey: bounty.BountyID.String(),
		Payload:      payload,
		OccurredAt:   bounty.CreatedAt,
	}
}

func (s *Service) bountyClaimedEvent(bounty domain.Bounty, claimant, sessionID uuid.UUID, requestID string, now time.Time) ports.OutboxEvent {
	payload, _ := json.Marshal(map[string]any{
		"bounty_id":   bounty.BountyID.String(),
		"session_id":  sessionID.String(),
		"streamer_id": claimant.String(),
		"amount":      bounty.Amount,
		"request_id":  requestID,
		"claimed_at":  now.Format(time.RFC3339Nano),
	})
	return ports.OutboxEvent{
		EventID:      uuid.New(),
		EventType:    domain.EventBountyClaimed,
		PartitionKey: bounty.BountyID.String(),
		Payload:      payload,
		OccurredAt:   now,
	}
}

func (s *Service) sessionResolvedEvent(session domain.Session, bounty domain.Bounty, outcome domain.ResolutionOutcome, requestID string, now time.Time) ports.OutboxEvent {
	credited := int64(0)
	if outcome == domain.OutcomeApproved {
		credited = bounty.Amount
	}
	payload, _ := json.Marshal(map[string]any{
		"session_id":  session.SessionID.String(),
		"bounty_id":   bounty.BountyID.String(),
		"streamer_id": session.StreamerID.String(),
		"outcome":     string(outcome),
		"credited":    credited,
		"request_id":  requestID,
		"resolved_at": now.Format(time.RFC3339Nano),
	})
	return ports.OutboxEvent{
		EventID:      uuid.New(),
		EventType:    domain.EventSessionResolved,
		PartitionKey: session.SessionID.String(),
		Payload:      payload,
		OccurredAt:   now,
	}
}
