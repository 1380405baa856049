package postgres

import (
	"encoding/json"

	"github.com/spotcast-live/spotcast/internal/domain"
)

func toDomainUser(row userModel) domain.User {
	return domain.User{
		UserID:        row.UserID,
		Email:         row.Email,
		PointsBalance: row.PointsBalance,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
}

func toDomainBounty(row bountyModel) domain.Bounty {
	return domain.Bounty{
		BountyID:    row.BountyID,
		CreatorID:   row.CreatorID,
		Title:       row.Title,
		Description: row.Description,
		Amount:      row.Amount,
		Lat:         row.Lat,
		Lng:         row.Lng,
		Status:      domain.BountyStatus(row.Status),
		AcceptedBy:  row.AcceptedBy,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

func toDomainSession(row sessionModel) domain.Session {
	return domain.Session{
		SessionID:       row.SessionID,
		BountyID:        row.BountyID,
		StreamerID:      row.StreamerID,
		Status:          domain.SessionStatus(row.Status),
		StartedAt:       row.StartedAt,
		CompletedAt:     row.CompletedAt,
		Approved:        row.Approved,
		RoomName:        row.RoomName,
		StreamStartedAt: row.StreamStartedAt,
		StreamEndedAt:   row.StreamEndedAt,
		LastActivityAt:  row.LastActivityAt,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
}

func toDomainStreamEvent(row streamEventModel) domain.StreamEvent {
	var metadata json.RawMessage
	if row.Metadata != nil {
		metadata = json.RawMessage(*row.Metadata)
	}
	return domain.StreamEvent{
		EventID:       row.EventID,
		SessionID:     row.SessionID,
		EventType:     row.EventType,
		ParticipantID: row.ParticipantID,
		Metadata:      metadata,
		OccurredAt:    row.OccurredAt,
	}
}

func toEventModel(event domain.StreamEvent) streamEventModel {
	var metadata *string
	if len(event.Metadata) > 0 {
		raw := string(event.Metadata)
		metadata = &raw
	}
	return streamEventModel{
		EventID:       event.EventID,
		SessionID:     event.SessionID,
		EventType:     event.EventType,
		ParticipantID: event.ParticipantID,
		Metadata:      metadata,
		OccurredAt:    event.OccurredAt,
	}
}
