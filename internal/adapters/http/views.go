package http

import (
	"encoding/json"
	"time"

	"github.com/spotcast-live/spotcast/internal/domain"
)

// Wire shapes for domain entities. Kept in the adapter so storage and core
// types can evolve without breaking clients.

type bountyView struct {
	BountyID    string     `json:"bounty_id"`
	CreatorID   string     `json:"creator_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Amount      int64      `json:"amount"`
	Lat         float64    `json:"lat"`
	Lng         float64    `json:"lng"`
	Status      string     `json:"status"`
	AcceptedBy  *string    `json:"accepted_by,omitempty"`
	DistanceKM  *float64   `json:"distance_km,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type sessionView struct {
	SessionID       string     `json:"session_id"`
	BountyID        string     `json:"bounty_id"`
	StreamerID      string     `json:"streamer_id"`
	Status          string     `json:"status"`
	StartedAt       time.Time  `json:"started_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	Approved        *bool      `json:"approved,omitempty"`
	RoomName        *string    `json:"room_name,omitempty"`
	StreamStartedAt *time.Time `json:"stream_started_at,omitempty"`
	StreamEndedAt   *time.Time `json:"stream_ended_at,omitempty"`
	LastActivityAt  time.Time  `json:"last_activity_at"`
}

type eventView struct {
	EventID       string          `json:"event_id"`
	SessionID     string          `json:"session_id"`
	EventType     string          `json:"event_type"`
	ParticipantID *string         `json:"participant_id,omitempty"`
	Metadata      json.RawMessage `json:"metadata,omitempty"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

type userView struct {
	UserID        string `json:"user_id"`
	Email         string `json:"email"`
	PointsBalance int64  `json:"points_balance"`
}

func toBountyView(b domain.Bounty) bountyView {
	view := bountyView{
		BountyID:    b.BountyID.String(),
		CreatorID:   b.CreatorID.String(),
		Title:       b.Title,
		Description: b.Description,
		Amount:      b.Amount,
		Lat:         b.Lat,
		Lng:         b.Lng,
		Status:      string(b.Status),
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
	if b.AcceptedBy != nil {
		accepted := b.AcceptedBy.String()
		view.AcceptedBy = &accepted
	}
	return view
}

func toNearbyBountyView(b domain.NearbyBounty) bountyView {
	view := toBountyView(b.Bounty)
	distance := b.DistanceKM
	view.DistanceKM = &distance
	return view
}

func toBountyViews(items []domain.Bounty) []bountyView {
	views := make([]bountyView, 0, len(items))
	for _, b := range items {
		views = append(views, toBountyView(b))
	}
	return views
}

func toSessionView(s domain.Session) sessionView {
	return sessionView{
		SessionID:       s.SessionID.String(),
		BountyID:        s.BountyID.String(),
		StreamerID:      s.StreamerID.String(),
		Status:          string(s.Status),
		StartedAt:       s.StartedAt,
		CompletedAt:     s.CompletedAt,
		Approved:        s.Approved,
		RoomName:        s.RoomName,
		StreamStartedAt: s.StreamStartedAt,
		StreamEndedAt:   s.StreamEndedAt,
		LastActivityAt:  s.LastActivityAt,
	}
}

func toSessionViews(items []domain.Session) []sessionView {
	views := make([]sessionView, 0, len(items))
	for _, s := range items {
		views = append(views, toSessionView(s))
	}
	return views
}

func toEventView(e domain.StreamEvent) eventView {
	view := eventView{
		EventID:    e.EventID.String(),
		SessionID:  e.SessionID.String(),
		EventType:  e.EventType,
		Metadata:   e.Metadata,
		OccurredAt: e.OccurredAt,
	}
	if e.ParticipantID != nil {
		participant := e.ParticipantID.String()
		view.ParticipantID = &participant
	}
	return view
}

func toEventViews(items []domain.StreamEvent) []eventView {
	views := make([]eventView, 0, len(items))
	for _, e := range items {
		views = append(views, toEventView(e))
	}
	return views
}

func toUserView(u domain.User) userView {
	return userView{
		UserID:        u.UserID.String(),
		Email:         u.Email,
		PointsBalance: u.PointsBalance,
	}
}
