package postgres

import (
	"time"

	"github.com/google/uuid"
)

type userModel struct {
	UserID        uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey"`
	Email         string    `gorm:"column:email"`
	PointsBalance int64     `gorm:"column:points_balance"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (userModel) TableName() string { return "users" }

type bountyModel struct {
	BountyID    uuid.UUID  `gorm:"column:bounty_id;type:uuid;default:gen_random_uuid();primaryKey"`
	CreatorID   uuid.UUID  `gorm:"column:creator_id"`
	Title       string     `gorm:"column:title"`
	Description string     `gorm:"column:description"`
	Amount      int64      `gorm:"column:amount"`
	Lat         float64    `gorm:"column:lat"`
	Lng         float64    `gorm:"column:lng"`
	Status      string     `gorm:"column:status"`
	AcceptedBy  *uuid.UUID `gorm:"column:accepted_by"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at"`
}

func (bountyModel) TableName() string { return "bounties" }

type sessionModel struct {
	SessionID       uuid.UUID  `gorm:"column:session_id;type:uuid;primaryKey"`
	BountyID        uuid.UUID  `gorm:"column:bounty_id"`
	StreamerID      uuid.UUID  `gorm:"column:streamer_id"`
	Status          string     `gorm:"column:status"`
	StartedAt       time.Time  `gorm:"column:started_at"`
	CompletedAt     *time.Time `gorm:"column:completed_at"`
	Approved        *bool      `gorm:"column:approved"`
	RoomName        *string    `gorm:"column:room_name"`
	StreamStartedAt *time.Time `gorm:"column:stream_started_at"`
	StreamEndedAt   *time.Time `gorm:"column:stream_ended_at"`
	LastActivityAt  time.Time  `gorm:"column:last_activity_at"`
	CreatedAt       time.Time  `gorm:"column:created_at"`
	UpdatedAt       time.Time  `gorm:"column:updated_at"`
}

func (sessionModel) TableName() string { return "sessions" }

type streamEventModel struct {
	EventID       uuid.UUID  `gorm:"column:event_id;type:uuid;primaryKey"`
	SessionID     uuid.UUID  `gorm:"column:session_id"`
	EventType     string     `gorm:"column:event_type"`
	ParticipantID *uuid.UUID `gorm:"column:participant_id"`
	Metadata      *string    `gorm:"column:metadata;type:jsonb"`
	OccurredAt    time.Time  `gorm:"column:occurred_at"`
}

func (streamEventModel) TableName() string { return "stream_events" }

type outboxModel struct {
	OutboxID       uuid.UUID  `gorm:"column:outbox_id;type:uuid;primaryKey"`
	EventType      string     `gorm:"column:event_type"`
	PartitionKey   string     `gorm:"column:partition_key"`
	Payload        string     `gorm:"column:payload;type:jsonb"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
	PublishedAt    *time.Time `gorm:"column:published_at"`
	RetryCount     int        `gorm:"column:retry_count"`
	LastError      *string    `gorm:"column:last_error"`
	LastErrorAt    *time.Time `gorm:"column:last_error_at"`
	ClaimToken     *string    `gorm:"column:claim_token"`
	ClaimUntil     *time.Time `gorm:"column:claim_until"`
	DeadLetteredAt *time.Time `gorm:"column:dead_lettered_at"`
}

func (outboxModel) TableName() string { return "stream_outbox" }
