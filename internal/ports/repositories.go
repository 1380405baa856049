package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/spotcast-live/spotcast/internal/domain"
)

// ClaimParams carries everything the claim transaction needs. The bounty
// flip, session insert, and outbox record are applied as one unit; if the
// conditional status update matches no open row the whole transaction fails
// with domain.ErrConflict (or ErrNotFound when the bounty does not exist at
// all).
type ClaimParams struct {
	BountyID  uuid.UUID
	Claimant  uuid.UUID
	Now       time.Time
	SessionID uuid.UUID
	Outbox    OutboxEvent
}

// ResolveParams drives the shared finish/timeout transaction. Outcome
// decides the session's terminal status, the bounty's next status, and
// whether the streamer is credited. The session status update is conditional
// on `active`; a loser of the finish-vs-sweep race gets
// domain.ErrInvalidState and no mutation is applied.
type ResolveParams struct {
	SessionID uuid.UUID
	Outcome   domain.ResolutionOutcome
	Now       time.Time
	Events    []domain.StreamEvent
	Outbox    OutboxEvent
}

// ResolveResult reports the post-transaction state for responses and audit.
type ResolveResult struct {
	Session  domain.Session
	Bounty   domain.Bounty
	Credited int64
}

type BountyRepository interface {
	Create(ctx context.Context, bounty domain.Bounty) (domain.Bounty, error)
	GetByID(ctx context.Context, bountyID uuid.UUID) (domain.Bounty, error)
	ListByCreator(ctx context.Context, creatorID uuid.UUID, limit, offset int) ([]domain.Bounty, error)
	// Nearby consumes the spatial lookup collaborator: open bounties within
	// radiusKM of the coordinate, ascending by distance.
	Nearby(ctx context.Context, lat, lng, radiusKM float64, limit int) ([]domain.NearbyBounty, error)
	// ClaimTx atomically accepts an open bounty and creates its session.
	ClaimTx(ctx context.Context, params ClaimParams) (domain.Session, error)
}

type SessionRepository interface {
	GetByID(ctx context.Context, sessionID uuid.UUID) (domain.Session, error)
	// GetWithBounty loads a session together with its owning bounty, the
	// join every authorization decision needs.
	GetWithBounty(ctx context.Context, sessionID uuid.UUID) (domain.Session, domain.Bounty, error)
	ListByStreamer(ctx context.Context, streamerID uuid.UUID, limit, offset int) ([]domain.Session, error)
	// ListIdleActive returns active sessions whose last activity is older
	// than the cutoff, oldest first, for the reclamation sweep.
	ListIdleActive(ctx context.Context, cutoff time.Time, limit int) ([]domain.Session, error)
	// TouchActivity bumps last activity on an active session. Terminal
	// sessions are left untouched and reported as domain.ErrInvalidState.
	TouchActivity(ctx context.Context, sessionID uuid.UUID, touchedAt time.Time) error
	// EnsureRoomName persists the room name on first grant issuance and
	// returns the authoritative name, which may have been set by a
	// concurrent grant.
	EnsureRoomName(ctx context.Context, sessionID uuid.UUID, roomName string, at time.Time) (string, error)
	// MarkStreamStarted/MarkStreamEnded set their timestamp once; re-marking
	// is a no-op reported via the boolean so callers emit the event log
	// entry only on the first transition.
	MarkStreamStarted(ctx context.Context, sessionID uuid.UUID, at time.Time) (bool, error)
	MarkStreamEnded(ctx context.Context, sessionID uuid.UUID, at time.Time) (bool, error)
	// ResolveTx is the shared terminal transition for creator finish and
	// sweeper timeout.
	ResolveTx(ctx context.Context, params ResolveParams) (ResolveResult, error)
}

// UserRepository exposes the ledger primitive alongside account reads. All
// balance mutation in the system funnels through Credit/Debit or the
// resolve transaction's equivalent single-statement update.
type UserRepository interface {
	GetByID(ctx context.Context, userID uuid.UUID) (domain.User, error)
	Credit(ctx context.Context, userID uuid.UUID, amount int64) error
	Debit(ctx context.Context, userID uuid.UUID, amount int64) error
}

type StreamEventRepository interface {
	Append(ctx context.Context, event domain.StreamEvent) error
	ListBySession(ctx context.Context, sessionID uuid.UUID, limit, offset int) ([]domain.StreamEvent, error)
}

// OutboxEvent is a domain event captured transactionally for later publish.
type OutboxEvent struct {
	EventID      uuid.UUID
	EventType    string
	PartitionKey string
	Payload      []byte
	OccurredAt   time.Time
}

// OutboxRecord is a stored outbox row claimed by the publisher worker.
type OutboxRecord struct {
	OutboxID     uuid.UUID
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
	RetryCount   int
}

type OutboxRepository interface {
	Enqueue(ctx context.Context, event OutboxEvent) error
	ClaimUnpublished(ctx context.Context, limit int, claimToken string, claimUntil time.Time) ([]OutboxRecord, error)
	MarkPublished(ctx context.Context, outboxID uuid.UUID, claimToken string, at time.Time) error
	MarkFailed(ctx context.Context, outboxID uuid.UUID, claimToken, reason string, at time.Time) error
	MarkDeadLettered(ctx context.Context, outboxID uuid.UUID, claimToken, reason string, at time.Time) error
}
