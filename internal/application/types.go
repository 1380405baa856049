package application

import (
	"time"

	"github.com/google/uuid"

	"github.com/spotcast-live/spotcast/internal/domain"
	"github.com/spotcast-live/spotcast/internal/ports"
)

// Config carries the lifecycle policy knobs. Zero values are replaced with
// the defaults below so tests and local runs can construct a Service from a
// partial config.
type Config struct {
	ServiceName string

	// IdleThreshold is how long a session may go without activity before
	// the sweeper reclaims it.
	IdleThreshold time.Duration
	// SweepBatchSize bounds how many idle sessions one pass processes.
	SweepBatchSize int
	// SweepLockTTL bounds how long a crashed sweeper can hold the pass lock.
	SweepLockTTL time.Duration

	// GrantTTL is the lifetime of issued media room tokens.
	GrantTTL time.Duration
	// HeartbeatWindow coalesces activity touches: at most one persisted
	// last-activity write per session per window.
	HeartbeatWindow time.Duration

	NearbyDefaultRadiusKM float64
	NearbyMaxResults      int
	ListPageSize          int
}

// Actor is the already-authenticated caller. The HTTP/gRPC boundary resolves
// identity before any core operation runs; the core never sees credentials.
type Actor struct {
	UserID    uuid.UUID
	Email     string
	RequestID string
}

type CreateBountyInput struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Amount      int64   `json:"amount"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
}

// SessionDetail joins a session with its bounty and the caller's derived
// role, which is what the session page renders from.
type SessionDetail struct {
	Session domain.Session `json:"session"`
	Bounty  domain.Bounty  `json:"bounty"`
	Role    domain.Role    `json:"role"`
}

// GrantResponse is the issued media room credential.
type GrantResponse struct {
	Token    string      `json:"token"`
	RoomName string      `json:"room_name"`
	Role     domain.Role `json:"role"`
}

// RoomAccess is the answer to the media layer's join callback.
type RoomAccess struct {
	Allowed    bool
	Role       domain.Role
	SessionID  uuid.UUID
	CanPublish bool
}

// SweepReport summarizes one reclamation pass. Skipped means another replica
// held the pass lock. Failed counts sessions whose reclamation errored and
// will be retried next interval.
type SweepReport struct {
	Skipped   bool `json:"skipped"`
	Scanned   int  `json:"scanned"`
	Reclaimed int  `json:"reclaimed"`
	Failed    int  `json:"failed"`
}

type Service struct {
	cfg       Config
	bounties  ports.BountyRepository
	sessions  ports.SessionRepository
	users     ports.UserRepository
	events    ports.StreamEventRepository
	outbox    ports.OutboxRepository
	sweepLock ports.SweepLock
	throttle  ports.ActivityThrottle
	signer    ports.MediaTokenSigner
	nowFn     func() time.Time
}

type Dependencies struct {
	Config    Config
	Bounties  ports.BountyRepository
	Sessions  ports.SessionRepository
	Users     ports.UserRepository
	Events    ports.StreamEventRepository
	Outbox    ports.OutboxRepository
	SweepLock ports.SweepLock
	Throttle  ports.ActivityThrottle
	Signer    ports.MediaTokenSigner
}

func NewService(deps Dependencies) *Service {
	cfg := deps.Config
	if cfg.ServiceName == "" {
		cfg.ServiceName = "spotcast"
	}
	if cfg.IdleThreshold <= 0 {
		cfg.IdleThreshold = 2 * time.Hour
	}
	if cfg.SweepBatchSize <= 0 {
		cfg.SweepBatchSize = 100
	}
	if cfg.SweepLockTTL <= 0 {
		cfg.SweepLockTTL = time.Minute
	}
	if cfg.GrantTTL <= 0 {
		cfg.GrantTTL = time.Hour
	}
	if cfg.HeartbeatWindow < 0 {
		cfg.HeartbeatWindow = 0
	}
	if cfg.NearbyDefaultRadiusKM <= 0 {
		cfg.NearbyDefaultRadiusKM = 10
	}
	if cfg.NearbyMaxResults <= 0 {
		cfg.NearbyMaxResults = 100
	}
	if cfg.ListPageSize <= 0 {
		cfg.ListPageSize = 50
	}
	return &Service{
		cfg:       cfg,
		bounties:  deps.Bounties,
		sessions:  deps.Sessions,
		users:     deps.Users,
		events:    deps.Events,
		outbox:    deps.Outbox,
		sweepLock: deps.SweepLock,
		throttle:  deps.Throttle,
		signer:    deps.Signer,
		nowFn:     func() time.Time { return time.Now().UTC() },
	}
}
