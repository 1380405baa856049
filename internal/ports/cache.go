package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SweepLock serializes reclamation passes across service replicas. Acquire
// is best-effort: a false return means another holder is mid-sweep and this
// pass should be skipped, not queued.
type SweepLock interface {
	TryAcquire(ctx context.Context, holder string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, holder string) error
}

// ActivityThrottle coalesces high-frequency heartbeats so each session
// persists at most one last-activity write per window. A failure here must
// degrade to persisting, never to dropping the touch.
type ActivityThrottle interface {
	ShouldPersist(ctx context.Context, sessionID uuid.UUID, window time.Duration) (bool, error)
}
