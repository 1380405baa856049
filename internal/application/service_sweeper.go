package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/spotcast-live/spotcast/internal/domain"
	"github.com/spotcast-live/spotcast/internal/ports"
)

// SweepIdleSessions performs one reclamation pass: every active session idle
// past the threshold is driven to cancelled through the same resolution
// transaction a rejection uses, which reopens the bounty and credits
// nothing. Each session is handled independently, so one failure never
// aborts the rest of the pass, and a replica-wide lock keeps passes from
// stacking up.
func (s *Service) SweepIdleSessions(ctx context.Context) (SweepReport, error) {
	holder := uuid.NewString()
	if s.sweepLock != nil {
		acquired, err := s.sweepLock.TryAcquire(ctx, holder, s.cfg.SweepLockTTL)
		if err != nil {
			return SweepReport{}, err
		}
		if !acquired {
			return SweepReport{Skipped: true}, nil
		}
		defer func() { _ = s.sweepLock.Release(ctx, holder) }()
	}

	cutoff := s.nowFn().Add(-s.cfg.IdleThreshold)
	idle, err := s.sessions.ListIdleActive(ctx, cutoff, s.cfg.SweepBatchSize)
	if err != nil {
		return SweepReport{}, err
	}

	report := SweepReport{Scanned: len(idle)}
	for _, session := range idle {
		if err := s.reclaimSession(ctx, session); err != nil {
			if errors.Is(err, domain.ErrInvalidState) {
				// Lost the race to a concurrent finish; nothing to reclaim.
				continue
			}
			report.Failed++
			slog.Default().ErrorContext(ctx, "session reclamation failed",
				"service", s.cfg.ServiceName,
				"module", "application",
				"operation", "sweep_idle_sessions",
				"outcome", "failure",
				"session_id", session.SessionID.String(),
				"error", err.Error(),
			)
			continue
		}
		report.Reclaimed++
	}
	return report, nil
}

func (s *Service) reclaimSession(ctx context.Context, session domain.Session) error {
	bounty, err := s.bounties.GetByID(ctx, session.BountyID)
	if err != nil {
		return err
	}

	now := s.nowFn()
	timeoutEvent := domain.StreamEvent{
		EventID:    uuid.New(),
		SessionID:  session.SessionID,
		EventType:  domain.EventSessionTimeout,
		Metadata:   mustJSON(map[string]any{"reason": "inactivity_timeout"}),
		OccurredAt: now,
	}

	_, err = s.sessions.ResolveTx(ctx, ports.ResolveParams{
		SessionID: session.SessionID,
		Outcome:   domain.OutcomeTimedOut,
		Now:       now,
		Events:    []domain.StreamEvent{timeoutEvent},
		Outbox:    s.sessionResolvedEvent(session, bounty, domain.OutcomeTimedOut, "", now),
	})
	return err
}
