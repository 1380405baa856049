package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/spotcast-live/spotcast/internal/domain"
	"github.com/spotcast-live/spotcast/internal/ports"
)

// CreateBounty posts a new open bounty. Funds are not moved at creation; the
// reward is credited to the streamer only at approval.
func (s *Service) CreateBounty(ctx context.Context, actor Actor, input CreateBountyInput) (domain.Bounty, error) {
	if actor.UserID == uuid.Nil {
		return domain.Bounty{}, domain.ErrUnauthorized
	}
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	if input.Title == "" {
		return domain.Bounty{}, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	if input.Amount <= 0 {
		return domain.Bounty{}, fmt.Errorf("%w: amount must be positive", domain.ErrInvalidInput)
	}
	if err := validateCoordinate(input.Lat, input.Lng); err != nil {
		return domain.Bounty{}, err
	}

	now := s.nowFn()
	bounty := domain.Bounty{
		BountyID:    uuid.New(),
		CreatorID:   actor.UserID,
		Title:       input.Title,
		Description: input.Description,
		Amount:      input.Amount,
		Lat:         input.Lat,
		Lng:         input.Lng,
		Status:      domain.BountyStatusOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	created, err := s.bounties.Create(ctx, bounty)
	if err != nil {
		return domain.Bounty{}, err
	}
	if err := s.outbox.Enqueue(ctx, s.bountyCreatedEvent(created, actor.RequestID)); err != nil {
		return domain.Bounty{}, err
	}
	return created, nil
}

func (s *Service) GetBounty(ctx context.Context, actor Actor, bountyID uuid.UUID) (domain.Bounty, error) {
	if actor.UserID == uuid.Nil {
		return domain.Bounty{}, domain.ErrUnauthorized
	}
	return s.bounties.GetByID(ctx, bountyID)
}

// NearbyBounties consumes the spatial lookup collaborator. Radius defaults
// and caps come from config; the core does not implement the query itself.
func (s *Service) NearbyBounties(ctx context.Context, actor Actor, lat, lng, radiusKM float64) ([]domain.NearbyBounty, error) {
	if actor.UserID == uuid.Nil {
		return nil, domain.ErrUnauthorized
	}
	if err := validateCoordinate(lat, lng); err != nil {
		return nil, err
	}
	if radiusKM <= 0 {
		radiusKM = s.cfg.NearbyDefaultRadiusKM
	}
	return s.bounties.Nearby(ctx, lat, lng, radiusKM, s.cfg.NearbyMaxResults)
}

func (s *Service) MyBounties(ctx context.Context, actor Actor, limit, offset int) ([]domain.Bounty, error) {
	if actor.UserID == uuid.Nil {
		return nil, domain.ErrUnauthorized
	}
	limit = clampLimit(limit, s.cfg.ListPageSize)
	if offset < 0 {
		offset = 0
	}
	return s.bounties.ListByCreator(ctx, actor.UserID, limit, offset)
}

// ClaimBounty accepts an open bounty and atomically creates its session.
// The open->accepted flip is a conditional update inside one transaction, so
// of two racing claims exactly one wins; the loser sees domain.ErrConflict.
func (s *Service) ClaimBounty(ctx context.Context, actor Actor, bountyID uuid.UUID) (domain.Session, error) {
	if actor.UserID == uuid.Nil {
		return domain.Session{}, domain.ErrUnauthorized
	}

	bounty, err := s.bounties.GetByID(ctx, bountyID)
	if err != nil {
		return domain.Session{}, err
	}
	if bounty.CreatorID == actor.UserID {
		return domain.Session{}, fmt.Errorf("%w: cannot claim your own bounty", domain.ErrForbidden)
	}
	if bounty.Status != domain.BountyStatusOpen {
		return domain.Session{}, fmt.Errorf("%w: bounty no longer open", domain.ErrConflict)
	}

	now := s.nowFn()
	sessionID := uuid.New()
	session, err := s.bounties.ClaimTx(ctx, ports.ClaimParams{
		BountyID:  bountyID,
		Claimant:  actor.UserID,
		Now:       now,
		SessionID: sessionID,
		Outbox:    s.bountyClaimedEvent(bounty, actor.UserID, sessionID, actor.RequestID, now),
	})
	if err != nil {
		return domain.Session{}, err
	}
	return session, nil
}

func validateCoordinate(lat, lng float64) error {
	if lat < -90 || lat > 90 {
		return fmt.Errorf("%w: latitude out of range", domain.ErrInvalidInput)
	}
	if lng < -180 || lng > 180 {
		return fmt.Errorf("%w: longitude out of range", domain.ErrInvalidInput)
	}
	return nil
}

func clampLimit(limit, fallback int) int {
	if limit <= 0 || limit > fallback {
		return fallback
	}
	return limit
}
