package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/spotcast-live/spotcast/internal/domain"
	"github.com/spotcast-live/spotcast/internal/ports"
)

type bountyRepository struct {
	db *gorm.DB
}

func (r *bountyRepository) Create(ctx context.Context, bounty domain.Bounty) (domain.Bounty, error) {
	rec := bountyModel{
		BountyID:    bounty.BountyID,
		CreatorID:   bounty.CreatorID,
		Title:       bounty.Title,
		Description: bounty.Description,
		Amount:      bounty.Amount,
		Lat:         bounty.Lat,
		Lng:         bounty.Lng,
		Status:      string(bounty.Status),
		CreatedAt:   bounty.CreatedAt,
		UpdatedAt:   bounty.UpdatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return domain.Bounty{}, err
	}
	return toDomainBounty(rec), nil
}

func (r *bountyRepository) GetByID(ctx context.Context, bountyID uuid.UUID) (domain.Bounty, error) {
	var rec bountyModel
	if err := r.db.WithContext(ctx).Where("bounty_id = ?", bountyID).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Bounty{}, domain.ErrNotFound
		}
		return domain.Bounty{}, err
	}
	return toDomainBounty(rec), nil
}

func (r *bountyRepository) ListByCreator(ctx context.Context, creatorID uuid.UUID, limit, offset int) ([]domain.Bounty, error) {
	var rows []bountyModel
	query := r.db.WithContext(ctx).
		Where("creator_id = ?", creatorID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset)
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]domain.Bounty, 0, len(rows))
	for _, item := range rows {
		result = append(result, toDomainBounty(item))
	}
	return result, nil
}

type nearbyRow struct {
	bountyModel
	DistanceKM float64 `gorm:"column:distance_km"`
}

// Nearby delegates the spatial query to the nearby_bounties SQL function
// installed by migration. Only open bounties come back, ascending by
// distance.
func (r *bountyRepository) Nearby(ctx context.Context, lat, lng, radiusKM float64, limit int) ([]domain.NearbyBounty, error) {
	var rows []nearbyRow
	err := r.db.WithContext(ctx).
		Raw("SELECT * FROM nearby_bounties(?, ?, ?) LIMIT ?", lat, lng, radiusKM, limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	result := make([]domain.NearbyBounty, 0, len(rows))
	for _, item := range rows {
		result = append(result, domain.NearbyBounty{
			Bounty:     toDomainBounty(item.bountyModel),
			DistanceKM: item.DistanceKM,
		})
	}
	return result, nil
}

// ClaimTx flips an open bounty to accepted and creates its session in one
// transaction. The status flip is a conditional update; zero rows means the
// bounty was already claimed (or never existed) and nothing else runs.
func (r *bountyRepository) ClaimTx(ctx context.Context, params ports.ClaimParams) (domain.Session, error) {
	var result domain.Session
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&bountyModel{}).
			Where("bounty_id = ?", params.BountyID).
			Where("status = ?", string(domain.BountyStatusOpen)).
			Updates(map[string]any{
				"status":      string(domain.BountyStatusAccepted),
				"accepted_by": params.Claimant,
				"updated_at":  params.Now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var exists int64
			if err := tx.Model(&bountyModel{}).Where("bounty_id = ?", params.BountyID).Count(&exists).Error; err != nil {
				return err
			}
			if exists == 0 {
				return domain.ErrNotFound
			}
			return fmt.Errorf("%w: bounty no longer open", domain.ErrConflict)
		}

		session := sessionModel{
			SessionID:      params.SessionID,
			BountyID:       params.BountyID,
			StreamerID:     params.Claimant,
			Status:         string(domain.SessionStatusActive),
			StartedAt:      params.Now,
			LastActivityAt: params.Now,
			CreatedAt:      params.Now,
			UpdatedAt:      params.Now,
		}
		if err := tx.Create(&session).Error; err != nil {
			return err
		}

		if err := tx.Create(&outboxModel{
			OutboxID:     params.Outbox.EventID,
			EventType:    params.Outbox.EventType,
			PartitionKey: params.Outbox.PartitionKey,
			Payload:      string(params.Outbox.Payload),
			CreatedAt:    params.Outbox.OccurredAt,
		}).Error; err != nil {
			return err
		}

		result = toDomainSession(session)
		return nil
	})
	if err != nil {
		return domain.Session{}, err
	}
	return result, nil
}
