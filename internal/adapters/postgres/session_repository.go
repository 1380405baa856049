package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/spotcast-live/spotcast/internal/domain"
	"github.com/spotcast-live/spotcast/internal/ports"
)

type sessionRepository struct {
	db *gorm.DB
}

func (r *sessionRepository) GetByID(ctx context.Context, sessionID uuid.UUID) (domain.Session, error) {
	var rec sessionModel
	if err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Session{}, domain.ErrNotFound
		}
		return domain.Session{}, err
	}
	return toDomainSession(rec), nil
}

func (r *sessionRepository) GetWithBounty(ctx context.Context, sessionID uuid.UUID) (domain.Session, domain.Bounty, error) {
	var session sessionModel
	if err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).Take(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Session{}, domain.Bounty{}, domain.ErrNotFound
		}
		return domain.Session{}, domain.Bounty{}, err
	}
	var bounty bountyModel
	if err := r.db.WithContext(ctx).Where("bounty_id = ?", session.BountyID).Take(&bounty).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Session{}, domain.Bounty{}, domain.ErrNotFound
		}
		return domain.Session{}, domain.Bounty{}, err
	}
	return toDomainSession(session), toDomainBounty(bounty), nil
}

func (r *sessionRepository) ListByStreamer(ctx context.Context, streamerID uuid.UUID, limit, offset int) ([]domain.Session, error) {
	var rows []sessionModel
	query := r.db.WithContext(ctx).
		Where("streamer_id = ?", streamerID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset)
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]domain.Session, 0, len(rows))
	for _, item := range rows {
		result = append(result, toDomainSession(item))
	}
	return result, nil
}

func (r *sessionRepository) ListIdleActive(ctx context.Context, cutoff time.Time, limit int) ([]domain.Session, error) {
	var rows []sessionModel
	query := r.db.WithContext(ctx).
		Where("status = ?", string(domain.SessionStatusActive)).
		Where("last_activity_at < ?", cutoff).
		Order("last_activity_at ASC").
		Limit(limit)
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]domain.Session, 0, len(rows))
	for _, item := range rows {
		result = append(result, toDomainSession(item))
	}
	return result, nil
}

func (r *sessionRepository) TouchActivity(ctx context.Context, sessionID uuid.UUID, touchedAt time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&sessionModel{}).
		Where("session_id = ?", sessionID).
		Where("status = ?", string(domain.SessionStatusActive)).
		Updates(map[string]any{
			"last_activity_at": touchedAt,
			"updated_at":       touchedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var exists int64
		if err := r.db.WithContext(ctx).Model(&sessionModel{}).Where("session_id = ?", sessionID).Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return domain.ErrNotFound
		}
		return domain.ErrInvalidState
	}
	return nil
}

// EnsureRoomName sets the room name only when unset, then reads back the
// authoritative value so concurrent first grants agree on one room.
func (r *sessionRepository) EnsureRoomName(ctx context.Context, sessionID uuid.UUID, roomName string, at time.Time) (string, error) {
	res := r.db.WithContext(ctx).
		Model(&sessionModel{}).
		Where("session_id = ?", sessionID).
		Where("room_name IS NULL").
		Updates(map[string]any{
			"room_name":  roomName,
			"updated_at": at,
		})
	if res.Error != nil {
		return "", res.Error
	}

	var rec sessionModel
	if err := r.db.WithContext(ctx).Select("room_name").Where("session_id = ?", sessionID).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", domain.ErrNotFound
		}
		return "", err
	}
	if rec.RoomName == nil {
		return roomName, nil
	}
	return *rec.RoomName, nil
}

func (r *sessionRepository) MarkStreamStarted(ctx context.Context, sessionID uuid.UUID, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&sessionModel{}).
		Where("session_id = ?", sessionID).
		Where("status = ?", string(domain.SessionStatusActive)).
		Where("stream_started_at IS NULL").
		Updates(map[string]any{
			"stream_started_at": at,
			"updated_at":        at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, r.mustExist(ctx, sessionID)
	}
	return true, nil
}

func (r *sessionRepository) MarkStreamEnded(ctx context.Context, sessionID uuid.UUID, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&sessionModel{}).
		Where("session_id = ?", sessionID).
		Where("stream_started_at IS NOT NULL").
		Where("stream_ended_at IS NULL").
		Updates(map[string]any{
			"stream_ended_at": at,
			"updated_at":      at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, r.mustExist(ctx, sessionID)
	}
	return true, nil
}

// ResolveTx is the single terminal transition shared by creator finish and
// sweeper timeout. The session's active->terminal flip is conditional; its
// loser gets domain.ErrInvalidState and the transaction applies nothing.
// Bounty transition, streamer credit, event log entries, and the outbox
// record all ride the same transaction.
func (r *sessionRepository) ResolveTx(ctx context.Context, params ports.ResolveParams) (ports.ResolveResult, error) {
	var result ports.ResolveResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sessionStatus := string(domain.SessionStatusCompleted)
		updates := map[string]any{
			"completed_at": params.Now,
			"updated_at":   params.Now,
		}
		switch params.Outcome {
		case domain.OutcomeApproved:
			updates["approved"] = true
		case domain.OutcomeRejected:
			updates["approved"] = false
		case domain.OutcomeTimedOut:
			sessionStatus = string(domain.SessionStatusCancelled)
		default:
			return fmt.Errorf("%w: unknown outcome %q", domain.ErrInvalidInput, params.Outcome)
		}
		updates["status"] = sessionStatus

		res := tx.Model(&sessionModel{}).
			Where("session_id = ?", params.SessionID).
			Where("status = ?", string(domain.SessionStatusActive)).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var exists int64
			if err := tx.Model(&sessionModel{}).Where("session_id = ?", params.SessionID).Count(&exists).Error; err != nil {
				return err
			}
			if exists == 0 {
				return domain.ErrNotFound
			}
			return domain.ErrInvalidState
		}

		// Close the stream timestamp if the stream was left running.
		if err := tx.Model(&sessionModel{}).
			Where("session_id = ?", params.SessionID).
			Where("stream_started_at IS NOT NULL").
			Where("stream_ended_at IS NULL").
			Update("stream_ended_at", params.Now).Error; err != nil {
			return err
		}

		var session sessionModel
		if err := tx.Where("session_id = ?", params.SessionID).Take(&session).Error; err != nil {
			return err
		}
		var bounty bountyModel
		if err := tx.Where("bounty_id = ?", session.BountyID).Take(&bounty).Error; err != nil {
			return err
		}

		bountyUpdates := map[string]any{"updated_at": params.Now}
		if params.Outcome == domain.OutcomeApproved {
			bountyUpdates["status"] = string(domain.BountyStatusCompleted)
		} else {
			bountyUpdates["status"] = string(domain.BountyStatusOpen)
			bountyUpdates["accepted_by"] = nil
		}
		bres := tx.Model(&bountyModel{}).
			Where("bounty_id = ?", session.BountyID).
			Where("status = ?", string(domain.BountyStatusAccepted)).
			Updates(bountyUpdates)
		if bres.Error != nil {
			return bres.Error
		}
		if bres.RowsAffected == 0 {
			// Session active but bounty not accepted breaks the pairing
			// invariant; roll everything back.
			return fmt.Errorf("%w: bounty %s is not accepted", domain.ErrInvalidState, session.BountyID)
		}

		if params.Outcome == domain.OutcomeApproved {
			if err := creditBalance(tx, session.StreamerID, bounty.Amount, params.Now); err != nil {
				return err
			}
			result.Credited = bounty.Amount
		}

		for _, event := range params.Events {
			rec := toEventModel(event)
			if err := tx.Create(&rec).Error; err != nil {
				return err
			}
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

		if err := tx.Where("session_id = ?", params.SessionID).Take(&session).Error; err != nil {
			return err
		}
		if err := tx.Where("bounty_id = ?", session.BountyID).Take(&bounty).Error; err != nil {
			return err
		}
		result.Session = toDomainSession(session)
		result.Bounty = toDomainBounty(bounty)
		return nil
	})
	if err != nil {
		return ports.ResolveResult{}, err
	}
	return result, nil
}

func (r *sessionRepository) mustExist(ctx context.Context, sessionID uuid.UUID) error {
	var exists int64
	if err := r.db.WithContext(ctx).Model(&sessionModel{}).Where("session_id = ?", sessionID).Count(&exists).Error; err != nil {
		return err
	}
	if exists == 0 {
		return domain.ErrNotFound
	}
	return nil
}
