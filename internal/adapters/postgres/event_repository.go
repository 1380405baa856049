package postgres

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/spotcast-live/spotcast/internal/domain"
)

type streamEventRepository struct {
	db *gorm.DB
}

func (r *streamEventRepository) Append(ctx context.Context, event domain.StreamEvent) error {
	rec := toEventModel(event)
	return r.db.WithContext(ctx).Create(&rec).Error
}

func (r *streamEventRepository) ListBySession(ctx context.Context, sessionID uuid.UUID, limit, offset int) ([]domain.StreamEvent, error) {
	var rows []streamEventModel
	query := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("occurred_at ASC").
		Limit(limit).
		Offset(offset)
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]domain.StreamEvent, 0, len(rows))
	for _, item := range rows {
		result = append(result, toDomainStreamEvent(item))
	}
	return result, nil
}
