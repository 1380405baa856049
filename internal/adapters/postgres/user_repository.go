package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/spotcast-live/spotcast/internal/domain"
)

type userRepository struct {
	db *gorm.DB
}

func (r *userRepository) GetByID(ctx context.Context, userID uuid.UUID) (domain.User, error) {
	var rec userModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, err
	}
	return toDomainUser(rec), nil
}

func (r *userRepository) Credit(ctx context.Context, userID uuid.UUID, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: credit amount must be positive", domain.ErrInvalidInput)
	}
	return creditBalance(r.db.WithContext(ctx), userID, amount, time.Now().UTC())
}

// Debit decrements the balance only when it stays non-negative. Unreachable
// under the credit-only reward flow, but the primitive guards regardless.
func (r *userRepository) Debit(ctx context.Context, userID uuid.UUID, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: debit amount must be positive", domain.ErrInvalidInput)
	}
	res := r.db.WithContext(ctx).
		Model(&userModel{}).
		Where("user_id = ?", userID).
		Where("points_balance >= ?", amount).
		Updates(map[string]any{
			"points_balance": gorm.Expr("points_balance - ?", amount),
			"updated_at":     time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var exists int64
		if err := r.db.WithContext(ctx).Model(&userModel{}).Where("user_id = ?", userID).Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return domain.ErrNotFound
		}
		return domain.ErrInsufficientFunds
	}
	return nil
}

// creditBalance is the single balance-increment statement, shared by the
// ledger port and the resolve transaction so every credit is one atomic
// per-account update.
func creditBalance(db *gorm.DB, userID uuid.UUID, amount int64, at time.Time) error {
	res := db.Model(&userModel{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"points_balance": gorm.Expr("points_balance + ?", amount),
			"updated_at":     at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
