package postgres

import (
	"gorm.io/gorm"

	"github.com/spotcast-live/spotcast/internal/ports"
)

type Repositories struct {
	Users    ports.UserRepository
	Bounties ports.BountyRepository
	Sessions ports.SessionRepository
	Events   ports.StreamEventRepository
	Outbox   ports.OutboxRepository
}

func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Users:    &userRepository{db: db},
		Bounties: &bountyRepository{db: db},
		Sessions: &sessionRepository{db: db},
		Events:   &streamEventRepository{db: db},
		Outbox:   &outboxRepository{db: db},
	}
}
