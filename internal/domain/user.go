package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is the marketplace account as this service sees it: an identity plus
// a non-negative integer points balance. Registration and login live in the
// platform auth service; the only mutation performed here is the ledger's
// credit/debit primitive.
type User struct {
	UserID        uuid.UUID
	Email         string
	PointsBalance int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
