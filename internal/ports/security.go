package ports

import (
	"time"

	"github.com/google/uuid"

	"github.com/spotcast-live/spotcast/internal/domain"
)

// MediaGrant is the input to the credential-signing collaborator: the
// authorization decision is made by the application layer, the adapter only
// turns it into a signed, time-bounded room token.
type MediaGrant struct {
	RoomName    string
	Identity    uuid.UUID
	DisplayName string
	Role        domain.Role
	SessionID   uuid.UUID
	CanPublish  bool
	IssuedAt    time.Time
	ExpiresAt   time.Time
}

type MediaTokenSigner interface {
	Sign(grant MediaGrant) (string, error)
}

// Identity is the already-authenticated caller resolved at the HTTP
// boundary. Core operations never see raw credentials.
type Identity struct {
	UserID    uuid.UUID
	Email     string
	ExpiresAt time.Time
}

type IdentityVerifier interface {
	Verify(token string) (Identity, error)
}

// CleanupSecretVerifier checks the shared secret presented by the scheduled
// cleanup caller.
type CleanupSecretVerifier interface {
	Compare(secret string) error
}
