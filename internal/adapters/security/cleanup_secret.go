package security

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// CleanupSecret verifies the shared secret presented by the scheduled
// cleanup caller against its configured bcrypt hash.
type CleanupSecret struct {
	hash []byte
}

func NewCleanupSecret(hash string) (*CleanupSecret, error) {
	if hash == "" {
		return nil, errors.New("cleanup secret hash is required")
	}
	return &CleanupSecret{hash: []byte(hash)}, nil
}

func (c *CleanupSecret) Compare(secret string) error {
	return bcrypt.CompareHashAndPassword(c.hash, []byte(secret))
}

// HashSecret produces a bcrypt hash suitable for the cleanup secret config.
// Used by deployment tooling, not the request path.
func HashSecret(secret string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
