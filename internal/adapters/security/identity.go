package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/spotcast-live/spotcast/internal/ports"
)

// IdentityVerifier validates platform bearer tokens issued by the account
// service and extracts the caller identity used for authorization checks.
type IdentityVerifier struct {
	secret []byte
}

func NewIdentityVerifier(secret string) (*IdentityVerifier, error) {
	if secret == "" {
		return nil, errors.New("auth token secret is required")
	}
	return &IdentityVerifier{secret: []byte(secret)}, nil
}

type identityClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func (v *IdentityVerifier) Verify(raw string) (ports.Identity, error) {
	parsed, err := jwt.ParseWithClaims(raw, &identityClaims{}, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", token.Method.Alg())
		}
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithLeeway(30*time.Second))
	if err != nil {
		return ports.Identity{}, err
	}
	claims, ok := parsed.Claims.(*identityClaims)
	if !ok || !parsed.Valid {
		return ports.Identity{}, errors.New("invalid token claims")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ports.Identity{}, fmt.Errorf("parse subject: %w", err)
	}
	var expires time.Time
	if claims.ExpiresAt != nil {
		expires = claims.ExpiresAt.Time.UTC()
	}

	return ports.Identity{
		UserID:    userID,
		Email:     claims.Email,
		ExpiresAt: expires,
	}, nil
}
