package security

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/spotcast-live/spotcast/internal/ports"
)

// MediaTokenSigner mints HS256 room-access tokens for the media server.
// The claim shape follows the LiveKit access-token format so tokens are
// accepted by the media plane without translation.
type MediaTokenSigner struct {
	apiKey    string
	apiSecret []byte
}

func NewMediaTokenSigner(apiKey, apiSecret string) (*MediaTokenSigner, error) {
	if apiKey == "" || apiSecret == "" {
		return nil, errors.New("media api key and secret are required")
	}
	return &MediaTokenSigner{apiKey: apiKey, apiSecret: []byte(apiSecret)}, nil
}

type videoGrant struct {
	Room         string `json:"room"`
	RoomJoin     bool   `json:"roomJoin"`
	CanPublish   bool   `json:"canPublish"`
	CanSubscribe bool   `json:"canSubscribe"`
}

type mediaTokenClaims struct {
	Name  string     `json:"name,omitempty"`
	Video videoGrant `json:"video"`
	jwt.RegisteredClaims
}

func (s *MediaTokenSigner) Sign(grant ports.MediaGrant) (string, error) {
	if grant.RoomName == "" {
		return "", errors.New("room name is required")
	}
	if grant.Identity == uuid.Nil {
		return "", errors.New("identity is required")
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, mediaTokenClaims{
		Name: grant.DisplayName,
		Video: videoGrant{
			Room:         grant.RoomName,
			RoomJoin:     true,
			CanPublish:   grant.CanPublish,
			CanSubscribe: true,
		},
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.apiKey,
			Subject:   grant.Identity.String(),
			IssuedAt:  jwt.NewNumericDate(grant.IssuedAt),
			NotBefore: jwt.NewNumericDate(grant.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(grant.ExpiresAt),
		},
	})
	return token.SignedString(s.apiSecret)
}
