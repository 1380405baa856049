package security

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/spotcast-live/spotcast/internal/domain"
	"github.com/spotcast-live/spotcast/internal/ports"
)

func TestMediaTokenSignerClaims(t *testing.T) {
	t.Parallel()

	signer, err := NewMediaTokenSigner("api-key-1", "super-secret")
	if err != nil {
		t.Fatalf("new signer failed: %v", err)
	}

	identity := uuid.New()
	now := time.Now().UTC().Truncate(time.Second)
	raw, err := signer.Sign(ports.MediaGrant{
		RoomName:    "session-" + uuid.NewString(),
		Identity:    identity,
		DisplayName: "streamer@example.com",
		Role:        domain.RoleStreamer,
		CanPublish:  true,
		IssuedAt:    now,
		ExpiresAt:   now.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	parsed, err := jwt.ParseWithClaims(raw, &mediaTokenClaims{}, func(token *jwt.Token) (any, error) {
		return []byte("super-secret"), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	claims, ok := parsed.Claims.(*mediaTokenClaims)
	if !ok || !parsed.Valid {
		t.Fatalf("invalid claims")
	}

	if claims.Issuer != "api-key-1" {
		t.Fatalf("expected api key issuer, got %q", claims.Issuer)
	}
	if claims.Subject != identity.String() {
		t.Fatalf("expected identity subject, got %q", claims.Subject)
	}
	if !claims.Video.RoomJoin || !claims.Video.CanPublish || !claims.Video.CanSubscribe {
		t.Fatalf("unexpected video grant: %+v", claims.Video)
	}
	if claims.ExpiresAt.Time.Sub(claims.IssuedAt.Time) != time.Hour {
		t.Fatalf("unexpected token lifetime")
	}
}

func TestMediaTokenSignerViewerCannotPublish(t *testing.T) {
	t.Parallel()

	signer, err := NewMediaTokenSigner("api-key-1", "super-secret")
	if err != nil {
		t.Fatalf("new signer failed: %v", err)
	}

	now := time.Now().UTC()
	raw, err := signer.Sign(ports.MediaGrant{
		RoomName:   "session-" + uuid.NewString(),
		Identity:   uuid.New(),
		Role:       domain.RoleViewer,
		CanPublish: false,
		IssuedAt:   now,
		ExpiresAt:  now.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	parsed, err := jwt.ParseWithClaims(raw, &mediaTokenClaims{}, func(token *jwt.Token) (any, error) {
		return []byte("super-secret"), nil
	})
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	claims := parsed.Claims.(*mediaTokenClaims)
	if claims.Video.CanPublish {
		t.Fatalf("viewer token must not allow publish")
	}
	if !claims.Video.CanSubscribe {
		t.Fatalf("viewer token must allow subscribe")
	}
}

func TestMediaTokenSignerRejectsIncompleteGrant(t *testing.T) {
	t.Parallel()

	signer, err := NewMediaTokenSigner("api-key-1", "super-secret")
	if err != nil {
		t.Fatalf("new signer failed: %v", err)
	}
	now := time.Now().UTC()

	if _, err := signer.Sign(ports.MediaGrant{Identity: uuid.New(), IssuedAt: now, ExpiresAt: now}); err == nil {
		t.Fatalf("expected error for missing room")
	}
	if _, err := signer.Sign(ports.MediaGrant{RoomName: "session-x", IssuedAt: now, ExpiresAt: now}); err == nil {
		t.Fatalf("expected error for missing identity")
	}
}

func TestIdentityVerifierRoundTrip(t *testing.T) {
	t.Parallel()

	verifier, err := NewIdentityVerifier("auth-secret")
	if err != nil {
		t.Fatalf("new verifier failed: %v", err)
	}

	userID := uuid.New()
	now := time.Now().UTC()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, identityClaims{
		Email: "user@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}).SignedString([]byte("auth-secret"))
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	identity, err := verifier.Verify(raw)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if identity.UserID != userID || identity.Email != "user@example.com" {
		t.Fatalf("unexpected identity: %+v", identity)
	}
}

func TestIdentityVerifierRejectsBadTokens(t *testing.T) {
	t.Parallel()

	verifier, err := NewIdentityVerifier("auth-secret")
	if err != nil {
		t.Fatalf("new verifier failed: %v", err)
	}

	// Wrong key.
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, identityClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("other-secret"))
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	if _, err := verifier.Verify(forged); err == nil {
		t.Fatalf("expected rejection of token signed with wrong key")
	}

	// Expired beyond leeway.
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, identityClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}).SignedString([]byte("auth-secret"))
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	if _, err := verifier.Verify(expired); err == nil {
		t.Fatalf("expected rejection of expired token")
	}

	// Subject is not a user id.
	badSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, identityClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "not-a-uuid",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("auth-secret"))
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	if _, err := verifier.Verify(badSubject); err == nil {
		t.Fatalf("expected rejection of malformed subject")
	}

	if _, err := verifier.Verify("garbage"); err == nil {
		t.Fatalf("expected rejection of malformed token")
	}
}
