package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RefreshTokenStore persists the refresh tokens issued to a user.
type RefreshTokenStore interface {
	Append(ctx context.Context, userID uuid.UUID, token RefreshToken) error
	GetByJTI(ctx context.Context, userID uuid.UUID, jti string) (RefreshToken, error)
	// Revoke marks the token revoked if it is not already and reports
	// whether this call revoked it.
	Revoke(ctx context.Context, userID uuid.UUID, jti string) (bool, error)
	RevokeAllByUser(ctx context.Context, userID uuid.UUID) error
}

// RefreshToken is the stored form of an issued refresh token.
// TokenHash is a SHA-256 digest; the raw token is never stored.
type RefreshToken struct {
	JTI            string
	TokenHash      []byte
	CreatedAt      time.Time
	ExpiresAt      time.Time
	RevokedAt      *time.Time
	RotatedFromJTI string
}
