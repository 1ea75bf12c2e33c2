package model

import (
	"context"
	"time"
)

// MagicLinkDuration is the default lifetime of a magic-link secret.
const MagicLinkDuration = time.Minute * 10

// TwoFactor describes the outstanding magic-link state of a user.
// Pending is true iff TokenHash is set and ExpiresAt is not nil.
type TwoFactor struct {
	Pending   bool
	TokenHash string
	LinkID    string
	ExpiresAt *time.Time
}

// NewPendingTwoFactor builds a pending state expiring at expiresAt.
func NewPendingTwoFactor(tokenHash, linkID string, expiresAt time.Time) TwoFactor {
	return TwoFactor{
		Pending:   true,
		TokenHash: tokenHash,
		LinkID:    linkID,
		ExpiresAt: &expiresAt,
	}
}

// Expired reports whether the secret is past its expiry at now.
func (t TwoFactor) Expired(now time.Time) bool {
	return t.ExpiresAt == nil || now.After(*t.ExpiresAt)
}

// Notifier delivers magic-link secrets out of band.
type Notifier interface {
	SendMagicLink(ctx context.Context, email, token string) error
}

// PasswordHasher produces and checks salted one-way hashes.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// RateLimiter decides whether another attempt for key is allowed.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}
