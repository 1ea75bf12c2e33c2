package model

import (
	"time"

	"github.com/google/uuid"
)

// TokenKind selects the lifetime and purpose of a session token.
type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

// TokenPayload is the data bound into a session token.
type TokenPayload struct {
	UserID uuid.UUID
	Role   Role
}

// MintedToken is a signed token together with its identity and expiry.
type MintedToken struct {
	Token     string
	JTI       string
	ExpiresAt time.Time
}

// TokenClaims is the verified content of a session token.
type TokenClaims struct {
	TokenPayload
	JTI       string
	Kind      TokenKind
	ExpiresAt time.Time
}

// TokenManager mints and verifies signed session tokens.
type TokenManager interface {
	Mint(payload TokenPayload, kind TokenKind) (MintedToken, error)
	// Verify returns ErrInvalidSessionToken for any malformed, forged,
	// expired or wrongly-typed token.
	Verify(token string, kind TokenKind) (TokenClaims, error)
}
