package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dtroode/golekaab-server/internal/model"
)

// Claims represents JWT claims with token type, user ID and role.
type Claims struct {
	jwt.RegisteredClaims
	UserID    uuid.UUID  `json:"userId"`
	Role      model.Role `json:"role"`
	TokenType string     `json:"typ"`
}

// JWT implements TokenManager backed by symmetric HMAC.
type JWT struct {
	secretKey  []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

const (
	defaultAccessTTL  = 15 * time.Minute
	defaultRefreshTTL = 7 * 24 * time.Hour
)

// Option configures a JWT manager.
type Option func(*JWT)

// WithTTL overrides the access and refresh token lifetimes.
func WithTTL(access, refresh time.Duration) Option {
	return func(j *JWT) {
		if access > 0 {
			j.accessTTL = access
		}
		if refresh > 0 {
			j.refreshTTL = refresh
		}
	}
}

// WithClock replaces the time source used for issuing and validating.
func WithClock(now func() time.Time) Option {
	return func(j *JWT) {
		j.now = now
	}
}

// NewJWT creates a new JWT token manager with the provided secret key.
func NewJWT(secretKey string, opts ...Option) *JWT {
	j := &JWT{
		secretKey:  []byte(secretKey),
		accessTTL:  defaultAccessTTL,
		refreshTTL: defaultRefreshTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

var _ model.TokenManager = (*JWT)(nil)

// TTL returns the lifetime of tokens of the given kind.
func (j *JWT) TTL(kind model.TokenKind) time.Duration {
	if kind == model.TokenKindRefresh {
		return j.refreshTTL
	}
	return j.accessTTL
}

// Mint signs payload into a token of the given kind.
func (j *JWT) Mint(payload model.TokenPayload, kind model.TokenKind) (model.MintedToken, error) {
	if kind != model.TokenKindAccess && kind != model.TokenKindRefresh {
		return model.MintedToken{}, fmt.Errorf("unknown token kind %q", kind)
	}

	now := j.now()
	expiresAt := now.Add(j.TTL(kind))
	jti := uuid.NewString()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   payload.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID:    payload.UserID,
		Role:      payload.Role,
		TokenType: string(kind),
	})

	tokenString, err := token.SignedString(j.secretKey)
	if err != nil {
		return model.MintedToken{}, fmt.Errorf("failed to sign %s token: %w", kind, err)
	}

	return model.MintedToken{
		Token:     tokenString,
		JTI:       jti,
		ExpiresAt: expiresAt,
	}, nil
}

// Verify validates signature, expiry and kind of tokenString.
// Every failure is reported as model.ErrInvalidSessionToken.
func (j *JWT) Verify(tokenString string, kind model.TokenKind) (model.TokenClaims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return j.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(j.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return model.TokenClaims{}, errors.Join(model.ErrInvalidSessionToken, err)
	}
	if !token.Valid {
		return model.TokenClaims{}, model.ErrInvalidSessionToken
	}
	if claims.TokenType != string(kind) {
		return model.TokenClaims{}, model.ErrInvalidSessionToken
	}
	if claims.UserID == uuid.Nil || !claims.Role.Valid() {
		return model.TokenClaims{}, model.ErrInvalidSessionToken
	}

	return model.TokenClaims{
		TokenPayload: model.TokenPayload{
			UserID: claims.UserID,
			Role:   claims.Role,
		},
		JTI:       claims.ID,
		Kind:      kind,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
