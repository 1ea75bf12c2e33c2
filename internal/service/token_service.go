package service

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/golekaab-server/internal/logger"
	"github.com/dtroode/golekaab-server/internal/model"
)

// TokenService provides high-level operations for issuing, refreshing,
// and revoking session tokens. It composes the TokenManager with the
// refresh-token and user stores.
type TokenService struct {
	manager model.TokenManager
	store   model.RefreshTokenStore
	users   model.UserStore
	logger  *logger.Logger
	now     func() time.Time
}

// TokenServiceOption configures a TokenService.
type TokenServiceOption func(*TokenService)

// WithTokenClock replaces the time source used for refresh-token records.
func WithTokenClock(now func() time.Time) TokenServiceOption {
	return func(s *TokenService) {
		s.now = now
	}
}

func NewTokenService(
	manager model.TokenManager,
	store model.RefreshTokenStore,
	users model.UserStore,
	logger *logger.Logger,
	opts ...TokenServiceOption,
) *TokenService {
	s := &TokenService{
		manager: manager,
		store:   store,
		users:   users,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue mints an access and a refresh token for user and persists the
// refresh token hash.
func (s *TokenService) Issue(ctx context.Context, user model.User) (accessToken string, refreshToken string, err error) {
	return s.issue(ctx, user, "")
}

func (s *TokenService) issue(ctx context.Context, user model.User, rotatedFrom string) (string, string, error) {
	payload := model.TokenPayload{UserID: user.ID, Role: user.Role}

	access, err := s.manager.Mint(payload, model.TokenKindAccess)
	if err != nil {
		return "", "", fmt.Errorf("issue access: %w", err)
	}

	refresh, err := s.manager.Mint(payload, model.TokenKindRefresh)
	if err != nil {
		return "", "", fmt.Errorf("issue refresh: %w", err)
	}

	rt := model.RefreshToken{
		JTI:            refresh.JTI,
		TokenHash:      hashRefresh(refresh.Token),
		CreatedAt:      s.now(),
		ExpiresAt:      refresh.ExpiresAt,
		RotatedFromJTI: rotatedFrom,
	}
	if err := s.store.Append(ctx, user.ID, rt); err != nil {
		return "", "", fmt.Errorf("persist refresh: %w", err)
	}

	return access.Token, refresh.Token, nil
}

// Refresh rotates a refresh token: the presented token is revoked and a new
// pair is issued carrying the user's current role. Every rejection is
// reported as model.ErrInvalidSessionToken.
func (s *TokenService) Refresh(ctx context.Context, presentedRefresh string) (newAccess string, newRefresh string, err error) {
	claims, err := s.manager.Verify(presentedRefresh, model.TokenKindRefresh)
	if err != nil {
		return "", "", model.ErrInvalidSessionToken
	}

	rt, err := s.store.GetByJTI(ctx, claims.UserID, claims.JTI)
	if errors.Is(err, model.ErrNotFound) {
		return "", "", model.ErrInvalidSessionToken
	}
	if err != nil {
		return "", "", fmt.Errorf("get refresh: %w", err)
	}

	if err := validateRecord(rt, hashRefresh(presentedRefresh), s.now()); err != nil {
		s.logger.Info("Token service: refresh rejected",
			"user_id", claims.UserID,
			"jti", claims.JTI,
			"reason", err.Error())
		return "", "", errors.Join(model.ErrInvalidSessionToken, err)
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if errors.Is(err, model.ErrNotFound) {
		return "", "", model.ErrInvalidSessionToken
	}
	if err != nil {
		return "", "", fmt.Errorf("get user: %w", err)
	}
	if user.Disabled {
		return "", "", model.ErrInvalidSessionToken
	}

	revoked, err := s.store.Revoke(ctx, claims.UserID, claims.JTI)
	if err != nil {
		return "", "", fmt.Errorf("revoke old refresh: %w", err)
	}
	if !revoked {
		// A concurrent refresh consumed this token first.
		return "", "", errors.Join(model.ErrInvalidSessionToken, model.ErrRefreshTokenRevoked)
	}

	return s.issue(ctx, user, rt.JTI)
}

// Revoke invalidates a single refresh token. Revoking an already revoked
// token is not an error.
func (s *TokenService) Revoke(ctx context.Context, presentedRefresh string) error {
	claims, err := s.manager.Verify(presentedRefresh, model.TokenKindRefresh)
	if err != nil {
		return model.ErrInvalidSessionToken
	}

	rt, err := s.store.GetByJTI(ctx, claims.UserID, claims.JTI)
	if errors.Is(err, model.ErrNotFound) {
		return model.ErrInvalidSessionToken
	}
	if err != nil {
		return fmt.Errorf("get refresh: %w", err)
	}
	if !equalBytes(rt.TokenHash, hashRefresh(presentedRefresh)) {
		return model.ErrInvalidSessionToken
	}

	if _, err := s.store.Revoke(ctx, claims.UserID, claims.JTI); err != nil {
		return fmt.Errorf("revoke refresh: %w", err)
	}
	return nil
}

func (s *TokenService) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	return s.store.RevokeAllByUser(ctx, userID)
}

// Authenticate verifies an access token and returns the identity it carries.
func (s *TokenService) Authenticate(_ context.Context, accessToken string) (model.TokenPayload, error) {
	claims, err := s.manager.Verify(accessToken, model.TokenKindAccess)
	if err != nil {
		return model.TokenPayload{}, model.ErrInvalidSessionToken
	}
	return claims.TokenPayload, nil
}

func hashRefresh(token string) []byte {
	h := sha256.Sum256([]byte(token))
	return h[:]
}

func validateRecord(rt model.RefreshToken, presentedHash []byte, now time.Time) error {
	if rt.RevokedAt != nil {
		return model.ErrRefreshTokenRevoked
	}
	if now.After(rt.ExpiresAt) {
		return model.ErrRefreshTokenExpired
	}
	if !equalBytes(rt.TokenHash, presentedHash) {
		return model.ErrRefreshTokenMismatch
	}
	return nil
}

func equalBytes(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}
