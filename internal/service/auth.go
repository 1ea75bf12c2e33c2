package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/golekaab-server/internal/logger"
	"github.com/dtroode/golekaab-server/internal/model"
	"github.com/dtroode/golekaab-server/internal/token"
)

const defaultNotifyTimeout = 10 * time.Second

// dummyPassword is hashed once and compared against when the e-mail is
// unknown, so that both credential failures spend a bcrypt comparison.
const dummyPassword = "golekaab-timing-equalizer"

type Auth struct {
	userStore    model.UserStore
	tokenService *TokenService
	hasher       model.PasswordHasher
	notifier     model.Notifier
	limiter      model.RateLimiter
	validator    *Validator
	logger       *logger.Logger

	now               func() time.Time
	rand              io.Reader
	magicLinkTTL      time.Duration
	linkDiscriminator bool
	notifyTimeout     time.Duration

	dummyOnce sync.Once
	dummyHash string
}

// AuthOption configures an Auth service.
type AuthOption func(*Auth)

// WithClock replaces the time source used for magic-link expiry.
func WithClock(now func() time.Time) AuthOption {
	return func(a *Auth) {
		a.now = now
	}
}

// WithRandom replaces the source of magic-link randomness.
func WithRandom(r io.Reader) AuthOption {
	return func(a *Auth) {
		a.rand = r
	}
}

// WithMagicLinkTTL sets how long a magic link stays valid.
func WithMagicLinkTTL(ttl time.Duration) AuthOption {
	return func(a *Auth) {
		if ttl > 0 {
			a.magicLinkTTL = ttl
		}
	}
}

// WithLinkDiscriminator toggles the public link ID prefix on magic links.
func WithLinkDiscriminator(enabled bool) AuthOption {
	return func(a *Auth) {
		a.linkDiscriminator = enabled
	}
}

// WithNotifyTimeout bounds magic-link delivery.
func WithNotifyTimeout(d time.Duration) AuthOption {
	return func(a *Auth) {
		if d > 0 {
			a.notifyTimeout = d
		}
	}
}

// WithLoginLimiter limits login attempts per e-mail address and client.
func WithLoginLimiter(l model.RateLimiter) AuthOption {
	return func(a *Auth) {
		a.limiter = l
	}
}

func NewAuth(
	userStore model.UserStore,
	tokenService *TokenService,
	hasher model.PasswordHasher,
	notifier model.Notifier,
	logger *logger.Logger,
	opts ...AuthOption,
) *Auth {
	a := &Auth{
		userStore:         userStore,
		tokenService:      tokenService,
		hasher:            hasher,
		notifier:          notifier,
		validator:         NewValidator(),
		logger:            logger,
		now:               time.Now,
		rand:              rand.Reader,
		magicLinkTTL:      model.MagicLinkDuration,
		linkDiscriminator: true,
		notifyTimeout:     defaultNotifyTimeout,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Register creates a new user with role USER and returns its public fields.
func (a *Auth) Register(ctx context.Context, params model.RegisterParams) (model.PublicUser, error) {
	params.Name = strings.TrimSpace(params.Name)
	params.Email = model.NormalizeEmail(params.Email)
	if params.Locale == "" {
		params.Locale = model.DefaultLocale
	}

	if err := a.validator.Struct(params); err != nil {
		return model.PublicUser{}, err
	}

	a.logger.Debug("Auth service: starting user registration",
		"email", params.Email)

	_, err := a.userStore.GetByEmail(ctx, params.Email)
	if err == nil {
		a.logger.Info("Auth service: user already exists",
			"email", params.Email)
		return model.PublicUser{}, model.ErrEmailTaken
	}
	if !errors.Is(err, model.ErrNotFound) {
		a.logger.Error("Auth service: failed to get user by email",
			"email", params.Email,
			"error", err.Error())
		return model.PublicUser{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	passwordHash, err := a.hasher.Hash(params.Password)
	if err != nil {
		return model.PublicUser{}, fmt.Errorf("failed to hash password: %w", err)
	}

	now := a.now()
	user := model.User{
		ID:           uuid.New(),
		Name:         params.Name,
		Email:        params.Email,
		PasswordHash: passwordHash,
		Role:         model.RoleUser,
		Locale:       params.Locale,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := a.userStore.Create(ctx, user)
	if errors.Is(err, model.ErrEmailTaken) {
		return model.PublicUser{}, model.ErrEmailTaken
	}
	if err != nil {
		a.logger.Error("Auth service: failed to create user",
			"email", params.Email,
			"error", err.Error())
		return model.PublicUser{}, fmt.Errorf("failed to create user: %w", err)
	}

	a.logger.Info("Auth service: user registration completed successfully",
		"user_id", created.ID)

	return created.Public(), nil
}

// LoginInitiate checks credentials and sends a magic link to the user.
// Unknown e-mail and wrong password are both reported as
// model.ErrInvalidCredentials. Delivery failures are logged, not returned.
func (a *Auth) LoginInitiate(ctx context.Context, params model.LoginParams) error {
	params.Email = model.NormalizeEmail(params.Email)

	if err := a.validator.Struct(params); err != nil {
		return err
	}

	if err := a.allow(ctx, loginKey(params)); err != nil {
		return err
	}

	user, err := a.userStore.GetByEmail(ctx, params.Email)
	if errors.Is(err, model.ErrNotFound) {
		a.equalizeTiming(params.Password)
		return model.ErrInvalidCredentials
	}
	if err != nil {
		return fmt.Errorf("failed to get user by email: %w", err)
	}

	if !a.hasher.Verify(params.Password, user.PasswordHash) || user.Disabled {
		a.logger.Info("Auth service: login rejected",
			"user_id", user.ID)
		return model.ErrInvalidCredentials
	}

	link, err := token.NewMagicLink(a.rand, a.linkDiscriminator)
	if err != nil {
		return fmt.Errorf("failed to create magic link: %w", err)
	}

	tokenHash, err := a.hasher.Hash(link.Secret)
	if err != nil {
		return fmt.Errorf("failed to hash magic link: %w", err)
	}

	twoFactor := model.NewPendingTwoFactor(tokenHash, link.LinkID, a.now().Add(a.magicLinkTTL))
	if err := a.userStore.SetTwoFactor(ctx, user.ID, twoFactor); err != nil {
		a.logger.Error("Auth service: failed to store pending login",
			"user_id", user.ID,
			"error", err.Error())
		return fmt.Errorf("failed to set two factor: %w", err)
	}

	a.notify(ctx, user, link.Token)

	a.logger.Info("Auth service: login started successfully",
		"user_id", user.ID)

	return nil
}

// LoginComplete exchanges a magic-link token for a session. A token is
// accepted at most once.
func (a *Auth) LoginComplete(ctx context.Context, rawToken string) (model.Session, error) {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return model.Session{}, model.ErrMissingToken
	}

	linkID, secret, err := token.ParseMagicLink(rawToken)
	if err != nil {
		return model.Session{}, model.ErrInvalidToken
	}

	user, found, err := a.findPending(ctx, linkID, secret)
	if err != nil {
		return model.Session{}, err
	}
	if !found {
		return model.Session{}, model.ErrInvalidToken
	}

	matchedHash := user.TwoFactor.TokenHash
	expired := user.TwoFactor.Expired(a.now())

	cleared, err := a.userStore.ClearTwoFactor(ctx, user.ID, matchedHash)
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to clear two factor: %w", err)
	}
	if !cleared {
		// Consumed, replaced or expired-and-cleared by a concurrent request.
		return model.Session{}, model.ErrInvalidToken
	}

	if expired {
		a.logger.Info("Auth service: magic link expired",
			"user_id", user.ID)
		return model.Session{}, model.ErrTokenExpired
	}

	if user.Disabled {
		return model.Session{}, model.ErrInvalidToken
	}

	accessToken, refreshToken, err := a.tokenService.Issue(ctx, user)
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to issue token: %w", err)
	}

	a.logger.Info("Auth service: login completed successfully",
		"user_id", user.ID)

	return model.Session{
		User:         user.Public(),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// findPending locates the user whose pending secret matches. With a link ID
// only that record is checked; otherwise every pending record is tried.
func (a *Auth) findPending(ctx context.Context, linkID, secret string) (model.User, bool, error) {
	if linkID != "" {
		user, err := a.userStore.GetPendingByLinkID(ctx, linkID)
		if errors.Is(err, model.ErrNotFound) {
			return model.User{}, false, nil
		}
		if err != nil {
			return model.User{}, false, fmt.Errorf("failed to get pending login: %w", err)
		}
		if !user.TwoFactor.Pending || !a.hasher.Verify(secret, user.TwoFactor.TokenHash) {
			return model.User{}, false, nil
		}
		return user, true, nil
	}

	pending, err := a.userStore.ListPendingTwoFactor(ctx)
	if err != nil {
		return model.User{}, false, fmt.Errorf("failed to list pending logins: %w", err)
	}

	for _, user := range pending {
		if !user.TwoFactor.Pending || user.TwoFactor.TokenHash == "" {
			continue
		}
		if a.hasher.Verify(secret, user.TwoFactor.TokenHash) {
			return user, true, nil
		}
	}

	return model.User{}, false, nil
}

func (a *Auth) notify(ctx context.Context, user model.User, token string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.notifyTimeout)
	defer cancel()

	if err := a.notifier.SendMagicLink(ctx, user.Email, token); err != nil {
		a.logger.Error("Auth service: failed to send magic link",
			"user_id", user.ID,
			"error", err.Error())
	}
}

// loginKey scopes the login budget to the e-mail and the client address, so
// attempts from one client never exhaust the budget of another.
func loginKey(params model.LoginParams) string {
	if params.RemoteAddr == "" {
		return "login:" + params.Email
	}
	return "login:" + params.Email + ":" + params.RemoteAddr
}

func (a *Auth) allow(ctx context.Context, key string) error {
	if a.limiter == nil {
		return nil
	}

	ok, err := a.limiter.Allow(ctx, key)
	if err != nil {
		// Limiter outages must not lock users out.
		a.logger.Warn("Auth service: rate limiter unavailable",
			"error", err.Error())
		return nil
	}
	if !ok {
		return model.ErrTooManyAttempts
	}
	return nil
}

func (a *Auth) equalizeTiming(password string) {
	a.dummyOnce.Do(func() {
		hash, err := a.hasher.Hash(dummyPassword)
		if err != nil {
			a.logger.Error("Auth service: failed to prepare dummy hash",
				"error", err.Error())
			return
		}
		a.dummyHash = hash
	})
	if a.dummyHash != "" {
		a.hasher.Verify(password, a.dummyHash)
	}
}
