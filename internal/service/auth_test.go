package service

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	servermocks "github.com/dtroode/golekaab-server/internal/mocks"
	"github.com/dtroode/golekaab-server/internal/model"
	"github.com/dtroode/golekaab-server/internal/password"
	"github.com/dtroode/golekaab-server/internal/ratelimit"
	"github.com/dtroode/golekaab-server/internal/repository/memory"
	"github.com/dtroode/golekaab-server/internal/testutil"
	"github.com/dtroode/golekaab-server/internal/token"
)

type sentLink struct {
	email    string
	token    string
	deadline bool
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentLink
	err  error
}

func (n *recordingNotifier) SendMagicLink(ctx context.Context, email, token string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	_, hasDeadline := ctx.Deadline()
	n.sent = append(n.sent, sentLink{email: email, token: token, deadline: hasDeadline})
	return n.err
}

func (n *recordingNotifier) last(t *testing.T) sentLink {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	require.NotEmpty(t, n.sent)
	return n.sent[len(n.sent)-1]
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

type authEnv struct {
	auth     *Auth
	store    *memory.Store
	notifier *recordingNotifier
	clock    *testutil.Clock
	jwt      *token.JWT
}

func newAuthEnv(t *testing.T, opts ...AuthOption) *authEnv {
	t.Helper()

	clock := testutil.NewClock(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	store := memory.NewStore()
	notifier := &recordingNotifier{}
	jwt := token.NewJWT("test-secret", token.WithClock(clock.Now))
	lg := testutil.MakeNoopLogger()

	tokens := NewTokenService(jwt, store, store, lg, WithTokenClock(clock.Now))
	opts = append([]AuthOption{WithClock(clock.Now)}, opts...)
	a := NewAuth(store, tokens, password.NewBcrypt(bcrypt.MinCost), notifier, lg, opts...)

	return &authEnv{auth: a, store: store, notifier: notifier, clock: clock, jwt: jwt}
}

func (e *authEnv) register(t *testing.T, name, email, pass string) model.PublicUser {
	t.Helper()
	u, err := e.auth.Register(context.Background(), model.RegisterParams{Name: name, Email: email, Password: pass})
	require.NoError(t, err)
	return u
}

func (e *authEnv) initiate(t *testing.T, email, pass string) string {
	t.Helper()
	require.NoError(t, e.auth.LoginInitiate(context.Background(), model.LoginParams{Email: email, Password: pass}))
	return e.notifier.last(t).token
}

func TestAuth_Scenario_RegisterLoginComplete(t *testing.T) {
	env := newAuthEnv(t)
	ctx := context.Background()

	user := env.register(t, "Ana", "ana@x.com", "longpassword1")
	assert.Equal(t, "ana@x.com", user.Email)
	assert.Equal(t, model.RoleUser, user.Role)
	assert.Equal(t, model.LocaleEnglish, user.Locale)

	require.NoError(t, env.auth.LoginInitiate(ctx, model.LoginParams{Email: "ana@x.com", Password: "longpassword1"}))
	require.Equal(t, 1, env.notifier.count())

	sent := env.notifier.last(t)
	assert.Equal(t, "ana@x.com", sent.email)
	assert.GreaterOrEqual(t, len(sent.token), 64)
	_, err := hex.DecodeString(sent.token)
	require.NoError(t, err)
	assert.True(t, sent.deadline)

	session, err := env.auth.LoginComplete(ctx, sent.token)
	require.NoError(t, err)
	assert.Equal(t, user, session.User)

	env.clock.Advance(14 * time.Minute)

	access, err := env.jwt.Verify(session.AccessToken, model.TokenKindAccess)
	require.NoError(t, err)
	assert.Equal(t, user.ID, access.UserID)
	assert.Equal(t, model.RoleUser, access.Role)

	refresh, err := env.jwt.Verify(session.RefreshToken, model.TokenKindRefresh)
	require.NoError(t, err)
	assert.Equal(t, user.ID, refresh.UserID)

	stored, err := env.store.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, stored.RefreshTokens, 1)
	assert.Equal(t, refresh.JTI, stored.RefreshTokens[0].JTI)
	assert.NotEqual(t, []byte(session.RefreshToken), stored.RefreshTokens[0].TokenHash)
}

func TestAuth_Register_StoresHashNotPassword(t *testing.T) {
	env := newAuthEnv(t)

	env.register(t, "Ana", "  Ana@X.com ", "longpassword1")

	stored, err := env.store.GetByEmail(context.Background(), "ana@x.com")
	require.NoError(t, err)
	assert.NotEqual(t, "longpassword1", stored.PasswordHash)
	assert.NotEmpty(t, stored.PasswordHash)
	assert.False(t, stored.TwoFactor.Pending)
	assert.Empty(t, stored.RefreshTokens)
}

func TestAuth_Register_Locale(t *testing.T) {
	env := newAuthEnv(t)

	u, err := env.auth.Register(context.Background(), model.RegisterParams{
		Name: "Ana", Email: "ana@x.com", Password: "longpassword1", Locale: model.LocaleSomali,
	})
	require.NoError(t, err)
	assert.Equal(t, model.LocaleSomali, u.Locale)
}

func TestAuth_Register_Validation(t *testing.T) {
	env := newAuthEnv(t)

	_, err := env.auth.Register(context.Background(), model.RegisterParams{
		Name: "Al", Email: "not-an-email", Password: "short", Locale: "fr",
	})

	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)

	fields := map[string]string{}
	for _, f := range verr.Fields {
		fields[f.Field] = f.Rule
	}
	assert.Equal(t, map[string]string{
		"name":     "min",
		"email":    "email",
		"password": "min",
		"locale":   "oneof",
	}, fields)
}

func TestAuth_Register_DuplicateEmail(t *testing.T) {
	env := newAuthEnv(t)
	ctx := context.Background()

	first := env.register(t, "Ana", "ana@x.com", "longpassword1")

	_, err := env.auth.Register(ctx, model.RegisterParams{Name: "Imposter", Email: "ANA@x.com", Password: "otherpassword"})
	require.ErrorIs(t, err, model.ErrEmailTaken)

	stored, err := env.store.GetByEmail(ctx, "ana@x.com")
	require.NoError(t, err)
	assert.Equal(t, first.ID, stored.ID)
	assert.Equal(t, "Ana", stored.Name)
}

func TestAuth_Register_StoreErrors(t *testing.T) {
	ctx := context.Background()
	params := model.RegisterParams{Name: "Ana", Email: "ana@x.com", Password: "longpassword1"}

	t.Run("lookup fails", func(t *testing.T) {
		users := servermocks.NewUserStore(t)
		hasher := servermocks.NewPasswordHasher(t)
		users.On("GetByEmail", ctx, "ana@x.com").Return(model.User{}, assert.AnError).Once()

		a := NewAuth(users, nil, hasher, &recordingNotifier{}, testutil.MakeNoopLogger())
		_, err := a.Register(ctx, params)
		require.ErrorIs(t, err, assert.AnError)
	})

	t.Run("create races with another registration", func(t *testing.T) {
		users := servermocks.NewUserStore(t)
		hasher := servermocks.NewPasswordHasher(t)
		users.On("GetByEmail", ctx, "ana@x.com").Return(model.User{}, model.ErrNotFound).Once()
		hasher.On("Hash", "longpassword1").Return("hashed", nil).Once()
		users.On("Create", ctx, mock.MatchedBy(func(u model.User) bool {
			return u.PasswordHash == "hashed" && u.Role == model.RoleUser
		})).Return(model.User{}, model.ErrEmailTaken).Once()

		a := NewAuth(users, nil, hasher, &recordingNotifier{}, testutil.MakeNoopLogger())
		_, err := a.Register(ctx, params)
		require.ErrorIs(t, err, model.ErrEmailTaken)
	})
}

func TestAuth_LoginInitiate_SetsPending(t *testing.T) {
	env := newAuthEnv(t)
	ctx := context.Background()

	user := env.register(t, "Ana", "ana@x.com", "longpassword1")
	raw := env.initiate(t, "ANA@x.com", "longpassword1")

	stored, err := env.store.GetByID(ctx, user.ID)
	require.NoError(t, err)
	tf := stored.TwoFactor
	assert.True(t, tf.Pending)
	assert.NotEmpty(t, tf.TokenHash)
	assert.NotEqual(t, raw, tf.TokenHash)
	require.NotNil(t, tf.ExpiresAt)
	assert.Equal(t, env.clock.Now().Add(10*time.Minute), *tf.ExpiresAt)
	assert.Len(t, tf.LinkID, 32)
	assert.Equal(t, tf.LinkID, raw[:32])
}

func TestAuth_LoginInitiate_InvalidCredentials(t *testing.T) {
	env := newAuthEnv(t)
	ctx := context.Background()

	user := env.register(t, "Ana", "ana@x.com", "longpassword1")

	errWrongPassword := env.auth.LoginInitiate(ctx, model.LoginParams{Email: "ana@x.com", Password: "wrongpassword"})
	errUnknownEmail := env.auth.LoginInitiate(ctx, model.LoginParams{Email: "nobody@x.com", Password: "longpassword1"})

	require.ErrorIs(t, errWrongPassword, model.ErrInvalidCredentials)
	require.ErrorIs(t, errUnknownEmail, model.ErrInvalidCredentials)
	assert.Equal(t, errWrongPassword.Error(), errUnknownEmail.Error())

	stored, err := env.store.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TwoFactor{}, stored.TwoFactor)
	assert.Zero(t, env.notifier.count())
}

func TestAuth_LoginInitiate_Disabled(t *testing.T) {
	env := newAuthEnv(t)
	ctx := context.Background()

	user := env.register(t, "Ana", "ana@x.com", "longpassword1")
	require.NoError(t, env.store.SetDisabled(ctx, user.ID, true))

	err := env.auth.LoginInitiate(ctx, model.LoginParams{Email: "ana@x.com", Password: "longpassword1"})
	require.ErrorIs(t, err, model.ErrInvalidCredentials)
	assert.Zero(t, env.notifier.count())
}

func TestAuth_LoginInitiate_Validation(t *testing.T) {
	env := newAuthEnv(t)

	err := env.auth.LoginInitiate(context.Background(), model.LoginParams{Email: "bad", Password: ""})

	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 2)
}

func TestAuth_LoginInitiate_NotifierFailureIsSwallowed(t *testing.T) {
	env := newAuthEnv(t)
	ctx := context.Background()
	env.notifier.err = errors.New("smtp down")

	user := env.register(t, "Ana", "ana@x.com", "longpassword1")

	err := env.auth.LoginInitiate(ctx, model.LoginParams{Email: "ana@x.com", Password: "longpassword1"})
	require.NoError(t, err)
	assert.Equal(t, 1, env.notifier.count())

	stored, err := env.store.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, stored.TwoFactor.Pending)
}

func TestAuth_LoginInitiate_RateLimited(t *testing.T) {
	limiter := servermocks.NewRateLimiter(t)
	env := newAuthEnv(t, WithLoginLimiter(limiter))
	ctx := context.Background()

	env.register(t, "Ana", "ana@x.com", "longpassword1")

	limiter.On("Allow", mock.Anything, "login:ana@x.com").Return(false, nil).Once()
	err := env.auth.LoginInitiate(ctx, model.LoginParams{Email: "Ana@x.com", Password: "longpassword1"})
	require.ErrorIs(t, err, model.ErrTooManyAttempts)
	assert.Zero(t, env.notifier.count())

	limiter.On("Allow", mock.Anything, "login:ana@x.com").Return(false, assert.AnError).Once()
	err = env.auth.LoginInitiate(ctx, model.LoginParams{Email: "ana@x.com", Password: "longpassword1"})
	require.NoError(t, err)
	assert.Equal(t, 1, env.notifier.count())
}

func TestAuth_LoginInitiate_LimitIsPerClient(t *testing.T) {
	env := newAuthEnv(t, WithLoginLimiter(ratelimit.NewMemory(5, 15*time.Minute)))
	ctx := context.Background()

	env.register(t, "Ana", "ana@x.com", "longpassword1")

	guess := model.LoginParams{Email: "ana@x.com", Password: "wrong-guess", RemoteAddr: "203.0.113.9"}
	for i := 0; i < 5; i++ {
		require.ErrorIs(t, env.auth.LoginInitiate(ctx, guess), model.ErrInvalidCredentials)
	}
	require.ErrorIs(t, env.auth.LoginInitiate(ctx, guess), model.ErrTooManyAttempts)

	owner := model.LoginParams{Email: "ana@x.com", Password: "longpassword1", RemoteAddr: "198.51.100.4"}
	require.NoError(t, env.auth.LoginInitiate(ctx, owner))
	assert.Equal(t, 1, env.notifier.count())
}

func TestAuth_LoginInitiate_LimiterKeyIncludesClient(t *testing.T) {
	limiter := servermocks.NewRateLimiter(t)
	env := newAuthEnv(t, WithLoginLimiter(limiter))

	env.register(t, "Ana", "ana@x.com", "longpassword1")

	limiter.On("Allow", mock.Anything, "login:ana@x.com:10.0.0.7").Return(true, nil).Once()
	err := env.auth.LoginInitiate(context.Background(), model.LoginParams{
		Email:      "ana@x.com",
		Password:   "longpassword1",
		RemoteAddr: "10.0.0.7",
	})
	require.NoError(t, err)
}

func TestAuth_LoginComplete_SingleUse(t *testing.T) {
	env := newAuthEnv(t)
	ctx := context.Background()

	user := env.register(t, "Ana", "ana@x.com", "longpassword1")
	raw := env.initiate(t, "ana@x.com", "longpassword1")

	_, err := env.auth.LoginComplete(ctx, raw)
	require.NoError(t, err)

	stored, err := env.store.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, stored.TwoFactor.Pending)

	_, err = env.auth.LoginComplete(ctx, raw)
	require.ErrorIs(t, err, model.ErrInvalidToken)
}

func TestAuth_LoginComplete_Expired(t *testing.T) {
	env := newAuthEnv(t)
	ctx := context.Background()

	user := env.register(t, "Ana", "ana@x.com", "longpassword1")
	raw := env.initiate(t, "ana@x.com", "longpassword1")

	env.clock.Advance(10*time.Minute + time.Second)

	_, err := env.auth.LoginComplete(ctx, raw)
	require.ErrorIs(t, err, model.ErrTokenExpired)

	stored, err := env.store.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, stored.TwoFactor.Pending)
	assert.Empty(t, stored.RefreshTokens)

	_, err = env.auth.LoginComplete(ctx, raw)
	require.ErrorIs(t, err, model.ErrInvalidToken)
}

func TestAuth_LoginComplete_AtExpiryBoundary(t *testing.T) {
	env := newAuthEnv(t)

	env.register(t, "Ana", "ana@x.com", "longpassword1")
	raw := env.initiate(t, "ana@x.com", "longpassword1")

	env.clock.Advance(10 * time.Minute)

	_, err := env.auth.LoginComplete(context.Background(), raw)
	require.NoError(t, err)
}

func TestAuth_LoginComplete_NewerInitiationInvalidatesOlder(t *testing.T) {
	env := newAuthEnv(t)
	ctx := context.Background()

	env.register(t, "Ana", "ana@x.com", "longpassword1")
	first := env.initiate(t, "ana@x.com", "longpassword1")
	second := env.initiate(t, "ana@x.com", "longpassword1")
	require.NotEqual(t, first, second)

	_, err := env.auth.LoginComplete(ctx, first)
	require.ErrorIs(t, err, model.ErrInvalidToken)

	_, err = env.auth.LoginComplete(ctx, second)
	require.NoError(t, err)
}

func TestAuth_LoginComplete_MissingAndMalformed(t *testing.T) {
	env := newAuthEnv(t)
	ctx := context.Background()

	_, err := env.auth.LoginComplete(ctx, "")
	require.ErrorIs(t, err, model.ErrMissingToken)

	_, err = env.auth.LoginComplete(ctx, "   ")
	require.ErrorIs(t, err, model.ErrMissingToken)

	_, err = env.auth.LoginComplete(ctx, "not-a-token")
	require.ErrorIs(t, err, model.ErrInvalidToken)

	link, err := token.NewMagicLink(rand.Reader, true)
	require.NoError(t, err)
	_, err = env.auth.LoginComplete(ctx, link.Token)
	require.ErrorIs(t, err, model.ErrInvalidToken)
}

func TestAuth_LoginComplete_LinearScanWithoutDiscriminator(t *testing.T) {
	env := newAuthEnv(t, WithLinkDiscriminator(false))
	ctx := context.Background()

	env.register(t, "Ana", "ana@x.com", "longpassword1")
	bob := env.register(t, "Bob", "bob@x.com", "longpassword2")

	env.initiate(t, "ana@x.com", "longpassword1")
	raw := env.initiate(t, "bob@x.com", "longpassword2")
	assert.Len(t, raw, 64)

	stored, err := env.store.GetByID(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.TwoFactor.LinkID)

	session, err := env.auth.LoginComplete(ctx, raw)
	require.NoError(t, err)
	assert.Equal(t, bob.ID, session.User.ID)

	pending, err := env.store.ListPendingTwoFactor(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "ana@x.com", pending[0].Email)
}

func TestAuth_LoginComplete_WrongLinkIDForSecret(t *testing.T) {
	env := newAuthEnv(t)
	ctx := context.Background()

	env.register(t, "Ana", "ana@x.com", "longpassword1")
	env.register(t, "Bob", "bob@x.com", "longpassword2")
	ana := env.initiate(t, "ana@x.com", "longpassword1")
	bob := env.initiate(t, "bob@x.com", "longpassword2")

	// Ana's link ID with Bob's secret matches neither record.
	_, err := env.auth.LoginComplete(ctx, ana[:32]+bob[32:])
	require.ErrorIs(t, err, model.ErrInvalidToken)

	_, err = env.auth.LoginComplete(ctx, ana)
	require.NoError(t, err)
}

func TestAuth_LoginComplete_ConcurrentAttemptsSucceedOnce(t *testing.T) {
	env := newAuthEnv(t)

	env.register(t, "Ana", "ana@x.com", "longpassword1")
	raw := env.initiate(t, "ana@x.com", "longpassword1")

	var ok, invalid atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.auth.LoginComplete(context.Background(), raw)
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, model.ErrInvalidToken):
				invalid.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), ok.Load())
	assert.Equal(t, int32(7), invalid.Load())
}

func TestAuth_LoginComplete_LostClearRace(t *testing.T) {
	ctx := context.Background()
	users := servermocks.NewUserStore(t)
	hasher := servermocks.NewPasswordHasher(t)

	expires := time.Now().Add(time.Minute)
	user := model.User{
		ID:        uuid.New(),
		Role:      model.RoleUser,
		TwoFactor: model.NewPendingTwoFactor("stored-hash", "", expires),
	}
	link, err := token.NewMagicLink(rand.Reader, false)
	require.NoError(t, err)

	users.On("ListPendingTwoFactor", ctx).Return([]model.User{user}, nil).Once()
	hasher.On("Verify", link.Secret, "stored-hash").Return(true).Once()
	users.On("ClearTwoFactor", ctx, user.ID, "stored-hash").Return(false, nil).Once()

	a := NewAuth(users, nil, hasher, &recordingNotifier{}, testutil.MakeNoopLogger())

	_, err = a.LoginComplete(ctx, link.Token)
	require.ErrorIs(t, err, model.ErrInvalidToken)
}

func TestAuth_LoginComplete_DisabledAfterInitiate(t *testing.T) {
	env := newAuthEnv(t)
	ctx := context.Background()

	user := env.register(t, "Ana", "ana@x.com", "longpassword1")
	raw := env.initiate(t, "ana@x.com", "longpassword1")
	require.NoError(t, env.store.SetDisabled(ctx, user.ID, true))

	_, err := env.auth.LoginComplete(ctx, raw)
	require.ErrorIs(t, err, model.ErrInvalidToken)

	stored, err := env.store.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.RefreshTokens)
}

func TestAuth_RefreshRotation(t *testing.T) {
	env := newAuthEnv(t)
	ctx := context.Background()

	user := env.register(t, "Ana", "ana@x.com", "longpassword1")
	session, err := env.auth.LoginComplete(ctx, env.initiate(t, "ana@x.com", "longpassword1"))
	require.NoError(t, err)

	require.NoError(t, env.store.SetRole(ctx, user.ID, model.RoleModerator))

	access, refresh, err := env.auth.tokenService.Refresh(ctx, session.RefreshToken)
	require.NoError(t, err)

	claims, err := env.jwt.Verify(access, model.TokenKindAccess)
	require.NoError(t, err)
	assert.Equal(t, model.RoleModerator, claims.Role)

	_, _, err = env.auth.tokenService.Refresh(ctx, session.RefreshToken)
	require.ErrorIs(t, err, model.ErrInvalidSessionToken)

	require.NoError(t, env.auth.tokenService.Revoke(ctx, refresh))
	_, _, err = env.auth.tokenService.Refresh(ctx, refresh)
	require.ErrorIs(t, err, model.ErrInvalidSessionToken)
}

func TestAuth_LoginInitiate_UsesRandomSource(t *testing.T) {
	secret := bytes.Repeat([]byte{0x01}, 32)
	linkID := bytes.Repeat([]byte{0x02}, 16)
	env := newAuthEnv(t, WithRandom(bytes.NewReader(append(secret, linkID...))))
	env.register(t, "Ana", "ana@x.com", "longpassword1")

	tok := env.initiate(t, "ana@x.com", "longpassword1")
	assert.Equal(t, hex.EncodeToString(linkID)+hex.EncodeToString(secret), tok)

	stored, err := env.store.GetByEmail(context.Background(), "ana@x.com")
	require.NoError(t, err)
	assert.Equal(t, hex.EncodeToString(linkID), stored.TwoFactor.LinkID)
	assert.NotContains(t, stored.TwoFactor.TokenHash, hex.EncodeToString(secret))
}

func TestAuth_LoginInitiate_RandomSourceFailure(t *testing.T) {
	env := newAuthEnv(t, WithRandom(bytes.NewReader(nil)))
	env.register(t, "Ana", "ana@x.com", "longpassword1")

	err := env.auth.LoginInitiate(context.Background(), model.LoginParams{Email: "ana@x.com", Password: "longpassword1"})
	require.Error(t, err)
	assert.Equal(t, 0, env.notifier.count())

	stored, err := env.store.GetByEmail(context.Background(), "ana@x.com")
	require.NoError(t, err)
	assert.False(t, stored.TwoFactor.Pending)
}
