//go:build integration

package mongo_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/dtroode/golekaab-server/internal/model"
	repo "github.com/dtroode/golekaab-server/internal/repository/mongo"
)

var uri string

func TestMain(m *testing.M) {
	ctx := context.Background()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "mongo:7",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor:   wait.ForListeningPort("27017/tcp").WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		panic(err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		panic(err)
	}
	port, err := container.MappedPort(ctx, "27017")
	if err != nil {
		panic(err)
	}
	uri = fmt.Sprintf("mongodb://%s:%s", host, port.Port())

	code := m.Run()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func newStore(t *testing.T) *repo.Store {
	t.Helper()
	ctx := context.Background()

	client, err := repo.Connect(ctx, uri)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	coll := client.Database("golekaab_test").Collection("users_" + uuid.NewString())
	s := repo.NewStore(coll)
	require.NoError(t, s.EnsureIndexes(ctx))
	return s
}

func newUser(email string) model.User {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return model.User{
		ID:           uuid.New(),
		Name:         "Ana",
		Email:        email,
		PasswordHash: "$2a$10$hash",
		Role:         model.RoleUser,
		Locale:       model.LocaleEnglish,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestStore_Users(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	u, err := s.Create(ctx, newUser("Ana@X.com"))
	require.NoError(t, err)
	require.Equal(t, "ana@x.com", u.Email)

	_, err = s.Create(ctx, newUser("ana@x.com"))
	require.ErrorIs(t, err, model.ErrEmailTaken)

	got, err := s.GetByEmail(ctx, "ANA@x.com")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)

	_, err = s.GetByID(ctx, uuid.New())
	require.ErrorIs(t, err, model.ErrNotFound)

	require.NoError(t, s.SetRole(ctx, u.ID, model.RoleAdmin))
	require.NoError(t, s.SetDisabled(ctx, u.ID, true))
	locale := model.LocaleSomali
	updated, err := s.UpdateProfile(ctx, u.ID, model.ProfileUpdate{Locale: &locale})
	require.NoError(t, err)
	require.Equal(t, model.RoleAdmin, updated.Role)
	require.True(t, updated.Disabled)
	require.Equal(t, model.LocaleSomali, updated.Locale)
	require.Equal(t, "Ana", updated.Name)

	require.ErrorIs(t, s.SetRole(ctx, uuid.New(), model.RoleAdmin), model.ErrNotFound)
}

func TestStore_TwoFactor(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	u, err := s.Create(ctx, newUser("ana@x.com"))
	require.NoError(t, err)
	_, err = s.Create(ctx, newUser("bob@x.com"))
	require.NoError(t, err)

	expires := time.Now().Add(10 * time.Minute).UTC().Truncate(time.Millisecond)
	require.NoError(t, s.SetTwoFactor(ctx, u.ID, model.NewPendingTwoFactor("hash-1", "link-1", expires)))

	pending, err := s.ListPendingTwoFactor(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, u.ID, pending[0].ID)
	require.True(t, pending[0].TwoFactor.ExpiresAt.Equal(expires))

	byLink, err := s.GetPendingByLinkID(ctx, "link-1")
	require.NoError(t, err)
	require.Equal(t, "hash-1", byLink.TwoFactor.TokenHash)

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := s.ClearTwoFactor(ctx, u.ID, "hash-1")
			if err == nil && ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	require.Equal(t, int32(1), wins.Load())

	pending, err = s.ListPendingTwoFactor(ctx)
	require.NoError(t, err)
	require.Empty(t, pending)

	_, err = s.GetPendingByLinkID(ctx, "link-1")
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestStore_RefreshTokens(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	u, err := s.Create(ctx, newUser("ana@x.com"))
	require.NoError(t, err)

	now := time.Now().UTC().Truncate(time.Millisecond)
	require.NoError(t, s.Append(ctx, u.ID, model.RefreshToken{JTI: "a", TokenHash: []byte{1}, CreatedAt: now, ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, s.Append(ctx, u.ID, model.RefreshToken{JTI: "b", TokenHash: []byte{2}, CreatedAt: now, ExpiresAt: now.Add(time.Hour), RotatedFromJTI: "a"}))

	rt, err := s.GetByJTI(ctx, u.ID, "b")
	require.NoError(t, err)
	require.Equal(t, []byte{2}, rt.TokenHash)
	require.Equal(t, "a", rt.RotatedFromJTI)

	_, err = s.GetByJTI(ctx, u.ID, "missing")
	require.ErrorIs(t, err, model.ErrNotFound)

	revoked, err := s.Revoke(ctx, u.ID, "a")
	require.NoError(t, err)
	require.True(t, revoked)
	revoked, err = s.Revoke(ctx, u.ID, "a")
	require.NoError(t, err)
	require.False(t, revoked)

	require.NoError(t, s.RevokeAllByUser(ctx, u.ID))

	got, err := s.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, got.RefreshTokens, 2)
	for _, rt := range got.RefreshTokens {
		require.NotNil(t, rt.RevokedAt)
	}
}
