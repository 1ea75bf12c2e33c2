package mongo

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/dtroode/golekaab-server/internal/model"
)

func TestUserDocument_Roundtrip(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	revoked := now.Add(time.Minute)

	u := model.User{
		ID:           uuid.New(),
		Name:         "Ana",
		Email:        " Ana@X.com",
		PasswordHash: "hash",
		Role:         model.RoleModerator,
		Locale:       model.LocaleSomali,
		TwoFactor:    model.NewPendingTwoFactor("secret-hash", "link", now.Add(10*time.Minute)),
		RefreshTokens: []model.RefreshToken{
			{JTI: "a", TokenHash: []byte{1}, CreatedAt: now, ExpiresAt: now.Add(time.Hour), RevokedAt: &revoked},
			{JTI: "b", TokenHash: []byte{2}, CreatedAt: now, ExpiresAt: now.Add(time.Hour), RotatedFromJTI: "a"},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	raw, err := bson.Marshal(toUserDocument(u))
	require.NoError(t, err)

	var doc userDocument
	require.NoError(t, bson.Unmarshal(raw, &doc))

	got, err := doc.toModel()
	require.NoError(t, err)

	u.Email = "ana@x.com"
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, u.Email, got.Email)
	assert.Equal(t, u.Role, got.Role)
	assert.Equal(t, u.Locale, got.Locale)
	assert.Equal(t, u.TwoFactor.TokenHash, got.TwoFactor.TokenHash)
	assert.Equal(t, u.TwoFactor.LinkID, got.TwoFactor.LinkID)
	assert.True(t, u.TwoFactor.ExpiresAt.Equal(*got.TwoFactor.ExpiresAt))
	require.Len(t, got.RefreshTokens, 2)
	assert.True(t, revoked.Equal(*got.RefreshTokens[0].RevokedAt))
	assert.Nil(t, got.RefreshTokens[1].RevokedAt)
	assert.Equal(t, "a", got.RefreshTokens[1].RotatedFromJTI)
}

func TestUserDocument_EmptyTwoFactorAndTokens(t *testing.T) {
	doc := toUserDocument(model.User{ID: uuid.New(), Email: "a@b.c"})

	assert.NotNil(t, doc.RefreshTokens)
	assert.Empty(t, doc.RefreshTokens)
	assert.Nil(t, doc.TwoFactor.TokenHash)
	assert.Nil(t, doc.TwoFactor.LinkID)

	raw, err := bson.Marshal(doc)
	require.NoError(t, err)
	var m bson.M
	require.NoError(t, bson.Unmarshal(raw, &m))
	assert.IsType(t, bson.A{}, m["refreshTokens"])
	assert.Len(t, m["refreshTokens"], 0)
}

func TestUserDocument_BadID(t *testing.T) {
	_, err := userDocument{ID: "not-a-uuid"}.toModel()
	require.Error(t, err)
}
