package mongo

import (
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/golekaab-server/internal/model"
)

type userDocument struct {
	ID            string                 `bson:"_id"`
	Name          string                 `bson:"name"`
	Email         string                 `bson:"email"`
	PasswordHash  string                 `bson:"passwordHash"`
	Role          string                 `bson:"role"`
	Locale        string                 `bson:"locale"`
	Disabled      bool                   `bson:"disabled"`
	TwoFactor     twoFactorDocument      `bson:"twoFactor"`
	RefreshTokens []refreshTokenDocument `bson:"refreshTokens"`
	CreatedAt     time.Time              `bson:"createdAt"`
	UpdatedAt     time.Time              `bson:"updatedAt"`
}

type twoFactorDocument struct {
	Pending   bool       `bson:"pending"`
	TokenHash *string    `bson:"tokenHash"`
	LinkID    *string    `bson:"linkId,omitempty"`
	ExpiresAt *time.Time `bson:"expiresAt"`
}

type refreshTokenDocument struct {
	JTI            string     `bson:"jti"`
	TokenHash      []byte     `bson:"tokenHash"`
	CreatedAt      time.Time  `bson:"createdAt"`
	ExpiresAt      time.Time  `bson:"expiresAt"`
	RevokedAt      *time.Time `bson:"revokedAt,omitempty"`
	RotatedFromJTI string     `bson:"rotatedFromJti,omitempty"`
}

func toUserDocument(u model.User) userDocument {
	tokens := make([]refreshTokenDocument, 0, len(u.RefreshTokens))
	for _, rt := range u.RefreshTokens {
		tokens = append(tokens, toRefreshTokenDocument(rt))
	}

	return userDocument{
		ID:            u.ID.String(),
		Name:          u.Name,
		Email:         model.NormalizeEmail(u.Email),
		PasswordHash:  u.PasswordHash,
		Role:          string(u.Role),
		Locale:        string(u.Locale),
		Disabled:      u.Disabled,
		TwoFactor:     toTwoFactorDocument(u.TwoFactor),
		RefreshTokens: tokens,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

func toTwoFactorDocument(t model.TwoFactor) twoFactorDocument {
	doc := twoFactorDocument{Pending: t.Pending, ExpiresAt: t.ExpiresAt}
	if t.TokenHash != "" {
		doc.TokenHash = &t.TokenHash
	}
	if t.LinkID != "" {
		doc.LinkID = &t.LinkID
	}
	return doc
}

func toRefreshTokenDocument(rt model.RefreshToken) refreshTokenDocument {
	return refreshTokenDocument{
		JTI:            rt.JTI,
		TokenHash:      rt.TokenHash,
		CreatedAt:      rt.CreatedAt,
		ExpiresAt:      rt.ExpiresAt,
		RevokedAt:      rt.RevokedAt,
		RotatedFromJTI: rt.RotatedFromJTI,
	}
}

func (d userDocument) toModel() (model.User, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return model.User{}, err
	}

	u := model.User{
		ID:           id,
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Role:         model.Role(d.Role),
		Locale:       model.Locale(d.Locale),
		Disabled:     d.Disabled,
		TwoFactor: model.TwoFactor{
			Pending:   d.TwoFactor.Pending,
			ExpiresAt: d.TwoFactor.ExpiresAt,
		},
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	if d.TwoFactor.TokenHash != nil {
		u.TwoFactor.TokenHash = *d.TwoFactor.TokenHash
	}
	if d.TwoFactor.LinkID != nil {
		u.TwoFactor.LinkID = *d.TwoFactor.LinkID
	}
	for _, rt := range d.RefreshTokens {
		u.RefreshTokens = append(u.RefreshTokens, rt.toModel())
	}

	return u, nil
}

func (d refreshTokenDocument) toModel() model.RefreshToken {
	return model.RefreshToken{
		JTI:            d.JTI,
		TokenHash:      d.TokenHash,
		CreatedAt:      d.CreatedAt,
		ExpiresAt:      d.ExpiresAt,
		RevokedAt:      d.RevokedAt,
		RotatedFromJTI: d.RotatedFromJTI,
	}
}
