package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dtroode/golekaab-server/internal/model"
)

var (
	_ model.UserStore         = (*Store)(nil)
	_ model.RefreshTokenStore = (*Store)(nil)
)

// Store keeps each user, its pending login and its refresh tokens in one
// document. Every write is a field-scoped update of that document.
type Store struct {
	users *mongo.Collection
	now   func() time.Time
}

func NewStore(users *mongo.Collection) *Store {
	return &Store{users: users, now: time.Now}
}

// EnsureIndexes creates the unique e-mail index and the pending-login indexes.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	pending := bson.M{"twoFactor.pending": true}
	_, err := s.users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("email_unique"),
		},
		{
			Keys:    bson.D{{Key: "twoFactor.pending", Value: 1}},
			Options: options.Index().SetPartialFilterExpression(pending).SetName("two_factor_pending"),
		},
		{
			Keys:    bson.D{{Key: "twoFactor.linkId", Value: 1}},
			Options: options.Index().SetPartialFilterExpression(pending).SetName("two_factor_link_id"),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (s *Store) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return s.findOne(ctx, bson.M{"email": model.NormalizeEmail(email)})
}

func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	return s.findOne(ctx, bson.M{"_id": id.String()})
}

func (s *Store) Create(ctx context.Context, user model.User) (model.User, error) {
	doc := toUserDocument(user)

	if _, err := s.users.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return model.User{}, model.ErrEmailTaken
		}
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	return doc.toModel()
}

func (s *Store) ListPendingTwoFactor(ctx context.Context) ([]model.User, error) {
	cur, err := s.users.Find(ctx, bson.M{"twoFactor.pending": true},
		options.Find().SetProjection(bson.M{"refreshTokens": 0}))
	if err != nil {
		return nil, fmt.Errorf("failed to list pending users: %w", err)
	}
	defer cur.Close(ctx)

	var out []model.User
	for cur.Next(ctx) {
		var doc userDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode pending user: %w", err)
		}
		u, err := doc.toModel()
		if err != nil {
			return nil, fmt.Errorf("failed to decode pending user: %w", err)
		}
		out = append(out, u)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pending users: %w", err)
	}

	return out, nil
}

func (s *Store) GetPendingByLinkID(ctx context.Context, linkID string) (model.User, error) {
	return s.findOne(ctx, bson.M{"twoFactor.pending": true, "twoFactor.linkId": linkID})
}

func (s *Store) SetTwoFactor(ctx context.Context, id uuid.UUID, twoFactor model.TwoFactor) error {
	return s.updateByID(ctx, id, bson.M{"twoFactor": toTwoFactorDocument(twoFactor)})
}

func (s *Store) ClearTwoFactor(ctx context.Context, id uuid.UUID, tokenHash string) (bool, error) {
	filter := bson.M{
		"_id":                 id.String(),
		"twoFactor.pending":   true,
		"twoFactor.tokenHash": tokenHash,
	}
	update := bson.M{"$set": bson.M{
		"twoFactor": twoFactorDocument{},
		"updatedAt": s.now(),
	}}

	res, err := s.users.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to clear two factor: %w", err)
	}
	return res.MatchedCount == 1, nil
}

func (s *Store) SetRole(ctx context.Context, id uuid.UUID, role model.Role) error {
	return s.updateByID(ctx, id, bson.M{"role": string(role)})
}

func (s *Store) SetDisabled(ctx context.Context, id uuid.UUID, disabled bool) error {
	return s.updateByID(ctx, id, bson.M{"disabled": disabled})
}

func (s *Store) UpdateProfile(ctx context.Context, id uuid.UUID, update model.ProfileUpdate) (model.User, error) {
	set := bson.M{"updatedAt": s.now()}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Locale != nil {
		set["locale"] = string(*update.Locale)
	}

	var doc userDocument
	err := s.users.FindOneAndUpdate(ctx, bson.M{"_id": id.String()}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.User{}, model.ErrNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("failed to update profile: %w", err)
	}

	return doc.toModel()
}

func (s *Store) Append(ctx context.Context, userID uuid.UUID, token model.RefreshToken) error {
	res, err := s.users.UpdateOne(ctx, bson.M{"_id": userID.String()}, bson.M{
		"$push": bson.M{"refreshTokens": toRefreshTokenDocument(token)},
		"$set":  bson.M{"updatedAt": s.now()},
	})
	if err != nil {
		return fmt.Errorf("failed to append refresh token: %w", err)
	}
	if res.MatchedCount == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (s *Store) GetByJTI(ctx context.Context, userID uuid.UUID, jti string) (model.RefreshToken, error) {
	var doc userDocument
	err := s.users.FindOne(ctx,
		bson.M{"_id": userID.String(), "refreshTokens.jti": jti},
		options.FindOne().SetProjection(bson.M{"refreshTokens.$": 1}),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.RefreshToken{}, model.ErrNotFound
	}
	if err != nil {
		return model.RefreshToken{}, fmt.Errorf("failed to get refresh token by jti: %w", err)
	}
	if len(doc.RefreshTokens) == 0 {
		return model.RefreshToken{}, model.ErrNotFound
	}

	return doc.RefreshTokens[0].toModel(), nil
}

// Revoke matches only an unrevoked element, so concurrent callers cannot
// both observe true.
func (s *Store) Revoke(ctx context.Context, userID uuid.UUID, jti string) (bool, error) {
	filter := bson.M{
		"_id": userID.String(),
		"refreshTokens": bson.M{"$elemMatch": bson.M{
			"jti":       jti,
			"revokedAt": nil,
		}},
	}
	now := s.now()
	update := bson.M{"$set": bson.M{
		"refreshTokens.$.revokedAt": now,
		"updatedAt":                 now,
	}}

	res, err := s.users.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return res.ModifiedCount == 1, nil
}

func (s *Store) RevokeAllByUser(ctx context.Context, userID uuid.UUID) error {
	now := s.now()
	update := bson.M{"$set": bson.M{
		"refreshTokens.$[t].revokedAt": now,
		"updatedAt":                    now,
	}}
	opts := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{bson.M{"t.revokedAt": nil}},
	})

	res, err := s.users.UpdateOne(ctx, bson.M{"_id": userID.String()}, update, opts)
	if err != nil {
		return fmt.Errorf("failed to revoke refresh tokens by user: %w", err)
	}
	if res.MatchedCount == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (model.User, error) {
	var doc userDocument
	err := s.users.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.User{}, model.ErrNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("failed to find user: %w", err)
	}
	return doc.toModel()
}

func (s *Store) updateByID(ctx context.Context, id uuid.UUID, set bson.M) error {
	set["updatedAt"] = s.now()

	res, err := s.users.UpdateOne(ctx, bson.M{"_id": id.String()}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return model.ErrNotFound
	}
	return nil
}
