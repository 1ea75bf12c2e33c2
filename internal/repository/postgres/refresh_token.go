package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dtroode/golekaab-server/internal/model"
)

var _ model.RefreshTokenStore = (*RefreshTokenRepository)(nil)

type RefreshTokenRepository struct {
	db *Connection
}

func NewRefreshTokenRepository(db *Connection) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

func (r *RefreshTokenRepository) Append(ctx context.Context, userID uuid.UUID, token model.RefreshToken) error {
	const query = `
        INSERT INTO refresh_tokens (
            jti, user_id, token_hash, created_at, expires_at, revoked_at, rotated_from_jti
        ) VALUES ($1,$2,$3,$4,$5,$6,$7)
    `

	_, err := r.db.Exec(ctx, query,
		token.JTI, userID, token.TokenHash, token.CreatedAt, token.ExpiresAt,
		token.RevokedAt, nullString(token.RotatedFromJTI),
	)
	if err != nil {
		return fmt.Errorf("failed to create refresh token: %w", err)
	}
	return nil
}

func (r *RefreshTokenRepository) GetByJTI(ctx context.Context, userID uuid.UUID, jti string) (model.RefreshToken, error) {
	const query = `
        SELECT jti, token_hash, created_at, expires_at, revoked_at, rotated_from_jti
        FROM refresh_tokens WHERE jti = $1 AND user_id = $2
    `
	rt, err := scanRefreshToken(r.db.QueryRow(ctx, query, jti, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.RefreshToken{}, model.ErrNotFound
		}
		return model.RefreshToken{}, fmt.Errorf("failed to get refresh token by jti: %w", err)
	}
	return rt, nil
}

func (r *RefreshTokenRepository) Revoke(ctx context.Context, userID uuid.UUID, jti string) (bool, error) {
	const query = `
        UPDATE refresh_tokens SET revoked_at = NOW()
        WHERE jti = $1 AND user_id = $2 AND revoked_at IS NULL
    `
	tag, err := r.db.Exec(ctx, query, jti, userID)
	if err != nil {
		return false, fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *RefreshTokenRepository) RevokeAllByUser(ctx context.Context, userID uuid.UUID) error {
	const query = `
        UPDATE refresh_tokens SET revoked_at = NOW()
        WHERE user_id = $1 AND revoked_at IS NULL
    `
	if _, err := r.db.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to revoke refresh tokens by user: %w", err)
	}
	return nil
}

func listRefreshTokens(ctx context.Context, db *Connection, userID uuid.UUID) ([]model.RefreshToken, error) {
	const query = `
        SELECT jti, token_hash, created_at, expires_at, revoked_at, rotated_from_jti
        FROM refresh_tokens WHERE user_id = $1 ORDER BY created_at, jti
    `
	rows, err := db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list refresh tokens: %w", err)
	}
	defer rows.Close()

	var tokens []model.RefreshToken
	for rows.Next() {
		rt, err := scanRefreshToken(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan refresh token: %w", err)
		}
		tokens = append(tokens, rt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate refresh tokens: %w", err)
	}
	return tokens, nil
}

func scanRefreshToken(row pgx.Row) (model.RefreshToken, error) {
	var (
		rt          model.RefreshToken
		rotatedFrom *string
	)
	err := row.Scan(&rt.JTI, &rt.TokenHash, &rt.CreatedAt, &rt.ExpiresAt, &rt.RevokedAt, &rotatedFrom)
	if err != nil {
		return model.RefreshToken{}, err
	}
	if rotatedFrom != nil {
		rt.RotatedFromJTI = *rotatedFrom
	}
	return rt, nil
}
