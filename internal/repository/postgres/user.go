package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dtroode/golekaab-server/internal/model"
)

var _ model.UserStore = (*UserRepository)(nil)

const uniqueViolation = "23505"

const userColumns = `id, name, email, password_hash, role, locale, disabled,
	two_factor_pending, two_factor_token_hash, two_factor_link_id, two_factor_expires_at,
	created_at, updated_at`

type UserRepository struct {
	db *Connection
}

func NewUserRepository(db *Connection) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(r.db.QueryRow(ctx, query, model.NormalizeEmail(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

// GetByID returns the user together with its refresh-token records.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}

	tokens, err := listRefreshTokens(ctx, r.db, id)
	if err != nil {
		return model.User{}, err
	}
	user.RefreshTokens = tokens

	return user, nil
}

func (r *UserRepository) Create(ctx context.Context, user model.User) (model.User, error) {
	query := `INSERT INTO users (id, name, email, password_hash, role, locale, disabled, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			  RETURNING ` + userColumns

	saved, err := scanUser(r.db.QueryRow(ctx, query,
		user.ID, user.Name, model.NormalizeEmail(user.Email), user.PasswordHash,
		string(user.Role), string(user.Locale), user.Disabled,
		user.CreatedAt, user.UpdatedAt,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return model.User{}, model.ErrEmailTaken
		}
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	return saved, nil
}

func (r *UserRepository) ListPendingTwoFactor(ctx context.Context) ([]model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE two_factor_pending`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pending user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pending users: %w", err)
	}

	return users, nil
}

func (r *UserRepository) GetPendingByLinkID(ctx context.Context, linkID string) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE two_factor_pending AND two_factor_link_id = $1`

	user, err := scanUser(r.db.QueryRow(ctx, query, linkID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to get user by link id: %w", err)
	}

	return user, nil
}

func (r *UserRepository) SetTwoFactor(ctx context.Context, id uuid.UUID, twoFactor model.TwoFactor) error {
	query := `UPDATE users SET
				two_factor_pending = $2,
				two_factor_token_hash = $3,
				two_factor_link_id = $4,
				two_factor_expires_at = $5,
				updated_at = NOW()
			  WHERE id = $1`

	return r.exec(ctx, "set two factor", query, id,
		twoFactor.Pending, nullString(twoFactor.TokenHash), nullString(twoFactor.LinkID), twoFactor.ExpiresAt)
}

// ClearTwoFactor is a conditional update: it only matches while the row is
// still pending with tokenHash, so at most one caller observes true.
func (r *UserRepository) ClearTwoFactor(ctx context.Context, id uuid.UUID, tokenHash string) (bool, error) {
	query := `UPDATE users SET
				two_factor_pending = FALSE,
				two_factor_token_hash = NULL,
				two_factor_link_id = NULL,
				two_factor_expires_at = NULL,
				updated_at = NOW()
			  WHERE id = $1 AND two_factor_pending AND two_factor_token_hash = $2`

	tag, err := r.db.Exec(ctx, query, id, tokenHash)
	if err != nil {
		return false, fmt.Errorf("failed to clear two factor: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *UserRepository) SetRole(ctx context.Context, id uuid.UUID, role model.Role) error {
	query := `UPDATE users SET role = $2, updated_at = NOW() WHERE id = $1`
	return r.exec(ctx, "set role", query, id, string(role))
}

func (r *UserRepository) SetDisabled(ctx context.Context, id uuid.UUID, disabled bool) error {
	query := `UPDATE users SET disabled = $2, updated_at = NOW() WHERE id = $1`
	return r.exec(ctx, "set disabled", query, id, disabled)
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id uuid.UUID, update model.ProfileUpdate) (model.User, error) {
	var locale *string
	if update.Locale != nil {
		l := string(*update.Locale)
		locale = &l
	}

	query := `UPDATE users SET
				name = COALESCE($2, name),
				locale = COALESCE($3, locale),
				updated_at = NOW()
			  WHERE id = $1
			  RETURNING ` + userColumns

	user, err := scanUser(r.db.QueryRow(ctx, query, id, update.Name, locale))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, model.ErrNotFound
		}
		return model.User{}, fmt.Errorf("failed to update profile: %w", err)
	}

	return user, nil
}

func (r *UserRepository) exec(ctx context.Context, op, query string, args ...any) error {
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (model.User, error) {
	var (
		u         model.User
		role      string
		locale    string
		tokenHash *string
		linkID    *string
		expiresAt *time.Time
	)

	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &locale, &u.Disabled,
		&u.TwoFactor.Pending, &tokenHash, &linkID, &expiresAt,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return model.User{}, err
	}

	u.Role = model.Role(role)
	u.Locale = model.Locale(locale)
	if tokenHash != nil {
		u.TwoFactor.TokenHash = *tokenHash
	}
	if linkID != nil {
		u.TwoFactor.LinkID = *linkID
	}
	u.TwoFactor.ExpiresAt = expiresAt

	return u, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
