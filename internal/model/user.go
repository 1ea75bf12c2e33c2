package model

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// UserStore defines persistence operations for users.
//
// Two-factor and role updates are field-scoped so that a login in flight
// never overwrites concurrent changes to other parts of the record.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	Create(ctx context.Context, user User) (User, error)
	ListPendingTwoFactor(ctx context.Context) ([]User, error)
	GetPendingByLinkID(ctx context.Context, linkID string) (User, error)
	SetTwoFactor(ctx context.Context, id uuid.UUID, twoFactor TwoFactor) error
	// ClearTwoFactor resets the two-factor state only while it is still
	// pending with tokenHash. It reports whether the record was cleared.
	ClearTwoFactor(ctx context.Context, id uuid.UUID, tokenHash string) (bool, error)
	SetRole(ctx context.Context, id uuid.UUID, role Role) error
	SetDisabled(ctx context.Context, id uuid.UUID, disabled bool) error
	UpdateProfile(ctx context.Context, id uuid.UUID, update ProfileUpdate) (User, error)
}

// Locale is a user interface language.
type Locale string

const (
	LocaleEnglish Locale = "en"
	LocaleSomali  Locale = "so"
)

// DefaultLocale is assigned when registration omits a locale.
const DefaultLocale = LocaleEnglish

// User represents a stored user with authentication material.
type User struct {
	ID            uuid.UUID
	Name          string
	Email         string
	PasswordHash  string
	Role          Role
	Locale        Locale
	Disabled      bool
	TwoFactor     TwoFactor
	RefreshTokens []RefreshToken
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// PublicUser holds the user fields that may leave the service.
type PublicUser struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Email  string    `json:"email"`
	Role   Role      `json:"role"`
	Locale Locale    `json:"locale"`
}

// Public strips credentials and session state.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:     u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Role:   u.Role,
		Locale: u.Locale,
	}
}

// NormalizeEmail trims and lower-cases an address so that lookups and the
// uniqueness constraint agree.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RegisterParams contains registration input.
type RegisterParams struct {
	Name     string `validate:"required,min=3"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8"`
	Locale   Locale `validate:"omitempty,oneof=en so"`
}

// LoginParams contains login-initiation input.
type LoginParams struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
	// RemoteAddr is the client host the attempt came from, if known.
	RemoteAddr string `validate:"-"`
}

// ProfileUpdate holds user-editable profile fields. Nil fields are left unchanged.
type ProfileUpdate struct {
	Name   *string `validate:"omitempty,min=3"`
	Locale *Locale `validate:"omitempty,oneof=en so"`
}

// Empty reports whether the update changes nothing.
func (p ProfileUpdate) Empty() bool {
	return p.Name == nil && p.Locale == nil
}

// Session is the result of a completed login.
type Session struct {
	User         PublicUser
	AccessToken  string
	RefreshToken string
}
