package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dtroode/golekaab-server/internal/logger"
	"github.com/dtroode/golekaab-server/internal/model"
)

// Account serves profile reads and updates for the caller and
// role-gated administration of other accounts.
type Account struct {
	userStore    model.UserStore
	tokenService *TokenService
	validator    *Validator
	logger       *logger.Logger
}

func NewAccount(userStore model.UserStore, tokenService *TokenService, logger *logger.Logger) *Account {
	return &Account{
		userStore:    userStore,
		tokenService: tokenService,
		validator:    NewValidator(),
		logger:       logger,
	}
}

// Profile returns the caller's public fields.
func (s *Account) Profile(ctx context.Context, caller model.TokenPayload) (model.PublicUser, error) {
	user, err := s.userStore.GetByID(ctx, caller.UserID)
	if err != nil {
		return model.PublicUser{}, fmt.Errorf("failed to get user: %w", err)
	}
	return user.Public(), nil
}

// UpdateProfile changes the caller's name or locale.
func (s *Account) UpdateProfile(ctx context.Context, caller model.TokenPayload, update model.ProfileUpdate) (model.PublicUser, error) {
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		update.Name = &name
	}

	if update.Empty() {
		return model.PublicUser{}, &model.ValidationError{Fields: []model.FieldError{{
			Field:   "name",
			Rule:    "required_without",
			Message: "at least one of name or locale is required",
		}}}
	}
	if err := s.validator.Struct(update); err != nil {
		return model.PublicUser{}, err
	}

	user, err := s.userStore.UpdateProfile(ctx, caller.UserID, update)
	if err != nil {
		return model.PublicUser{}, fmt.Errorf("failed to update profile: %w", err)
	}

	s.logger.Info("Account service: profile updated",
		"user_id", caller.UserID)

	return user.Public(), nil
}

// SetDisabled enables or disables another account. Disabling revokes all of
// the target's refresh tokens.
func (s *Account) SetDisabled(ctx context.Context, caller model.TokenPayload, userID uuid.UUID, disabled bool) (model.PublicUser, error) {
	if !caller.Role.Can(model.CapManageUsers) || caller.UserID == userID {
		return model.PublicUser{}, model.ErrForbidden
	}

	target, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		return model.PublicUser{}, fmt.Errorf("failed to get user: %w", err)
	}
	if !outranks(caller.Role, target.Role) {
		return model.PublicUser{}, model.ErrForbidden
	}

	if err := s.userStore.SetDisabled(ctx, userID, disabled); err != nil {
		return model.PublicUser{}, fmt.Errorf("failed to set disabled: %w", err)
	}

	if disabled {
		if err := s.tokenService.RevokeAllForUser(ctx, userID); err != nil {
			return model.PublicUser{}, fmt.Errorf("failed to revoke sessions: %w", err)
		}
	}

	s.logger.Info("Account service: account status changed",
		"user_id", userID,
		"disabled", disabled,
		"by", caller.UserID)

	target.Disabled = disabled
	return target.Public(), nil
}

// SetRole assigns role to another account.
func (s *Account) SetRole(ctx context.Context, caller model.TokenPayload, userID uuid.UUID, role model.Role) (model.PublicUser, error) {
	if !role.Valid() {
		return model.PublicUser{}, &model.ValidationError{Fields: []model.FieldError{{
			Field:   "role",
			Rule:    "oneof",
			Message: "must be one of: USER, MODERATOR, ADMIN, SUPERADMIN",
		}}}
	}
	if !caller.Role.Can(model.CapManageRoles) || caller.UserID == userID {
		return model.PublicUser{}, model.ErrForbidden
	}

	target, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		return model.PublicUser{}, fmt.Errorf("failed to get user: %w", err)
	}

	if err := s.userStore.SetRole(ctx, userID, role); err != nil {
		return model.PublicUser{}, fmt.Errorf("failed to set role: %w", err)
	}

	s.logger.Info("Account service: role changed",
		"user_id", userID,
		"role", role,
		"by", caller.UserID)

	target.Role = role
	return target.Public(), nil
}

// outranks reports whether actor may administer an account holding target.
// Superadmins may administer anyone else; other roles only lower ranks.
func outranks(actor, target model.Role) bool {
	if actor == model.RoleSuperAdmin {
		return true
	}
	return actor.Can(model.CapManageUsers) && !target.Can(model.CapManageUsers)
}
