package handler

import (
	"context"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dtroode/golekaab-server/internal/api/grpc/wire"
	"github.com/dtroode/golekaab-server/internal/logger"
	"github.com/dtroode/golekaab-server/internal/model"
)

// AccountService defines profile and administration operations.
type AccountService interface {
	Profile(ctx context.Context, caller model.TokenPayload) (model.PublicUser, error)
	UpdateProfile(ctx context.Context, caller model.TokenPayload, update model.ProfileUpdate) (model.PublicUser, error)
	SetDisabled(ctx context.Context, caller model.TokenPayload, userID uuid.UUID, disabled bool) (model.PublicUser, error)
	SetRole(ctx context.Context, caller model.TokenPayload, userID uuid.UUID, role model.Role) (model.PublicUser, error)
}

// Account handles authenticated gRPC endpoints for accounts.
type Account struct {
	wire.UnimplementedAccountServer
	accountService AccountService
	contextManager model.ContextManager
	logger         *logger.Logger
}

var _ wire.AccountServer = (*Account)(nil)

// NewAccount creates a new Account handler.
func NewAccount(accountService AccountService, contextManager model.ContextManager, logger *logger.Logger) *Account {
	return &Account{
		accountService: accountService,
		contextManager: contextManager,
		logger:         logger,
	}
}

// Profile returns the caller's public fields.
func (h *Account) Profile(ctx context.Context, _ *wire.Empty) (*wire.User, error) {
	caller, err := h.caller(ctx)
	if err != nil {
		return nil, err
	}

	user, err := h.accountService.Profile(ctx, caller)
	if err != nil {
		h.logger.Error("Account handler: profile failed",
			"user_id", caller.UserID,
			"error", err.Error())
		return nil, handleError(err)
	}

	return toWireUser(user), nil
}

// UpdateProfile changes the caller's name or locale.
func (h *Account) UpdateProfile(ctx context.Context, req *wire.UpdateProfileRequest) (*wire.User, error) {
	caller, err := h.caller(ctx)
	if err != nil {
		return nil, err
	}

	update := model.ProfileUpdate{Name: req.Name}
	if req.Locale != nil {
		locale := model.Locale(*req.Locale)
		update.Locale = &locale
	}

	user, err := h.accountService.UpdateProfile(ctx, caller, update)
	if err != nil {
		h.logger.Info("Account handler: profile update failed",
			"user_id", caller.UserID,
			"error", err.Error())
		return nil, handleError(err)
	}

	return toWireUser(user), nil
}

// SetDisabled enables or disables another account.
func (h *Account) SetDisabled(ctx context.Context, req *wire.SetDisabledRequest) (*wire.User, error) {
	caller, err := h.caller(ctx)
	if err != nil {
		return nil, err
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, invalidArgument("userId", "must be a valid UUID")
	}

	user, err := h.accountService.SetDisabled(ctx, caller, userID, req.Disabled)
	if err != nil {
		h.logger.Info("Account handler: set disabled failed",
			"user_id", caller.UserID,
			"target_id", userID,
			"error", err.Error())
		return nil, handleError(err)
	}

	return toWireUser(user), nil
}

// SetRole assigns a role to another account.
func (h *Account) SetRole(ctx context.Context, req *wire.SetRoleRequest) (*wire.User, error) {
	caller, err := h.caller(ctx)
	if err != nil {
		return nil, err
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, invalidArgument("userId", "must be a valid UUID")
	}

	user, err := h.accountService.SetRole(ctx, caller, userID, model.Role(req.Role))
	if err != nil {
		h.logger.Info("Account handler: set role failed",
			"user_id", caller.UserID,
			"target_id", userID,
			"error", err.Error())
		return nil, handleError(err)
	}

	return toWireUser(user), nil
}

func (h *Account) caller(ctx context.Context) (model.TokenPayload, error) {
	claims, ok := h.contextManager.GetClaimsFromContext(ctx)
	if !ok {
		return model.TokenPayload{}, status.Error(codes.Unauthenticated, "authentication required")
	}
	return claims, nil
}
