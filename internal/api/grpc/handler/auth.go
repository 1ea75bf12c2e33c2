package handler

import (
	"context"
	"net"

	"google.golang.org/grpc/peer"

	"github.com/dtroode/golekaab-server/internal/api/grpc/wire"
	"github.com/dtroode/golekaab-server/internal/logger"
	"github.com/dtroode/golekaab-server/internal/model"
)

// LoginInitiatedMessage is returned for every accepted login attempt.
const LoginInitiatedMessage = "Check your email for a sign-in link."

// AuthService defines user registration and login operations.
type AuthService interface {
	Register(ctx context.Context, params model.RegisterParams) (model.PublicUser, error)
	LoginInitiate(ctx context.Context, params model.LoginParams) error
	LoginComplete(ctx context.Context, token string) (model.Session, error)
}

// SessionService defines token refresh and revoke operations.
type SessionService interface {
	Refresh(ctx context.Context, refreshToken string) (accessToken string, newRefreshToken string, err error)
	Revoke(ctx context.Context, refreshToken string) error
}

// Auth handles gRPC endpoints for authentication.
type Auth struct {
	wire.UnimplementedAuthServer
	authService    AuthService
	sessionService SessionService
	logger         *logger.Logger
}

var _ wire.AuthServer = (*Auth)(nil)

// NewAuth creates a new Auth handler.
func NewAuth(authService AuthService, sessionService SessionService, logger *logger.Logger) *Auth {
	return &Auth{
		authService:    authService,
		sessionService: sessionService,
		logger:         logger,
	}
}

// Register creates an account and returns its public fields.
func (h *Auth) Register(ctx context.Context, req *wire.RegisterRequest) (*wire.User, error) {
	h.logger.Debug("Auth handler: processing registration request")

	user, err := h.authService.Register(ctx, model.RegisterParams{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Locale:   model.Locale(req.Locale),
	})
	if err != nil {
		h.logger.Info("Auth handler: registration failed",
			"error", err.Error())
		return nil, handleError(err)
	}

	h.logger.Info("Auth handler: registration completed",
		"user_id", user.ID)

	return toWireUser(user), nil
}

// LoginInitiate checks credentials and triggers magic-link delivery.
func (h *Auth) LoginInitiate(ctx context.Context, req *wire.LoginInitiateRequest) (*wire.LoginInitiateResponse, error) {
	h.logger.Debug("Auth handler: processing login initiate request")

	err := h.authService.LoginInitiate(ctx, model.LoginParams{
		Email:      req.Email,
		Password:   req.Password,
		RemoteAddr: remoteHost(ctx),
	})
	if err != nil {
		h.logger.Info("Auth handler: login initiate failed",
			"error", err.Error())
		return nil, handleError(err)
	}

	return &wire.LoginInitiateResponse{Message: LoginInitiatedMessage}, nil
}

// LoginComplete exchanges a magic-link token for session tokens.
func (h *Auth) LoginComplete(ctx context.Context, req *wire.LoginCompleteRequest) (*wire.SessionResponse, error) {
	h.logger.Debug("Auth handler: processing login complete request")

	session, err := h.authService.LoginComplete(ctx, req.Token)
	if err != nil {
		h.logger.Info("Auth handler: login complete failed",
			"error", err.Error())
		return nil, handleError(err)
	}

	h.logger.Info("Auth handler: login complete succeeded",
		"user_id", session.User.ID)

	return &wire.SessionResponse{
		User:         *toWireUser(session.User),
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
	}, nil
}

// RefreshToken exchanges a refresh token for a new token pair.
func (h *Auth) RefreshToken(ctx context.Context, req *wire.RefreshTokenRequest) (*wire.RefreshTokenResponse, error) {
	h.logger.Debug("Auth handler: processing token refresh request")

	if req.RefreshToken == "" {
		return nil, invalidArgument("refreshToken", "is required")
	}

	accessToken, refreshToken, err := h.sessionService.Refresh(ctx, req.RefreshToken)
	if err != nil {
		h.logger.Info("Auth handler: token refresh failed",
			"error", err.Error())
		return nil, handleError(err)
	}

	h.logger.Info("Auth handler: token refresh successful")

	return &wire.RefreshTokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// RevokeToken revokes a refresh token.
func (h *Auth) RevokeToken(ctx context.Context, req *wire.RevokeTokenRequest) (*wire.Empty, error) {
	h.logger.Debug("Auth handler: processing token revoke request")

	if req.RefreshToken == "" {
		return nil, invalidArgument("refreshToken", "is required")
	}

	if err := h.sessionService.Revoke(ctx, req.RefreshToken); err != nil {
		h.logger.Info("Auth handler: token revoke failed",
			"error", err.Error())
		return nil, handleError(err)
	}

	h.logger.Info("Auth handler: token revoke successful")

	return &wire.Empty{}, nil
}

func remoteHost(ctx context.Context) string {
	p, ok := peer.FromContext(ctx)
	if !ok || p.Addr == nil {
		return ""
	}
	addr := p.Addr.String()
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
