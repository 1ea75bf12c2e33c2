package middleware

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/dtroode/golekaab-server/internal/logger"
	"github.com/dtroode/golekaab-server/internal/model"
)

// TokenService resolves caller claims from access tokens.
type TokenService interface {
	Authenticate(ctx context.Context, accessToken string) (model.TokenPayload, error)
}

// Authenticate validates bearer tokens and injects caller claims into context.
type Authenticate struct {
	tokenService   TokenService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAuthenticate creates a new Authenticate middleware instance.
func NewAuthenticate(tokenService TokenService, contextManager model.ContextManager, logger *logger.Logger) *Authenticate {
	return &Authenticate{tokenService: tokenService, contextManager: contextManager, logger: logger}
}

// AuthFunc parses the authorization header, validates the access token and
// returns a context carrying the caller's claims.
func (m *Authenticate) AuthFunc(ctx context.Context) (context.Context, error) {
	tokenString := bearerToken(ctx)
	if tokenString == "" {
		return nil, status.Error(codes.Unauthenticated, "authorization token is required")
	}

	claims, err := m.tokenService.Authenticate(ctx, tokenString)
	if err != nil || claims.UserID == uuid.Nil {
		m.logger.Debug("Authenticate middleware: token rejected")
		return nil, status.Error(codes.Unauthenticated, "invalid authorization token")
	}

	return m.contextManager.SetClaimsToContext(ctx, claims), nil
}

func bearerToken(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	authHeaders := md.Get("authorization")
	if len(authHeaders) == 0 {
		return ""
	}

	scheme, token, found := strings.Cut(strings.TrimSpace(authHeaders[0]), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
