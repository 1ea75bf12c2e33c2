package context

import (
	"context"

	"github.com/google/uuid"
	"google.golang.org/grpc/metadata"

	"github.com/dtroode/golekaab-server/internal/model"
)

// Metadata keys carrying the authenticated caller in gRPC context.
const (
	userIDKey string = "user_id"
	roleKey   string = "role"
)

var _ model.ContextManager = (*Manager)(nil)

// Manager represents a gRPC context manager for caller claims.
// It stores claims in incoming metadata after authentication.
type Manager struct{}

// NewManager creates a new gRPC context manager instance.
func NewManager() *Manager {
	return &Manager{}
}

// SetClaimsToContext stores the caller's user ID and role in the incoming
// metadata of ctx, replacing any values the client sent.
func (m *Manager) SetClaimsToContext(ctx context.Context, claims model.TokenPayload) context.Context {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		md = metadata.New(nil)
	} else {
		md = md.Copy()
	}

	md.Set(userIDKey, claims.UserID.String())
	md.Set(roleKey, string(claims.Role))

	return metadata.NewIncomingContext(ctx, md)
}

// GetClaimsFromContext returns the caller's claims. It reports false when
// either value is missing or malformed.
func (m *Manager) GetClaimsFromContext(ctx context.Context) (model.TokenPayload, bool) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return model.TokenPayload{}, false
	}

	userIDs := md.Get(userIDKey)
	roles := md.Get(roleKey)
	if len(userIDs) == 0 || len(roles) == 0 {
		return model.TokenPayload{}, false
	}

	userID, err := uuid.Parse(userIDs[0])
	if err != nil || userID == uuid.Nil {
		return model.TokenPayload{}, false
	}

	role, err := model.ParseRole(roles[0])
	if err != nil {
		return model.TokenPayload{}, false
	}

	return model.TokenPayload{UserID: userID, Role: role}, true
}
