package model

import (
	"context"
)

// ContextManager carries authenticated caller identity through a request.
type ContextManager interface {
	SetClaimsToContext(ctx context.Context, claims TokenPayload) context.Context
	GetClaimsFromContext(ctx context.Context) (TokenPayload, bool)
}
