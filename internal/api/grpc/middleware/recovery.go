package middleware

import (
	"context"
	"runtime/debug"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dtroode/golekaab-server/internal/logger"
)

// Recovery converts handler panics into codes.Internal.
type Recovery struct {
	logger *logger.Logger
}

func NewRecovery(logger *logger.Logger) *Recovery {
	return &Recovery{logger: logger}
}

// Handle is a recovery.RecoveryHandlerFuncContext.
func (r *Recovery) Handle(ctx context.Context, p any) error {
	r.logger.Error("gRPC handler panicked",
		"panic", p,
		"peer", peerAddr(ctx),
		"stack", string(debug.Stack()))
	return status.Error(codes.Internal, "internal server error")
}
