package middleware

import (
	"context"
	"errors"
	"net"

	"google.golang.org/grpc"

	"github.com/dtroode/golekaab-server/internal/logger"
	"github.com/dtroode/golekaab-server/internal/model"
)

var errLimitExceeded = errors.New("too many attempts, try again later")

// PeerLimiter limits calls per remote address and method. It satisfies the
// go-grpc-middleware ratelimit.Limiter interface.
type PeerLimiter struct {
	limiters map[string]model.RateLimiter
	logger   *logger.Logger
}

// NewPeerLimiter creates a limiter for the given full method names.
// Methods without an entry are not limited.
func NewPeerLimiter(limiters map[string]model.RateLimiter, logger *logger.Logger) *PeerLimiter {
	return &PeerLimiter{limiters: limiters, logger: logger}
}

// Methods returns the full method names this limiter applies to.
func (l *PeerLimiter) Methods() []string {
	methods := make([]string, 0, len(l.limiters))
	for m := range l.limiters {
		methods = append(methods, m)
	}
	return methods
}

// Limit rejects the call when the peer exceeded the method's limit.
// Limiter backend failures let the call through.
func (l *PeerLimiter) Limit(ctx context.Context) error {
	method, ok := grpc.Method(ctx)
	if !ok {
		return nil
	}
	limiter, ok := l.limiters[method]
	if !ok {
		return nil
	}

	allowed, err := limiter.Allow(ctx, method+":"+peerHost(ctx))
	if err != nil {
		l.logger.Warn("Rate limit middleware: limiter unavailable",
			"method", method,
			"error", err.Error())
		return nil
	}
	if !allowed {
		l.logger.Info("Rate limit middleware: request limited",
			"method", method,
			"peer", peerHost(ctx))
		return errLimitExceeded
	}
	return nil
}

func peerHost(ctx context.Context) string {
	addr := peerAddr(ctx)
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	if addr == "" {
		return "unknown"
	}
	return addr
}
