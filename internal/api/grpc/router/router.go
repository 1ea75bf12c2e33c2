package router

import (
	"context"
	"slices"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/auth"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/ratelimit"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/selector"
	"google.golang.org/grpc"

	"github.com/dtroode/golekaab-server/internal/api/grpc/handler"
	"github.com/dtroode/golekaab-server/internal/api/grpc/middleware"
	"github.com/dtroode/golekaab-server/internal/api/grpc/wire"
	"github.com/dtroode/golekaab-server/internal/logger"
	"github.com/dtroode/golekaab-server/internal/model"
)

// Services bundles the application services exposed over gRPC.
type Services struct {
	Auth     handler.AuthService
	Sessions handler.SessionService
	Account  handler.AccountService
	Tokens   middleware.TokenService
}

// Router represents a gRPC router for Gole Kaab operations.
// It manages gRPC service registration and middleware configuration.
type Router struct {
	services       Services
	limiter        *middleware.PeerLimiter
	contextManager model.ContextManager
	logger         *logger.Logger
}

// New creates new gRPC Router instance. A nil limiter disables per-peer
// rate limiting.
func New(
	services Services,
	limiter *middleware.PeerLimiter,
	contextManager model.ContextManager,
	logger *logger.Logger,
) *Router {
	return &Router{
		services:       services,
		limiter:        limiter,
		contextManager: contextManager,
		logger:         logger,
	}
}

// requiresAuth matches every method outside the public Auth service.
func requiresAuth(_ context.Context, c interceptors.CallMeta) bool {
	return !strings.HasPrefix(c.FullMethod(), "/"+wire.AuthServiceName+"/")
}

// Register builds the gRPC server with its interceptor chain and services.
func (r *Router) Register(opts ...grpc.ServerOption) *grpc.Server {
	s := grpc.NewServer(append(opts,
		grpc.ChainUnaryInterceptor(r.unaryInterceptors()...),
		grpc.ChainStreamInterceptor(r.streamInterceptors()...),
	)...)

	r.registerAuthRoutes(s)
	r.registerAccountRoutes(s)

	return s
}

func (r *Router) unaryInterceptors() []grpc.UnaryServerInterceptor {
	rec := middleware.NewRecovery(r.logger)
	logging := middleware.NewLogging(r.logger)
	authenticate := middleware.NewAuthenticate(r.services.Tokens, r.contextManager, r.logger)

	chain := []grpc.UnaryServerInterceptor{
		recovery.UnaryServerInterceptor(recovery.WithRecoveryHandlerContext(rec.Handle)),
		logging.HandleGRPC,
	}

	if r.limiter != nil {
		limited := r.limiter.Methods()
		chain = append(chain, selector.UnaryServerInterceptor(
			ratelimit.UnaryServerInterceptor(r.limiter),
			selector.MatchFunc(func(_ context.Context, c interceptors.CallMeta) bool {
				return slices.Contains(limited, c.FullMethod())
			}),
		))
	}

	return append(chain, selector.UnaryServerInterceptor(
		auth.UnaryServerInterceptor(authenticate.AuthFunc),
		selector.MatchFunc(requiresAuth),
	))
}

func (r *Router) streamInterceptors() []grpc.StreamServerInterceptor {
	rec := middleware.NewRecovery(r.logger)
	authenticate := middleware.NewAuthenticate(r.services.Tokens, r.contextManager, r.logger)

	return []grpc.StreamServerInterceptor{
		recovery.StreamServerInterceptor(recovery.WithRecoveryHandlerContext(rec.Handle)),
		selector.StreamServerInterceptor(
			auth.StreamServerInterceptor(authenticate.AuthFunc),
			selector.MatchFunc(requiresAuth),
		),
	}
}

func (r *Router) registerAuthRoutes(server *grpc.Server) {
	authHandler := handler.NewAuth(r.services.Auth, r.services.Sessions, r.logger)
	wire.RegisterAuthServer(server, authHandler)
}

func (r *Router) registerAccountRoutes(server *grpc.Server) {
	accountHandler := handler.NewAccount(r.services.Account, r.contextManager, r.logger)
	wire.RegisterAccountServer(server, accountHandler)
}
