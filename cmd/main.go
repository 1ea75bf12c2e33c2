package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	grpcctx "github.com/dtroode/golekaab-server/internal/api/grpc/context"
	"github.com/dtroode/golekaab-server/internal/api/grpc/middleware"
	"github.com/dtroode/golekaab-server/internal/api/grpc/router"
	grpcServer "github.com/dtroode/golekaab-server/internal/api/grpc/server"
	"github.com/dtroode/golekaab-server/internal/api/grpc/wire"
	"github.com/dtroode/golekaab-server/internal/config"
	"github.com/dtroode/golekaab-server/internal/logger"
	"github.com/dtroode/golekaab-server/internal/model"
	"github.com/dtroode/golekaab-server/internal/notifier"
	"github.com/dtroode/golekaab-server/internal/password"
	"github.com/dtroode/golekaab-server/internal/ratelimit"
	"github.com/dtroode/golekaab-server/internal/repository/memory"
	"github.com/dtroode/golekaab-server/internal/repository/mongo"
	"github.com/dtroode/golekaab-server/internal/repository/postgres"
	"github.com/dtroode/golekaab-server/internal/server"
	"github.com/dtroode/golekaab-server/internal/service"
	"github.com/dtroode/golekaab-server/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

// stores bundles the credential store implementation selected by config.
type stores struct {
	users  model.UserStore
	tokens model.RefreshTokenStore
	close  func()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.NewWithFormat(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	st, err := newStores(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to initialize storage", "driver", cfg.Database.Driver, "error", err)
	}
	defer st.close()

	loginLimiter, verifyLimiter, closeLimiters, err := newLimiters(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to initialize rate limiter", "backend", cfg.RateLimit.Backend, "error", err)
	}
	defer closeLimiters()

	mailer, err := newNotifier(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize notifier", "error", err)
	}

	tokenManager := token.NewJWT(cfg.JWT.Secret, token.WithTTL(cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL))
	tokenService := service.NewTokenService(tokenManager, st.tokens, st.users, logger)
	authService := service.NewAuth(
		st.users,
		tokenService,
		password.NewBcrypt(cfg.Auth.BcryptCost),
		mailer,
		logger,
		service.WithMagicLinkTTL(cfg.Auth.MagicLinkTTL),
		service.WithLinkDiscriminator(cfg.Auth.LinkDiscriminator),
		service.WithNotifyTimeout(cfg.Auth.NotifyTimeout),
		service.WithLoginLimiter(loginLimiter),
	)
	accountService := service.NewAccount(st.users, tokenService, logger)

	peerLimiter := middleware.NewPeerLimiter(map[string]model.RateLimiter{
		wire.Auth_LoginComplete_FullMethodName: verifyLimiter,
	}, logger)

	r := router.New(router.Services{
		Auth:     authService,
		Sessions: tokenService,
		Account:  accountService,
		Tokens:   tokenService,
	}, peerLimiter, grpcctx.NewManager(), logger)

	s := r.Register()

	grpcSrv := grpcServer.NewGRPCServer(s, fmt.Sprintf(":%s", cfg.GRPC.Port))
	sl := server.NewSecurityLayer(cfg.GRPC.EnableHTTPS, cfg.GRPC.CertFileName, cfg.GRPC.PrivateKeyFileName)

	var wg sync.WaitGroup
	wg.Add(1)
	go func(s model.Server) {
		defer wg.Done()
		logger.Info("Starting server on", "address", s.Address(), "tls", cfg.GRPC.EnableHTTPS)
		if err := s.Start(sl); err != nil {
			logger.Error("failed to start server", "error", err)
			stop()
		}
	}(grpcSrv)

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := grpcSrv.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", grpcSrv.Address())
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}

func newStores(ctx context.Context, cfg *config.Config) (stores, error) {
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
		if err != nil {
			return stores{}, err
		}
		return stores{
			users:  postgres.NewUserRepository(db),
			tokens: postgres.NewRefreshTokenRepository(db),
			close:  func() { _ = db.Close() },
		}, nil

	case config.DriverMongo:
		client, err := mongo.Connect(ctx, cfg.Mongo.URI)
		if err != nil {
			return stores{}, err
		}
		store := mongo.NewStore(client.Database(cfg.Mongo.Database).Collection(cfg.Mongo.Collection))
		if err := store.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return stores{}, err
		}
		return stores{
			users:  store,
			tokens: store,
			close:  func() { _ = client.Disconnect(context.Background()) },
		}, nil

	default:
		store := memory.NewStore()
		return stores{users: store, tokens: store, close: func() {}}, nil
	}
}

func newLimiters(ctx context.Context, cfg *config.Config) (login, verify model.RateLimiter, closeFn func(), err error) {
	rl := cfg.RateLimit

	if rl.Backend == config.RateLimitRedis {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, nil, fmt.Errorf("failed to ping redis: %w", err)
		}
		return ratelimit.NewRedis(client, "golekaab:login", rl.LoginMax, rl.LoginWindow),
			ratelimit.NewRedis(client, "golekaab:verify", rl.VerifyMax, rl.VerifyWindow),
			func() { _ = client.Close() },
			nil
	}

	loginLimiter := ratelimit.NewMemory(rl.LoginMax, rl.LoginWindow)
	verifyLimiter := ratelimit.NewMemory(rl.VerifyMax, rl.VerifyWindow)
	go loginLimiter.Run(ctx, rl.LoginWindow)
	go verifyLimiter.Run(ctx, rl.VerifyWindow)

	return loginLimiter, verifyLimiter, func() {}, nil
}

func newNotifier(cfg *config.Config, logger *logger.Logger) (model.Notifier, error) {
	if cfg.SMTP.Host == "" {
		logger.Warn("SMTP_HOST is empty, magic links are written to the log")
		return notifier.NewLog(cfg.Auth.MagicLinkURL, logger), nil
	}

	return notifier.NewSMTP(notifier.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
		LinkURL:  cfg.Auth.MagicLinkURL,
		LinkTTL:  cfg.Auth.MagicLinkTTL,
	}, logger)
}
