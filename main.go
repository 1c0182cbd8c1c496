// @title Incognito Auth API
// @version 1.0
// @description Signup and login for incognito chat. Issues 24h HS256 bearer tokens.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/incognito-chat/backend/internal/config"
	"github.com/incognito-chat/backend/internal/db"
	"github.com/incognito-chat/backend/internal/handler"
	"github.com/incognito-chat/backend/internal/logging"
	"github.com/incognito-chat/backend/internal/observability"
	"github.com/incognito-chat/backend/internal/secret"
	"github.com/incognito-chat/backend/internal/service"
	"github.com/incognito-chat/backend/internal/token"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "err", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.New(cfg.Log)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	gin.SetMode(cfg.Server.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mp, err := observability.InitMetrics(ctx, cfg.Telemetry, version, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := mp.Shutdown(context.Background()); err != nil {
			logger.Warn("meter provider shutdown", "err", err)
		}
	}()

	store, closeStore, err := openStore(ctx, cfg.Postgres, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	issuer, err := token.NewIssuer([]byte(cfg.Auth.JWTSecret))
	if err != nil {
		return err
	}
	codec := secret.NewCodec(cfg.Auth.BcryptCost, cfg.Auth.HashWorkers)
	authSvc := service.NewAuthService(store, codec, issuer, logger)

	router := handler.NewRouter(handler.RouterConfig{
		Auth:           authSvc,
		Tokens:         issuer,
		Store:          store,
		Logger:         logger,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		ServiceName:    cfg.Telemetry.ServiceName,
		Version:        version,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           otelhttp.NewHandler(router, "http.server"),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		logger.Info("server listening", "addr", srv.Addr, "store", cfg.Postgres.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received, draining connections")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

type userStore interface {
	service.UserStore
	handler.Pinger
}

func openStore(ctx context.Context, cfg config.PostgresConfig, logger *slog.Logger) (userStore, func(), error) {
	if cfg.Driver == config.StoreDriverMemory {
		logger.Warn("using in-memory user store, accounts are lost on restart")
		return db.NewMemory(), func() {}, nil
	}

	pool, err := db.NewPostgresPool(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Migrate(ctx, pool, logger); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return db.NewPostgres(pool, cfg.AcquireTimeout), pool.Close, nil
}
