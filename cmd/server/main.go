package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"minishop/catalog/internal/config"
	productdomain "minishop/catalog/internal/domain/product"
	"minishop/catalog/internal/httpserver"
	"minishop/catalog/internal/infrastructure/memory"
	"minishop/catalog/internal/infrastructure/postgres"
	"minishop/catalog/internal/infrastructure/redis"
	"minishop/catalog/internal/infrastructure/token"
	"minishop/catalog/internal/obs"
	authusecase "minishop/catalog/internal/usecase/auth"
	productusecase "minishop/catalog/internal/usecase/product"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	logger := obs.NewLogger(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)

	rootCtx := context.Background()

	var repo productdomain.Repository
	switch cfg.StoreDriver {
	case config.StoreMemory:
		logger.Warn("using in-memory product store; data is lost on restart")
		repo = memory.NewProductRepository()
	default:
		db, err := postgres.New(rootCtx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to database", "err", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.Migrate(rootCtx); err != nil {
			logger.Error("failed to run database migrations", "err", err)
			os.Exit(1)
		}
		repo = postgres.NewProductRepository(db.Pool)
	}

	productService := productusecase.NewService(repo)

	var opts []httpserver.Option
	if cfg.AuthEnabled() {
		tokenManager := token.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiry, cfg.JWTIssuer)
		opts = append(opts, httpserver.WithAuth(authusecase.NewService(cfg.OperatorKeyHash, tokenManager)))
		logger.Info("operator authentication enabled for product writes")
	}
	if cfg.RedisURL != "" {
		client, err := redis.New(rootCtx, cfg.RedisURL)
		if err != nil {
			logger.Warn("redis unavailable; rate limiting disabled", "err", err)
		} else {
			defer client.Close()
			opts = append(opts, httpserver.WithRateLimiter(httpserver.NewRateLimiter(client, cfg.RateLimitPerMinute, logger)))
			logger.Info("rate limiting enabled", "per_minute", cfg.RateLimitPerMinute)
		}
	}

	server := httpserver.NewServer(cfg, logger, productService, opts...)
	logger.Info("HTTP server listening", "addr", server.Addr(), "store", cfg.StoreDriver)

	go func() {
		if err := server.Start(); err != nil {
			if errors.Is(err, http.ErrServerClosed) {
				logger.Info("HTTP server closed")
				return
			}
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", "err", err)
	} else {
		logger.Info("graceful shutdown completed")
	}
}
