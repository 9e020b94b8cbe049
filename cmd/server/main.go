package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"mercadito-backend/pkg/auth"
	"mercadito-backend/pkg/catalog"
	"mercadito-backend/pkg/config"
	"mercadito-backend/pkg/httpapi"
	"mercadito-backend/pkg/mailer"
	"mercadito-backend/pkg/orders"
	"mercadito-backend/pkg/repository"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	logger, err := newLogger(cfg.Log.Level)
	if err != nil {
		panic(fmt.Sprintf("Failed to create logger: %v", err))
	}
	defer logger.Sync()

	logger.Info("Starting mercadito backend", zap.String("addr", cfg.Server.Addr()))

	mongo, err := repository.NewMongo(&cfg.MongoDB)
	if err != nil {
		logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := mongo.Ping(ctx); err != nil {
		cancel()
		logger.Fatal("MongoDB unreachable", zap.Error(err))
	}
	if err := mongo.EnsureIndexes(ctx); err != nil {
		cancel()
		logger.Fatal("Failed to ensure indexes", zap.Error(err))
	}
	cancel()

	// The summary cache is optional: without a Redis address every
	// aggregation is computed from the store.
	var summaryCache orders.Cache
	var redisCache *repository.RedisCache
	if cfg.Redis.Addr != "" {
		redisCache = repository.NewRedisCache(&cfg.Redis)
		pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisCache.Ping(pingCtx); err != nil {
			logger.Warn("Redis unreachable, continuing without summary cache", zap.Error(err))
			redisCache.Close()
			redisCache = nil
		} else {
			summaryCache = redisCache
		}
		pingCancel()
	}

	mail := mailer.New(&cfg.Mail, logger)
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authSvc := auth.NewService(mongo.Users(), mail, tokens, cfg.Auth.ResetTTL, logger)
	catalogSvc := catalog.NewService(mongo.Products(), logger)
	orderSvc := orders.NewService(
		mongo.Orders(),
		mongo.Products(),
		mongo.Users(),
		summaryCache,
		logger,
		cfg.Orders.EnforceTransitions,
		cfg.Orders.SummaryCacheTTL,
	)

	server := httpapi.NewServer(authSvc, catalogSvc, orderSvc, tokens, logger)
	httpServer := &http.Server{
		Addr:    cfg.Server.Addr(),
		Handler: server.Router(&cfg.Server),
	}

	srvErr := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			srvErr <- err
		}
	}()

	logger.Info("Server started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		logger.Info("Received shutdown signal")
	case err := <-srvErr:
		logger.Fatal("Server error", zap.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", zap.Error(err))
	}
	if redisCache != nil {
		redisCache.Close()
	}
	if err := mongo.Close(shutdownCtx); err != nil {
		logger.Error("MongoDB disconnect error", zap.Error(err))
	}

	logger.Info("Server stopped")
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if level != "" {
		parsed, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return nil, err
		}
		cfg.Level = parsed
	}
	return cfg.Build()
}
