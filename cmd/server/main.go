package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	appmarkets "github.com/ZephyrTrading/mango-v3-service/internal/application/service/markets"
	"github.com/ZephyrTrading/mango-v3-service/internal/config"
	"github.com/ZephyrTrading/mango-v3-service/internal/infrastructure/catalog"
	"github.com/ZephyrTrading/mango-v3-service/internal/infrastructure/chain"
	"github.com/ZephyrTrading/mango-v3-service/internal/infrastructure/history"
	infrahttp "github.com/ZephyrTrading/mango-v3-service/internal/interfaces/http"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}

	marketCatalog, err := catalog.Load(cfg.Catalog.GroupConfigPath)
	if err != nil {
		logger.Fatalf("failed to load market catalog: %v", err)
	}
	logger.Infof("loaded group %s with %d markets", marketCatalog.Group(), len(marketCatalog.List()))

	orderSource := chain.NewClient(cfg.Chain.BaseURL, time.Duration(cfg.Chain.TimeoutSeconds)*time.Second, logger)
	historyGateway := history.NewClient(cfg.History.BaseURL, time.Duration(cfg.History.TimeoutSeconds)*time.Second, logger)

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	}

	aggregator := appmarkets.NewService(marketCatalog, orderSource, historyGateway, logger)

	cacheTTL := time.Duration(cfg.Cache.TTLSeconds) * time.Second
	handler := infrahttp.NewHandler(aggregator, marketCatalog, orderSource, historyGateway, redisClient, cacheTTL, logger)

	server := &http.Server{
		Addr:    cfg.HTTP.Addr(),
		Handler: handler,
	}

	go func() {
		logger.Infof("HTTP server listening on %s", cfg.HTTP.Addr())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("http server error: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Infof("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("server shutdown error: %v", err)
	}
	logger.Info("server stopped")
}
