package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"storefront-api/internal/cache"
	"storefront-api/internal/client"
	"storefront-api/internal/config"
	"storefront-api/internal/logger"
	"storefront-api/internal/repository"
	"storefront-api/internal/server"
	"storefront-api/internal/token"
	"syscall"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Printf("Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	if cfg.Environment.IsProduction() && cfg.Auth.JWTSecret == "change-me" {
		log.Fatal("AUTH_JWT_SECRET must be set in production")
	}

	db, err := client.InitDatabase(cfg.Database)
	if err != nil {
		log.Fatal("init database", zap.Error(err))
	}

	startCtx, startCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer startCancel()

	if cfg.Database.Seed {
		if err := repository.NewProductRepository(db).Seed(startCtx); err != nil {
			log.Fatal("seed catalog", zap.Error(err))
		}
	}

	rdb, err := client.InitRedisClient(startCtx, cfg.Redis)
	if err != nil {
		log.Fatal("init redis", zap.Error(err))
	}
	if rdb == nil {
		log.Info("REDIS_ADDR not set, product cache disabled")
	}
	productCache := cache.NewProductCache(rdb, cfg.Redis.ProductTTL, log)

	tokens := token.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	services := server.NewServices(db, productCache, tokens, log)

	serverAddr := cfg.HTTP.Address()

	// Init HTTP server
	srv := server.NewServer(cfg, log, tokens, services)

	log.Info("starting HTTP server", zap.String("address", serverAddr))
	go func() {
		if err := srv.Start(serverAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	log.Info("signal received, starting graceful shutdown")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
