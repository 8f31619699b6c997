package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mpss/storefront/internal/api"
	"github.com/mpss/storefront/internal/auth"
	"github.com/mpss/storefront/internal/cache"
	"github.com/mpss/storefront/internal/cart"
	"github.com/mpss/storefront/internal/config"
	"github.com/mpss/storefront/internal/database"
	applog "github.com/mpss/storefront/internal/logger"
	"github.com/mpss/storefront/internal/photos"
	"go.uber.org/zap"
)

const serviceName = "storefront"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Load config: %v", err)
	}

	logger, err := applog.New(cfg.Log)
	if err != nil {
		log.Fatalf("Build logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.NewConnection(context.Background(), &cfg.Database)
	if err != nil {
		logger.Fatal("Connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Connected to database successfully")

	checks := map[string]api.HealthCheck{"postgres": db.PingContext}

	var store cache.Cache
	if cfg.Redis.Enabled {
		client, err := cache.NewRedisClient(context.Background(), cfg.Redis.URL)
		if err != nil {
			logger.Fatal("Connect to redis", zap.Error(err))
		}
		defer client.Close()

		store = cache.NewRedisCache(client, serviceName)
		checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		logger.Info("Connected to redis successfully")
	} else {
		store = cache.NewMemoryCache(serviceName)
		logger.Warn("Redis disabled, carts and resized photos are kept in process memory")
	}

	router := api.NewRouter(api.Deps{
		DB:                db,
		Carts:             cart.NewStore(store, cfg.Redis.CartTTL, logger),
		Photos:            photos.NewService(photos.NewLibrary(cfg.Photos.Dir, cfg.Photos.BaseURL), store, cfg.Redis.ImageCacheTTL, logger),
		Verifier:          auth.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer),
		Logger:            logger,
		PhotoQuality:      cfg.Photos.DefaultQuality,
		StrictTransitions: cfg.Orders.StrictTransitions,
		Checks:            checks,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
		return
	}

	logger.Info("Server exited properly")
}
