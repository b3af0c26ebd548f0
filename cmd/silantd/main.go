package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"silant-backend/config"
	"silant-backend/internal/access"
	"silant-backend/internal/api"
	"silant-backend/internal/auth"
	"silant-backend/internal/db"
	"silant-backend/internal/events"
	"silant-backend/internal/logging"
	"silant-backend/internal/metrics"
	"silant-backend/internal/mw"
	"silant-backend/internal/notification"
	"silant-backend/internal/store"
)

func main() {
	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration from %s: %v\n", configPath, err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	logger.Info("configuration loaded", zap.String("path", configPath))

	// Initialize database
	gormDB, err := db.Init(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}

	// Create a context that can be cancelled
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB, logger)
	authSvc := auth.NewService(cfg.Auth, appStore, logger)
	admin := cfg.Auth.BootstrapAdmin
	if err := authSvc.EnsureAdmin(ctx, admin.Username, admin.Password); err != nil {
		logger.Fatal("failed to create bootstrap administrator", zap.Error(err))
	}

	opts := api.Options{
		Store:        appStore,
		Auth:         authSvc,
		Resolver:     access.NewResolver(gormDB, logger),
		Events:       events.Noop{},
		Metrics:      metrics.New(),
		Cache:        cache.New(cfg.Server.CacheTTL(), 2*cfg.Server.CacheTTL()),
		CacheTTL:     cfg.Server.CacheTTL(),
		Pagination:   cfg.Pagination,
		AllowSignups: cfg.Server.AllowSignups,
		Logger:       logger,
	}

	// Push alerts are optional; without VAPID keys claims are saved silently.
	if cfg.Push.Enabled() {
		webpushOptions := &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
		pool := notification.NewWorkerPool(cfg.WorkerPool.Size, gormDB, webpushOptions, logger)
		pool.Start(ctx)
		opts.WebPush = webpushOptions
		opts.Alerts = pool
	} else {
		logger.Warn("VAPID keys are not configured, push notifications disabled")
	}

	if cfg.Events.Enabled {
		producer, err := events.NewProducer(cfg.Events.Brokers, cfg.Events.Topic, logger)
		if err != nil {
			logger.Fatal("failed to create Kafka producer", zap.Error(err))
		}
		defer producer.Close()
		opts.Events = producer
	}

	limiter := mw.NewIPRateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst)
	go limiter.Sweep(ctx, time.Minute, 10*time.Minute)
	opts.RateLimiter = limiter

	router := api.NewRouter(opts)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start the server in a goroutine
	go func() {
		logger.Info("HTTP server starting", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server ListenAndServe", zap.Error(err))
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// Block until a signal is received.
	<-stop
	logger.Info("shutdown signal received, stopping services")

	if err := drain(server, cancel, 5*time.Second); err != nil {
		logger.Error("HTTP server Shutdown", zap.Error(err))
		return
	}

	logger.Info("server gracefully stopped")
}

// drain shuts the server down within timeout, then stops the background
// workers. Alert workers outlive in-flight requests.
func drain(server *http.Server, stopWorkers context.CancelFunc, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	err := server.Shutdown(ctx)
	stopWorkers()
	return err
}
