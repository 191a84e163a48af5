package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"golang.org/x/time/rate"

	"sermon_sync/internal/config"
	"sermon_sync/internal/feed"
	"sermon_sync/internal/handlers"
	"sermon_sync/internal/middleware"
	"sermon_sync/internal/publisher"
	"sermon_sync/internal/scheduler"
	"sermon_sync/internal/service"
	"sermon_sync/internal/source/youtube"
	"sermon_sync/internal/storage/postgres"
	"sermon_sync/internal/worker"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	// Setup logger
	logger := setupLogger("info")

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = setupLogger(cfg.LogLevel)

	if err := run(cfg, logger); err != nil {
		logger.Error("sermon syncer exited with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return err
	}
	logger.Info("connected to database")

	// Initialize stores
	sermonStore := postgres.NewSermonStore(db)
	syncStateStore := postgres.NewSyncStateStore(db)
	txManager := postgres.NewTransactionManager(db)

	ytSource, err := youtube.New(ctx, youtube.Config{
		APIKey:         cfg.YouTube.APIKey,
		Endpoint:       cfg.YouTube.Endpoint,
		Timeout:        cfg.YouTube.Timeout,
		MaxAttempts:    cfg.YouTube.Retry.MaxAttempts,
		InitialBackoff: cfg.YouTube.Retry.InitialBackoff,
		MaxBackoff:     cfg.YouTube.Retry.MaxBackoff,
	}, logger)
	if err != nil {
		return err
	}

	// RabbitMQ publishing is optional
	var pub service.Publisher
	if cfg.RabbitMQ.Enabled {
		rabbitMQ, err := publisher.NewRabbitMQ(publisher.Config{
			URL:        cfg.RabbitMQ.URL,
			Exchange:   cfg.RabbitMQ.Exchange,
			RoutingKey: cfg.RabbitMQ.RoutingKey,
			QueueName:  cfg.RabbitMQ.QueueName,
		}, logger)
		if err != nil {
			return err
		}
		defer rabbitMQ.Close()
		pub = rabbitMQ
	}

	syncService := service.NewSyncService(
		ytSource,
		sermonStore,
		syncStateStore,
		txManager,
		pub,
		logger,
		cfg.Sync,
	)

	h := handlers.New(syncService, sermonStore, cfg.Sync.ChannelID, cfg.Sync.PassTimeout, feed.Channel{
		Title:       cfg.Feed.Title,
		Description: cfg.Feed.Description,
		Link:        cfg.Feed.Link,
	}, logger)

	router := handlers.NewRouter(h, handlers.RouterConfig{
		AdminToken: cfg.HTTP.AdminToken,
		Limiter:    middleware.NewRateLimiter(rate.Limit(cfg.HTTP.RateLimit), cfg.HTTP.RateBurst, logger),
	}, logger)

	srv := &http.Server{
		Addr:         cfg.HTTP.ListenAddr,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", cfg.HTTP.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	stopSync, err := startRecurringSync(ctx, cfg, syncService, logger)
	if err != nil {
		return err
	}
	defer stopSync()

	logger.Info("starting sermon syncer",
		"source", ytSource.Name(),
		"configured", cfg.YouTubeConfigured(),
		"channel_id", cfg.Sync.ChannelID,
		"interval", cfg.Sync.Interval,
		"scheduler_mode", cfg.Scheduler.Mode,
	)

	select {
	case <-ctx.Done():
		logger.Info("received shutdown signal")
	case err := <-serverErr:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

// startRecurringSync starts periodic passes in the configured mode and
// returns a function that stops them.
func startRecurringSync(ctx context.Context, cfg *config.Config, syncer *service.SyncService, logger *slog.Logger) (func(), error) {
	if !cfg.Sync.Enabled {
		logger.Info("recurring sync disabled")
		return func() {}, nil
	}

	switch cfg.Scheduler.Mode {
	case config.SchedulerModeAsynq:
		runner := worker.NewRunner(worker.Config{
			Redis: asynq.RedisClientOpt{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			},
			ChannelID:  cfg.Sync.ChannelID,
			MaxResults: cfg.Sync.MaxResults,
			Interval:   cfg.Sync.Interval,
			Timeout:    cfg.Sync.PassTimeout,
		}, worker.NewTaskHandler(syncer, logger), logger)

		if err := runner.Start(); err != nil {
			return nil, err
		}
		return runner.Shutdown, nil

	default:
		sched := scheduler.NewScheduler(syncer, scheduler.Config{
			ChannelID:   cfg.Sync.ChannelID,
			MaxResults:  cfg.Sync.MaxResults,
			Interval:    cfg.Sync.Interval,
			PassTimeout: cfg.Sync.PassTimeout,
		}, logger)

		handle := sched.Start(ctx)
		return handle.Stop, nil
	}
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}
