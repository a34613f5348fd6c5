// Package main provides the entrypoint for the CampusBell background worker.
// It runs the cron-scheduled feed refresh and notification reconciliation,
// and optionally consumes Pub/Sub job messages for out-of-band runs.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"

	"github.com/campusbell/campusbell/internal/config"
	"github.com/campusbell/campusbell/internal/database"
	"github.com/campusbell/campusbell/internal/events"
	"github.com/campusbell/campusbell/internal/events/feed"
	"github.com/campusbell/campusbell/internal/notify"
	"github.com/campusbell/campusbell/internal/schedule"
	"github.com/campusbell/campusbell/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "campusbell-worker"

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting CampusBell worker")

	configPath := os.Getenv("CAMPUSBELL_CONFIG")
	if configPath == "" {
		configPath = "campusbell.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", configPath).Msg("failed to load configuration")
	}

	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Fatal().Err(err).Str("timezone", cfg.Timezone).Msg("invalid timezone")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	definitions, version, err := schedule.LoadFile(cfg.SchedulesPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.SchedulesPath).Msg("failed to load bell schedules")
	}
	log.Info().Str("schedules_version", version).Msg("bell schedules loaded")

	scheduleService := schedule.NewService(schedule.ServiceConfig{
		Definitions:       definitions,
		Logger:            log,
		Clock:             func() time.Time { return time.Now().In(location) },
		RotationCycleDays: cfg.RotationCycleDays,
	})

	var (
		eventsRepo events.Repository
		notifyRepo notify.Repository
	)
	switch cfg.Storage {
	case config.StoragePostgres:
		dbConfig := database.ConfigFromEnv()
		pool, connErr := database.Connect(ctx, dbConfig)
		if connErr != nil {
			log.Fatal().Err(connErr).Msg("failed to connect to database")
		}
		defer pool.Close()
		eventsRepo = events.NewPostgresRepository(pool)
		notifyRepo = notify.NewPostgresRepository(pool)
	case config.StorageRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer client.Close()
		if pingErr := client.Ping(ctx).Err(); pingErr != nil {
			log.Fatal().Err(pingErr).Str("addr", cfg.RedisAddr).Msg("failed to connect to redis")
		}
		eventsRepo = events.NewRedisRepository(client)
		notifyRepo = notify.NewInMemoryRepository()
	default:
		eventsRepo = events.NewInMemoryRepository()
		notifyRepo = notify.NewInMemoryRepository()
	}

	eventsService := events.NewService(events.ServiceConfig{
		Provider: feed.NewClient(feed.ClientConfig{
			URL:    cfg.Feed.URL,
			Logger: log,
		}),
		Repository:   eventsRepo,
		StaticEvents: nil,
		Logger:       log,
	})
	eventsService.Prime(ctx)

	var scheduler notify.Scheduler = notify.LogScheduler{Logger: log}
	if cfg.Notify.PubSubProject != "" {
		pubsubScheduler, psErr := notify.NewPubSubScheduler(ctx, notify.PubSubSchedulerConfig{
			ProjectID: cfg.Notify.PubSubProject,
			TopicID:   cfg.Notify.PubSubTopic,
			Logger:    log,
		})
		if psErr != nil {
			log.Fatal().Err(psErr).Msg("failed to initialize pub/sub scheduler")
		}
		defer pubsubScheduler.Close()
		scheduler = pubsubScheduler
	}

	notifyService := notify.NewService(notify.ServiceConfig{
		Repository: notifyRepo,
		Scheduler:  scheduler,
		Timelines:  scheduleService,
		Logger:     log,
	})

	jobConfig := worker.DefaultJobConfig()
	jobConfig.RefreshCron = cfg.Feed.RefreshCron
	jobConfig.ReconcileCron = cfg.Notify.ReconcileCron
	refreshJob := worker.NewRefreshJob(worker.RefreshJobConfig{
		Config:        jobConfig,
		Logger:        log,
		EventsService: eventsService,
		NotifyService: notifyService,
	})

	cronRunner, err := worker.NewCronRunner(refreshJob, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize cron runner")
	}
	cronRunner.Start()
	defer cronRunner.Stop()

	// Out-of-band job messages, when a subscription is configured.
	subscription := os.Getenv("PUBSUB_SUBSCRIPTION")
	if cfg.Notify.PubSubProject != "" && subscription != "" {
		handler, psErr := worker.NewPubSubHandler(ctx, worker.PubSubConfig{
			ProjectID:        cfg.Notify.PubSubProject,
			SubscriptionName: subscription,
			RefreshJob:       refreshJob,
			Logger:           log,
		})
		if psErr != nil {
			log.Fatal().Err(psErr).Msg("failed to initialize pubsub handler")
		}
		defer handler.Close()

		go func() {
			if recvErr := handler.Start(ctx); recvErr != nil {
				log.Error().Err(recvErr).Msg("pubsub handler stopped")
			}
		}()
	}

	// Health endpoint for the container runtime
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"healthy","version":"%s"}`, Version)
	})

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health check server listening")
		if srvErr := server.ListenAndServe(); srvErr != nil && srvErr != http.ErrServerClosed {
			log.Error().Err(srvErr).Msg("health server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down worker")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("worker stopped")
}
