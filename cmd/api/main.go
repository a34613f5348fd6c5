// Package main provides the entrypoint for the CampusBell API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"

	"github.com/campusbell/campusbell/internal/api"
	"github.com/campusbell/campusbell/internal/api/middleware"
	"github.com/campusbell/campusbell/internal/config"
	"github.com/campusbell/campusbell/internal/database"
	"github.com/campusbell/campusbell/internal/events"
	"github.com/campusbell/campusbell/internal/events/feed"
	"github.com/campusbell/campusbell/internal/notify"
	"github.com/campusbell/campusbell/internal/provider/resilience"
	"github.com/campusbell/campusbell/internal/schedule"
	"github.com/campusbell/campusbell/internal/telemetry"
	"github.com/campusbell/campusbell/internal/wellness"
	"github.com/campusbell/campusbell/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "campusbell-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting CampusBell API")

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

	otlpEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otlpEndpoint == "" {
		otlpEndpoint = "localhost:4317"
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// Initialize OpenTelemetry
	ctx := context.Background()
	telemetryEnabled := os.Getenv("OTEL_ENABLED") == "true"

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    env,
		OTLPEndpoint:   otlpEndpoint,
		Enabled:        telemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if telemetryEnabled {
		log.Info().
			Str("otlp_endpoint", otlpEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	// Load the bell schedule definitions. The server cannot answer anything
	// useful without them, so a bad file is fatal.
	definitions, version, err := schedule.LoadFile(cfg.SchedulesPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.SchedulesPath).Msg("failed to load bell schedules")
	}
	log.Info().
		Str("schedules_version", version).
		Int("definitions", len(definitions)).
		Msg("bell schedules loaded")

	scheduleService := schedule.NewService(schedule.ServiceConfig{
		Definitions:       definitions,
		Logger:            log,
		Clock:             func() time.Time { return time.Now().In(location) },
		RotationCycleDays: cfg.RotationCycleDays,
	})

	// Storage backends for the event cache and notification settings
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
		log.Info().
			Str("host", dbConfig.Host).
			Int("port", dbConfig.Port).
			Str("database", dbConfig.Database).
			Msg("database connected")
		eventsRepo = events.NewPostgresRepository(pool)
		notifyRepo = notify.NewPostgresRepository(pool)
	case config.StorageRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer client.Close()
		if pingErr := client.Ping(ctx).Err(); pingErr != nil {
			log.Fatal().Err(pingErr).Str("addr", cfg.RedisAddr).Msg("failed to connect to redis")
		}
		log.Info().Str("addr", cfg.RedisAddr).Msg("redis connected")
		eventsRepo = events.NewRedisRepository(client)
		// Notification settings stay in memory on the redis backend.
		notifyRepo = notify.NewInMemoryRepository()
	default:
		eventsRepo = events.NewInMemoryRepository()
		notifyRepo = notify.NewInMemoryRepository()
	}

	// District calendar feed with circuit breaking and retries
	registry := resilience.NewRegistry()
	feedHTTP := resilience.NewClient(resilience.DefaultClientConfig(feed.ProviderName))
	registry.Register(feed.ProviderName, feedHTTP)

	var staticEvents events.EventMap
	if cfg.StaticEventsPath != "" {
		staticEvents, err = events.LoadStaticFile(cfg.StaticEventsPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.StaticEventsPath).Msg("failed to load bundled events")
		}
		log.Info().Int("dates", len(staticEvents)).Msg("bundled events loaded")
	}

	feedMetrics, err := events.NewFeedMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize feed metrics")
	}

	eventsService := events.NewService(events.ServiceConfig{
		Provider: feed.NewClient(feed.ClientConfig{
			URL:        cfg.Feed.URL,
			HTTPClient: feedHTTP,
			Logger:     log,
		}),
		Repository:   eventsRepo,
		StaticEvents: staticEvents,
		Logger:       log,
		Metrics:      feedMetrics,
	})
	eventsService.Prime(ctx)

	// Notification scheduling; falls back to log-only delivery when no
	// Pub/Sub project is configured.
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
		log.Info().
			Str("project", cfg.Notify.PubSubProject).
			Str("topic", cfg.Notify.PubSubTopic).
			Msg("pub/sub scheduler initialized")
	}

	notifyService := notify.NewService(notify.ServiceConfig{
		Repository: notifyRepo,
		Scheduler:  scheduler,
		Timelines:  scheduleService,
		Logger:     log,
	})

	// Wellness center hours are optional
	var wellnessService *wellness.Service
	if cfg.WellnessPath != "" {
		hours, hoursErr := wellness.LoadHoursFile(cfg.WellnessPath)
		if hoursErr != nil {
			log.Fatal().Err(hoursErr).Str("path", cfg.WellnessPath).Msg("failed to load wellness hours")
		}
		wellnessService = wellness.NewService(wellness.ServiceConfig{
			Hours:  hours,
			Logger: log,
		})
		log.Info().Msg("wellness hours loaded")
	}

	// Background feed refresh and notification reconciliation
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

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:         Version,
		BuildTime:       BuildTime,
		Logger:          log,
		ServiceName:     serviceName,
		Metrics:         metrics,
		Location:        location,
		ScheduleService: scheduleService,
		EventsService:   eventsService,
		NotifyService:   notifyService,
		WellnessService: wellnessService,
		Registry:        registry,
		RefreshJob:      refreshJob,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Listen,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
