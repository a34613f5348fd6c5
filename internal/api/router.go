// Package api provides the HTTP API for CampusBell.
package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/campusbell/campusbell/internal/api/handler"
	"github.com/campusbell/campusbell/internal/api/middleware"
	"github.com/campusbell/campusbell/internal/events"
	"github.com/campusbell/campusbell/internal/notify"
	"github.com/campusbell/campusbell/internal/provider/resilience"
	"github.com/campusbell/campusbell/internal/schedule"
	"github.com/campusbell/campusbell/internal/wellness"
	"github.com/campusbell/campusbell/internal/worker"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics

	Location *time.Location

	ScheduleService *schedule.Service
	EventsService   *events.Service
	NotifyService   *notify.Service
	WellnessService *wellness.Service
	Registry        *resilience.Registry
	RefreshJob      *worker.RefreshJob
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Set default service name if not provided
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "campusbell-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.SecurityHeaders)      // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS)           // TLS enforcement (enabled via REQUIRE_TLS=true)
	r.Use(middleware.ContentTypeJSON)      // JSON content type

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(handler.OpsHandlerConfig{
		Version:       cfg.Version,
		BuildTime:     cfg.BuildTime,
		EventsService: cfg.EventsService,
		Registry:      cfg.Registry,
		RefreshJob:    cfg.RefreshJob,
		Schedules:     cfg.ScheduleService,
	})
	scheduleHandler := handler.NewScheduleHandler(cfg.ScheduleService, cfg.Location)
	eventsHandler := handler.NewEventsHandler(cfg.EventsService)
	notifyHandler := handler.NewNotifyHandler(cfg.NotifyService)
	var wellnessHandler *handler.WellnessHandler
	if cfg.WellnessService != nil {
		wellnessHandler = handler.NewWellnessHandler(cfg.WellnessService, cfg.ScheduleService.Now, cfg.Location)
	}

	// Create rate limit middleware for different endpoint categories
	expensiveRateLimit := middleware.RateLimitByIP(middleware.ExpensiveRateLimit) // 10 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)   // 100 req/min

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.Get("/status", opsHandler.SystemStatus)
		})

		// Schedule resolution endpoints - standard rate limiting
		r.Route("/schedule", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/current", scheduleHandler.CurrentPeriod)
			r.Get("/day", scheduleHandler.DaySchedule)
		})

		// District calendar endpoints
		r.Route("/events", func(r chi.Router) {
			r.With(standardRateLimit).Get("/", eventsHandler.ListEvents)
			r.With(standardRateLimit).Get("/{month}/{day}/{year}", eventsHandler.EventsForDate)
			// Refresh reaches the upstream feed - strict rate limiting
			r.With(expensiveRateLimit).Post("/refresh", eventsHandler.RefreshEvents)
		})

		// Notification settings and reconciliation
		r.Route("/notifications", func(r chi.Router) {
			r.With(standardRateLimit).Get("/settings", notifyHandler.GetSettings)
			r.With(standardRateLimit).Put("/settings", notifyHandler.UpdateSettings)
			// Reconciliation fans out to the scheduler backend
			r.With(expensiveRateLimit).Post("/reconcile", notifyHandler.Reconcile)
		})

		// Wellness center hours
		if wellnessHandler != nil {
			r.With(standardRateLimit).Get("/wellness", wellnessHandler.Status)
		}
	})

	return r
}
