package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/campusbell/campusbell/internal/schedule"
)

// TimelineSource supplies date-anchored period timelines. *schedule.Service
// satisfies it.
type TimelineSource interface {
	TimelineForDate(date time.Time) []schedule.ResolvedPeriod
	Now() time.Time
}

// ServiceConfig holds configuration for the notification service.
type ServiceConfig struct {
	Repository Repository
	Scheduler  Scheduler
	Timelines  TimelineSource
	Logger     zerolog.Logger
}

// Service owns notification settings and the reconciliation loop.
type Service struct {
	repo      Repository
	scheduler Scheduler
	timelines TimelineSource
	logger    zerolog.Logger

	metrics ReconcileMetrics
}

// ReconcileMetrics tracks reconciliation statistics.
type ReconcileMetrics struct {
	mu sync.RWMutex

	TotalReconciles int64
	TotalScheduled  int64
	TotalFailed     int64
	LastReconcileAt time.Time
}

// NewService creates a new notification service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		repo:      cfg.Repository,
		scheduler: cfg.Scheduler,
		timelines: cfg.Timelines,
		logger:    cfg.Logger,
	}
}

// Settings returns the persisted settings, falling back to defaults when the
// store is empty or unavailable. Store failures are logged, never surfaced.
func (s *Service) Settings(ctx context.Context) Settings {
	settings, err := s.repo.Load(ctx)
	if err != nil {
		if !errors.Is(err, ErrNoSettings) {
			s.logger.Warn().Err(err).Msg("failed to load notification settings, using defaults")
		}
		return DefaultSettings()
	}
	return settings
}

// UpdateSettings persists new settings and reconciles the scheduled triggers
// against them.
func (s *Service) UpdateSettings(ctx context.Context, settings Settings) (*ReconcileResult, error) {
	if err := s.repo.Save(ctx, settings); err != nil {
		return nil, fmt.Errorf("saving notification settings: %w", err)
	}
	return s.reconcile(ctx, settings), nil
}

// ReconcileResult summarizes one reconciliation run.
type ReconcileResult struct {
	Scheduled int      `json:"scheduled"`
	Failed    int      `json:"failed"`
	Errors    []string `json:"errors,omitempty"`
}

// Reconcile recomputes the period timelines for today and tomorrow, cancels
// every previously scheduled trigger, and schedules only future ones. The run
// is idempotent and best-effort: one failed scheduling call is recorded and
// does not abort the rest.
func (s *Service) Reconcile(ctx context.Context) *ReconcileResult {
	return s.reconcile(ctx, s.Settings(ctx))
}

func (s *Service) reconcile(ctx context.Context, settings Settings) *ReconcileResult {
	result := &ReconcileResult{}

	// Cancel first so a disabled pair leaves nothing scheduled.
	if err := s.scheduler.CancelAll(ctx); err != nil {
		s.logger.Error().Err(err).Msg("failed to cancel scheduled notifications")
		result.Failed++
		result.Errors = append(result.Errors, fmt.Sprintf("cancel all: %v", err))
	}

	if !settings.Enabled() {
		s.logger.Info().Msg("notifications disabled, cleared all schedules")
		s.record(result)
		return result
	}

	now := s.timelines.Now()

	for _, day := range []time.Time{now, now.AddDate(0, 0, 1)} {
		timeline := s.timelines.TimelineForDate(day)
		if len(timeline) == 0 {
			continue
		}

		for i := range timeline {
			for _, trigger := range s.triggersForPeriod(&timeline[i], settings, now) {
				if err := s.scheduler.Schedule(ctx, trigger); err != nil {
					s.logger.Error().Err(err).Str("trigger", trigger.ID).Msg("failed to schedule notification")
					result.Failed++
					result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", trigger.ID, err))
					continue
				}
				result.Scheduled++
			}
		}
	}

	s.logger.Info().
		Int("scheduled", result.Scheduled).
		Int("failed", result.Failed).
		Msg("notification reconciliation completed")

	s.record(result)
	return result
}

// triggersForPeriod derives the future-dated triggers a single period
// contributes under the given settings.
func (s *Service) triggersForPeriod(p *schedule.ResolvedPeriod, settings Settings, now time.Time) []Trigger {
	var triggers []Trigger

	if settings.ClassStart && p.StartTime.After(now) {
		triggers = append(triggers, Trigger{
			ID:    fmt.Sprintf("start-%s-%d", schedule.DateKey(p.StartTime), p.Index),
			Title: fmt.Sprintf("Period %s Starting", p.Period),
			Body:  "Class is starting now.",
			At:    p.StartTime,
		})
	}

	if settings.PeriodEnd {
		warnAt := p.EndTime.Add(-endWarningLead)
		// Skip warnings that would land before the period even starts.
		if warnAt.After(now) && warnAt.After(p.StartTime) {
			triggers = append(triggers, Trigger{
				ID:    fmt.Sprintf("end-%s-%d", schedule.DateKey(p.EndTime), p.Index),
				Title: fmt.Sprintf("Period %s Ending Soon", p.Period),
				Body:  "Class ends in 5 minutes.",
				At:    warnAt,
			})
		}
	}

	return triggers
}

func (s *Service) record(result *ReconcileResult) {
	s.metrics.mu.Lock()
	defer s.metrics.mu.Unlock()

	s.metrics.TotalReconciles++
	s.metrics.TotalScheduled += int64(result.Scheduled)
	s.metrics.TotalFailed += int64(result.Failed)
	s.metrics.LastReconcileAt = time.Now()
}

// Metrics returns a copy of the reconciliation metrics.
func (s *Service) Metrics() ReconcileMetrics {
	s.metrics.mu.RLock()
	defer s.metrics.mu.RUnlock()

	return ReconcileMetrics{
		TotalReconciles: s.metrics.TotalReconciles,
		TotalScheduled:  s.metrics.TotalScheduled,
		TotalFailed:     s.metrics.TotalFailed,
		LastReconcileAt: s.metrics.LastReconcileAt,
	}
}
