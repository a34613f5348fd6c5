package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/campusbell/campusbell/internal/events"
	"github.com/campusbell/campusbell/internal/notify"
)

// RefreshJob runs the feed refresh and notification reconciliation steps.
type RefreshJob struct {
	config JobConfig
	logger zerolog.Logger

	// Services (optional, nil if not configured)
	eventsService *events.Service
	notifyService *notify.Service

	// Metrics
	metrics *JobMetrics
}

// JobMetrics tracks background job statistics.
type JobMetrics struct {
	mu sync.RWMutex

	// Counters
	TotalRuns       int64
	SuccessfulRuns  int64
	FailedRuns      int64
	FeedRefreshes   int64
	Reconciliations int64

	// Timings
	LastRunAt       time.Time
	LastRunDuration time.Duration
	TotalDuration   time.Duration
}

// RefreshJobConfig holds configuration for creating a RefreshJob.
type RefreshJobConfig struct {
	Config        JobConfig
	Logger        zerolog.Logger
	EventsService *events.Service
	NotifyService *notify.Service
}

// NewRefreshJob creates a new background job processor.
func NewRefreshJob(cfg RefreshJobConfig) *RefreshJob {
	return &RefreshJob{
		config:        cfg.Config.withDefaults(),
		logger:        cfg.Logger,
		eventsService: cfg.EventsService,
		notifyService: cfg.NotifyService,
		metrics:       &JobMetrics{},
	}
}

// RunResult contains the result of one job run.
type RunResult struct {
	StartTime            time.Time
	EndTime              time.Time
	Duration             time.Duration
	EventsRefreshed      int
	TriggersScheduled    int
	TriggersFailed       int
	Errors               []string
	FeedRefreshed        bool
	NotificationsUpdated bool
}

// Run executes the configured job steps. Each step is isolated: a failed feed
// refresh still lets reconciliation run against the last good event cache.
func (j *RefreshJob) Run(ctx context.Context) *RunResult {
	startTime := time.Now()
	result := &RunResult{StartTime: startTime}

	j.logger.Info().
		Bool("refresh_feed", j.config.RefreshFeed).
		Bool("reconcile", j.config.ReconcileNotifications).
		Msg("starting background job run")

	if j.config.RefreshFeed && j.eventsService != nil {
		j.runFeedRefresh(ctx, result)
	}

	if j.config.ReconcileNotifications && j.notifyService != nil {
		j.runReconcile(ctx, result)
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(startTime)

	j.updateMetrics(result)

	j.logger.Info().
		Dur("duration", result.Duration).
		Int("events_refreshed", result.EventsRefreshed).
		Int("triggers_scheduled", result.TriggersScheduled).
		Int("errors", len(result.Errors)).
		Msg("background job run completed")

	return result
}

func (j *RefreshJob) runFeedRefresh(ctx context.Context, result *RunResult) {
	stepCtx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	eventMap, err := j.eventsService.Refresh(stepCtx)
	if err != nil {
		if errors.Is(err, events.ErrEmptyFeed) {
			// An empty feed is rejected upstream, the cache is untouched.
			j.logger.Warn().Msg("feed returned no events, keeping cached data")
		} else {
			j.logger.Error().Err(err).Msg("feed refresh failed")
		}
		result.Errors = append(result.Errors, "feed refresh: "+err.Error())
		return
	}

	result.FeedRefreshed = true
	for _, dayEvents := range eventMap {
		result.EventsRefreshed += len(dayEvents)
	}
}

func (j *RefreshJob) runReconcile(ctx context.Context, result *RunResult) {
	stepCtx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	reconcile := j.notifyService.Reconcile(stepCtx)
	result.NotificationsUpdated = true
	result.TriggersScheduled = reconcile.Scheduled
	result.TriggersFailed = reconcile.Failed
	result.Errors = append(result.Errors, reconcile.Errors...)
}

func (j *RefreshJob) updateMetrics(result *RunResult) {
	j.metrics.mu.Lock()
	defer j.metrics.mu.Unlock()

	j.metrics.TotalRuns++
	if len(result.Errors) == 0 {
		j.metrics.SuccessfulRuns++
	} else {
		j.metrics.FailedRuns++
	}
	if result.FeedRefreshed {
		j.metrics.FeedRefreshes++
	}
	if result.NotificationsUpdated {
		j.metrics.Reconciliations++
	}
	j.metrics.LastRunAt = result.EndTime
	j.metrics.LastRunDuration = result.Duration
	j.metrics.TotalDuration += result.Duration
}

// GetMetrics returns a copy of the current metrics.
func (j *RefreshJob) GetMetrics() JobMetrics {
	j.metrics.mu.RLock()
	defer j.metrics.mu.RUnlock()

	return JobMetrics{
		TotalRuns:       j.metrics.TotalRuns,
		SuccessfulRuns:  j.metrics.SuccessfulRuns,
		FailedRuns:      j.metrics.FailedRuns,
		FeedRefreshes:   j.metrics.FeedRefreshes,
		Reconciliations: j.metrics.Reconciliations,
		LastRunAt:       j.metrics.LastRunAt,
		LastRunDuration: j.metrics.LastRunDuration,
		TotalDuration:   j.metrics.TotalDuration,
	}
}

// MetricsSnapshot returns a snapshot of the current metrics as a map.
func (j *RefreshJob) MetricsSnapshot() map[string]interface{} {
	m := j.GetMetrics()
	return map[string]interface{}{
		"total_runs":        m.TotalRuns,
		"successful_runs":   m.SuccessfulRuns,
		"failed_runs":       m.FailedRuns,
		"feed_refreshes":    m.FeedRefreshes,
		"reconciliations":   m.Reconciliations,
		"last_run_at":       m.LastRunAt,
		"last_run_duration": m.LastRunDuration.String(),
		"total_duration":    m.TotalDuration.String(),
	}
}
