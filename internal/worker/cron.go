package worker

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// CronRunner drives the refresh job on a fixed schedule.
type CronRunner struct {
	cron   *cron.Cron
	job    *RefreshJob
	logger zerolog.Logger
}

// NewCronRunner registers the configured cron schedules against the job.
// Invalid expressions fail construction so a bad deploy is caught at startup.
func NewCronRunner(job *RefreshJob, logger zerolog.Logger) (*CronRunner, error) {
	c := cron.New()

	cfg := job.config

	if cfg.RefreshFeed {
		// With a separate reconcile schedule the refresh entry runs only
		// its own step.
		refreshJob := job
		if cfg.ReconcileNotifications && cfg.ReconcileCron != cfg.RefreshCron {
			refreshOnly := *job
			refreshOnly.config.ReconcileNotifications = false
			refreshJob = &refreshOnly
		}
		_, err := c.AddFunc(cfg.RefreshCron, func() {
			result := refreshJob.Run(context.Background())
			logger.Debug().
				Dur("duration", result.Duration).
				Msg("scheduled feed refresh finished")
		})
		if err != nil {
			return nil, fmt.Errorf("registering refresh schedule %q: %w", cfg.RefreshCron, err)
		}
	}

	if cfg.ReconcileNotifications && cfg.ReconcileCron != cfg.RefreshCron {
		reconcileOnly := *job
		reconcileOnly.config.RefreshFeed = false
		_, err := c.AddFunc(cfg.ReconcileCron, func() {
			result := reconcileOnly.Run(context.Background())
			logger.Debug().
				Int("scheduled", result.TriggersScheduled).
				Msg("scheduled reconciliation finished")
		})
		if err != nil {
			return nil, fmt.Errorf("registering reconcile schedule %q: %w", cfg.ReconcileCron, err)
		}
	}

	return &CronRunner{cron: c, job: job, logger: logger}, nil
}

// Start begins the schedule in a background goroutine.
func (r *CronRunner) Start() {
	r.logger.Info().
		Str("refresh_cron", r.job.config.RefreshCron).
		Str("reconcile_cron", r.job.config.ReconcileCron).
		Msg("starting scheduled jobs")
	r.cron.Start()
}

// Stop halts the schedule and waits for any running job to finish.
func (r *CronRunner) Stop() {
	<-r.cron.Stop().Done()
	r.logger.Info().Msg("scheduled jobs stopped")
}
