// Package worker provides background job processing for CampusBell: the
// periodic calendar feed refresh and the notification reconciliation pass.
package worker

import (
	"time"
)

// JobConfig holds configuration for the background job processor.
type JobConfig struct {
	// RefreshFeed enables the calendar feed refresh step.
	// Default: true
	RefreshFeed bool

	// ReconcileNotifications enables the notification reconciliation step.
	// Default: true
	ReconcileNotifications bool

	// Timeout is the timeout for each job step.
	// Default: 30 seconds
	Timeout time.Duration

	// RefreshCron is the cron expression for the scheduled feed refresh.
	// Default: hourly
	RefreshCron string

	// ReconcileCron is the cron expression for the scheduled notification
	// reconciliation. Default: daily at 05:00, before first period.
	ReconcileCron string
}

// DefaultJobConfig returns the default job configuration.
func DefaultJobConfig() JobConfig {
	return JobConfig{
		RefreshFeed:            true,
		ReconcileNotifications: true,
		Timeout:                30 * time.Second,
		RefreshCron:            "0 * * * *",
		ReconcileCron:          "0 5 * * *",
	}
}

// withDefaults backfills zero values with defaults.
func (c JobConfig) withDefaults() JobConfig {
	def := DefaultJobConfig()
	if c.Timeout == 0 {
		c.Timeout = def.Timeout
	}
	if c.RefreshCron == "" {
		c.RefreshCron = def.RefreshCron
	}
	if c.ReconcileCron == "" {
		c.ReconcileCron = def.ReconcileCron
	}
	return c
}
