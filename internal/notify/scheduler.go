package notify

import (
	"context"

	"github.com/rs/zerolog"
)

// Scheduler is the external delivery collaborator. Implementations hand
// triggers to whatever actually fires device notifications; this service only
// decides what should fire and when.
type Scheduler interface {
	// CancelAll discards every previously scheduled trigger.
	CancelAll(ctx context.Context) error

	// Schedule registers a single future-dated trigger.
	Schedule(ctx context.Context, trigger Trigger) error
}

// LogScheduler logs triggers instead of delivering them. Used when no
// delivery backend is configured, typically in local development.
type LogScheduler struct {
	Logger zerolog.Logger
}

// CancelAll implements Scheduler.
func (s LogScheduler) CancelAll(_ context.Context) error {
	s.Logger.Debug().Msg("cancel all notification triggers (log-only)")
	return nil
}

// Schedule implements Scheduler.
func (s LogScheduler) Schedule(_ context.Context, trigger Trigger) error {
	s.Logger.Debug().
		Str("trigger", trigger.ID).
		Time("at", trigger.At).
		Str("title", trigger.Title).
		Msg("schedule notification trigger (log-only)")
	return nil
}
