// Package notify reconciles scheduled class notifications against the bell
// schedule: it recomputes the timelines for today and tomorrow, cancels every
// previously scheduled trigger, and re-schedules only future ones. Delivery
// is an external collaborator behind the Scheduler interface.
package notify

import "time"

// Settings is the persisted notification preference pair.
type Settings struct {
	// ClassStart enables a notification at each period's start time.
	ClassStart bool `json:"classStart"`

	// PeriodEnd enables a warning five minutes before each period ends.
	PeriodEnd bool `json:"periodEnd"`
}

// DefaultSettings returns the defaults used when no settings are persisted or
// the settings store is unavailable: everything off.
func DefaultSettings() Settings {
	return Settings{}
}

// Enabled reports whether any notification kind is on.
func (s Settings) Enabled() bool {
	return s.ClassStart || s.PeriodEnd
}

// Trigger is a single future-dated notification to schedule.
type Trigger struct {
	// ID is stable across reconciliations for the same period and kind,
	// letting delivery backends upsert rather than duplicate.
	ID string `json:"id"`

	Title string    `json:"title"`
	Body  string    `json:"body"`
	At    time.Time `json:"at"`
}

// endWarningLead is how far before a period's end the warning fires.
const endWarningLead = 5 * time.Minute
