// Package schedule implements bell-schedule resolution: matching a calendar
// date to a schedule definition, expanding a mode's period list into an
// absolute timeline, and deriving the current/next period from wall-clock time.
package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Pattern tokens understood by date matching, alongside literal M/D/YYYY
// dates and inclusive M/D/YYYY-M/D/YYYY ranges.
const (
	PatternWeekdays = "weekdays"
	PatternWeekends = "weekends"
)

// Definition is a named day-type with date-matching rules and one or more
// timing modes.
//
// Matching priority is a data contract: among definitions whose date patterns
// match, special definitions beat regular ones, and within each bucket the
// first definition in declaration order wins. Authors editing the schedule
// list must preserve this ordering.
type Definition struct {
	// Name is the human-readable day-type name, e.g. "Regular Day".
	Name string `yaml:"name" json:"name"`

	// Special definitions take priority over regular ones when both match.
	Special bool `yaml:"special" json:"special"`

	// Dates holds the date-match patterns: a literal M/D/YYYY date, the
	// tokens "weekdays" or "weekends", or an inclusive range of two literal
	// dates joined by '-'.
	Dates []string `yaml:"dates" json:"dates"`

	// Modes are the timing variants for this day-type. The first mode is
	// the default. A definition with no modes is unusable and resolves to
	// "no school".
	Modes []Mode `yaml:"modes" json:"modes"`
}

// Mode is a named timing variant of a schedule definition.
//
// Start[i] and End[i] bound Periods[i]. Periods must be authored in
// chronological, non-overlapping order; ValidateDefinitions enforces this at
// load time and the resolver assumes it.
type Mode struct {
	Name    string   `yaml:"name" json:"name"`
	Periods []Label  `yaml:"periods" json:"periods"`
	Start   []string `yaml:"start" json:"start"`
	End     []string `yaml:"end" json:"end"`
}

// Label is a period label. Legacy schedule data encodes combined-period slots
// as a list whose first element is the display label; decoding collapses that
// shape to the first element.
type Label string

// UnmarshalYAML accepts either a scalar label or a legacy list-shaped slot.
func (l *Label) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.SequenceNode {
		if len(value.Content) == 0 {
			return fmt.Errorf("line %d: empty period label list", value.Line)
		}
		value = value.Content[0]
	}

	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("decoding period label: %w", err)
	}
	*l = Label(s)
	return nil
}

// ResolvedPeriod is one entry of a date-anchored timeline.
type ResolvedPeriod struct {
	Period    string    `json:"period"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	Index     int       `json:"index"`
}

// Summary describes the schedule resolved for a date, including the active
// mode and every mode name available for manual override.
type Summary struct {
	Name     string   `json:"name"`
	Special  bool     `json:"special"`
	Mode     string   `json:"mode"`
	AllModes []string `json:"allModes"`

	activeMode *Mode
}

// ActiveMode returns the mode the summary was resolved with.
func (s *Summary) ActiveMode() *Mode {
	return s.activeMode
}

// PeriodInfo is the per-query resolution result. It is derived on every call
// and never cached.
type PeriodInfo struct {
	IsSchoolDay   bool             `json:"isSchoolDay"`
	CurrentPeriod *string          `json:"currentPeriod"`
	NextPeriod    *string          `json:"nextPeriod"`
	TimeRemaining *int64           `json:"timeRemaining"`
	TimeUntilNext *int64           `json:"timeUntilNext"`
	Schedule      *Summary         `json:"schedule"`
	AllPeriods    []ResolvedPeriod `json:"allPeriods,omitempty"`
	RotationDay   int              `json:"rotationDay,omitempty"`
}

// DateKeyLayout documents the key format used throughout the service for
// calendar dates: M/D/YYYY without zero padding.
const DateKeyLayout = "M/D/YYYY"

// DateKey formats t as an M/D/YYYY key in t's location.
func DateKey(t time.Time) string {
	return fmt.Sprintf("%d/%d/%d", int(t.Month()), t.Day(), t.Year())
}

// ParseDate parses a literal M/D/YYYY date into midnight of that day in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("invalid date %q: want M/D/YYYY", s)
	}

	month, err := strconv.Atoi(parts[0])
	if err != nil || month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("invalid month in date %q", s)
	}
	day, err := strconv.Atoi(parts[1])
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("invalid day in date %q", s)
	}
	year, err := strconv.Atoi(parts[2])
	if err != nil || year < 1 {
		return time.Time{}, fmt.Errorf("invalid year in date %q", s)
	}

	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc), nil
}

// ParseClock parses an HH:MM 24-hour time-of-day string.
func ParseClock(s string) (hour, minute int, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time %q: want HH:MM", s)
	}

	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in time %q", s)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in time %q", s)
	}

	return hour, minute, nil
}
