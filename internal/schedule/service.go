package schedule

import (
	"time"

	"github.com/rs/zerolog"
)

// ServiceConfig holds configuration for the schedule service.
type ServiceConfig struct {
	// Definitions is the static, versioned schedule list. It must have
	// passed ValidateDefinitions; NewService validates again defensively
	// via Load callers, not here.
	Definitions []Definition

	// Logger for service operations.
	Logger zerolog.Logger

	// Clock returns the current wall-clock time. Defaults to time.Now;
	// tests substitute a fixed clock.
	Clock func() time.Time

	// RotationCycleDays is the length of the rotation-day cycle
	// (default: 26).
	RotationCycleDays int
}

// Service answers period-resolution queries over an immutable definition
// list. Every query recomputes from scratch; there is no cached state, so the
// service is safe for concurrent use without locking.
type Service struct {
	defs          []Definition
	logger        zerolog.Logger
	clock         func() time.Time
	rotationCycle int
}

// NewService creates a new schedule service.
func NewService(cfg ServiceConfig) *Service {
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	rotationCycle := cfg.RotationCycleDays
	if rotationCycle == 0 {
		rotationCycle = 26
	}

	return &Service{
		defs:          cfg.Definitions,
		logger:        cfg.Logger,
		clock:         clock,
		rotationCycle: rotationCycle,
	}
}

// Now returns the service clock's current time.
func (s *Service) Now() time.Time {
	return s.clock()
}

// ScheduleForDate resolves the schedule summary for a date, or nil for no
// school.
func (s *Service) ScheduleForDate(date time.Time) *Summary {
	return ResolveScheduleForDate(s.defs, date)
}

// TimelineForDate returns the default-mode timeline for a date, or nil for no
// school.
func (s *Service) TimelineForDate(date time.Time) []ResolvedPeriod {
	summary := ResolveScheduleForDate(s.defs, date)
	if summary == nil {
		return nil
	}
	return BuildTimeline(summary.ActiveMode(), date)
}

// CurrentPeriodInfo resolves the full period state for the given instant.
// The date component selects the schedule; the time component drives the
// current/next resolution. A non-empty modeOverride must name one of the
// resolved schedule's modes or ErrUnknownMode is returned.
//
// A nil-school day yields IsSchoolDay=false with every other field empty,
// never an error.
func (s *Service) CurrentPeriodInfo(at time.Time, modeOverride string) (*PeriodInfo, error) {
	summary, err := ResolveScheduleWithMode(s.defs, at, modeOverride)
	if err != nil {
		return nil, err
	}
	if summary == nil {
		return &PeriodInfo{IsSchoolDay: false}, nil
	}

	timeline := BuildTimeline(summary.ActiveMode(), at)
	res := ResolveCurrentPeriod(at, timeline)

	info := &PeriodInfo{
		IsSchoolDay:   true,
		TimeRemaining: res.TimeRemaining,
		TimeUntilNext: res.TimeUntilNext,
		Schedule:      summary,
		AllPeriods:    timeline,
		RotationDay:   s.RotationDay(at),
	}
	if res.Current != nil {
		info.CurrentPeriod = &res.Current.Period
	}
	if res.Next != nil {
		info.NextPeriod = &res.Next.Period
	}

	return info, nil
}

// RotationDay returns the 1-based rotation day number for a date, cycling
// through the configured cycle length over the day of the year. The calendar
// day drives the cycle; a DST transition must not shift the rotation.
func (s *Service) RotationDay(date time.Time) int {
	dayOfYear := date.YearDay() - 1
	return dayOfYear%s.rotationCycle + 1
}
