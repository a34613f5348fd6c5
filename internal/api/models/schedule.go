package models

// ResolvedPeriod is one period bound to concrete times on a date.
type ResolvedPeriod struct {
	Period string `json:"period"`

	// StartTime and EndTime are Unix milliseconds.
	StartTime int64 `json:"startTime"`
	EndTime   int64 `json:"endTime"`

	Index int `json:"index"`
}

// ScheduleSummary describes which schedule definition and mode applied.
type ScheduleSummary struct {
	Name     string   `json:"name"`
	Special  bool     `json:"special"`
	Mode     string   `json:"mode,omitempty"`
	AllModes []string `json:"allModes,omitempty"`
}

// PeriodInfo is the resolved class-period state for a moment in time.
type PeriodInfo struct {
	IsSchoolDay bool `json:"isSchoolDay"`

	// CurrentPeriod and NextPeriod are period labels, absent outside
	// school hours or when no later period remains.
	CurrentPeriod *string `json:"currentPeriod,omitempty"`
	NextPeriod    *string `json:"nextPeriod,omitempty"`

	// TimeRemaining and TimeUntilNext are whole seconds.
	TimeRemaining *int64 `json:"timeRemaining,omitempty"`
	TimeUntilNext *int64 `json:"timeUntilNext,omitempty"`

	Schedule   *ScheduleSummary `json:"schedule,omitempty"`
	AllPeriods []ResolvedPeriod `json:"allPeriods"`

	RotationDay int `json:"rotationDay"`
}

// DaySchedule is the schedule resolution for one date without the live
// period state.
type DaySchedule struct {
	Date        string           `json:"date"`
	IsSchoolDay bool             `json:"isSchoolDay"`
	Schedule    *ScheduleSummary `json:"schedule,omitempty"`
	Timeline    []ResolvedPeriod `json:"timeline"`
	RotationDay int              `json:"rotationDay"`
}
