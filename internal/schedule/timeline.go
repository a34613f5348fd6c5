package schedule

import "time"

// BuildTimeline expands a mode's period list into an ordered timeline of
// absolute intervals anchored to date's year/month/day in date's location.
//
// The function is pure and performs no validation: it assumes the mode passed
// ValidateDefinitions, so period, start and end lists agree in length, every
// time string parses, and intervals are chronological and non-overlapping.
func BuildTimeline(mode *Mode, date time.Time) []ResolvedPeriod {
	if mode == nil {
		return nil
	}

	timeline := make([]ResolvedPeriod, 0, len(mode.Periods))
	for i := range mode.Periods {
		timeline = append(timeline, ResolvedPeriod{
			Period:    string(mode.Periods[i]),
			StartTime: atClock(date, mode.Start[i]),
			EndTime:   atClock(date, mode.End[i]),
			Index:     i,
		})
	}
	return timeline
}

// atClock binds an HH:MM string to date's calendar day. Unparseable values
// resolve to midnight; load-time validation makes that unreachable for
// definitions that enter the service.
func atClock(date time.Time, clock string) time.Time {
	hour, minute, err := ParseClock(clock)
	if err != nil {
		hour, minute = 0, 0
	}
	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, date.Location())
}
