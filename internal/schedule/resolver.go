package schedule

import "time"

// Resolution is the outcome of comparing a timeline against an instant.
type Resolution struct {
	// Current is the period containing now, or nil (before school, in a
	// passing gap, or after the last period).
	Current *ResolvedPeriod

	// Next is the first period starting after now, or nil once the day is
	// over. When Current is set, Next is the following period if any.
	Next *ResolvedPeriod

	// TimeRemaining is whole seconds until Current ends; nil when Current
	// is nil.
	TimeRemaining *int64

	// TimeUntilNext is whole seconds until Next starts; set only when
	// waiting for a period (Current nil, Next non-nil).
	TimeUntilNext *int64
}

// ResolveCurrentPeriod scans the ordered timeline and classifies now as
// before the first period, within a period, in a gap, or past the last
// period. Interval membership is half-open: a period ending exactly at now is
// already over. Seconds are millisecond differences truncated toward zero.
//
// The scan is linear and assumes the timeline is chronological and
// non-overlapping, as produced by BuildTimeline from validated definitions.
func ResolveCurrentPeriod(now time.Time, timeline []ResolvedPeriod) Resolution {
	var res Resolution

	for i := range timeline {
		p := &timeline[i]

		if !now.Before(p.StartTime) && now.Before(p.EndTime) {
			res.Current = p
			if i+1 < len(timeline) {
				res.Next = &timeline[i+1]
			}
			break
		}

		if now.Before(p.StartTime) {
			res.Next = p
			break
		}
	}

	if res.Current != nil {
		remaining := res.Current.EndTime.Sub(now).Milliseconds() / 1000
		res.TimeRemaining = &remaining
	} else if res.Next != nil {
		until := res.Next.StartTime.Sub(now).Milliseconds() / 1000
		res.TimeUntilNext = &until
	}

	return res
}
