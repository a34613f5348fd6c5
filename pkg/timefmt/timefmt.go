// Package timefmt provides display formatting for countdowns and clock times
// as they appear in the companion apps.
package timefmt

import (
	"fmt"
	"time"
)

// CountdownPlaceholder is shown when no countdown applies.
const CountdownPlaceholder = "--:--"

// FormatCountdown renders a remaining duration in seconds as mm:ss. Negative
// durations and nil render as the placeholder. Minutes overflow past 59
// rather than rolling into an hours part, so an hour and a half is "90:00".
func FormatCountdown(seconds *int64) string {
	if seconds == nil || *seconds < 0 {
		return CountdownPlaceholder
	}

	minutes := *seconds / 60
	secs := *seconds % 60
	return fmt.Sprintf("%02d:%02d", minutes, secs)
}

// FormatDisplayTime renders a time in the 12-hour clock form used throughout
// the apps, e.g. "8:05 AM".
func FormatDisplayTime(t time.Time) string {
	return t.Format("3:04 PM")
}
