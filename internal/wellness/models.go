// Package wellness resolves the campus wellness center's operating hours for
// a given date: date-keyed exceptions override the per-weekday regular hours,
// and the "Closed" sentinel marks full-day closures.
package wellness

// Closed is the sentinel hours value marking a full-day closure.
const Closed = "Closed"

// Hours describes the wellness center's operating hours in the exception and
// regular-hours tables. Values are display strings like "7:00 AM - 4:00 PM".
type Hours struct {
	// RegularHours maps a weekday (0 = Sunday through 6 = Saturday, as a
	// string key) to that day's hours.
	RegularHours map[string]string `yaml:"regularHours" json:"regularHours"`

	// Exceptions maps an unpadded M/D/YYYY date key to override hours for
	// that specific date.
	Exceptions map[string]string `yaml:"exceptions" json:"exceptions"`
}

// Status is the resolved state of the wellness center for one date.
type Status struct {
	// IsOpen reports whether the center is open at all that day.
	IsOpen bool `json:"isOpen"`

	// Hours holds the display hours, or "Closed".
	Hours string `json:"hours"`

	// IsSpecial marks hours that came from a date exception rather than
	// the weekly pattern.
	IsSpecial bool `json:"isSpecial"`
}
