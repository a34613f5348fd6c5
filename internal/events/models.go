// Package events ingests the district calendar feed: parsing iCalendar text
// into per-date event buckets and serving them with cache-first,
// refresh-in-background semantics.
package events

import (
	"fmt"
	"time"
)

// Event is a normalized calendar event record.
type Event struct {
	AllDay bool `json:"allDay"`

	// Start and End are absolute instants in Unix milliseconds.
	Start int64 `json:"start"`
	End   int64 `json:"end"`

	Name        string `json:"name"`
	Description string `json:"description"`
	Location    string `json:"location"`

	// Categories is a deduplicated union of every CATEGORIES value on the
	// source component. Order follows first occurrence in the feed.
	Categories []string `json:"categories"`
}

// EventMap buckets events under M/D/YYYY date keys derived from each event's
// local start date. Events sharing a key keep feed encounter order; sorting
// by start time is the caller's concern.
type EventMap map[string][]Event

// Snapshot is what the query surface serves: the event map plus whether it
// came from a successful feed refresh or from bundled static data.
type Snapshot struct {
	Data     EventMap `json:"data"`
	IsRemote bool     `json:"isRemote"`
}

// DateKey formats t as an M/D/YYYY bucket key, without zero padding.
func DateKey(t time.Time) string {
	return fmt.Sprintf("%d/%d/%d", int(t.Month()), t.Day(), t.Year())
}
