package events

import (
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
)

// Normalize parses raw iCalendar text into an EventMap.
//
// Failure is atomic: if the payload is not parseable calendar data, or any
// event component lacks a usable start instant, an error is returned and no
// partial map escapes. Recurrence rules are not expanded; only literal VEVENT
// occurrences are emitted.
func Normalize(raw string) (EventMap, error) {
	cal, err := ical.ParseCalendar(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parsing calendar feed: %w", err)
	}

	out := make(EventMap)

	for _, ve := range cal.Events() {
		event, start, err := normalizeEvent(ve)
		if err != nil {
			return nil, fmt.Errorf("normalizing event: %w", err)
		}

		key := DateKey(start.In(time.Local))
		out[key] = append(out[key], event)
	}

	return out, nil
}

func normalizeEvent(ve *ical.VEvent) (Event, time.Time, error) {
	allDay := isAllDay(ve)

	var (
		start, end time.Time
		err        error
	)
	if allDay {
		start, err = ve.GetAllDayStartAt()
	} else {
		start, err = ve.GetStartAt()
	}
	if err != nil {
		return Event{}, time.Time{}, fmt.Errorf("reading DTSTART: %w", err)
	}

	if allDay {
		end, err = ve.GetAllDayEndAt()
	} else {
		end, err = ve.GetEndAt()
	}
	if err != nil {
		// DTEND is optional; an all-day event spans its day, anything
		// else is treated as instantaneous.
		if allDay {
			end = start.AddDate(0, 0, 1)
		} else {
			end = start
		}
	}

	event := Event{
		AllDay:      allDay,
		Start:       start.UnixMilli(),
		End:         end.UnixMilli(),
		Name:        propValue(ve, ical.ComponentPropertySummary),
		Description: strings.TrimSpace(propValue(ve, ical.ComponentPropertyDescription)),
		Location:    propValue(ve, ical.ComponentPropertyLocation),
		Categories:  categories(ve),
	}

	return event, start, nil
}

// isAllDay reports whether DTSTART carries a date-only value, either via
// VALUE=DATE or a value without a time component.
func isAllDay(ve *ical.VEvent) bool {
	prop := ve.GetProperty(ical.ComponentPropertyDtStart)
	if prop == nil {
		return false
	}

	if values, ok := prop.ICalParameters["VALUE"]; ok && len(values) > 0 && strings.EqualFold(values[0], "DATE") {
		return true
	}
	return !strings.Contains(prop.Value, "T")
}

// categories unions every CATEGORIES property occurrence on the component.
// A single occurrence may hold a comma-separated value list; duplicates
// across occurrences are dropped, first occurrence order kept.
func categories(ve *ical.VEvent) []string {
	props := ve.GetProperties(ical.ComponentPropertyCategories)
	if len(props) == 0 {
		return nil
	}

	seen := make(map[string]struct{})
	var out []string

	for _, prop := range props {
		for _, value := range strings.Split(prop.Value, ",") {
			value = strings.TrimSpace(value)
			if value == "" {
				continue
			}
			if _, ok := seen[value]; ok {
				continue
			}
			seen[value] = struct{}{}
			out = append(out, value)
		}
	}

	return out
}

func propValue(ve *ical.VEvent, name ical.ComponentProperty) string {
	if prop := ve.GetProperty(name); prop != nil {
		return prop.Value
	}
	return ""
}
