package schedule

import (
	"time"
)

// matchesDate reports whether any of the definition's date patterns match the
// given date. Range patterns compare at day granularity, inclusive on both
// ends. Patterns that fail to parse never match; ValidateDefinitions rejects
// them at load time.
func matchesDate(patterns []string, date time.Time) bool {
	day := midnight(date)
	weekday := date.Weekday()
	key := DateKey(date)

	for _, pattern := range patterns {
		switch {
		case pattern == PatternWeekdays:
			if weekday >= time.Monday && weekday <= time.Friday {
				return true
			}

		case pattern == PatternWeekends:
			if weekday == time.Saturday || weekday == time.Sunday {
				return true
			}

		case isRangePattern(pattern):
			start, end, err := parseRange(pattern, date.Location())
			if err != nil {
				continue
			}
			if !day.Before(start) && !day.After(end) {
				return true
			}

		case pattern == key:
			return true
		}
	}

	return false
}

// ResolveScheduleForDate resolves date to the single applicable schedule
// definition and its default mode. Returns nil when no definition matches or
// the matching definition has no modes ("no school").
//
// Special definitions take precedence over regular ones; within each bucket
// the first matching definition in declaration order wins.
func ResolveScheduleForDate(defs []Definition, date time.Time) *Summary {
	match := matchDefinition(defs, date)
	if match == nil || len(match.Modes) == 0 {
		return nil
	}
	return summarize(match, &match.Modes[0])
}

// ResolveScheduleWithMode is ResolveScheduleForDate with an explicit mode
// override. The override must name one of the matched definition's modes;
// otherwise ErrUnknownMode is returned. An empty override selects the
// default mode.
func ResolveScheduleWithMode(defs []Definition, date time.Time, mode string) (*Summary, error) {
	match := matchDefinition(defs, date)
	if match == nil || len(match.Modes) == 0 {
		return nil, nil
	}

	if mode == "" {
		return summarize(match, &match.Modes[0]), nil
	}

	for i := range match.Modes {
		if match.Modes[i].Name == mode {
			return summarize(match, &match.Modes[i]), nil
		}
	}
	return nil, ErrUnknownMode
}

func matchDefinition(defs []Definition, date time.Time) *Definition {
	var regular *Definition

	for i := range defs {
		if !matchesDate(defs[i].Dates, date) {
			continue
		}
		if defs[i].Special {
			return &defs[i]
		}
		if regular == nil {
			regular = &defs[i]
		}
	}

	return regular
}

func summarize(def *Definition, mode *Mode) *Summary {
	allModes := make([]string, len(def.Modes))
	for i := range def.Modes {
		allModes[i] = def.Modes[i].Name
	}

	return &Summary{
		Name:       def.Name,
		Special:    def.Special,
		Mode:       mode.Name,
		AllModes:   allModes,
		activeMode: mode,
	}
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func isRangePattern(pattern string) bool {
	for i := 0; i < len(pattern); i++ {
		if pattern[i] == '-' {
			return true
		}
	}
	return false
}

func parseRange(pattern string, loc *time.Location) (start, end time.Time, err error) {
	var sep int = -1
	for i := 0; i < len(pattern); i++ {
		if pattern[i] == '-' {
			sep = i
			break
		}
	}
	if sep < 0 {
		return time.Time{}, time.Time{}, errNotARange
	}

	start, err = ParseDate(pattern[:sep], loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err = ParseDate(pattern[sep+1:], loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}
