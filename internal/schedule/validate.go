package schedule

import (
	"errors"
	"fmt"
	"time"
)

// Predefined errors for schedule resolution.
var (
	// ErrUnknownMode is returned when a mode override names a mode the
	// resolved schedule does not have.
	ErrUnknownMode = errors.New("unknown schedule mode")

	errNotARange = errors.New("pattern is not a date range")
)

// ValidateDefinitions checks a schedule definition list for the authoring
// mistakes the resolver does not guard against at query time: unparseable
// date patterns or clock strings, mismatched period/start/end lengths, and
// periods that are not chronological and non-overlapping.
//
// A definition with zero modes is legal (it resolves to "no school") but
// every mode it does carry must be well-formed. The first violation found is
// returned as a configuration error.
func ValidateDefinitions(defs []Definition) error {
	for i := range defs {
		if err := validateDefinition(&defs[i]); err != nil {
			return fmt.Errorf("schedule %q (index %d): %w", defs[i].Name, i, err)
		}
	}
	return nil
}

func validateDefinition(def *Definition) error {
	if def.Name == "" {
		return errors.New("missing name")
	}
	if len(def.Dates) == 0 {
		return errors.New("no date patterns")
	}

	for _, pattern := range def.Dates {
		if err := validatePattern(pattern); err != nil {
			return err
		}
	}

	for m := range def.Modes {
		if err := validateMode(&def.Modes[m]); err != nil {
			return fmt.Errorf("mode %q: %w", def.Modes[m].Name, err)
		}
	}

	return nil
}

func validatePattern(pattern string) error {
	if pattern == PatternWeekdays || pattern == PatternWeekends {
		return nil
	}

	if isRangePattern(pattern) {
		start, end, err := parseRange(pattern, time.UTC)
		if err != nil {
			return fmt.Errorf("date range %q: %w", pattern, err)
		}
		if end.Before(start) {
			return fmt.Errorf("date range %q ends before it starts", pattern)
		}
		return nil
	}

	if _, err := ParseDate(pattern, time.UTC); err != nil {
		return err
	}
	return nil
}

func validateMode(mode *Mode) error {
	if mode.Name == "" {
		return errors.New("missing name")
	}
	if len(mode.Periods) == 0 {
		return errors.New("no periods")
	}
	if len(mode.Start) != len(mode.Periods) || len(mode.End) != len(mode.Periods) {
		return fmt.Errorf("periods/start/end length mismatch: %d/%d/%d",
			len(mode.Periods), len(mode.Start), len(mode.End))
	}

	prevEnd := -1
	for i := range mode.Periods {
		startH, startM, err := ParseClock(mode.Start[i])
		if err != nil {
			return fmt.Errorf("period %q start: %w", mode.Periods[i], err)
		}
		endH, endM, err := ParseClock(mode.End[i])
		if err != nil {
			return fmt.Errorf("period %q end: %w", mode.Periods[i], err)
		}

		start := startH*60 + startM
		end := endH*60 + endM

		if end <= start {
			return fmt.Errorf("period %q ends at or before its start (%s-%s)",
				mode.Periods[i], mode.Start[i], mode.End[i])
		}
		if start < prevEnd {
			return fmt.Errorf("period %q starts at %s, before the previous period ends",
				mode.Periods[i], mode.Start[i])
		}
		prevEnd = end
	}

	return nil
}
