// Package week resolves canonical rating-week boundaries.
//
// A rating week is Monday-anchored and spans seven inclusive days. Every
// component that needs to decide "is this the current week" goes through
// this package; nothing else in the codebase computes Monday.
package week

import (
	"fmt"
	"time"
)

// DaysPerWeek is the inclusive span of a rating week.
const DaysPerWeek = 7

// wireFormat is the date-only layout used on the HTTP surface.
const wireFormat = "2006-01-02"

// Start returns the most recent Monday at or before now, normalized to
// UTC midnight. The result carries no time-of-day component.
func Start(now time.Time) time.Time {
	t := now.UTC()
	// time.Weekday numbers Sunday as 0; shift so Monday is 0.
	offset := (int(t.Weekday()) + 6) % DaysPerWeek
	t = t.AddDate(0, 0, -offset)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Range returns the inclusive start and end dates of the week beginning
// at start. End is start plus six days.
func Range(start time.Time) (time.Time, time.Time) {
	return start, start.AddDate(0, 0, DaysPerWeek-1)
}

// IsCurrent reports whether start identifies the week containing now.
func IsCurrent(start time.Time, now time.Time) bool {
	return start.Equal(Start(now))
}

// Previous returns the start of the week immediately before the one
// containing now. This is the week a rollover trigger snapshots.
func Previous(now time.Time) time.Time {
	return Start(now).AddDate(0, 0, -DaysPerWeek)
}

// Next returns the start of the week immediately after start.
func Next(start time.Time) time.Time {
	return start.AddDate(0, 0, DaysPerWeek)
}

// IsStart reports whether t is a valid week identifier: a Monday at UTC
// midnight with no sub-day component.
func IsStart(t time.Time) bool {
	return t.Equal(Start(t)) && t.Weekday() == time.Monday
}

// Format renders a week start in the date-only wire form, e.g. 2025-03-10.
func Format(start time.Time) string {
	return start.UTC().Format(wireFormat)
}

// Parse reads a week start from its wire form. The parsed date must be a
// Monday; anything else is not a week identifier.
func Parse(s string) (time.Time, error) {
	t, err := time.ParseInLocation(wireFormat, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse week start %q: %w", s, err)
	}
	if t.Weekday() != time.Monday {
		return time.Time{}, fmt.Errorf("week start %q is not a Monday", s)
	}
	return t, nil
}
