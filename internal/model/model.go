// Package model holds the calendar data handed from the feed to the
// layout: days in display order, each with its ordered events.
package model

import "time"

// CalendarEvent is a single concrete occurrence. End is nil when the feed
// gave no end time.
type CalendarEvent struct {
	Start time.Time
	End   *time.Time
	Body  string
}

// Equal compares instants, not locations.
func (e CalendarEvent) Equal(o CalendarEvent) bool {
	if !e.Start.Equal(o.Start) || e.Body != o.Body {
		return false
	}
	if e.End == nil || o.End == nil {
		return e.End == nil && o.End == nil
	}
	return e.End.Equal(*o.End)
}

// Ended reports whether the event has an end time before now.
func (e CalendarEvent) Ended(now time.Time) bool {
	return e.End != nil && e.End.Before(now)
}

// CalendarDay is one civil date, stored as midnight in the display
// location.
type CalendarDay struct {
	Date   time.Time
	Events []CalendarEvent
}

// DedupeAdjacent drops events equal to the event right before them. The
// input slice is not modified.
func DedupeAdjacent(events []CalendarEvent) []CalendarEvent {
	out := make([]CalendarEvent, 0, len(events))
	for _, ev := range events {
		if n := len(out); n > 0 && out[n-1].Equal(ev) {
			continue
		}
		out = append(out, ev)
	}
	return out
}

// Midnight returns the start of t's civil date in loc.
func Midnight(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// SameDate reports whether a and b fall on the same civil date in loc.
func SameDate(a, b time.Time, loc *time.Location) bool {
	return Midnight(a, loc).Equal(Midnight(b, loc))
}
