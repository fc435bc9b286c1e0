package ics

import (
	"errors"
	"time"

	"github.com/teambition/rrule-go"

	appLog "scrollcal/internal/log"
)

const defaultMaxOccurrencesPerEvent = 5000

// ExpandConfig controls recurrence expansion.
type ExpandConfig struct {
	// DisplayLocation is the timezone every occurrence is converted to.
	// If nil, time.Local is used.
	DisplayLocation *time.Location

	// RangeStart / RangeEnd bound the occurrence start times, inclusive.
	RangeStart time.Time
	RangeEnd   time.Time

	// MaxOccurrencesPerEvent caps a single rule's expansion. If zero,
	// defaultMaxOccurrencesPerEvent is used.
	MaxOccurrencesPerEvent int
}

// Occurrence is one concrete instance of an event in the display
// timezone.
type Occurrence struct {
	UID     string
	Summary string
	Start   time.Time
	End     *time.Time
}

// ExpandOccurrences turns parsed events into concrete occurrences within
// the configured range, handling RRULE, EXDATE and RECURRENCE-ID
// overrides. Rules that hit the cap are truncated and logged.
func ExpandOccurrences(events []ParsedEvent, cfg ExpandConfig) ([]Occurrence, error) {
	if cfg.RangeEnd.Before(cfg.RangeStart) {
		return nil, errors.New("ics: expand: RangeEnd is before RangeStart")
	}
	if cfg.DisplayLocation == nil {
		cfg.DisplayLocation = time.Local
	}
	if cfg.MaxOccurrencesPerEvent <= 0 {
		cfg.MaxOccurrencesPerEvent = defaultMaxOccurrencesPerEvent
	}

	overridesByUID := make(map[string][]ParsedEvent)
	for _, ev := range events {
		if ev.IsOverride() {
			overridesByUID[ev.UID] = append(overridesByUID[ev.UID], ev)
		}
	}

	var out []Occurrence
	for _, ev := range events {
		if ev.IsOverride() {
			continue
		}
		ov := overridesByUID[ev.UID]

		if ev.RawRRule == "" {
			out = append(out, expandSingleEvent(ev, ov, cfg)...)
			continue
		}
		occ, hitCap := expandRecurringEvent(ev, ov, cfg)
		if hitCap {
			appLog.Error("ics expand: truncated occurrences due to cap",
				errors.New("max occurrences reached"),
				"uid", ev.UID,
				"cap", cfg.MaxOccurrencesPerEvent,
			)
		}
		out = append(out, occ...)
	}

	// Overrides whose base event is absent from the feed still show up.
	for uid, ovs := range overridesByUID {
		if hasBase(events, uid) {
			continue
		}
		for _, o := range ovs {
			if inRange(o.Start, cfg) {
				out = append(out, makeOccurrence(o, o.Start, o.End, o.HasEnd, cfg.DisplayLocation))
			}
		}
	}
	return out, nil
}

func hasBase(events []ParsedEvent, uid string) bool {
	for _, ev := range events {
		if ev.UID == uid && !ev.IsOverride() {
			return true
		}
	}
	return false
}

func inRange(t time.Time, cfg ExpandConfig) bool {
	return !t.Before(cfg.RangeStart) && !t.After(cfg.RangeEnd)
}

func expandSingleEvent(ev ParsedEvent, overrides []ParsedEvent, cfg ExpandConfig) []Occurrence {
	start, end, hasEnd := ev.Start, ev.End, ev.HasEnd
	if o, ok := findOverrideForStart(overrides, start); ok {
		ev, start, end, hasEnd = o, o.Start, o.End, o.HasEnd
	}
	if !inRange(start, cfg) {
		return nil
	}
	return []Occurrence{makeOccurrence(ev, start, end, hasEnd, cfg.DisplayLocation)}
}

func expandRecurringEvent(ev ParsedEvent, overrides []ParsedEvent, cfg ExpandConfig) ([]Occurrence, bool) {
	r, err := rrule.StrToRRule(ev.RawRRule)
	if err != nil {
		appLog.Error("ics expand: failed to parse RRULE", err, "uid", ev.UID, "rrule", ev.RawRRule)
		return nil, false
	}
	r.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(ev.Start.Location()))
	}

	loc := ev.Start.Location()
	occTimes := set.Between(cfg.RangeStart.In(loc), cfg.RangeEnd.In(loc), true)

	hitCap := false
	if len(occTimes) > cfg.MaxOccurrencesPerEvent {
		occTimes = occTimes[:cfg.MaxOccurrencesPerEvent]
		hitCap = true
	}

	dur := ev.End.Sub(ev.Start)
	out := make([]Occurrence, 0, len(occTimes))
	for _, occStart := range occTimes {
		if ev.AllDay {
			occStart = time.Date(occStart.Year(), occStart.Month(), occStart.Day(), 0, 0, 0, 0, occStart.Location())
		}
		baseEv, start, end, hasEnd := ev, occStart, occStart.Add(dur), ev.HasEnd
		if o, ok := findOverrideForStart(overrides, occStart); ok {
			baseEv, start, end, hasEnd = o, o.Start, o.End, o.HasEnd
		}
		out = append(out, makeOccurrence(baseEv, start, end, hasEnd, cfg.DisplayLocation))
	}
	return out, hitCap
}

// findOverrideForStart finds the override whose RECURRENCE-ID is the same
// instant as start.
func findOverrideForStart(overrides []ParsedEvent, start time.Time) (ParsedEvent, bool) {
	for _, ov := range overrides {
		if ov.Recurrence != nil && ov.Recurrence.Equal(start) {
			return ov, true
		}
	}
	return ParsedEvent{}, false
}

func makeOccurrence(ev ParsedEvent, start, end time.Time, hasEnd bool, displayLoc *time.Location) Occurrence {
	occ := Occurrence{
		UID:     ev.UID,
		Summary: ev.Summary,
		Start:   start.In(displayLoc),
	}
	if hasEnd {
		e := end.In(displayLoc)
		occ.End = &e
	}
	return occ
}
