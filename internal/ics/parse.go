package ics

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "scrollcal/internal/log"
)

// ErrTooManyParseErrors aborts a parse once more VEVENTs than allowed
// have failed.
var ErrTooManyParseErrors = errors.New("ics: too many parse errors")

// ParsedEvent is a VEVENT before recurrence expansion.
type ParsedEvent struct {
	UID         string
	Summary     string
	Description string

	Start  time.Time
	End    time.Time
	HasEnd bool
	AllDay bool

	RawRRule   string
	ExDates    []time.Time
	Recurrence *time.Time // RECURRENCE-ID, set on overridden instances
}

// IsOverride reports whether the event replaces one instance of a
// recurring event.
func (ev ParsedEvent) IsOverride() bool {
	return ev.Recurrence != nil
}

// MissingPropertyError is returned for a VEVENT lacking a required
// property.
type MissingPropertyError struct {
	Property string
}

func (e *MissingPropertyError) Error() string {
	return "ics: event is missing property " + e.Property
}

// ParseCalendar parses an ICS payload. VEVENTs that fail to parse are
// logged and skipped until more than maxErrors have failed.
func ParseCalendar(body []byte, maxErrors int) ([]ParsedEvent, error) {
	if len(body) == 0 {
		return nil, errors.New("ics: empty body")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("ics: calendar failed to parse: %w", err)
	}

	vevents := cal.Events()
	events := make([]ParsedEvent, 0, len(vevents))
	parseErrors := 0
	for _, ve := range vevents {
		ev, err := parseVEvent(ve)
		if err != nil {
			parseErrors++
			appLog.Warn("ics vevent parse failed", "err", err, "errors", parseErrors)
			if parseErrors > maxErrors {
				return nil, fmt.Errorf("%w: %d failed events", ErrTooManyParseErrors, parseErrors)
			}
			continue
		}
		events = append(events, ev)
	}

	appLog.Info("ics parse completed", "event_count", len(events), "parse_errors", parseErrors)
	return events, nil
}

func required(ve *ical.VEvent, prop ical.ComponentProperty) (*ical.IANAProperty, error) {
	p := ve.GetProperty(prop)
	if p == nil || p.Value == "" {
		return nil, &MissingPropertyError{Property: string(prop)}
	}
	return p, nil
}

func parseVEvent(ve *ical.VEvent) (ParsedEvent, error) {
	var out ParsedEvent

	uid, err := required(ve, ical.ComponentPropertyUniqueId)
	if err != nil {
		return out, err
	}
	out.UID = uid.Value

	dtStart, err := required(ve, ical.ComponentPropertyDtStart)
	if err != nil {
		return out, err
	}
	out.AllDay = isDateValue(dtStart)
	if out.Start, err = eventTime(ve.GetStartAt, dtStart); err != nil {
		return out, fmt.Errorf("ics: DTSTART: %w", err)
	}

	summary, err := required(ve, ical.ComponentPropertySummary)
	if err != nil {
		return out, err
	}
	out.Summary = summary.Value

	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		out.Description = p.Value
	}

	// A malformed DTEND is treated like a missing one.
	if dtEnd := ve.GetProperty(ical.ComponentPropertyDtEnd); dtEnd != nil && dtEnd.Value != "" {
		if end, err := eventTime(ve.GetEndAt, dtEnd); err == nil {
			out.End = end
			out.HasEnd = true
		}
	}
	if out.AllDay && !out.HasEnd {
		out.End = out.Start.AddDate(0, 0, 1)
		out.HasEnd = true
	}

	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		out.RawRRule = p.Value
	}

	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		for _, part := range strings.Split(p.Value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if t, err := parseICSTime(part, tzid(p)); err == nil {
				out.ExDates = append(out.ExDates, t)
			}
		}
	}

	if p := ve.GetProperty("RECURRENCE-ID"); p != nil {
		if t, err := parseICSTime(p.Value, tzid(p)); err == nil {
			out.Recurrence = &t
		}
	}

	return out, nil
}

// eventTime uses the library's TZID handling and falls back to the local
// parser for DATE values it rejects.
func eventTime(get func() (time.Time, error), p *ical.IANAProperty) (time.Time, error) {
	if t, err := get(); err == nil {
		return t, nil
	}
	return parseICSTime(p.Value, tzid(p))
}

func isDateValue(p *ical.IANAProperty) bool {
	if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		return true
	}
	return !strings.Contains(p.Value, "T")
}

func tzid(p *ical.IANAProperty) *time.Location {
	if tzs, ok := p.ICalParameters["TZID"]; ok && len(tzs) > 0 {
		if loc, err := time.LoadLocation(tzs[0]); err == nil {
			return loc
		}
	}
	return time.Local
}

// parseICSTime parses the basic DATE / DATE-TIME / UTC forms.
func parseICSTime(v string, loc *time.Location) (time.Time, error) {
	v = strings.TrimSpace(v)
	switch {
	case v == "":
		return time.Time{}, errors.New("ics: empty time value")
	case strings.HasSuffix(v, "Z"):
		return time.Parse("20060102T150405Z", v)
	case strings.Contains(v, "T"):
		return time.ParseInLocation("20060102T150405", v, loc)
	default:
		return time.ParseInLocation("20060102", v, loc)
	}
}

// unescape drops escaped newlines and strips the backslash from every
// other escape.
func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	rs := []rune(s)
	for i := 0; i < len(rs); i++ {
		if rs[i] != '\\' {
			b.WriteRune(rs[i])
			continue
		}
		i++
		if i < len(rs) && rs[i] != 'n' {
			b.WriteRune(rs[i])
		}
	}
	return b.String()
}
