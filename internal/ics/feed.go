package ics

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/samber/lo"

	appLog "scrollcal/internal/log"
	"scrollcal/internal/model"
)

// Window decides which occurrences are shown.
type Window struct {
	Location *time.Location
	// HorizonDays counts days from the current date; occurrences starting
	// at or after midnight of the last one are dropped.
	HorizonDays int
	// DayCutoffHour keeps the previous day on screen until this hour.
	DayCutoffHour int
}

// Lookback is how far before the first shown day recurrences are
// expanded, so long-running instances still in progress are found.
const Lookback = 7 * 24 * time.Hour

func (w Window) loc() *time.Location {
	if w.Location == nil {
		return time.Local
	}
	return w.Location
}

// Today is the first date shown: the current date, or the day before
// while now is earlier than the cutoff hour.
func (w Window) Today(now time.Time) time.Time {
	now = now.In(w.loc())
	today := model.Midnight(now, w.loc())
	if now.Hour() < w.DayCutoffHour {
		today = today.AddDate(0, 0, -1)
	}
	return today
}

// End is midnight HorizonDays after the current date.
func (w Window) End(now time.Time) time.Time {
	return model.Midnight(now, w.loc()).AddDate(0, 0, w.HorizonDays)
}

// Keep reports whether an occurrence is shown: it starts on or after
// Today and before End, or it is in progress at now.
func (w Window) Keep(o Occurrence, now time.Time) bool {
	startDate := model.Midnight(o.Start, w.loc())
	if !startDate.Before(w.Today(now)) && o.Start.Before(w.End(now)) {
		return true
	}
	return o.End != nil && !o.Start.After(now) && !o.End.Before(now)
}

func compareOccurrences(a, b Occurrence) int {
	if c := a.Start.Compare(b.Start); c != 0 {
		return c
	}
	switch {
	case a.End == nil && b.End != nil:
		return -1
	case a.End != nil && b.End == nil:
		return 1
	case a.End != nil:
		if c := a.End.Compare(*b.End); c != 0 {
			return c
		}
	}
	return cmp.Compare(a.Summary, b.Summary)
}

// BuildDays filters, sorts and groups occurrences into calendar days.
// Days without occurrences are not emitted.
func BuildDays(occ []Occurrence, now time.Time, w Window) []model.CalendarDay {
	kept := lo.Filter(occ, func(o Occurrence, _ int) bool { return w.Keep(o, now) })
	slices.SortFunc(kept, compareOccurrences)

	groups := lo.PartitionBy(kept, func(o Occurrence) time.Time {
		return model.Midnight(o.Start, w.loc())
	})
	return lo.Map(groups, func(group []Occurrence, _ int) model.CalendarDay {
		events := lo.Map(group, func(o Occurrence, _ int) model.CalendarEvent {
			return model.CalendarEvent{Start: o.Start, End: o.End, Body: unescape(o.Summary)}
		})
		return model.CalendarDay{
			Date:   model.Midnight(group[0].Start, w.loc()),
			Events: model.DedupeAdjacent(events),
		}
	})
}

// Feed is the calendar source used by a render.
type Feed struct {
	URL            string
	Window         Window
	MaxParseErrors int
	Fetcher        *Fetcher
}

// FetchCalendar fetches, parses and expands the feed and returns the days
// to display.
func (f *Feed) FetchCalendar(ctx context.Context, now time.Time) ([]model.CalendarDay, error) {
	appLog.Info("fetching calendar", "url", redactURL(f.URL))
	res, err := f.Fetcher.Fetch(ctx, f.URL)
	if err != nil {
		return nil, err
	}

	events, err := ParseCalendar(res.Body, f.MaxParseErrors)
	if err != nil {
		return nil, err
	}

	occ, err := ExpandOccurrences(events, ExpandConfig{
		DisplayLocation: f.Window.loc(),
		RangeStart:      f.Window.Today(now).Add(-Lookback),
		RangeEnd:        f.Window.End(now),
	})
	if err != nil {
		return nil, err
	}

	days := BuildDays(occ, now, f.Window)
	appLog.Info("calendar ready", "events", len(events), "occurrences", len(occ), "days", len(days), "from_cache", res.FromCache)
	return days, nil
}
