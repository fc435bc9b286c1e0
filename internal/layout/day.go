package layout

import (
	"fmt"

	"scrollcal/internal/model"
	"scrollcal/internal/render"
)

type EntryKind int

const (
	KindDayHeader EntryKind = iota
	KindMargin
	KindFiller
	KindSeparator
	KindEvent
)

func (k EntryKind) String() string {
	switch k {
	case KindDayHeader:
		return "day-header"
	case KindMargin:
		return "margin"
	case KindFiller:
		return "filler"
	case KindSeparator:
		return "separator"
	case KindEvent:
		return "event"
	default:
		return fmt.Sprintf("EntryKind(%d)", int(k))
	}
}

// Entry is one row-group of the event list with the palette indices its
// rows use in each column band.
type Entry struct {
	render.Renderable
	Kind   EntryKind
	Colors [4]uint8
}

// IsDayHeader reports rows that show the day header texture instead of
// row colors.
func (e Entry) IsDayHeader() bool {
	return e.Kind == KindDayHeader
}

func fill(c uint8) [4]uint8 {
	return [4]uint8{c, c, c, c}
}

// LayoutDay appends the row-groups of one day: its header, a margin, the
// events or a filler line, and a closing margin.
func (s *Setup) LayoutDay(day model.CalendarDay, entries []Entry) ([]Entry, error) {
	dhw := s.DayHeaderTemplate.Bounds().W

	title, err := s.textBox(FormatDate(day.Date.In(s.Location)), dhw, RGBDate, s.Fonts.DayHeader, 1)
	if err != nil {
		return nil, fmt.Errorf("layout: day %s: %w", day.Date.Format("2006-01-02"), err)
	}
	tb := title.Bounds()
	width := VariableOuterRight - VariableOuterLeft
	yOffset := (DayHeaderHeight - tb.H) / 2

	// Centered inside a row-group exactly DayHeaderHeight tall.
	header := render.NewColumn()
	header.Push(render.Offset(title, VariableOuterLeft+(width-tb.W)/2, yOffset))
	header.Push(render.NewPad(0, yOffset))
	entries = append(entries,
		Entry{Renderable: header, Kind: KindDayHeader, Colors: fill(PalDate)},
		Entry{Renderable: render.NewPad(0, s.HeaderMargin), Kind: KindMargin, Colors: fill(PalText)},
	)

	events := model.DedupeAdjacent(day.Events)
	if len(events) == 0 {
		filler, err := s.textBox(noEventsText, width, RGBText, s.Fonts.Event, EventLines)
		if err != nil {
			return nil, fmt.Errorf("layout: filler: %w", err)
		}
		entries = append(entries, Entry{
			Renderable: render.Offset(filler, VariableOuterLeft+(width-filler.Bounds().W)/2, 0),
			Kind:       KindFiller,
			Colors:     fill(PalText),
		})
	}

	for i, ev := range events {
		if i > 0 && events[i-1].Start.In(s.Location).Hour() != ev.Start.In(s.Location).Hour() {
			sep := &render.Separator{
				Color:     RGBTimeDash,
				Width:     TimeColRight - TimeColLeft,
				Thickness: 2,
				Dash:      4,
				Margin:    4,
			}
			entries = append(entries, Entry{
				Renderable: render.Offset(sep, TimeColLeft, 0),
				Kind:       KindSeparator,
				Colors:     fill(PalTimeDash),
			})
		}

		r, err := s.LayoutEvent(ev)
		if err != nil {
			return nil, fmt.Errorf("layout: event at %s: %w", ev.Start.Format("2006-01-02 15:04"), err)
		}
		colors := [4]uint8{PalTime, PalText, PalText, PalText}
		if ev.Ended(s.Now) {
			colors = [4]uint8{PalTimeEnded, PalTextEnded, PalTextEnded, PalTextEnded}
		}
		entries = append(entries, Entry{Renderable: r, Kind: KindEvent, Colors: colors})
	}

	entries = append(entries, Entry{Renderable: render.NewPad(0, s.HeaderMargin), Kind: KindMargin, Colors: fill(PalText)})
	return entries, nil
}

// LayoutEvent lays out a single event: marker, start time, optional end
// time and the description.
func (s *Setup) LayoutEvent(ev model.CalendarEvent) (render.Renderable, error) {
	textColor, timeColor := RGBText, RGBTime
	ended := ev.Ended(s.Now)
	if ended {
		textColor, timeColor = RGBTextEnded, RGBTimeEnded
	}

	start, err := s.textBox(FormatStart(ev, s.Location), TimeColRight-TimeColLeft, timeColor, s.Fonts.Time, 1)
	if err != nil {
		return nil, err
	}
	sb := start.Bounds()

	var end render.Renderable = render.NewPad(0, 0)
	endBaseline := 0.0
	if label, ok := FormatEnd(ev, s.Location); ok {
		tb, err := s.textBox(label, TimeColRight-TimeColLeft, timeColor, s.Fonts.EndTime, 1)
		if err != nil {
			return nil, err
		}
		end, endBaseline = tb, tb.Baseline()
	}
	endW := end.Bounds().W

	startOffset := TimeColLeft + 8
	endOffset := startOffset + sb.W
	if endOffset+endW < TimeColRight {
		end = render.Offset(end, endOffset, start.Baseline()-endBaseline)
	} else {
		end = render.Offset(end, TimeColRight-endW, start.Baseline())
	}

	desc, err := s.textBox(ev.Body, EventInfoRight-EventInfoLeft, textColor, s.Fonts.Event, EventLines)
	if err != nil {
		return nil, err
	}

	return render.NewGroup(
		render.Offset(&EventMarker{Ended: ended}, 0, sb.H/2),
		render.Offset(start, startOffset, 0),
		end,
		render.Offset(desc, EventInfoLeft, 0),
	), nil
}
