package layout

import (
	"errors"
	"fmt"
	"math"

	"scrollcal/internal/convert"
	"scrollcal/internal/datastream"
	"scrollcal/internal/geom"
	"scrollcal/internal/log"
	"scrollcal/internal/model"
	"scrollcal/internal/render"
)

// EventList stacks row-groups top to bottom.
type EventList []Entry

func (l EventList) Bounds() geom.Size {
	var b geom.Size
	for _, e := range l {
		eb := e.Bounds()
		b.W = math.Max(b.W, eb.W)
		b.H += eb.H
	}
	return b
}

func (l EventList) Paint(s *render.Surface) error {
	y := 0.0
	for _, e := range l {
		if err := render.RenderAt(s, e, 0, y); err != nil {
			return err
		}
		y += e.Bounds().H
	}
	return nil
}

// Count returns how many entries of the given kind the list holds.
func (l EventList) Count(k EntryKind) int {
	n := 0
	for _, e := range l {
		if e.Kind == k {
			n++
		}
	}
	return n
}

// VerticalData derives one row per scanline the list covers, stopping
// once limit rows exist.
func (l EventList) VerticalData(limit int) ([]datastream.VerticalData, error) {
	var (
		vdata []datastream.VerticalData
		prev  uint32
		y     float64
	)
	for i, e := range l {
		initial, err := geom.Uint32(fmt.Sprintf("entry %d top", i), math.Floor(y))
		if err != nil {
			return nil, err
		}
		y += e.Bounds().H
		bottom, err := geom.CeilInt(fmt.Sprintf("entry %d bottom", i), y)
		if err != nil {
			return nil, err
		}
		if e.IsDayHeader() {
			prev = uint32(len(vdata))
		}
		for len(vdata) < bottom {
			if len(vdata) >= limit {
				log.Debug("vertical data truncated", "rows", len(vdata), "entry", i, "of", len(l))
				return vdata, nil
			}
			info := datastream.Colors(e.Colors)
			if e.IsDayHeader() {
				info = datastream.DayHeader(uint32(len(vdata)) - initial)
			}
			vdata = append(vdata, datastream.VerticalData{PrevDayHeader: prev, Info: info})
		}
	}
	return vdata, nil
}

// LayoutEvents builds the row-groups of every day in order.
func (s *Setup) LayoutEvents(days []model.CalendarDay) (EventList, error) {
	var entries []Entry
	for _, day := range days {
		var err error
		entries, err = s.LayoutDay(day, entries)
		if err != nil {
			return nil, err
		}
	}
	return entries, nil
}

// EventTexture is the event list packed three rows per pixel, and the row
// table describing it.
type EventTexture struct {
	Image render.Renderable
	VData []datastream.VerticalData
}

// ComputeEventTexture renders the event list into an alpha mask at most
// three times maxHeight rows tall and packs it with convert.SplitChannels.
func (s *Setup) ComputeEventTexture(days []model.CalendarDay, maxHeight float64) (*EventTexture, error) {
	rows, err := geom.Int("event texture rows", math.Floor(maxHeight))
	if err != nil {
		return nil, err
	}
	if rows <= 0 {
		return nil, errors.New("layout: no texture space left for events")
	}

	list, err := s.LayoutEvents(days)
	if err != nil {
		return nil, err
	}
	vdata, err := list.VerticalData(rows * 3)
	if err != nil {
		return nil, fmt.Errorf("layout: vertical data: %w", err)
	}

	texHeight, err := geom.CeilInt("event texture height", list.Bounds().H)
	if err != nil {
		return nil, err
	}
	if r := texHeight % 3; r != 0 {
		texHeight += 3 - r
	}
	texHeight = min(texHeight, rows*3)

	surface := render.NewSurface(TextureWidth, texHeight)
	if err := render.Render(surface, list); err != nil {
		return nil, fmt.Errorf("layout: render events: %w", err)
	}
	split, err := convert.SplitChannels(surface.Image())
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	log.Debug("event texture", "entries", len(list), "alpha_rows", texHeight, "rows", len(vdata))
	return &EventTexture{Image: render.NewImage(split), VData: vdata}, nil
}
