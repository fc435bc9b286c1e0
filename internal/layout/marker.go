package layout

import (
	"scrollcal/internal/geom"
	"scrollcal/internal/render"
)

// EventMarker is the triangle left of an event's time. It is drawn sticking
// out of the time column so the clip cuts its point into the border.
type EventMarker struct {
	Ended bool
}

func (m *EventMarker) Bounds() geom.Size {
	return geom.Size{W: EventMarkerWidth, H: EventMarkerHeight}
}

func (m *EventMarker) Paint(s *render.Surface) error {
	c := RGBEventMarker
	if m.Ended {
		c = RGBTextEnded
	}

	s.Save()
	defer s.Restore()
	s.Translate(TimeColRight, 0)
	s.ClipRect(geom.R(EventMarkerClip-0.1, -EventMarkerHeight, EventMarkerWidth+1, EventMarkerHeight*2))
	s.FillPolygons([][]geom.Point{{
		{X: 0, Y: -EventMarkerHeight / 2},
		{X: EventMarkerWidth, Y: 0},
		{X: 0, Y: EventMarkerHeight / 2},
	}}, c)
	return nil
}
