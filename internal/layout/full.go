package layout

import (
	"fmt"
	"image"
	"math/bits"

	"scrollcal/internal/datastream"
	"scrollcal/internal/geom"
	"scrollcal/internal/imageio"
	"scrollcal/internal/log"
	"scrollcal/internal/model"
	"scrollcal/internal/render"
)

// DefaultElements returns the fields fixed by the display geometry. The
// layout stages fill in the rest.
func DefaultElements() *datastream.Elements {
	data := datastream.NewElements()
	data.ViewportW = ViewportWidth
	data.ViewportH = ViewportHeight
	data.HeaderH = VariableTop
	data.FooterH = ViewportHeight - VariableBottom
	data.BorderL = LeftBorder
	data.BorderR = RightBorder
	data.DayHeaderHeight = DayHeaderHeight
	data.HeaderBlendStart = HeaderBlendStart
	data.HeaderBlendEnd = HeaderBlendEnd
	data.ScrollSplitPoint = ScrollSplitPoint
	data.ColDivs = [3]uint32{
		TimeColRight,
		TimeColRight + 14, // ceil(EventMarkerWidth)
		ViewportWidth,
	}
	data.Palette = Palette
	data.SectionPad = SectionPad
	data.BgSampleH = BgSampleHeight
	return data
}

// ComputeFullLayout stacks the template texture above the packed event
// texture and returns it with the completed datastream fields.
func (s *Setup) ComputeFullLayout(days []model.CalendarDay) (render.Renderable, *datastream.Elements, error) {
	data := DefaultElements()
	layout := render.NewColumn()

	tmpl, err := s.LayoutTemplate(data)
	if err != nil {
		return nil, nil, err
	}
	layout.Push(tmpl)

	base := layout.Bounds().H
	tex, err := s.ComputeEventTexture(days, TextureHeight-base-SectionPad)
	if err != nil {
		return nil, nil, err
	}
	data.VData = tex.VData

	tb := tex.Image.Bounds()
	if data.ScrollHeight, err = geom.CeilUint32("scroll_height", tb.H); err != nil {
		return nil, nil, err
	}
	if data.ScrollTexY, err = geom.CeilUint32("scroll_tex_y", base+SectionPad); err != nil {
		return nil, nil, err
	}

	events := render.ClipTo(tex.Image, geom.R(LeftBorder, 0, tb.W-(LeftBorder+RightBorder), tb.H))
	layout.Push(render.PadSides(render.PadVertical(events, SectionPad, 0), 0, SectionPad))
	return layout, data, nil
}

func nextPow2(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}

// Render rasterizes layout over a magenta background into an image whose
// sides are powers of two, drops alpha, and writes the datastream into
// its right edge.
func Render(layout render.Renderable, data *datastream.Elements) (*image.RGBA, *datastream.Stream, error) {
	b := layout.Bounds()
	w, err := geom.Int("output width", b.W)
	if err != nil {
		return nil, nil, err
	}
	h, err := geom.Int("output height", b.H)
	if err != nil {
		return nil, nil, err
	}
	w, h = nextPow2(w), nextPow2(h)

	surface := render.NewSurface(w, h)
	surface.FillRect(geom.R(0, 0, float64(w), float64(h)), geom.Magenta)
	if err := render.Render(surface, layout); err != nil {
		return nil, nil, fmt.Errorf("layout: render: %w", err)
	}

	img := imageio.Flatten(surface.Image())
	stream, err := data.Write(img)
	if err != nil {
		return nil, nil, err
	}
	log.Info("rendered", "width", w, "height", h, "datastream", len(stream.Pixels), "rows", len(data.VData))
	return img, stream, nil
}

// RenderToFile renders and saves a PNG at path.
func RenderToFile(layout render.Renderable, data *datastream.Elements, path string) (*datastream.Stream, error) {
	img, stream, err := Render(layout, data)
	if err != nil {
		return nil, err
	}
	if err := imageio.SavePNG(path, img); err != nil {
		return nil, err
	}
	return stream, nil
}
