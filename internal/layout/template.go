package layout

import (
	"fmt"
	"math"
	"time"

	"scrollcal/internal/datastream"
	"scrollcal/internal/geom"
	"scrollcal/internal/log"
	"scrollcal/internal/render"
)

// TemplateColumn is a border strip of the background template turned on
// its side and padded for sampling.
type TemplateColumn struct {
	render.Renderable

	// Source is the strip's rectangle in the scaled template.
	Source geom.Rect
}

// TemplateColumn crops the left (col 0) or right (col 1) border strip of
// the scrollable area.
func (s *Setup) TemplateColumn(col int) TemplateColumn {
	w := LeftBorder
	if col == 1 {
		w = RightBorder
	}
	src := geom.R(float64(col)*VariableOuterRight, VariableTop, w, VariableBottom-VariableTop)
	clip := render.ClipTo(s.Template, src)
	r := render.PadSides(render.PadVertical(render.SwapXY(clip), SectionPad, SectionPad), 0, SectionPad)
	return TemplateColumn{Renderable: r, Source: src}
}

// InfoText is the footer line: render time and branch, bottom-left in a
// box of the given size.
func (s *Setup) InfoText(box geom.Size) (render.Renderable, error) {
	str := fmt.Sprintf("%s %s", s.Now.In(s.Location).Format(time.RFC3339), s.Branch)
	tb, err := s.textBox(str, box.W, RGBText, s.Fonts.Info, 1)
	if err != nil {
		return nil, fmt.Errorf("layout: info text: %w", err)
	}
	return render.Offset(tb, 0, box.H-tb.Bounds().H), nil
}

// LayoutTemplate builds the static part of the texture: border strips,
// day header corners and alpha, header band, footer band and the
// background sample. The texture offsets of each part go into data.
func (s *Setup) LayoutTemplate(data *datastream.Elements) (render.Renderable, error) {
	side := render.NewColumn()
	left := s.TemplateColumn(0)
	right := s.TemplateColumn(1)
	side.Push(left)
	side.Push(right)
	log.Debug("template borders", "left", left.Source, "right", right.Source)

	dht := s.DayHeaderTemplate
	dhb := dht.Bounds()
	corners := render.NewGroup()
	for cx := 0.0; cx < 2; cx++ {
		corner := render.ClipTo(dht, geom.R((dhb.W-DayHeaderCornerSize)*cx, 0, DayHeaderCornerSize, dhb.H))
		corners.Push(render.Offset(corner, DayHeaderCornerSize*cx, 0))
	}
	dayHeader := render.PadVertical(render.PadSides(corners, SectionPad, SectionPad), 0, SectionPad)
	db := dayHeader.Bounds()
	alpha := render.NewGroup(
		render.NewFillRect(geom.White, db.W, db.H),
		render.WithOperator(dayHeader, render.OpDestIn),
	)

	sideW := side.Bounds().W
	top := render.NewGroup(
		side,
		render.Offset(dayHeader, sideW, 0),
		render.Offset(alpha, sideW+db.W, 0),
	)

	var err error
	data.DayHeaderSideWidth = DayHeaderCornerSize
	if data.DayHeaderTexX, err = geom.Uint32("day_header_tex_x", sideW+SectionPad); err != nil {
		return nil, err
	}
	data.DayHeaderTexAlphaX = data.DayHeaderTexX + 2*DayHeaderCornerSize + 2*SectionPad
	data.DayHeaderTexY = 0
	if data.DayHeaderTrueWidth, err = geom.Uint32("day_header_true_width", dhb.W); err != nil {
		return nil, err
	}
	if data.DayHeaderHeight, err = geom.Uint32("day_header_height", dhb.H); err != nil {
		return nil, err
	}

	tb := top.Bounds()
	topW, err := geom.CeilUint32("top segment width", tb.W)
	if err != nil {
		return nil, err
	}
	topH, err := geom.CeilUint32("top segment height", tb.H)
	if err != nil {
		return nil, err
	}
	if topW > ViewportWidth || topH > ViewportHeight {
		return nil, fmt.Errorf("layout: top segment %dx%d leaves no datastream space: %w", topW, topH, datastream.ErrCapacity)
	}
	data.DatastreamWidth = ViewportWidth - topW
	data.DatastreamHeight = ViewportHeight - topH

	column := render.NewColumn()
	column.Push(top)

	tmpl := s.Template
	tw, th := tmpl.Bounds().W, tmpl.Bounds().H

	header := render.NewGroup(
		render.ClipTo(tmpl, geom.R(0, 0, tw, DayHeaderCornerSize+VariableTop)),
		render.Offset(render.ClipTo(dht, geom.R(0, 0, dhb.W, DayHeaderCornerSize)), VariableOuterLeft, VariableTop),
	)
	y := column.Push(render.PadVertical(header, SectionPad, SectionPad))
	if data.HeaderTexY, err = geom.Uint32("header_tex_y", y+SectionPad); err != nil {
		return nil, err
	}

	footer := render.NewGroup(render.ClipTo(tmpl, geom.R(0, VariableBottom, tw, th-VariableBottom)))
	info, err := s.InfoText(footer.Bounds())
	if err != nil {
		return nil, err
	}
	footer.Push(info)
	y = column.Push(render.PadVertical(footer, SectionPad, SectionPad))
	if data.FooterTexY, err = geom.Uint32("footer_tex_y", y+SectionPad); err != nil {
		return nil, err
	}

	bg := render.ClipTo(tmpl, geom.R(0, VariableTemplateTop, tw, BgSampleHeight))
	y = column.Push(render.PadVertical(bg, SectionPad, SectionPad))
	if data.BgSampleY, err = geom.Uint32("bg_sample_y", y+SectionPad); err != nil {
		return nil, err
	}

	log.Debug("template layout", "size", fmt.Sprintf("%vx%v", math.Ceil(column.Bounds().W), math.Ceil(column.Bounds().H)))
	return column, nil
}
