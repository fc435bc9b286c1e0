package datastream

import (
	"errors"
	"fmt"
	"image"
	"strconv"

	"scrollcal/internal/log"
)

// ErrCapacity is returned when the encoded stream does not fit the
// datastream area or the target image.
var ErrCapacity = errors.New("datastream: not enough space")

// FieldError reports a field whose value cannot be encoded.
type FieldError struct {
	Field string
	Value uint32
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("datastream: converting %s (%d): %v", e.Field, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// Offset is the pixel index at which a named field or section starts.
type Offset struct {
	Name  string
	Index int
}

// Stream is an encoded datastream in pixel order.
type Stream struct {
	Pixels  []ByteColor
	Offsets []Offset
}

type encoder struct {
	s   Stream
	err error
}

func (enc *encoder) mark(name string) {
	enc.s.Offsets = append(enc.s.Offsets, Offset{Name: name, Index: len(enc.s.Pixels)})
}

func (enc *encoder) value(name string, v uint32) {
	if enc.err != nil {
		return
	}
	col, err := FromValue(v)
	if err != nil {
		enc.err = &FieldError{Field: name, Value: v, Err: err}
		return
	}
	enc.mark(name)
	enc.s.Pixels = append(enc.s.Pixels, col)
}

// Encode serializes e in the order the firmware reads it.
func (e *Elements) Encode() (*Stream, error) {
	enc := &encoder{}

	enc.value("DATASTREAM_WIDTH", e.DatastreamWidth)
	enc.value("DATASTREAM_HEIGHT", e.DatastreamHeight)

	enc.value("VIEWPORT_W", e.ViewportW)
	enc.value("VIEWPORT_H", e.ViewportH)

	enc.value("HEADER_H", e.HeaderH)
	enc.value("FOOTER_H", e.FooterH)
	enc.value("BORDER_L", e.BorderL)
	enc.value("BORDER_R", e.BorderR)

	enc.value("DAY_HEADER_HEIGHT", e.DayHeaderHeight)

	for i, div := range e.ColDivs {
		enc.value("COL_DIVS_"+strconv.Itoa(i), div)
	}
	if enc.err != nil {
		return nil, enc.err
	}

	enc.mark("PALETTE")
	for _, c := range e.Palette {
		enc.s.Pixels = append(enc.s.Pixels, FromRGB(c))
	}

	enc.value("SECTION_PAD", e.SectionPad)
	enc.value("SCROLL_HEIGHT", e.ScrollHeight)
	enc.value("SCROLL_TEX_Y", e.ScrollTexY)
	enc.value("BG_SAMPLE_Y", e.BgSampleY)
	enc.value("BG_SAMPLE_H", e.BgSampleH)
	enc.value("HEADER_TEX_Y", e.HeaderTexY)
	enc.value("FOOTER_TEX_Y", e.FooterTexY)
	enc.value("DAY_HEADER_TEX_X", e.DayHeaderTexX)
	enc.value("DAY_HEADER_TEX_ALPHA_X", e.DayHeaderTexAlphaX)
	enc.value("DAY_HEADER_TEX_Y", e.DayHeaderTexY)
	enc.value("DAY_HEADER_SIDE_WIDTH", e.DayHeaderSideWidth)
	enc.value("DAY_HEADER_TRUE_WIDTH", e.DayHeaderTrueWidth)

	enc.value("HEADER_BLEND_START", e.HeaderBlendStart)
	enc.value("HEADER_BLEND_END", e.HeaderBlendEnd)
	enc.value("SCROLL_SPLIT_POINT", e.ScrollSplitPoint)

	if uint64(len(e.VData)) > maxValue {
		return nil, &FieldError{Field: "VDATA_LEN", Value: Unset, Err: fmt.Errorf("%d rows", len(e.VData))}
	}
	enc.value("VDATA_LEN", uint32(len(e.VData)))
	if enc.err != nil {
		return nil, enc.err
	}

	enc.mark("PREVDH")
	for i, vd := range e.VData {
		col, err := FromValue(vd.PrevDayHeader)
		if err != nil {
			return nil, &FieldError{Field: fmt.Sprintf("prev_day_header[%d]", i), Value: vd.PrevDayHeader, Err: err}
		}
		enc.s.Pixels = append(enc.s.Pixels, col)
	}

	enc.mark("ROWINFO")
	for i, vd := range e.VData {
		v, err := vd.Info.word()
		if err != nil {
			return nil, fmt.Errorf("datastream: row %d: %w", i, err)
		}
		col, err := FromValue(v)
		if err != nil {
			return nil, &FieldError{Field: fmt.Sprintf("row_info[%d]", i), Value: v, Err: err}
		}
		enc.s.Pixels = append(enc.s.Pixels, col)
	}

	return &enc.s, nil
}

// word packs the four 3-bit indices MSB first, or a header offset with
// HeaderFlag set.
func (ri RowColorInfo) word() (uint32, error) {
	if ri.Header {
		if ri.Offset >= HeaderFlag {
			return 0, fmt.Errorf("day header offset %d exceeds 17 bits", ri.Offset)
		}
		return ri.Offset | HeaderFlag, nil
	}
	var w uint32
	for _, c := range ri.Colors {
		if c >= PaletteSize {
			return 0, fmt.Errorf("color index %d out of range", c)
		}
		w = w<<3 | uint32(c)
	}
	return w, nil
}

// Write encodes e into img right to left: stream pixel i belongs to row
// y = i / DatastreamWidth and column rx = i % DatastreamWidth, and is stored
// at image row y, image column width-rx-1.
func (e *Elements) Write(img *image.RGBA) (*Stream, error) {
	s, err := e.Encode()
	if err != nil {
		return nil, err
	}
	if e.DatastreamWidth == 0 || uint64(len(s.Pixels)) > uint64(e.DatastreamWidth)*uint64(e.DatastreamHeight) {
		return nil, fmt.Errorf("%w: %d pixels into %dx%d", ErrCapacity, len(s.Pixels), e.DatastreamWidth, e.DatastreamHeight)
	}

	b := img.Bounds()
	width := int(e.DatastreamWidth)
	rows := (len(s.Pixels) + width - 1) / width
	if width > b.Dx() || rows > b.Dy() {
		return nil, fmt.Errorf("%w: %d rows of %d pixels into a %dx%d image", ErrCapacity, rows, width, b.Dx(), b.Dy())
	}

	for i, col := range s.Pixels {
		y, rx := i/width, i%width
		x := b.Dx() - rx - 1
		o := img.PixOffset(b.Min.X+x, b.Min.Y+y)
		px := col.Bytes()
		copy(img.Pix[o:o+4], px[:])
	}

	if log.DebugEnabled() {
		for _, off := range s.Offsets {
			log.Debug("datastream offset", "name", off.Name, "index", off.Index)
		}
	}
	return s, nil
}
