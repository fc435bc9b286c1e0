package datastream

import (
	"math"

	"scrollcal/internal/geom"
)

// Unset marks a field the layout has not filled in yet. It does not fit in
// a datastream pixel, so encoding a half-built Elements fails.
const Unset = math.MaxUint32

// HeaderFlag marks a row whose info is a day-header offset.
const HeaderFlag = 1 << 17

const PaletteSize = 8

// RowColorInfo is the content of one scrollable row: either four palette
// indices (one per column band) or the row's offset inside a day header.
type RowColorInfo struct {
	Header bool
	Offset uint32
	Colors [4]uint8
}

func Colors(c [4]uint8) RowColorInfo {
	return RowColorInfo{Colors: c}
}

func DayHeader(offset uint32) RowColorInfo {
	return RowColorInfo{Header: true, Offset: offset}
}

// VerticalData describes one scanline of the scrollable region.
type VerticalData struct {
	// PrevDayHeader is the row index where the most recent day header
	// starts.
	PrevDayHeader uint32
	Info          RowColorInfo
}

// Elements is everything encoded into the datastream. Texture
// coordinates have their origin at the top left of the final image.
type Elements struct {
	DatastreamWidth  uint32
	DatastreamHeight uint32

	ViewportW uint32
	ViewportH uint32

	// Box around the scrollable section.
	HeaderH uint32
	FooterH uint32
	BorderL uint32
	BorderR uint32

	DayHeaderHeight uint32

	// Unscrolled band at the top of the header, and where blending into
	// the scrolled part ends.
	HeaderBlendStart uint32
	HeaderBlendEnd   uint32

	// Y position where the sides split when scrolling off the header.
	ScrollSplitPoint uint32

	// X coordinates of the row color column dividers.
	ColDivs [3]uint32

	Palette [PaletteSize]geom.RGB

	SectionPad uint32

	ScrollHeight uint32
	ScrollTexY   uint32

	BgSampleY uint32
	BgSampleH uint32

	HeaderTexY uint32
	FooterTexY uint32

	// Only the day header's sides are stored; the middle is stretched.
	DayHeaderTexX      uint32
	DayHeaderTexAlphaX uint32
	DayHeaderTexY      uint32
	DayHeaderSideWidth uint32
	DayHeaderTrueWidth uint32

	VData []VerticalData
}

// NewElements returns Elements with every scalar Unset.
func NewElements() *Elements {
	return &Elements{
		DatastreamWidth:    Unset,
		DatastreamHeight:   Unset,
		ViewportW:          Unset,
		ViewportH:          Unset,
		HeaderH:            Unset,
		FooterH:            Unset,
		BorderL:            Unset,
		BorderR:            Unset,
		DayHeaderHeight:    Unset,
		HeaderBlendStart:   Unset,
		HeaderBlendEnd:     Unset,
		ScrollSplitPoint:   Unset,
		ColDivs:            [3]uint32{Unset, Unset, Unset},
		SectionPad:         Unset,
		ScrollHeight:       Unset,
		ScrollTexY:         Unset,
		BgSampleY:          Unset,
		BgSampleH:          Unset,
		HeaderTexY:         Unset,
		FooterTexY:         Unset,
		DayHeaderTexX:      Unset,
		DayHeaderTexAlphaX: Unset,
		DayHeaderTexY:      Unset,
		DayHeaderSideWidth: Unset,
		DayHeaderTrueWidth: Unset,
	}
}
