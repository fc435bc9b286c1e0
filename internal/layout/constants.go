// Package layout composes the calendar into one Renderable tree and
// collects the DatastreamElements the device needs to scroll it.
package layout

import (
	"scrollcal/internal/datastream"
	"scrollcal/internal/geom"
)

var (
	RGBTextEnded   = geom.Hex(0x9BAEC0)
	RGBTimeEnded   = geom.Hex(0x7D8D93)
	RGBText        = geom.Hex(0x694342)
	RGBTime        = geom.Hex(0x7D5757)
	RGBDate        = geom.Hex(0xEFD4A5)
	RGBTimeDash    = geom.Hex(0xC28979)
	RGBEventMarker = geom.Hex(0x5A494F)
)

// Palette is indexed by the Pal* constants. The last two entries are
// debug colors that never appear in row info.
var Palette = [datastream.PaletteSize]geom.RGB{
	RGBDate,
	RGBTextEnded,
	RGBTimeEnded,
	RGBText,
	RGBTime,
	RGBTimeDash,
	geom.Hex(0xFF00FF),
	geom.Hex(0x00FFFF),
}

// Palette indices.
const (
	PalDate uint8 = iota
	PalTextEnded
	PalTimeEnded
	PalText
	PalTime
	PalTimeDash
)

const (
	ViewportWidth  = 1024
	ViewportHeight = 1447

	TextureWidth  = ViewportWidth
	TextureHeight = 4096

	SectionPad = 32.0

	LeftBorder  = 23.0
	RightBorder = 71.0

	VariableOuterLeft  = 23.0
	VariableOuterRight = 953.0

	VariableTop         = 585.0
	VariableTemplateTop = 590.0
	VariableBottom      = 1313.0

	DayHeaderHeight = 95.0

	TimeColLeft    = 28.0
	TimeColRight   = 139.0
	EventInfoLeft  = 144.0 + 16.0
	EventInfoRight = 948.0

	EventMarkerHeight = 16.0
	EventMarkerWidth  = EventMarkerHeight * 0.866
	EventMarkerClip   = 4.0

	DayHeaderCornerSize = 8.0

	BgSampleHeight = 32

	ScrollSplitPoint = VariableBottom

	HeaderBlendStart = 8
	HeaderBlendEnd   = 16

	// EventLines is how many lines an event description may wrap to.
	EventLines = 2

	// LateEndHour is the last hour of the next day still written as a
	// continuation of the start day ("~26:00").
	LateEndHour = 3
)

const noEventsText = "【イベント情報がありません】"
