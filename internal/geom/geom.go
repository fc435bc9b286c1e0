// Package geom holds the small value types shared by the layout and
// rendering code: sizes, rectangles, points and 24-bit colors.
package geom

import (
	"image/color"
	"math"
)

// Size is a width/height pair in pixels. Fractional sizes are allowed
// during layout; they are narrowed to integers only when a surface or a
// datastream field needs them.
type Size struct {
	W, H float64
}

// Finite reports whether both dimensions are finite numbers.
func (s Size) Finite() bool {
	return isFinite(s.W) && isFinite(s.H)
}

type Point struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle given by its origin and size.
type Rect struct {
	X, Y, W, H float64
}

func R(x, y, w, h float64) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

func (r Rect) Size() Size {
	return Size{W: r.W, H: r.H}
}

// RGB is an opaque 24-bit color.
type RGB struct {
	R, G, B uint8
}

// Hex builds an RGB from a 0xRRGGBB literal.
func Hex(v uint32) RGB {
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}
}

// RGBA implements color.Color.
func (c RGB) RGBA() (r, g, b, a uint32) {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xFF}.RGBA()
}

// RGBAColor returns the color as an opaque color.RGBA.
func (c RGB) RGBAColor() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xFF}
}

var (
	White   = Hex(0xFFFFFF)
	Magenta = Hex(0xFF00FF)
)

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
