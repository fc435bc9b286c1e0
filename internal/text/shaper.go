// Package text measures and draws wrapped, line-limited text for the
// layout code. The layout only ever talks to the Shaper interface; the
// font-file-backed implementation lives in FaceShaper.
package text

import (
	"fmt"
	"image/color"
	"image/draw"
)

type Weight int

const (
	Regular Weight = iota
	Medium
	Bold
)

func (w Weight) String() string {
	switch w {
	case Regular:
		return "regular"
	case Medium:
		return "medium"
	case Bold:
		return "bold"
	default:
		return fmt.Sprintf("weight(%d)", int(w))
	}
}

// ParseWeight accepts the names printed by Weight.String.
func ParseWeight(s string) (Weight, error) {
	switch s {
	case "", "regular":
		return Regular, nil
	case "medium":
		return Medium, nil
	case "bold":
		return Bold, nil
	}
	return Regular, fmt.Errorf("text: unknown font weight %q", s)
}

// Font names a face. Size is in points at 96 DPI. An empty Path selects
// the built-in Go font of the given weight.
type Font struct {
	Path   string
	Size   float64
	Weight Weight
}

func (f Font) String() string {
	name := f.Path
	if name == "" {
		name = "go"
	}
	return fmt.Sprintf("%s %s %g", name, f.Weight, f.Size)
}

// Metrics is the measured box of a piece of text. Baseline is the offset
// from the top of the box to the baseline of the first line.
type Metrics struct {
	Width    float64
	Height   float64
	Baseline float64
}

// Shaper lays out text. wrapWidth <= 0 disables wrapping; maxLines <= 0
// keeps every line. Draw must place glyphs exactly where Measure put them.
type Shaper interface {
	Measure(s string, f Font, wrapWidth float64, maxLines int) (Metrics, error)
	Draw(dst draw.Image, s string, f Font, wrapWidth float64, maxLines int, c color.Color) error
}
