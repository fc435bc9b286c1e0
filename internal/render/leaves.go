package render

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"scrollcal/internal/geom"
	"scrollcal/internal/text"
)

// Image paints a raster at the origin.
type Image struct {
	Img image.Image
}

func NewImage(img image.Image) *Image {
	return &Image{Img: img}
}

func (im *Image) Bounds() geom.Size {
	b := im.Img.Bounds()
	return geom.Size{W: float64(b.Dx()), H: float64(b.Dy())}
}

func (im *Image) Paint(s *Surface) error {
	s.DrawImage(im.Img)
	return nil
}

// Pad is an empty box that only takes up space.
type Pad struct {
	Size geom.Size
}

func NewPad(w, h float64) *Pad {
	return &Pad{Size: geom.Size{W: w, H: h}}
}

func (p *Pad) Bounds() geom.Size { return p.Size }

func (p *Pad) Paint(*Surface) error { return nil }

// FillRect paints a solid rectangle. Its bounds extend from the origin to
// the rectangle's far corner.
type FillRect struct {
	Rect  geom.Rect
	Color color.Color
}

func NewFillRect(c color.Color, w, h float64) *FillRect {
	return &FillRect{Rect: geom.R(0, 0, w, h), Color: c}
}

func (f *FillRect) Bounds() geom.Size {
	return geom.Size{W: f.Rect.X + f.Rect.W, H: f.Rect.Y + f.Rect.H}
}

func (f *FillRect) Paint(s *Surface) error {
	s.FillRect(f.Rect, f.Color)
	return nil
}

// Separator is a dashed horizontal rule with round caps, drawn Margin
// pixels below the origin.
type Separator struct {
	Color     color.Color
	Width     float64
	Thickness float64
	Dash      float64
	Margin    float64
}

func (sp *Separator) Bounds() geom.Size {
	return geom.Size{W: sp.Width, H: sp.Thickness + sp.Margin}
}

func (sp *Separator) Paint(s *Surface) error {
	s.FillPolygons(sp.dashes(), sp.Color)
	return nil
}

// dashes returns one capsule per visible dash. The pattern is Dash on,
// Dash off, starting 1.5 dashes into the pattern.
func (sp *Separator) dashes() [][]geom.Point {
	r := sp.Thickness / 2
	if sp.Dash <= 0 {
		return [][]geom.Point{capsule(0, sp.Width, sp.Margin, r)}
	}
	period := 2 * sp.Dash
	phase := math.Mod(sp.Dash*1.5, period)

	var out [][]geom.Point
	for start := -phase; start < sp.Width; start += period {
		x0 := math.Max(start, 0)
		x1 := math.Min(start+sp.Dash, sp.Width)
		if x1 > x0 {
			out = append(out, capsule(x0, x1, sp.Margin, r))
		}
	}
	return out
}

const capSegments = 8

// capsule outlines a horizontal segment from x0 to x1 at height y with
// semicircular caps of radius r, clockwise in screen coordinates.
func capsule(x0, x1, y, r float64) []geom.Point {
	pts := make([]geom.Point, 0, 2*(capSegments+1))
	// Right cap, top to bottom.
	for i := 0; i <= capSegments; i++ {
		a := -math.Pi/2 + math.Pi*float64(i)/capSegments
		pts = append(pts, geom.Point{X: x1 + r*math.Cos(a), Y: y + r*math.Sin(a)})
	}
	// Left cap, bottom to top.
	for i := 0; i <= capSegments; i++ {
		a := math.Pi/2 + math.Pi*float64(i)/capSegments
		pts = append(pts, geom.Point{X: x0 + r*math.Cos(a), Y: y + r*math.Sin(a)})
	}
	return pts
}

// TextBox is shaped text clipped to its measured box. MaxLines limits the
// reported height; lines past it are not painted.
type TextBox struct {
	shaper    text.Shaper
	text      string
	font      text.Font
	wrapWidth float64
	maxLines  int
	color     color.Color
	metrics   text.Metrics
}

// NewTextBox measures s once; the same parameters are reused by Paint.
// The box is rounded out to whole pixels and the wrap width down.
func NewTextBox(sh text.Shaper, s string, wrapWidth float64, c color.Color, f text.Font, maxLines int) (*TextBox, error) {
	wrapWidth = math.Floor(wrapWidth)
	m, err := sh.Measure(s, f, wrapWidth, maxLines)
	if err != nil {
		return nil, fmt.Errorf("render: measuring %q: %w", s, err)
	}
	m.Width, m.Height, m.Baseline = math.Ceil(m.Width), math.Ceil(m.Height), math.Ceil(m.Baseline)
	return &TextBox{
		shaper:    sh,
		text:      s,
		font:      f,
		wrapWidth: wrapWidth,
		maxLines:  maxLines,
		color:     c,
		metrics:   m,
	}, nil
}

func (t *TextBox) Bounds() geom.Size {
	return geom.Size{W: t.metrics.Width, H: t.metrics.Height}
}

// Baseline is the distance from the top of the box to the first baseline.
func (t *TextBox) Baseline() float64 {
	return t.metrics.Baseline
}

func (t *TextBox) Text() string {
	return t.text
}

func (t *TextBox) Paint(s *Surface) error {
	w, err := geom.CeilInt("text width", t.metrics.Width)
	if err != nil {
		return err
	}
	h, err := geom.CeilInt("text height", t.metrics.Height)
	if err != nil {
		return err
	}
	if w == 0 || h == 0 {
		return nil
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	if err := t.shaper.Draw(img, t.text, t.font, t.wrapWidth, t.maxLines, t.color); err != nil {
		return fmt.Errorf("render: drawing %q: %w", t.text, err)
	}
	s.DrawImage(img)
	return nil
}
