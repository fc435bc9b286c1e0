package render

import (
	"fmt"
	"math"

	"scrollcal/internal/geom"
)

// Renderable is anything that can report its intrinsic pixel bounds and
// paint itself at the current origin of a Surface.
//
// Bounds must be pure: it may be called any number of times, before or
// after painting, and always returns the same value. Paint must leave the
// surface's transform, clip and operator as it found them.
type Renderable interface {
	Bounds() geom.Size
	Paint(s *Surface) error
}

// Render paints r inside a Save/Restore pair.
func Render(s *Surface, r Renderable) error {
	s.Save()
	defer s.Restore()
	return r.Paint(s)
}

// RenderAt paints r with its origin moved to (x, y).
func RenderAt(s *Surface, r Renderable, x, y float64) error {
	s.Save()
	defer s.Restore()
	s.Translate(x, y)
	return r.Paint(s)
}

// Translate offsets a child. Its bounds include the offset, so a child
// pushed right or down grows the reported size.
type Translate struct {
	Inner  Renderable
	DX, DY float64
}

func Offset(r Renderable, dx, dy float64) *Translate {
	return &Translate{Inner: r, DX: dx, DY: dy}
}

func (t *Translate) Bounds() geom.Size {
	b := t.Inner.Bounds()
	return geom.Size{W: b.W + t.DX, H: b.H + t.DY}
}

func (t *Translate) Paint(s *Surface) error {
	return RenderAt(s, t.Inner, t.DX, t.DY)
}

// Clip restricts a child to a rectangle in the child's own coordinates
// and moves that rectangle's corner to the origin. It reports the clip
// rectangle's size as its bounds.
type Clip struct {
	Inner Renderable
	Rect  geom.Rect
}

func ClipTo(r Renderable, rect geom.Rect) *Clip {
	return &Clip{Inner: r, Rect: rect}
}

func (c *Clip) Bounds() geom.Size {
	return c.Rect.Size()
}

func (c *Clip) Paint(s *Surface) error {
	s.Save()
	defer s.Restore()
	s.Translate(-c.Rect.X, -c.Rect.Y)
	s.ClipRect(c.Rect)
	return Render(s, c.Inner)
}

// Scale applies independent horizontal and vertical factors.
type Scale struct {
	Inner  Renderable
	SX, SY float64
}

func ScaleBy(r Renderable, sx, sy float64) *Scale {
	return &Scale{Inner: r, SX: sx, SY: sy}
}

func (sc *Scale) Bounds() geom.Size {
	b := sc.Inner.Bounds()
	return geom.Size{W: math.Max(0, b.W*sc.SX), H: math.Max(0, b.H*sc.SY)}
}

func (sc *Scale) Paint(s *Surface) error {
	for _, f := range []struct {
		name string
		v    float64
	}{{"scale x", sc.SX}, {"scale y", sc.SY}} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return &geom.NarrowError{Field: f.name, Value: f.v, Reason: "is not finite"}
		}
	}
	if b := sc.Bounds(); !b.Finite() {
		return fmt.Errorf("render: scaled bounds %vx%v are not finite", b.W, b.H)
	}
	s.Save()
	defer s.Restore()
	s.Scale(sc.SX, sc.SY)
	return Render(s, sc.Inner)
}

// Column stacks children top to bottom.
type Column struct {
	items []Renderable
	size  geom.Size
}

func NewColumn() *Column {
	return &Column{}
}

// Push appends r below the current content and returns the y offset at
// which it was placed.
func (c *Column) Push(r Renderable) float64 {
	offset := c.size.H
	item := Offset(r, 0, offset)
	b := item.Bounds()

	c.size.H = b.H
	c.size.W = math.Max(c.size.W, b.W)
	c.items = append(c.items, item)

	return offset
}

func (c *Column) Len() int {
	return len(c.items)
}

func (c *Column) Bounds() geom.Size {
	return c.size
}

func (c *Column) Paint(s *Surface) error {
	for _, item := range c.items {
		if err := Render(s, item); err != nil {
			return err
		}
	}
	return nil
}

// Group overlays children at a common origin.
type Group struct {
	items []Renderable
}

func NewGroup(items ...Renderable) *Group {
	return &Group{items: items}
}

func (g *Group) Push(r Renderable) {
	g.items = append(g.items, r)
}

func (g *Group) Len() int {
	return len(g.items)
}

func (g *Group) Bounds() geom.Size {
	var size geom.Size
	for _, item := range g.items {
		b := item.Bounds()
		size.W = math.Max(size.W, b.W)
		size.H = math.Max(size.H, b.H)
	}
	return size
}

func (g *Group) Paint(s *Surface) error {
	for _, item := range g.items {
		if err := Render(s, item); err != nil {
			return err
		}
	}
	return nil
}

// Swap transposes a child: horizontal strips become vertical ones.
type Swap struct {
	Inner Renderable
}

func SwapXY(r Renderable) *Swap {
	return &Swap{Inner: r}
}

func (sw *Swap) Bounds() geom.Size {
	b := sw.Inner.Bounds()
	return geom.Size{W: b.H, H: b.W}
}

func (sw *Swap) Paint(s *Surface) error {
	s.Save()
	defer s.Restore()
	s.SwapXY()
	return Render(s, sw.Inner)
}

// WithOp forces a compositing operator for everything its child paints.
// Operators are bounded: with OpDestIn, pixels outside the child's painted
// area keep their color.
type WithOp struct {
	Inner Renderable
	Op    Operator
}

func WithOperator(r Renderable, op Operator) *WithOp {
	return &WithOp{Inner: r, Op: op}
}

func (w *WithOp) Bounds() geom.Size {
	return w.Inner.Bounds()
}

func (w *WithOp) Paint(s *Surface) error {
	s.Save()
	defer s.Restore()
	s.SetOperator(w.Op)
	return Render(s, w.Inner)
}
