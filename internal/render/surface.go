// Package render implements the retained-mode composition engine: a
// Surface with a scoped transform/clip/operator state, the Renderable
// interface, and the fixed set of combinators and leaves the calendar
// layout is built from.
package render

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/vector"

	"scrollcal/internal/geom"
)

// Operator selects how painted pixels combine with the surface.
type Operator int

const (
	// OpOver composites source over destination.
	OpOver Operator = iota
	// OpSource replaces destination with source.
	OpSource
	// OpDestIn keeps destination scaled by source alpha. It only touches
	// pixels the source paints; destination outside that area is left as
	// is, unlike Cairo's unbounded DEST_IN.
	OpDestIn
	// OpDestOver composites source under destination.
	OpDestOver
)

func (o Operator) String() string {
	switch o {
	case OpOver:
		return "over"
	case OpSource:
		return "source"
	case OpDestIn:
		return "dest-in"
	case OpDestOver:
		return "dest-over"
	default:
		return "unknown"
	}
}

type state struct {
	m    f64.Aff3
	clip image.Rectangle
	op   Operator
}

var identity = f64.Aff3{1, 0, 0, 0, 1, 0}

// Surface is an in-memory premultiplied RGBA canvas. Its transform is
// restricted to maps that keep rectangles axis aligned (translation,
// scaling and the x/y swap), so clips stay device-space rectangles.
type Surface struct {
	img   *image.RGBA
	st    state
	stack []state
}

func NewSurface(width, height int) *Surface {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	return &Surface{
		img: img,
		st:  state{m: identity, clip: img.Bounds(), op: OpOver},
	}
}

// Image returns the backing pixels. The surface keeps ownership; callers
// that hand the pixels to another stage must stop painting first.
func (s *Surface) Image() *image.RGBA {
	return s.img
}

func (s *Surface) Width() int  { return s.img.Bounds().Dx() }
func (s *Surface) Height() int { return s.img.Bounds().Dy() }

func (s *Surface) Save() {
	s.stack = append(s.stack, s.st)
}

func (s *Surface) Restore() {
	if len(s.stack) == 0 {
		return
	}
	s.st = s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
}

// Depth is the number of unmatched Save calls.
func (s *Surface) Depth() int {
	return len(s.stack)
}

func (s *Surface) Transform() f64.Aff3 {
	return s.st.m
}

func (s *Surface) Clip() image.Rectangle {
	return s.st.clip
}

func (s *Surface) Operator() Operator {
	return s.st.op
}

func (s *Surface) SetOperator(op Operator) {
	s.st.op = op
}

// Apply post-multiplies the current transform by m, so m acts in the
// current user space.
func (s *Surface) Apply(m f64.Aff3) {
	s.st.m = mul(s.st.m, m)
}

func (s *Surface) Translate(dx, dy float64) {
	s.Apply(f64.Aff3{1, 0, dx, 0, 1, dy})
}

func (s *Surface) Scale(sx, sy float64) {
	s.Apply(f64.Aff3{sx, 0, 0, 0, sy, 0})
}

// SwapXY transposes the user space.
func (s *Surface) SwapXY() {
	s.Apply(f64.Aff3{0, 1, 0, 1, 0, 0})
}

// ClipRect intersects the clip with a rectangle in user space.
func (s *Surface) ClipRect(r geom.Rect) {
	s.st.clip = s.st.clip.Intersect(s.deviceRect(r))
}

// FillRect paints a user-space rectangle with a solid color.
func (s *Surface) FillRect(r geom.Rect, c color.Color) {
	dr := s.deviceRect(r).Intersect(s.st.clip)
	if dr.Empty() {
		return
	}
	src := color.RGBAModel.Convert(c).(color.RGBA)
	s.blend(dr, func(int, int) color.RGBA { return src }, nil)
}

// FillPolygons fills closed polygons given in user space.
func (s *Surface) FillPolygons(polys [][]geom.Point, c color.Color) {
	var minX, minY, maxX, maxY = math.Inf(1), math.Inf(1), math.Inf(-1), math.Inf(-1)
	dev := make([][]geom.Point, 0, len(polys))
	for _, poly := range polys {
		if len(poly) < 3 {
			continue
		}
		pts := make([]geom.Point, len(poly))
		for i, p := range poly {
			x, y := apply(s.st.m, p.X, p.Y)
			pts[i] = geom.Point{X: x, Y: y}
			minX, minY = math.Min(minX, x), math.Min(minY, y)
			maxX, maxY = math.Max(maxX, x), math.Max(maxY, y)
		}
		dev = append(dev, pts)
	}
	if len(dev) == 0 {
		return
	}

	box := image.Rect(int(math.Floor(minX)), int(math.Floor(minY)), int(math.Ceil(maxX)), int(math.Ceil(maxY)))
	box = box.Intersect(s.st.clip)
	if box.Empty() {
		return
	}

	z := vector.NewRasterizer(box.Dx(), box.Dy())
	for _, pts := range dev {
		z.MoveTo(float32(pts[0].X-float64(box.Min.X)), float32(pts[0].Y-float64(box.Min.Y)))
		for _, p := range pts[1:] {
			z.LineTo(float32(p.X-float64(box.Min.X)), float32(p.Y-float64(box.Min.Y)))
		}
		z.ClosePath()
	}
	mask := image.NewAlpha(image.Rect(0, 0, box.Dx(), box.Dy()))
	z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
	// Move the mask into device coordinates.
	mask.Rect = box

	src := color.RGBAModel.Convert(c).(color.RGBA)
	s.blend(box, func(int, int) color.RGBA { return src }, mask)
}

// DrawImage paints img with its top-left corner at the user-space origin.
func (s *Surface) DrawImage(img image.Image) {
	b := img.Bounds()
	if b.Empty() {
		return
	}
	m := mul(s.st.m, f64.Aff3{1, 0, -float64(b.Min.X), 0, 1, -float64(b.Min.Y)})
	if m[0]*m[4]-m[1]*m[3] == 0 {
		return
	}

	dr := s.deviceRect(geom.R(0, 0, float64(b.Dx()), float64(b.Dy())))
	dr = dr.Intersect(s.st.clip)
	if dr.Empty() {
		return
	}

	tmp := image.NewRGBA(dr)
	interpolatorFor(m).Transform(tmp, m, img, b, draw.Src, nil)
	s.blend(dr, func(x, y int) color.RGBA { return tmp.RGBAAt(x, y) }, nil)
}

// interpolatorFor picks nearest-neighbour sampling for maps that copy or
// enlarge pixels (exact copies, stretched edge slices) and bilinear
// sampling for reductions.
func interpolatorFor(m f64.Aff3) draw.Interpolator {
	sx := math.Abs(m[0]) + math.Abs(m[1])
	sy := math.Abs(m[3]) + math.Abs(m[4])
	if sx >= 1 && sy >= 1 {
		return draw.NearestNeighbor
	}
	return draw.ApproxBiLinear
}

// blend composites src over the device rectangle r with the current
// operator. mask, when present, is a coverage mask in device coordinates.
func (s *Surface) blend(r image.Rectangle, src func(x, y int) color.RGBA, mask *image.Alpha) {
	r = r.Intersect(s.img.Bounds())
	op := s.st.op
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			cov := uint32(0xFF)
			if mask != nil {
				cov = uint32(mask.AlphaAt(x, y).A)
				if cov == 0 {
					continue
				}
			}
			i := s.img.PixOffset(x, y)
			px := s.img.Pix[i : i+4 : i+4]
			d := color.RGBA{R: px[0], G: px[1], B: px[2], A: px[3]}
			out := composite(op, src(x, y), d)
			if cov != 0xFF {
				out = lerp(d, out, cov)
			}
			px[0], px[1], px[2], px[3] = out.R, out.G, out.B, out.A
		}
	}
}

// composite applies a Porter-Duff operator to premultiplied 8-bit pixels.
func composite(op Operator, sc, dc color.RGBA) color.RGBA {
	switch op {
	case OpSource:
		return sc
	case OpDestIn:
		sa := uint32(sc.A)
		return color.RGBA{
			R: mul8(uint32(dc.R), sa),
			G: mul8(uint32(dc.G), sa),
			B: mul8(uint32(dc.B), sa),
			A: mul8(uint32(dc.A), sa),
		}
	case OpDestOver:
		inv := 0xFF - uint32(dc.A)
		return color.RGBA{
			R: add8(dc.R, mul8(uint32(sc.R), inv)),
			G: add8(dc.G, mul8(uint32(sc.G), inv)),
			B: add8(dc.B, mul8(uint32(sc.B), inv)),
			A: add8(dc.A, mul8(uint32(sc.A), inv)),
		}
	default:
		inv := 0xFF - uint32(sc.A)
		return color.RGBA{
			R: add8(sc.R, mul8(uint32(dc.R), inv)),
			G: add8(sc.G, mul8(uint32(dc.G), inv)),
			B: add8(sc.B, mul8(uint32(dc.B), inv)),
			A: add8(sc.A, mul8(uint32(dc.A), inv)),
		}
	}
}

func lerp(d, r color.RGBA, cov uint32) color.RGBA {
	inv := 0xFF - cov
	return color.RGBA{
		R: uint8((uint32(r.R)*cov + uint32(d.R)*inv + 127) / 0xFF),
		G: uint8((uint32(r.G)*cov + uint32(d.G)*inv + 127) / 0xFF),
		B: uint8((uint32(r.B)*cov + uint32(d.B)*inv + 127) / 0xFF),
		A: uint8((uint32(r.A)*cov + uint32(d.A)*inv + 127) / 0xFF),
	}
}

func mul8(a, b uint32) uint8 {
	return uint8((a*b + 127) / 0xFF)
}

func add8(a, b uint8) uint8 {
	s := uint32(a) + uint32(b)
	if s > 0xFF {
		s = 0xFF
	}
	return uint8(s)
}

// deviceRect maps a user-space rectangle to the smallest pixel rectangle
// whose edges are the rounded transformed corners.
func (s *Surface) deviceRect(r geom.Rect) image.Rectangle {
	x0, y0 := apply(s.st.m, r.X, r.Y)
	x1, y1 := apply(s.st.m, r.X+r.W, r.Y+r.H)
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	return image.Rect(round(x0), round(y0), round(x1), round(y1))
}

func round(v float64) int {
	switch {
	case v > math.MaxInt32:
		return math.MaxInt32
	case v < math.MinInt32:
		return math.MinInt32
	}
	return int(math.Floor(v + 0.5))
}

func apply(m f64.Aff3, x, y float64) (float64, float64) {
	return m[0]*x + m[1]*y + m[2], m[3]*x + m[4]*y + m[5]
}

// mul returns a∘b: the map that applies b first, then a.
func mul(a, b f64.Aff3) f64.Aff3 {
	return f64.Aff3{
		a[0]*b[0] + a[1]*b[3],
		a[0]*b[1] + a[1]*b[4],
		a[0]*b[2] + a[1]*b[5] + a[2],
		a[3]*b[0] + a[4]*b[3],
		a[3]*b[1] + a[4]*b[4],
		a[3]*b[2] + a[4]*b[5] + a[5],
	}
}
