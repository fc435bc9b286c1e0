package text

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"os"
	"sync"
	"unicode"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"scrollcal/internal/log"
)

const dpi = 96

// FaceShaper shapes text with OpenType faces loaded from disk, or the Go
// fonts when a Font has no path. Faces are cached per Font.
//
// The Go fonts have no CJK glyphs. Measure warns once per font file and
// rune when a string needs a glyph the font lacks.
type FaceShaper struct {
	// Stats, when set, collects measured widths and runes.
	Stats *Stats

	mu     sync.Mutex
	fonts  map[string]*opentype.Font
	faces  map[Font]font.Face
	warned map[string]map[rune]bool
	buf    sfnt.Buffer
}

func NewFaceShaper() *FaceShaper {
	return &FaceShaper{
		fonts:  make(map[string]*opentype.Font),
		faces:  make(map[Font]font.Face),
		warned: make(map[string]map[rune]bool),
	}
}

func fontKey(f Font) string {
	if f.Path == "" {
		return "builtin:" + f.Weight.String()
	}
	return f.Path
}

func builtin(w Weight) []byte {
	switch w {
	case Bold:
		return gobold.TTF
	case Medium:
		return gomedium.TTF
	default:
		return goregular.TTF
	}
}

func (fs *FaceShaper) face(f Font) (font.Face, error) {
	if f.Size <= 0 || math.IsNaN(f.Size) || math.IsInf(f.Size, 0) {
		return nil, fmt.Errorf("text: invalid font size %v", f.Size)
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()
	if face, ok := fs.faces[f]; ok {
		return face, nil
	}

	key := fontKey(f)
	otf, ok := fs.fonts[key]
	if !ok {
		data := builtin(f.Weight)
		if f.Path != "" {
			var err error
			data, err = os.ReadFile(f.Path)
			if err != nil {
				return nil, fmt.Errorf("text: read font: %w", err)
			}
		}
		var err error
		otf, err = opentype.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("text: parse font %s: %w", key, err)
		}
		fs.fonts[key] = otf
	}

	face, err := opentype.NewFace(otf, &opentype.FaceOptions{
		Size:    f.Size,
		DPI:     dpi,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("text: face %s: %w", f, err)
	}
	fs.faces[f] = face
	return face, nil
}

type shaped struct {
	lines      []string
	lineHeight fixed.Int26_6
	ascent     fixed.Int26_6
	width      float64
}

func (fs *FaceShaper) shape(s string, f Font, wrapWidth float64, maxLines int) (font.Face, shaped, error) {
	face, err := fs.face(f)
	if err != nil {
		return nil, shaped{}, err
	}
	measure := func(line string) float64 {
		return toFloat(font.MeasureString(face, line))
	}

	lines := wrapLines(s, wrapWidth, measure)
	if maxLines > 0 && len(lines) > maxLines {
		lines = lines[:maxLines]
	}
	m := face.Metrics()
	out := shaped{lines: lines, lineHeight: m.Height, ascent: m.Ascent}
	for _, line := range lines {
		out.width = math.Max(out.width, measure(line))
	}
	return face, out, nil
}

func (fs *FaceShaper) Measure(s string, f Font, wrapWidth float64, maxLines int) (Metrics, error) {
	_, sh, err := fs.shape(s, f, wrapWidth, maxLines)
	if err != nil {
		return Metrics{}, err
	}
	m := Metrics{
		Width:    sh.width,
		Height:   toFloat(sh.lineHeight) * float64(len(sh.lines)),
		Baseline: math.Ceil(toFloat(sh.ascent)),
	}
	fs.Stats.Record(s, m.Width)
	fs.warnMissing(s, f)
	return m, nil
}

// Missing returns the distinct runes of s, in order, that f has no glyph
// for. Whitespace is never reported.
func (fs *FaceShaper) Missing(s string, f Font) ([]rune, error) {
	if _, err := fs.face(f); err != nil {
		return nil, err
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.missingLocked(s, fs.fonts[fontKey(f)]), nil
}

func (fs *FaceShaper) missingLocked(s string, otf *opentype.Font) []rune {
	var out []rune
	seen := make(map[rune]bool)
	for _, r := range s {
		if seen[r] || unicode.IsSpace(r) {
			continue
		}
		seen[r] = true
		if idx, err := otf.GlyphIndex(&fs.buf, r); err != nil || idx == 0 {
			out = append(out, r)
		}
	}
	return out
}

func (fs *FaceShaper) warnMissing(s string, f Font) {
	key := fontKey(f)
	fs.mu.Lock()
	otf, ok := fs.fonts[key]
	if !ok {
		fs.mu.Unlock()
		return
	}
	var fresh []rune
	for _, r := range fs.missingLocked(s, otf) {
		if fs.warned[key] == nil {
			fs.warned[key] = make(map[rune]bool)
		}
		if !fs.warned[key][r] {
			fs.warned[key][r] = true
			fresh = append(fresh, r)
		}
	}
	fs.mu.Unlock()

	if len(fresh) > 0 {
		log.Warn("font lacks glyphs, set a CJK font path in the fonts config", "font", key, "runes", string(fresh))
	}
}

func (fs *FaceShaper) Draw(dst draw.Image, s string, f Font, wrapWidth float64, maxLines int, c color.Color) error {
	face, sh, err := fs.shape(s, f, wrapWidth, maxLines)
	if err != nil {
		return err
	}
	d := font.Drawer{Dst: dst, Src: image.NewUniform(c), Face: face}
	base := fixed.I(dst.Bounds().Min.Y) + fixed.I(int(math.Ceil(toFloat(sh.ascent))))
	for i, line := range sh.lines {
		d.Dot = fixed.Point26_6{
			X: fixed.I(dst.Bounds().Min.X),
			Y: base + sh.lineHeight*fixed.Int26_6(i),
		}
		d.DrawString(line)
	}
	return nil
}

func toFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
